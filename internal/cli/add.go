package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"geman/internal/tag"
	"geman/internal/tools"
	"geman/internal/tui"
)

var (
	addSkipChecksum bool
	addApply        bool
	addCopy         bool
)

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <kind> [tag]",
		Short: "Download and install a release (the latest when no tag is given)",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runAdd,
	}

	cmd.Flags().BoolVar(&addSkipChecksum, "skip-checksum", false, "Do not verify the release checksum")
	cmd.Flags().BoolVar(&addApply, "apply", false, "Make the installed version active")
	cmd.Flags().BoolVar(&addCopy, "copy", false, "Install another labelled copy of an already managed release")

	return cmd
}

func runAdd(cmd *cobra.Command, args []string) error {
	kind, err := tag.ParseKind(args[0])
	if err != nil {
		return err
	}
	rawTag := ""
	if len(args) == 2 {
		rawTag = args[1]
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	opts := tools.InstallOptions{
		Tag:          rawTag,
		SkipChecksum: addSkipChecksum || a.cfg.SkipChecksum,
		Apply:        addApply,
		Duplicate:    addCopy,
	}

	ctx := cmd.Context()

	var res tools.InstallResult
	switch tui.DetectMode(cmd.OutOrStdout(), noProgress, outputJSON) {
	case tui.ModeTUI:
		res, err = installWithProgress(ctx, cmd, a, kind, opts)
	default:
		res, err = a.manager.Install(ctx, kind, opts)
	}

	// The tool directory exists once Path is set, so record it even when
	// applying failed.
	if res.Path != "" {
		if saveErr := a.save(); saveErr != nil {
			return saveErr
		}
	}
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd, res)
	}
	printInstallResult(cmd, kind, res)
	return nil
}

func installWithProgress(ctx context.Context, cmd *cobra.Command, a *app, kind tag.Kind, opts tools.InstallOptions) (tools.InstallResult, error) {
	key := kind.String()
	name := opts.Tag
	if name == "" {
		name = "latest"
	}

	model := tui.NewProgressModel("Installing " + kind.ToolName())
	model.AddRow(key, name)

	var res tools.InstallResult
	err := tui.RunWithWork(ctx, cmd.OutOrStdout(), model, func(ctx context.Context, send func(tea.Msg)) error {
		send(tui.StatusMsg{Key: key, Status: tui.StatusResolving})

		next := tui.StatusVerifying
		if opts.SkipChecksum {
			next = tui.StatusExtracting
		}
		report := tui.DownloadReporter(send, key)
		opts.Progress = func(done, total int64) {
			report(done, total)
			if total > 0 && done >= total {
				send(tui.StatusMsg{Key: key, Status: next, Detail: humanize.Bytes(uint64(total))})
			}
		}

		var err error
		res, err = a.manager.Install(ctx, kind, opts)
		if err != nil {
			send(tui.StatusMsg{Key: key, Status: tui.StatusError, Detail: err.Error()})
			return err
		}

		status := tui.StatusInstalled
		switch {
		case res.AlreadyManaged:
			status = tui.StatusManaged
		case res.Applied:
			status = tui.StatusActive
		}
		send(tui.StatusMsg{Key: key, Status: status, Detail: res.Version.DirectoryName})
		return nil
	})
	return res, err
}

func printInstallResult(cmd *cobra.Command, kind tag.Kind, res tools.InstallResult) {
	if res.AlreadyManaged {
		cmd.Printf("%s is already managed (%s). Use --copy to install another copy.\n", res.Version, res.Version.DirectoryName)
	} else {
		cmd.Printf("Installed %s into %s\n", res.Version, res.Path)
	}
	if res.Applied {
		cmd.Printf("%s now uses %s\n", kind.AppName(), res.Version.DirectoryName)
	}
}
