package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"geman/internal/tag"
	"geman/internal/tools"
)

var (
	removeLabel  string
	removeForget bool

	cleanBefore string
	cleanStart  string
	cleanEnd    string
	cleanForget bool
	cleanDryRun bool
)

func newRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "remove <kind> <tag>",
		Aliases: []string{"rm"},
		Short:   "Remove a managed version",
		Args:    cobra.ExactArgs(2),
		RunE:    runRemove,
	}

	cmd.Flags().StringVar(&removeLabel, "label", "", "Label of the copy to remove")
	cmd.Flags().BoolVar(&removeForget, "forget", false, "Stop managing the version but keep its directory")

	return cmd
}

func runRemove(cmd *cobra.Command, args []string) error {
	kind, err := tag.ParseKind(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	mv, err := a.manager.Remove(kind, args[1], tools.RemoveOptions{Label: removeLabel, Forget: removeForget})
	if err != nil {
		return err
	}
	if err := a.save(); err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd, mv)
	}
	if removeForget {
		cmd.Printf("Forgot %s; %s was kept\n", mv, mv.DirectoryName)
	} else {
		cmd.Printf("Removed %s\n", mv)
	}
	return nil
}

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean <kind>",
		Short: "Remove managed versions older than a tag or inside a tag range",
		Args:  cobra.ExactArgs(1),
		RunE:  runClean,
	}

	cmd.Flags().StringVar(&cleanBefore, "before", "", "Remove versions older than this tag")
	cmd.Flags().StringVar(&cleanStart, "start", "", "First tag of an inclusive range")
	cmd.Flags().StringVar(&cleanEnd, "end", "", "Last tag of an inclusive range")
	cmd.Flags().BoolVar(&cleanForget, "forget", false, "Stop managing the versions but keep their directories")
	cmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Show what would be removed")
	cmd.MarkFlagsMutuallyExclusive("before", "start")
	cmd.MarkFlagsMutuallyExclusive("before", "end")
	cmd.MarkFlagsRequiredTogether("start", "end")

	return cmd
}

func runClean(cmd *cobra.Command, args []string) error {
	kind, err := tag.ParseKind(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.manager.Clean(kind, tools.CleanOptions{
		Before: cleanBefore,
		Start:  cleanStart,
		End:    cleanEnd,
		Forget: cleanForget,
		DryRun: cleanDryRun,
	})
	if errors.Is(err, tools.ErrNothingToRemove) {
		if outputJSON {
			return printJSON(cmd, res)
		}
		cmd.Println("Nothing to remove.")
		return nil
	}
	if err != nil {
		return err
	}
	if !cleanDryRun && len(res.Removed) > 0 {
		if err := a.save(); err != nil {
			return err
		}
	}

	if outputJSON {
		return printJSON(cmd, res)
	}

	action := "removed"
	if res.DryRun {
		action = "would remove"
	}
	rows := make([][]string, 0, len(res.Removed)+len(res.Failed))
	for _, mv := range res.Removed {
		rows = append(rows, []string{mv.Tag.Value(), mv.EffectiveLabel(), mv.DirectoryName, action})
	}
	for _, f := range res.Failed {
		rows = append(rows, []string{f.Version.Tag.Value(), f.Version.EffectiveLabel(), f.Version.DirectoryName, "kept: " + f.Error})
	}
	return renderTable(cmd, []string{"Tag", "Label", "Directory", "Result"}, rows)
}
