package cli

import (
	"github.com/spf13/cobra"

	"geman/internal/release"
	"geman/internal/tag"
	"geman/internal/tools"
	"geman/internal/tui"
)

var (
	checkKind    string
	checkRefresh bool
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Show the latest upstream release of each tool",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}

	cmd.Flags().StringVar(&checkKind, "kind", "", "Only check this kind (proton, wine, lol)")
	cmd.Flags().BoolVar(&checkRefresh, "refresh", false, "Ignore cached results")

	return cmd
}

func runCheck(cmd *cobra.Command, _ []string) error {
	kinds, err := kindsFlag(checkKind)
	if err != nil {
		return err
	}

	var status *tui.ScanStatus
	var extra []release.Option
	if tui.DetectMode(cmd.ErrOrStderr(), noProgress, outputJSON) == tui.ModeTUI {
		status = tui.NewScanStatus(cmd.ErrOrStderr())
		defer status.Stop()
		extra = append(extra, release.WithPageObserver(status.Page))
	}

	a, err := openApp(cmd, extra...)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	var results []tools.CheckResult
	if status == nil {
		results = a.manager.Check(ctx, kinds, checkRefresh)
	} else {
		for _, kind := range kinds {
			status.Kind(kind)
			results = append(results, a.manager.Check(ctx, []tag.Kind{kind}, checkRefresh)...)
		}
		status.Stop()
	}

	if outputJSON {
		return printJSON(cmd, results)
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		state := "not installed"
		switch {
		case r.Error != "":
			state = "error: " + r.Error
		case r.Managed:
			state = "installed"
		}
		source := "github"
		if r.Cached {
			source = "cache"
		}
		rows = append(rows, []string{r.Kind.ToolName(), tui.NonEmptyOrDash(r.Latest), state, source})
	}
	return renderTable(cmd, []string{"Tool", "Latest", "Status", "Source"}, rows)
}
