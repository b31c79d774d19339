package cli

import (
	"github.com/spf13/cobra"

	"geman/internal/registry"
	"geman/internal/tag"
)

var applyLabel string

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <kind> [tag]",
		Short: "Make a managed version the active one (the newest when no tag is given)",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runApply,
	}

	cmd.Flags().StringVar(&applyLabel, "label", "", "Label of the copy to apply")

	return cmd
}

func runApply(cmd *cobra.Command, args []string) error {
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

	// An unreadable config is reported by Apply itself.
	previous, _ := a.manager.ActiveVersion(kind)

	mv, err := a.manager.Apply(kind, rawTag, applyLabel)
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd, struct {
			registry.ManagedVersion
			Previous string `json:"previous,omitempty"`
		}{mv, previous})
	}
	if previous != "" && previous != mv.DirectoryName {
		cmd.Printf("%s now uses %s (was %s)\n", kind.AppName(), mv.DirectoryName, previous)
	} else {
		cmd.Printf("%s now uses %s\n", kind.AppName(), mv.DirectoryName)
	}
	cmd.Printf("Previous config saved to %s\n", a.paths.BackupFile(kind))
	return nil
}
