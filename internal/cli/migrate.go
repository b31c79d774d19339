package cli

import (
	"github.com/spf13/cobra"

	"geman/internal/tag"
	"geman/internal/tools"
)

var (
	migrateSource string
	migrateLabel  string
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate <kind> <tag>",
		Short: "Start managing an already extracted release directory",
		Args:  cobra.ExactArgs(2),
		RunE:  runMigrate,
	}

	cmd.Flags().StringVar(&migrateSource, "source", "", "Directory holding the extracted release")
	cmd.Flags().StringVar(&migrateLabel, "label", "", "Label for the managed copy")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	kind, err := tag.ParseKind(args[0])
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	mv, err := a.manager.Migrate(kind, args[1], tools.MigrateOptions{Source: migrateSource, Label: migrateLabel})
	if err != nil {
		return err
	}
	if err := a.save(); err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd, mv)
	}
	cmd.Printf("Now managing %s in %s\n", mv, mv.DirectoryName)
	return nil
}
