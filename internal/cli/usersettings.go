package cli

import (
	"github.com/spf13/cobra"
)

var (
	userSettingsSource      string
	userSettingsDestination string
)

func newUserSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user-settings",
		Short: "Manage Proton user_settings.py files",
	}
	cmd.AddCommand(newUserSettingsCopyCmd())
	return cmd
}

func newUserSettingsCopyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy user_settings.py from one managed Proton version to another",
		Args:  cobra.NoArgs,
		RunE:  runUserSettingsCopy,
	}

	cmd.Flags().StringVar(&userSettingsSource, "source", "", "Tag to copy from")
	cmd.Flags().StringVar(&userSettingsDestination, "destination", "", "Tag to copy to")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("destination")

	return cmd
}

func runUserSettingsCopy(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	dst, err := a.manager.CopyUserSettings(userSettingsSource, userSettingsDestination)
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd, map[string]string{"path": dst})
	}
	cmd.Printf("Copied user settings to %s\n", dst)
	return nil
}
