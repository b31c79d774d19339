package cli

import (
	"github.com/spf13/cobra"

	"geman/internal/config"
	"geman/internal/paths"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect geman configuration",
	}
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration and resolved paths",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if outputJSON {
		return printJSON(cmd, struct {
			Config config.Config `json:"config"`
			Paths  paths.Paths   `json:"paths"`
		}{a.cfg, a.paths})
	}

	data, err := a.cfg.Marshal()
	if err != nil {
		return err
	}
	cmd.Print(string(data))
	cmd.Println()
	return renderTable(cmd, []string{"Location", "Path"}, [][]string{
		{"registry", a.paths.RegistryFile},
		{"logs", a.paths.LogsDir},
		{"steam config", a.paths.SteamConfig},
		{"steam tools", a.paths.SteamToolsDir},
		{"lutris config", a.paths.LutrisWineConfig},
		{"lutris runners", a.paths.LutrisRunnersDir},
	})
}
