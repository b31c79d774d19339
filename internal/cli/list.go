package cli

import (
	"github.com/spf13/cobra"

	"geman/internal/tag"
	"geman/internal/tui"
)

var (
	listKind       string
	listNewest     bool
	listFileSystem bool
)

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List managed versions",
		Args:    cobra.NoArgs,
		RunE:    runList,
	}

	cmd.Flags().StringVar(&listKind, "kind", "", "Only list this kind (proton, wine, lol)")
	cmd.Flags().BoolVar(&listNewest, "newest", false, "Only show the newest version of each kind")
	cmd.Flags().BoolVar(&listFileSystem, "file-system", false, "List the tool directories on disk instead of the registry")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	kinds, err := kindsFlag(listKind)
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if listFileSystem {
		return listDirectories(cmd, a, kinds)
	}

	entries := a.manager.List(kinds, listNewest)
	if outputJSON {
		return printJSON(cmd, entries)
	}
	if len(entries) == 0 {
		cmd.Println("No managed versions.")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		active := ""
		if e.Active {
			active = tui.ActiveStyle.Render("*")
		}
		label := ""
		if e.HasCustomLabel() {
			label = e.EffectiveLabel()
		}
		rows = append(rows, []string{active, e.Kind.ToolName(), e.Tag.Value(), tui.NonEmptyOrDash(label), e.DirectoryName})
	}
	return renderTable(cmd, []string{"", "Tool", "Tag", "Label", "Directory"}, rows)
}

func listDirectories(cmd *cobra.Command, a *app, kinds []tag.Kind) error {
	type dirListing struct {
		Kind        tag.Kind `json:"kind"`
		Path        string   `json:"path"`
		Directories []string `json:"directories"`
	}

	// Both Wine kinds share the Lutris runners directory.
	seen := map[string]bool{}
	var listings []dirListing
	for _, kind := range kinds {
		dir := a.paths.ToolDir(kind)
		if seen[dir] {
			continue
		}
		seen[dir] = true
		names, err := a.manager.ListDir(kind)
		if err != nil {
			return err
		}
		listings = append(listings, dirListing{Kind: kind, Path: dir, Directories: names})
	}

	if outputJSON {
		return printJSON(cmd, listings)
	}
	for _, l := range listings {
		cmd.Printf("%s (%s)\n", l.Path, l.Kind.AppName())
		if len(l.Directories) == 0 {
			cmd.Println("  (empty)")
		}
		for _, name := range l.Directories {
			cmd.Printf("  %s\n", name)
		}
	}
	return nil
}
