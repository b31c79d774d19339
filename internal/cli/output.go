package cli

import (
	"encoding/json"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"geman/internal/tag"
)

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func renderTable(cmd *cobra.Command, header []string, rows [][]string) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Options(
		tablewriter.WithHeader(header),
		tablewriter.WithAlignment(tw.MakeAlign(len(header), tw.AlignLeft)),
	)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

// kindsFlag returns every kind when value is empty.
func kindsFlag(value string) ([]tag.Kind, error) {
	if value == "" {
		return tag.Kinds(), nil
	}
	kind, err := tag.ParseKind(value)
	if err != nil {
		return nil, err
	}
	return []tag.Kind{kind}, nil
}
