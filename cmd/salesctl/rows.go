package main

import (
	"salesdash/internal/export"

	"github.com/spf13/cobra"
)

var rowLimit int

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Print the filtered rows",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := runQuery()
		if err != nil {
			return err
		}
		rows := report.Filtered.Rows()
		if rowLimit > 0 {
			rows = report.Filtered.Slice(0, rowLimit)
		}
		return render(cmd.OutOrStdout(), format, rows, export.RowsTable(rows))
	},
}

func init() {
	rowsCmd.Flags().IntVarP(&rowLimit, "limit", "n", 20, "maximum rows to print, 0 for all")
}
