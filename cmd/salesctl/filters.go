package main

import (
	"salesdash/internal/export"

	"github.com/spf13/cobra"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List the regions, states and cities that can be selected",
	Long: `Lists the candidate values of each hierarchy level within the date range.
States are narrowed by --region, cities by --region and --state.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := runQuery()
		if err != nil {
			return err
		}

		c := report.Candidates
		t := export.Table{Name: "Filters", Columns: []string{"Level", "Value"}}
		for _, v := range c.Regions {
			t.Rows = append(t.Rows, []string{"Region", v})
		}
		for _, v := range c.States {
			t.Rows = append(t.Rows, []string{"State", v})
		}
		for _, v := range c.Cities {
			t.Rows = append(t.Rows, []string{"City", v})
		}
		return render(cmd.OutOrStdout(), format, c, t)
	},
}
