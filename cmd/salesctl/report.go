package main

import (
	"fmt"
	"strings"

	"salesdash/internal/engine"
	"salesdash/internal/export"

	"github.com/spf13/cobra"
)

var viewName string

// views maps --view names to the value printed for json/yaml and the flat
// table printed for table/csv.
var views = map[string]func(*engine.Report) (interface{}, export.Table){
	"category": func(r *engine.Report) (interface{}, export.Table) {
		return r.Data.CategorySales, export.CategoryTable(r.Data.CategorySales)
	},
	"region": func(r *engine.Report) (interface{}, export.Table) {
		return r.Data.RegionSales, export.RegionTable(r.Data.RegionSales)
	},
	"segment": func(r *engine.Report) (interface{}, export.Table) {
		return r.Data.SegmentSales, export.SegmentTable(r.Data.SegmentSales)
	},
	"monthly": func(r *engine.Report) (interface{}, export.Table) {
		return r.Data.MonthlySales, export.MonthlyTable(r.Data.MonthlySales)
	},
	"hierarchy": func(r *engine.Report) (interface{}, export.Table) {
		return r.Data.Hierarchy, export.HierarchyTable(r.Data.Hierarchy)
	},
	"subcategory-months": func(r *engine.Report) (interface{}, export.Table) {
		return r.Data.SubCategoryMonths, export.PivotTable(r.Data.SubCategoryMonths)
	},
}

var viewNames = []string{"category", "region", "segment", "monthly", "hierarchy", "subcategory-months"}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print one aggregate view, or the whole dashboard",
	Long: `Prints one aggregate view of the filtered rows. Without --view the whole
dashboard is printed (json/yaml) or every view in turn (table/csv).

Views: ` + strings.Join(viewNames, ", "),
	Example: `  salesctl report -f superstore.csv --view category
  salesctl report -f superstore.csv --region East --state "New York" -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if viewName != "" {
			if _, ok := views[viewName]; !ok {
				return fmt.Errorf("unknown view %q, expected one of %s", viewName, strings.Join(viewNames, ", "))
			}
		}

		report, err := runQuery()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if viewName != "" {
			value, table := views[viewName](report)
			return render(out, format, value, table)
		}

		switch format {
		case formatJSON, formatYAML:
			return render(out, format, report.Data, export.Table{})
		}
		for i, name := range viewNames {
			if i > 0 {
				fmt.Fprintln(out)
			}
			value, table := views[name](report)
			if format == formatTable {
				fmt.Fprintf(out, "== %s ==\n", table.Name)
			}
			if err := render(out, format, value, table); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&viewName, "view", "", "view to print: "+strings.Join(viewNames, "|"))
}
