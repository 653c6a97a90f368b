// salesctl runs dashboard queries against a local sales file and prints the
// resulting views.
package main

import (
	"fmt"
	"os"
	"time"

	"salesdash/internal/engine"
	applog "salesdash/internal/log"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	dataFile  string
	startDate string
	endDate   string
	regions   []string
	states    []string
	cities    []string
	format    string
	strict    bool
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "salesctl",
	Short: "Sales dashboard from the command line",
	Long: `Loads a Superstore style sales file (csv, xlsx or parquet), applies a date
range and a Region/State/City selection, and prints the dashboard views.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		decimal.MarshalJSONWithoutQuotes = true
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&dataFile, "file", "f", "Superstore.xls", "sales file to load")
	pf.StringVar(&startDate, "start", "", "first order date, YYYY-MM-DD (default: earliest in data)")
	pf.StringVar(&endDate, "end", "", "last order date, YYYY-MM-DD (default: latest in data)")
	pf.StringSliceVarP(&regions, "region", "r", nil, "regions to keep (repeatable)")
	pf.StringSliceVarP(&states, "state", "s", nil, "states to keep (repeatable)")
	pf.StringSliceVarP(&cities, "city", "c", nil, "cities to keep (repeatable)")
	pf.StringVarP(&format, "format", "o", formatTable, "output format: table|json|yaml|csv")
	pf.BoolVar(&strict, "strict", false, "fail on the first unparseable row")
	pf.BoolVarP(&verbose, "verbose", "v", false, "log loader progress to stderr")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(filtersCmd)
	rootCmd.AddCommand(rowsCmd)
}

// loadDataset reads --file with logging on stderr when --verbose is set.
func loadDataset() (*engine.Dataset, error) {
	logger := applog.Nop()
	if verbose {
		cfg := applog.DefaultConfig()
		cfg.Component = applog.ComponentCLI
		cfg.Output = os.Stderr
		logger = applog.New(cfg)
	}
	return engine.LoadFile(dataFile, engine.LoadOptions{Strict: strict, Logger: logger})
}

// buildQuery turns the shared flags into an engine query.
func buildQuery() (engine.Query, error) {
	var q engine.Query
	var err error
	if q.Start, err = parseDateFlag("start", startDate); err != nil {
		return q, err
	}
	if q.End, err = parseDateFlag("end", endDate); err != nil {
		return q, err
	}
	q.Selection = engine.Selection{Regions: regions, States: states, Cities: cities}
	return q, nil
}

func parseDateFlag(name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s %q: expected YYYY-MM-DD", name, raw)
	}
	return t, nil
}

// runQuery loads the file and runs the query built from flags.
func runQuery() (*engine.Report, error) {
	q, err := buildQuery()
	if err != nil {
		return nil, err
	}
	ds, err := loadDataset()
	if err != nil {
		return nil, err
	}
	return engine.Run(ds.Store, q)
}
