package engine

import (
	"fmt"
	"time"

	"salesdash/internal/models"
)

// Query is one dashboard request: an inclusive date range and a hierarchy
// selection. Zero Start or End means "from the data".
type Query struct {
	Start     time.Time
	End       time.Time
	Selection Selection
}

// Report is the outcome of one query cycle.
type Report struct {
	Start      time.Time
	End        time.Time
	Candidates models.FilterOptions
	Dated      View // date range applied, no selection
	Filtered   View
	Data       *models.DashboardData
}

// Run executes the pipeline:
//
//	store → date range → candidates → hierarchical selection → aggregation
//
// It only fails when a default date bound has to be derived from an empty
// dataset.
func Run(cs *ColumnStore, q Query) (*Report, error) {
	all := cs.All()

	start, end, err := ResolveDateRange(all, q.Start, q.End)
	if err != nil {
		return nil, fmt.Errorf("resolve date range: %w", err)
	}

	dated := FilterByDate(all, start, end)
	filtered := Select(dated, q.Selection)

	return &Report{
		Start:      start,
		End:        end,
		Candidates: Candidates(dated, q.Selection),
		Dated:      dated,
		Filtered:   filtered,
		Data:       Aggregate(filtered),
	}, nil
}
