package engine

import (
	"time"
)

// FilterByDate returns the rows of view whose order date lies in
// [start, end], both ends inclusive and compared as calendar days.
// An inverted range is not an error; it simply matches nothing.
func FilterByDate(view View, start, end time.Time) View {
	start, end = truncateDay(start), truncateDay(end)

	n := view.Len()
	indices := make([]int32, 0, n)
	if n == 0 {
		return newSubView(view, indices)
	}
	dates := view.store.Dates
	for i := 0; i < n; i++ {
		j := view.at(i)
		d := dates[j]
		if d.Before(start) || d.After(end) {
			continue
		}
		indices = append(indices, j)
	}
	return newSubView(view, indices)
}

// DateBounds returns the earliest and latest order date of the view.
func DateBounds(view View) (time.Time, time.Time, error) {
	n := view.Len()
	if n == 0 {
		return time.Time{}, time.Time{}, ErrEmptyDataset
	}
	dates := view.store.Dates
	minDate := dates[view.at(0)]
	maxDate := minDate
	for i := 1; i < n; i++ {
		d := dates[view.at(i)]
		if d.Before(minDate) {
			minDate = d
		}
		if d.After(maxDate) {
			maxDate = d
		}
	}
	return minDate, maxDate, nil
}

// ResolveDateRange replaces zero start/end values with the view's own date
// bounds. It only fails when a bound has to be derived from an empty view.
func ResolveDateRange(view View, start, end time.Time) (time.Time, time.Time, error) {
	if !start.IsZero() && !end.IsZero() {
		return truncateDay(start), truncateDay(end), nil
	}
	minDate, maxDate, err := DateBounds(view)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start.IsZero() {
		start = minDate
	}
	if end.IsZero() {
		end = maxDate
	}
	return truncateDay(start), truncateDay(end), nil
}
