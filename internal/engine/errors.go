package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset is returned when a default has to be derived from data
	// and there is none.
	ErrEmptyDataset = errors.New("dataset is empty")

	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// ParseError reports a file that could not be turned into a dataset.
// Line is 1-based and counts the header; it is 0 when the problem is not
// tied to a single line.
type ParseError struct {
	Source string
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("parse %s: line %d, column %q: %v", e.Source, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("parse %s: line %d: %v", e.Source, e.Line, e.Err)
	case e.Column != "":
		return fmt.Sprintf("parse %s: column %q: %v", e.Source, e.Column, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
