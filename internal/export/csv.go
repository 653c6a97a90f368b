package export

import (
	"encoding/csv"
	"io"
)

// WriteCSV writes the table as comma separated values with a header row.
func WriteCSV(w io.Writer, t Table) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := csvWriter.Write(row); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}
