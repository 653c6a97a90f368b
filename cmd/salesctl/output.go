package main

import (
	"fmt"
	"io"

	"salesdash/internal/export"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
	formatCSV   = "csv"
)

// render writes value as json or yaml, or t as an aligned table or csv.
func render(w io.Writer, format string, value interface{}, t export.Table) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	case formatCSV:
		return export.WriteCSV(w, t)
	case formatTable:
		table := tablewriter.NewWriter(w)
		table.SetAutoFormatHeaders(false)
		table.SetHeader(t.Columns)
		table.AppendBulk(t.Rows)
		table.Render()
		return nil
	default:
		return fmt.Errorf("unknown format %q, expected table, json, yaml or csv", format)
	}
}
