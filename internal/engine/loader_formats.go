package engine

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/extrame/xls"
	"github.com/segmentio/parquet-go"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readDelimited reads comma separated text. Files starting with a UTF-8 BOM
// are read as UTF-8, everything else as ISO-8859-1. Lines whose field count
// differs from the header, or that are not valid CSV, are skipped and counted.
func readDelimited(r io.Reader) ([][]string, int, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	} else {
		src = transform.NewReader(br, charmap.ISO8859_1.NewDecoder())
	}

	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}

	table := [][]string{header}
	bad := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var csvErr *csv.ParseError
			if errors.As(err, &csvErr) {
				bad++
				continue
			}
			return nil, 0, err
		}
		if len(rec) != len(header) {
			bad++
			continue
		}
		table = append(table, rec)
	}
	return table, bad, nil
}

// ole2Signature starts every legacy BIFF (.xls) workbook.
var ole2Signature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// readWorkbook picks the reader from the file content, not its extension:
// BIFF workbooks live in an OLE2 container, OOXML ones in a zip.
func readWorkbook(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	if bytes.HasPrefix(data, ole2Signature) {
		return readXLS(data)
	}
	return readExcel(bytes.NewReader(data))
}

// readXLS returns the rows of a BIFF workbook's first sheet. Damaged
// containers can panic inside the decoder, that is reported as an error.
func readXLS(data []byte) (table [][]string, err error) {
	defer func() {
		if p := recover(); p != nil {
			table, err = nil, fmt.Errorf("decode xls: %v", p)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls workbook: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, errors.New("open xls workbook: no worksheet")
	}
	exposeDates(wb)

	sheet := wb.GetSheet(0)
	for _, row := range wb.ReadAllCells(int(sheet.MaxRow) + 1) {
		if len(row) == 0 {
			continue
		}
		table = append(table, row)
	}
	return table, nil
}

// xlsDateFormat reports whether a built-in number format id is a date.
func xlsDateFormat(id uint16) bool {
	return 14 <= id && id <= 17 || id == 22 || 27 <= id && id <= 36 || 50 <= id && id <= 58
}

// exposeDates points every cell style using a built-in date format at a
// registered custom format. The decoder prints the former as "2006.01",
// which drops the day, and the latter as RFC 3339.
func exposeDates(wb *xls.WorkBook) {
	custom := uint16(164)
	for wb.Formats[custom] != nil {
		custom++
	}
	remapped := false
	for _, xf := range wb.Xfs {
		switch x := xf.(type) {
		case *xls.Xf8:
			if xlsDateFormat(x.Format) {
				x.Format, remapped = custom, true
			}
		case *xls.Xf5:
			if xlsDateFormat(x.Format) {
				x.Format, remapped = custom, true
			}
		}
	}
	if remapped {
		wb.Formats[custom] = &xls.Format{}
	}
}

// readExcel returns the rows of the workbook's first sheet as formatted text.
func readExcel(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// readParquet loads a whole parquet file and flattens each row into text,
// in schema column order.
func readParquet(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}

	pqFile, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	fields := pqFile.Schema().Fields()
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = f.Name()
	}
	dateCol := -1
	for i, h := range header {
		if normalizeHeader(h) == fieldNames[fOrderDate] {
			dateCol = i
		}
	}

	reader := parquet.NewReader(pqFile)
	defer reader.Close()

	table := [][]string{header}
	for {
		row := make(map[string]interface{})
		if err := reader.Read(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		rec := make([]string, len(header))
		for i, h := range header {
			rec[i] = parquetText(row[h], i == dateCol)
		}
		table = append(table, rec)
	}
	return table, nil
}

// parquetText renders a decoded parquet value. DATE columns decode to days
// since the Unix epoch.
func parquetText(v interface{}, isDate bool) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC().Format("2006-01-02")
	case int32:
		if isDate {
			return time.Unix(0, 0).UTC().AddDate(0, 0, int(val)).Format("2006-01-02")
		}
		return fmt.Sprintf("%d", val)
	default:
		return fmt.Sprint(val)
	}
}
