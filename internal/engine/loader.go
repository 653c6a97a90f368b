package engine

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"
	"unicode"

	applog "salesdash/internal/log"
	"salesdash/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// LoadOptions controls how a source file becomes a dataset.
type LoadOptions struct {
	// Strict rejects the whole file on the first row that cannot be parsed.
	// Otherwise such rows are dropped and counted.
	Strict bool
	Logger *applog.Logger
}

// Dataset is a loaded, immutable ColumnStore plus what is known about its origin.
type Dataset struct {
	Store *ColumnStore
	Info  models.DatasetInfo
}

// --- 1. ENTRY POINTS ---

// LoadFile opens path and loads it according to its extension.
func LoadFile(path string, opts LoadOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Load(filepath.Base(path), f, opts)
}

// Load reads a dataset from r. name is only used for its extension and in
// error messages: .csv/.txt, .xlsx/.xls and .parquet are understood.
func Load(name string, r io.Reader, opts LoadOptions) (*Dataset, error) {
	start := time.Now()
	logger := opts.Logger
	if logger == nil {
		logger = applog.Nop()
	}
	logger = logger.WithComponent(applog.ComponentLoader)

	var (
		table    [][]string
		badLines int
		err      error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv", ".txt":
		table, badLines, err = readDelimited(r)
	case ".xlsx", ".xls":
		table, err = readWorkbook(r)
	case ".parquet":
		table, err = readParquet(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFileType, ext)
	}
	if err != nil {
		return nil, &ParseError{Source: name, Err: err}
	}
	if len(table) == 0 {
		return nil, &ParseError{Source: name, Err: errors.New("no header row")}
	}

	cols, err := mapColumns(table[0])
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = name
		}
		return nil, err
	}

	rows, dropped, err := convertRecords(name, table[1:], cols, opts.Strict)
	if err != nil {
		return nil, err
	}
	dropped += badLines

	store := NewColumnStore(rows)
	info := models.DatasetInfo{
		Source:   name,
		Rows:     store.Len(),
		Dropped:  dropped,
		LoadedAt: time.Now().UTC(),
	}
	if minDate, maxDate, err := DateBounds(store.All()); err == nil {
		info.MinDate, info.MaxDate = minDate, maxDate
	}

	if dropped > 0 {
		logger.Warn("Dropped unparseable rows", applog.FieldSource, name, applog.FieldDropped, dropped)
	}
	logger.Info("Load complete",
		applog.FieldSource, name,
		applog.FieldRows, info.Rows,
		applog.FieldDuration, time.Since(start).Milliseconds())

	return &Dataset{Store: store, Info: info}, nil
}

// --- 2. HEADER MAPPING ---

type field int

const (
	fOrderID field = iota
	fOrderDate
	fShipMode
	fCustomerName
	fSegment
	fCountry
	fCity
	fState
	fRegion
	fCategory
	fSubCategory
	fProductName
	fSales
	fQuantity
	fDiscount
	fProfit
	numFields
)

// Normalized header names: lower case, letters and digits only.
var fieldNames = [numFields]string{
	fOrderID:      "orderid",
	fOrderDate:    "orderdate",
	fShipMode:     "shipmode",
	fCustomerName: "customername",
	fSegment:      "segment",
	fCountry:      "country",
	fCity:         "city",
	fState:        "state",
	fRegion:       "region",
	fCategory:     "category",
	fSubCategory:  "subcategory",
	fProductName:  "productname",
	fSales:        "sales",
	fQuantity:     "quantity",
	fDiscount:     "discount",
	fProfit:       "profit",
}

var requiredFields = []field{
	fOrderDate, fRegion, fState, fCity, fCategory, fSubCategory, fSegment, fSales, fProfit, fQuantity,
}

// columnIndex maps each known field to its position in a record, -1 if absent.
type columnIndex [numFields]int

func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func mapColumns(header []string) (columnIndex, error) {
	var cols columnIndex
	for i := range cols {
		cols[i] = -1
	}
	byName := make(map[string]field, numFields)
	for f, name := range fieldNames {
		byName[name] = field(f)
	}
	for i, h := range header {
		if f, ok := byName[normalizeHeader(h)]; ok && cols[f] == -1 {
			cols[f] = i
		}
	}

	var missing []string
	for _, f := range requiredFields {
		if cols[f] == -1 {
			missing = append(missing, fieldNames[f])
		}
	}
	if len(missing) > 0 {
		return cols, &ParseError{
			Column: strings.Join(missing, ","),
			Err:    errors.New("required column missing"),
		}
	}
	return cols, nil
}

func (c *columnIndex) get(rec []string, f field) string {
	i := c[f]
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// --- 3. ROW CONVERSION ---

// convertRecords turns records into rows on all CPUs. Each worker owns a
// contiguous chunk and writes into its own slots, so dataset order is kept.
func convertRecords(source string, records [][]string, cols columnIndex, strict bool) ([]models.Row, int, error) {
	total := len(records)
	parsed := make([]models.Row, total)
	valid := make([]bool, total)

	numWorkers := runtime.NumCPU()
	chunkSize := (total + numWorkers - 1) / numWorkers
	if chunkSize == 0 {
		chunkSize = 1
	}

	var g errgroup.Group
	for start := 0; start < total; start += chunkSize {
		end := min(start+chunkSize, total)
		g.Go(func() error {
			for i := start; i < end; i++ {
				row, err := cols.parseRecord(records[i])
				if err != nil {
					if strict {
						err.Source = source
						err.Line = i + 2 // 1-based, after the header
						return err
					}
					continue
				}
				parsed[i] = row
				valid[i] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	rows := parsed[:0]
	for i := range parsed {
		if valid[i] {
			rows = append(rows, parsed[i])
		}
	}
	return rows, total - len(rows), nil
}

func (c *columnIndex) parseRecord(rec []string) (models.Row, *ParseError) {
	row := models.Row{
		OrderID:      c.get(rec, fOrderID),
		ShipMode:     c.get(rec, fShipMode),
		CustomerName: c.get(rec, fCustomerName),
		Segment:      c.get(rec, fSegment),
		Country:      c.get(rec, fCountry),
		City:         c.get(rec, fCity),
		State:        c.get(rec, fState),
		Region:       c.get(rec, fRegion),
		Category:     c.get(rec, fCategory),
		SubCategory:  c.get(rec, fSubCategory),
		ProductName:  c.get(rec, fProductName),
	}

	var err error
	if row.OrderDate, err = parseDate(c.get(rec, fOrderDate)); err != nil {
		return row, &ParseError{Column: "Order Date", Err: err}
	}
	if row.Sales, err = parseAmount(c.get(rec, fSales)); err != nil {
		return row, &ParseError{Column: "Sales", Err: err}
	}
	if row.Profit, err = parseAmount(c.get(rec, fProfit)); err != nil {
		return row, &ParseError{Column: "Profit", Err: err}
	}
	if row.Quantity, err = parseQuantity(c.get(rec, fQuantity)); err != nil {
		return row, &ParseError{Column: "Quantity", Err: err}
	}
	if s := c.get(rec, fDiscount); s != "" {
		if row.Discount, err = parseAmount(s); err != nil {
			return row, &ParseError{Column: "Discount", Err: err}
		}
	}
	return row, nil
}

// --- 4. VALUE PARSERS ---

// Layouts seen in Superstore exports (US month-first) and ISO dates.
var dateLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"01-02-06",
	"1-2-06",
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01-02-2006",
	time.RFC3339,
}

// Excel stores dates as days since 1899-12-30.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), nil
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 0 {
		return excelEpoch.AddDate(0, 0, int(serial)), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer("$", "", ",", "").Replace(s)
	if s == "" {
		return decimal.Zero, errors.New("empty amount")
	}
	return decimal.NewFromString(s)
}

// Quantities are stored as int32 columns.
var (
	minQuantity = decimal.NewFromInt(math.MinInt32)
	maxQuantity = decimal.NewFromInt(math.MaxInt32)
)

func parseQuantity(s string) (int, error) {
	d, err := parseAmount(s)
	if err != nil {
		return 0, err
	}
	d = d.Truncate(0)
	if d.LessThan(minQuantity) || d.GreaterThan(maxQuantity) {
		return 0, fmt.Errorf("quantity %q out of range", s)
	}
	return int(d.IntPart()), nil
}
