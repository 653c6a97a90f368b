package engine

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const superstoreHeader = "Row ID,Order ID,Order Date,Ship Date,Ship Mode,Customer ID,Customer Name,Segment,Country,City,State,Postal Code,Region,Product ID,Category,Sub-Category,Product Name,Sales,Quantity,Discount,Profit\n"

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestLoadFile_CSV(t *testing.T) {
	csvContent := superstoreHeader +
		`1,CA-2016-152156,11/8/2016,11/11/2016,Second Class,CG-12520,Claire Gute,Consumer,United States,Henderson,Kentucky,42420,South,FUR-BO-10001798,Furniture,Bookcases,"Bush Somerset Collection Bookcase",261.96,2,0,41.9136` + "\n" +
		`2,CA-2016-152156,11/8/2016,11/11/2016,Second Class,CG-12520,Claire Gute,Consumer,United States,Henderson,Kentucky,42420,South,FUR-CH-10000454,Furniture,Chairs,"Hon Deluxe Fabric Upholstered Stacking Chairs, Rounded Back","1,731.90",3,0,219.582` + "\n" +
		`3,CA-2017-138688,2017-06-12,2017-06-16,Second Class,DV-13045,Darrin Van Huff,Corporate,United States,Los Angeles,California,90036,West,OFF-LA-10000240,Office Supplies,Labels,"Self-Adhesive Address Labels",$14.62,2,0,6.8714` + "\n"

	path := writeTemp(t, "superstore.csv", []byte(csvContent))

	ds, err := LoadFile(path, LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "superstore.csv", ds.Info.Source)
	assert.Equal(t, 3, ds.Info.Rows)
	assert.Equal(t, 0, ds.Info.Dropped)
	assert.Equal(t, day(2016, time.November, 8), ds.Info.MinDate)
	assert.Equal(t, day(2017, time.June, 12), ds.Info.MaxDate)

	rows := ds.Store.All().Rows()
	assert.Equal(t, "CA-2016-152156", rows[0].OrderID)
	assert.Equal(t, "Bookcases", rows[0].SubCategory)
	assert.Equal(t, "Hon Deluxe Fabric Upholstered Stacking Chairs, Rounded Back", rows[1].ProductName)
	assert.True(t, rows[1].Sales.Equal(dec("1731.90")))
	assert.Equal(t, 3, rows[1].Quantity)
	assert.True(t, rows[2].Sales.Equal(dec("14.62")))
	assert.Equal(t, "Los Angeles", rows[2].City)

	// Dictionary Checks
	assert.Equal(t, 2, ds.Store.Regions.Len())
	assert.Equal(t, 2, ds.Store.Categories.Len())
}

func TestLoad_BadLinesAreDropped(t *testing.T) {
	csvContent := superstoreHeader +
		"1,A,1/5/2020,1/6/2020,,,,Consumer,US,NYC,NY,1,East,P,Tech,Phones,X,100,1,0,10\n" +
		"2,B,not a date,1/6/2020,,,,Consumer,US,NYC,NY,1,East,P,Tech,Phones,X,100,1,0,10\n" +
		"3,C,1/5/2020,too,few,fields\n" +
		"4,D,1/7/2020,1/8/2020,,,,Consumer,US,Albany,NY,1,East,P,Tech,Phones,X,abc,1,0,10\n" +
		"5,E,1/9/2020,1/9/2020,,,,Corporate,US,LA,CA,1,West,P,Office,Paper,X,30,3,0,-3\n"

	ds, err := Load("data.csv", strings.NewReader(csvContent), LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Info.Rows)
	assert.Equal(t, 3, ds.Info.Dropped)
	assert.Equal(t, []string{"NYC", "LA"}, cities(ds.Store.All()))
}

func TestLoad_StrictReportsLine(t *testing.T) {
	csvContent := superstoreHeader +
		"1,A,1/5/2020,1/6/2020,,,,Consumer,US,NYC,NY,1,East,P,Tech,Phones,X,100,1,0,10\n" +
		"2,B,1/5/2020,1/6/2020,,,,Consumer,US,NYC,NY,1,East,P,Tech,Phones,X,100,many,0,10\n"

	_, err := Load("data.csv", strings.NewReader(csvContent), LoadOptions{Strict: true})
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "data.csv", pe.Source)
	assert.Equal(t, 3, pe.Line)
	assert.Equal(t, "Quantity", pe.Column)
	assert.Contains(t, err.Error(), `line 3, column "Quantity"`)
}

func TestLoad_MissingColumn(t *testing.T) {
	csvContent := "Order Date,Region,State,City,Category,Sub-Category,Segment,Sales\n" +
		"1/5/2020,East,NY,NYC,Tech,Phones,Consumer,100\n"

	_, err := Load("data.csv", strings.NewReader(csvContent), LoadOptions{})

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "data.csv", pe.Source)
	assert.Equal(t, "profit,quantity", pe.Column)
}

func TestLoad_UnsupportedFileType(t *testing.T) {
	_, err := Load("data.json", strings.NewReader("{}"), LoadOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestLoad_EmptyFile(t *testing.T) {
	_, err := Load("data.csv", strings.NewReader(""), LoadOptions{})

	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestLoad_HeaderOnlyIsEmptyDataset(t *testing.T) {
	ds, err := Load("data.csv", strings.NewReader(superstoreHeader), LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Info.Rows)
	assert.True(t, ds.Info.MinDate.IsZero())

	_, err = Run(ds.Store, Query{})
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestLoad_Encodings(t *testing.T) {
	header := "Order Date,Region,State,City,Category,Sub-Category,Segment,Sales,Quantity,Profit\n"

	t.Run("latin-1", func(t *testing.T) {
		content := []byte(header + "1/5/2020,East,Quebec,Montr\xe9al,Tech,Phones,Consumer,10,1,1\n")
		ds, err := Load("data.csv", bytes.NewReader(content), LoadOptions{})
		require.NoError(t, err)
		assert.Equal(t, "Montréal", ds.Store.All().Row(0).City)
	})

	t.Run("utf-8 with bom", func(t *testing.T) {
		content := append([]byte{0xEF, 0xBB, 0xBF}, []byte(header+"1/5/2020,East,Quebec,Montréal,Tech,Phones,Consumer,10,1,1\n")...)
		ds, err := Load("data.csv", bytes.NewReader(content), LoadOptions{})
		require.NoError(t, err)
		assert.Equal(t, "Montréal", ds.Store.All().Row(0).City)
		assert.Equal(t, day(2020, time.January, 5), ds.Store.All().Row(0).OrderDate)
	})
}

func TestLoad_Excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{
		"Order Date", "Region", "State", "City", "Category", "Sub-Category", "Segment", "Sales", "Quantity", "Profit",
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{
		"2020-01-05", "East", "NY", "NYC", "Tech", "Phones", "Consumer", 100.5, 2, 10,
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{
		"2020-02-10", "West", "CA", "LA", "Office", "Paper", "Corporate", 30, 1, -3,
	}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ds, err := Load("Superstore.xlsx", buf, LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, ds.Info.Rows)

	r := ds.Store.All().Row(0)
	assert.Equal(t, day(2020, time.January, 5), r.OrderDate)
	assert.True(t, r.Sales.Equal(dec("100.5")))
	assert.Equal(t, 2, r.Quantity)
	assert.True(t, salesOf(ds.Store.All()).Equal(dec("130.5")))
}

func TestLoadFile_LegacyXLS(t *testing.T) {
	ds, err := LoadFile(filepath.Join("testdata", "superstore.xls"), LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "superstore.xls", ds.Info.Source)
	require.Equal(t, 4, ds.Info.Rows)
	assert.Equal(t, 0, ds.Info.Dropped)
	assert.Equal(t, day(2016, time.June, 12), ds.Info.MinDate)
	assert.Equal(t, day(2017, time.January, 2), ds.Info.MaxDate)

	rows := ds.Store.All().Rows()
	// Date formatted RK cell.
	assert.Equal(t, day(2016, time.November, 8), rows[0].OrderDate)
	assert.Equal(t, "Bush Somerset Collection Bookcase", rows[0].ProductName)
	assert.True(t, rows[0].Sales.Equal(dec("261.96")))
	assert.Equal(t, 2, rows[0].Quantity)
	assert.Equal(t, "South", rows[0].Region)

	// Date stored as a plain serial number.
	assert.Equal(t, day(2017, time.January, 2), rows[3].OrderDate)
	assert.Equal(t, "Montréal", rows[3].City)
	assert.True(t, rows[3].Discount.Equal(dec("0.2")))
	assert.True(t, rows[3].Profit.Equal(dec("-10.25")))

	assert.True(t, salesOf(ds.Store.All()).Equal(dec("1109.02")))
}

func TestLoad_DamagedXLS(t *testing.T) {
	content := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 504)...)

	var ds *Dataset
	var err error
	require.NotPanics(t, func() {
		ds, err = Load("Superstore.xls", bytes.NewReader(content), LoadOptions{})
	})
	assert.Nil(t, ds)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "Superstore.xls", pe.Source)
}

func TestLoad_OOXMLNamedXLS(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{
		"Order Date", "Region", "State", "City", "Category", "Sub-Category", "Segment", "Sales", "Quantity", "Profit",
	}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{
		"2020-01-05", "East", "NY", "NYC", "Tech", "Phones", "Consumer", 100.5, 2, 10,
	}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ds, err := Load("Superstore.xls", buf, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Info.Rows)
}

func TestLoad_QuantityOutOfRangeIsDropped(t *testing.T) {
	header := "Order Date,Region,State,City,Category,Sub-Category,Segment,Sales,Quantity,Profit\n"
	content := header +
		"1/5/2020,East,NY,NYC,Tech,Phones,Consumer,10,2147483648,1\n" +
		"1/6/2020,East,NY,NYC,Tech,Phones,Consumer,10,3,1\n"

	ds, err := Load("data.csv", strings.NewReader(content), LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Info.Rows)
	assert.Equal(t, 1, ds.Info.Dropped)
	assert.Equal(t, 3, ds.Store.All().Row(0).Quantity)

	_, err = Load("data.csv", strings.NewReader(content), LoadOptions{Strict: true})
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "Quantity", pe.Column)
	assert.Equal(t, 2, pe.Line)
}

func TestLoad_Parquet(t *testing.T) {
	type Row struct {
		OrderDate   string  `parquet:"order_date"`
		Region      string  `parquet:"region"`
		State       string  `parquet:"state"`
		City        string  `parquet:"city"`
		Category    string  `parquet:"category"`
		SubCategory string  `parquet:"sub_category"`
		Segment     string  `parquet:"segment"`
		Sales       float64 `parquet:"sales"`
		Quantity    int64   `parquet:"quantity"`
		Profit      float64 `parquet:"profit"`
	}

	var buf bytes.Buffer
	writer := parquet.NewGenericWriter[Row](&buf)
	_, err := writer.Write([]Row{
		{"2020-01-05", "East", "NY", "NYC", "Tech", "Phones", "Consumer", 100.5, 2, 10},
		{"2020-02-10", "West", "CA", "LA", "Office", "Paper", "Corporate", 30, 1, -3},
	})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	ds, err := Load("sales.parquet", &buf, LoadOptions{})
	require.NoError(t, err)
	require.Equal(t, 2, ds.Info.Rows)

	r := ds.Store.All().Row(1)
	assert.Equal(t, "LA", r.City)
	assert.Equal(t, day(2020, time.February, 10), r.OrderDate)
	assert.True(t, r.Profit.Equal(dec("-3")))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"11/8/2016", day(2016, time.November, 8)},
		{"1/2/06", day(2006, time.January, 2)},
		{"2017-06-12", day(2017, time.June, 12)},
		{"2017-06-12 13:45:00", day(2017, time.June, 12)},
		{"43831", day(2020, time.January, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseDate("")
	assert.Error(t, err)
	_, err = parseDate("yesterday")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	got, err := parseAmount("$1,234.56")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("1234.56")))

	got, err = parseAmount("-0.5")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("-0.5")))

	_, err = parseAmount("")
	assert.Error(t, err)

	n, err := parseQuantity("3.0")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = parseQuantity("2147483647")
	require.NoError(t, err)
	assert.Equal(t, 2147483647, n)

	_, err = parseQuantity("2147483648")
	assert.Error(t, err)
	_, err = parseQuantity("-2147483649")
	assert.Error(t, err)
	_, err = parseQuantity("1e12")
	assert.Error(t, err)
}
