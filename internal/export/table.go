// Package export turns dashboard views into flat tables and writes them as
// delimited text or Arrow IPC streams.
package export

import (
	"strconv"

	"salesdash/internal/models"

	"github.com/shopspring/decimal"
)

// Table is a named, flat rendering of one aggregate view.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// FileName is the download name of the table, e.g. "Category.csv".
func (t Table) FileName() string {
	return t.Name + ".csv"
}

func amount(d decimal.Decimal) string {
	return d.String()
}

func CategoryTable(items []models.CategorySales) Table {
	t := Table{Name: "Category", Columns: []string{"Category", "Sales"}, Rows: make([][]string, 0, len(items))}
	for _, it := range items {
		t.Rows = append(t.Rows, []string{it.Category, amount(it.Sales)})
	}
	return t
}

func RegionTable(items []models.RegionSales) Table {
	t := Table{Name: "Region", Columns: []string{"Region", "Sales"}, Rows: make([][]string, 0, len(items))}
	for _, it := range items {
		t.Rows = append(t.Rows, []string{it.Region, amount(it.Sales)})
	}
	return t
}

func SegmentTable(items []models.SegmentSales) Table {
	t := Table{Name: "Segment", Columns: []string{"Segment", "Sales"}, Rows: make([][]string, 0, len(items))}
	for _, it := range items {
		t.Rows = append(t.Rows, []string{it.Segment, amount(it.Sales)})
	}
	return t
}

func MonthlyTable(items []models.MonthlySales) Table {
	t := Table{Name: "Timeseries", Columns: []string{"month_year", "Sales"}, Rows: make([][]string, 0, len(items))}
	for _, it := range items {
		t.Rows = append(t.Rows, []string{it.Period, amount(it.Sales)})
	}
	return t
}

// HierarchyTable flattens the rollup to one line per leaf.
func HierarchyTable(regions []models.HierarchyNode) Table {
	t := Table{Name: "Hierarchy", Columns: []string{"Region", "Category", "Sub-Category", "Sales"}}
	for _, r := range regions {
		for _, c := range r.Children {
			for _, s := range c.Children {
				t.Rows = append(t.Rows, []string{r.Name, c.Name, s.Name, amount(s.Sales)})
			}
		}
	}
	return t
}

// PivotTable writes absent cells as empty fields.
func PivotTable(p *models.Pivot) Table {
	t := Table{Name: "SubCategoryMonths", Columns: []string{"Sub-Category"}}
	if p == nil {
		return t
	}
	t.Columns = append(t.Columns, p.Columns...)
	for i, name := range p.Rows {
		line := make([]string, 0, len(p.Columns)+1)
		line = append(line, name)
		for _, cell := range p.Cells[i] {
			if cell.Valid {
				line = append(line, amount(cell.Decimal))
			} else {
				line = append(line, "")
			}
		}
		t.Rows = append(t.Rows, line)
	}
	return t
}

var rowColumns = []string{
	"Order ID", "Order Date", "Ship Mode", "Customer Name", "Segment", "Country",
	"City", "State", "Region", "Category", "Sub-Category", "Product Name",
	"Sales", "Quantity", "Discount", "Profit",
}

// RowsTable renders raw rows with the Superstore column names.
func RowsTable(rows []models.Row) Table {
	t := Table{Name: "Data", Columns: rowColumns, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.OrderID, r.OrderDate.Format("2006-01-02"), r.ShipMode, r.CustomerName, r.Segment, r.Country,
			r.City, r.State, r.Region, r.Category, r.SubCategory, r.ProductName,
			amount(r.Sales), strconv.Itoa(r.Quantity), amount(r.Discount), amount(r.Profit),
		})
	}
	return t
}
