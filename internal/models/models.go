package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is one sales transaction as loaded from the source file.
type Row struct {
	OrderID      string          `json:"order_id,omitempty" yaml:"order_id,omitempty"`
	OrderDate    time.Time       `json:"order_date" yaml:"order_date"`
	ShipMode     string          `json:"ship_mode,omitempty" yaml:"ship_mode,omitempty"`
	CustomerName string          `json:"customer_name,omitempty" yaml:"customer_name,omitempty"`
	Segment      string          `json:"segment" yaml:"segment"`
	Country      string          `json:"country,omitempty" yaml:"country,omitempty"`
	City         string          `json:"city" yaml:"city"`
	State        string          `json:"state" yaml:"state"`
	Region       string          `json:"region" yaml:"region"`
	Category     string          `json:"category" yaml:"category"`
	SubCategory  string          `json:"sub_category" yaml:"sub_category"`
	ProductName  string          `json:"product_name,omitempty" yaml:"product_name,omitempty"`
	Sales        decimal.Decimal `json:"sales" yaml:"sales"`
	Quantity     int             `json:"quantity" yaml:"quantity"`
	Discount     decimal.Decimal `json:"discount" yaml:"discount"`
	Profit       decimal.Decimal `json:"profit" yaml:"profit"`
}

type DashboardData struct {
	RowCount          int             `json:"row_count" yaml:"row_count"`
	TotalSales        decimal.Decimal `json:"total_sales" yaml:"total_sales"`
	TotalProfit       decimal.Decimal `json:"total_profit" yaml:"total_profit"`
	TotalQuantity     int64           `json:"total_quantity" yaml:"total_quantity"`
	CategorySales     []CategorySales `json:"category_sales" yaml:"category_sales"`
	RegionSales       []RegionSales   `json:"region_sales" yaml:"region_sales"`
	SegmentSales      []SegmentSales  `json:"segment_sales" yaml:"segment_sales"`
	MonthlySales      []MonthlySales  `json:"monthly_sales" yaml:"monthly_sales"`
	Hierarchy         []HierarchyNode `json:"hierarchy" yaml:"hierarchy"`
	SubCategoryMonths *Pivot          `json:"sub_category_months" yaml:"sub_category_months"`
}

type CategorySales struct {
	Category string          `json:"category" yaml:"category"`
	Sales    decimal.Decimal `json:"sales" yaml:"sales"`
}

type RegionSales struct {
	Region string          `json:"region" yaml:"region"`
	Sales  decimal.Decimal `json:"sales" yaml:"sales"`
}

type SegmentSales struct {
	Segment string          `json:"segment" yaml:"segment"`
	Sales   decimal.Decimal `json:"sales" yaml:"sales"`
}

// MonthlySales is one point of the time series. Period is "YYYY : Mon".
type MonthlySales struct {
	Period string          `json:"month_year" yaml:"month_year"`
	Year   int             `json:"year" yaml:"year"`
	Month  time.Month      `json:"month" yaml:"month"`
	Sales  decimal.Decimal `json:"sales" yaml:"sales"`
}

// HierarchyNode is a Region, Category or Sub-Category node of the rollup.
// Sales is always the sum of the node's children.
type HierarchyNode struct {
	Name     string          `json:"name" yaml:"name"`
	Sales    decimal.Decimal `json:"sales" yaml:"sales"`
	Children []HierarchyNode `json:"children,omitempty" yaml:"children,omitempty"`
}

// Pivot is a Sub-Category x month-name matrix of summed sales.
// Cells[i][j] is invalid when no row matched Rows[i] and Columns[j].
type Pivot struct {
	Rows    []string                `json:"rows" yaml:"rows"`
	Columns []string                `json:"columns" yaml:"columns"`
	Cells   [][]decimal.NullDecimal `json:"cells" yaml:"cells"`
}

type FilterOptions struct {
	Regions []string `json:"regions" yaml:"regions"`
	States  []string `json:"states" yaml:"states"`
	Cities  []string `json:"cities" yaml:"cities"`
}

type DatasetInfo struct {
	Source   string    `json:"source"`
	Rows     int       `json:"rows"`
	Dropped  int       `json:"dropped_rows"`
	MinDate  time.Time `json:"min_date"`
	MaxDate  time.Time `json:"max_date"`
	LoadedAt time.Time `json:"loaded_at"`
}
