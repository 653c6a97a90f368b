package engine

import (
	"time"

	"salesdash/internal/models"

	"github.com/shopspring/decimal"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// exampleRows is the three row dataset used throughout the selector tests.
func exampleRows() []models.Row {
	return []models.Row{
		{OrderDate: day(2020, time.January, 5), Region: "East", State: "NY", City: "NYC", Category: "Tech", SubCategory: "Phones", Segment: "Consumer", Sales: dec("100"), Profit: dec("10"), Quantity: 1},
		{OrderDate: day(2020, time.February, 10), Region: "East", State: "NY", City: "Albany", Category: "Tech", SubCategory: "Phones", Segment: "Corporate", Sales: dec("50"), Profit: dec("5"), Quantity: 2},
		{OrderDate: day(2020, time.March, 15), Region: "West", State: "CA", City: "LA", Category: "Office", SubCategory: "Paper", Segment: "Consumer", Sales: dec("30"), Profit: dec("-3"), Quantity: 3},
	}
}

// wideRows spans several years, regions and sub-categories.
func wideRows() []models.Row {
	return []models.Row{
		{OrderDate: day(2019, time.November, 3), Region: "Central", State: "Texas", City: "Houston", Category: "Furniture", SubCategory: "Chairs", Segment: "Consumer", Sales: dec("200.50"), Profit: dec("20"), Quantity: 2},
		{OrderDate: day(2019, time.November, 28), Region: "Central", State: "Texas", City: "Dallas", Category: "Furniture", SubCategory: "Tables", Segment: "Corporate", Sales: dec("99.50"), Profit: dec("-5"), Quantity: 1},
		{OrderDate: day(2020, time.January, 2), Region: "East", State: "Ohio", City: "Columbus", Category: "Technology", SubCategory: "Phones", Segment: "Home Office", Sales: dec("300"), Profit: dec("45"), Quantity: 3},
		{OrderDate: day(2020, time.November, 11), Region: "Central", State: "Texas", City: "Houston", Category: "Furniture", SubCategory: "Chairs", Segment: "Consumer", Sales: dec("100"), Profit: dec("12"), Quantity: 1},
		{OrderDate: day(2021, time.March, 30), Region: "East", State: "Ohio", City: "Columbus", Category: "Furniture", SubCategory: "Chairs", Segment: "Consumer", Sales: dec("10.25"), Profit: dec("1"), Quantity: 1},
		{OrderDate: day(2021, time.March, 31), Region: "West", State: "Washington", City: "Seattle", Category: "Technology", SubCategory: "Phones", Segment: "Corporate", Sales: dec("49.75"), Profit: dec("9"), Quantity: 5},
	}
}

// salesOf sums the Sales of every row in the view.
func salesOf(v View) decimal.Decimal {
	total := decimal.Zero
	for _, r := range v.Rows() {
		total = total.Add(r.Sales)
	}
	return total
}

func cities(v View) []string {
	out := make([]string, 0, v.Len())
	for _, r := range v.Rows() {
		out = append(out, r.City)
	}
	return out
}
