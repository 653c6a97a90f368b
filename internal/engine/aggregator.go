package engine

import (
	"sort"
	"sync"
	"time"

	"salesdash/internal/models"

	"github.com/shopspring/decimal"
)

// Aggregate computes every dashboard view over the filtered rows.
// The views are independent reductions over an immutable store, so they run
// concurrently.
func Aggregate(view View) *models.DashboardData {
	data := &models.DashboardData{RowCount: view.Len()}

	var wg sync.WaitGroup
	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}
	run(func() { data.TotalSales, data.TotalProfit, data.TotalQuantity = totals(view) })
	run(func() { data.CategorySales = SumByCategory(view) })
	run(func() { data.RegionSales = SumByRegion(view) })
	run(func() { data.SegmentSales = SumBySegment(view) })
	run(func() { data.MonthlySales = MonthlySeries(view) })
	run(func() { data.Hierarchy = HierarchyRollup(view) })
	run(func() { data.SubCategoryMonths = SubCategoryByMonth(view) })
	wg.Wait()

	return data
}

// totals sums Sales, Profit and Quantity over the view in one pass.
func totals(view View) (decimal.Decimal, decimal.Decimal, int64) {
	sales, profit := decimal.Zero, decimal.Zero
	var qty int64
	if view.Len() == 0 {
		return sales, profit, qty
	}
	cs := view.store
	for i := 0; i < view.Len(); i++ {
		j := view.at(i)
		sales = sales.Add(cs.Sales[j])
		profit = profit.Add(cs.Profits[j])
		qty += int64(cs.Quantities[j])
	}
	return sales, profit, qty
}

// ============================================================================
// GROUP-BY-SUM over one dictionary encoded dimension
// ============================================================================

type dimTotal struct {
	name  string
	sales decimal.Decimal
}

// sumByDimension sums Sales per dictionary ID (array indexing, no hashing)
// and returns one entry per ID present in the view, sorted by name.
func sumByDimension(view View, ids func(*ColumnStore) []int32, dict func(*ColumnStore) *Dictionary) []dimTotal {
	if view.Len() == 0 {
		return nil
	}
	cs := view.store
	col, d := ids(cs), dict(cs)

	sums := make([]decimal.Decimal, d.Len())
	seen := make([]bool, d.Len())
	for i := 0; i < view.Len(); i++ {
		j := view.at(i)
		id := col[j]
		sums[id] = sums[id].Add(cs.Sales[j])
		seen[id] = true
	}

	out := make([]dimTotal, 0, d.Len())
	for id, ok := range seen {
		if ok {
			out = append(out, dimTotal{name: d.Values[id], sales: sums[id]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// SumByCategory returns total Sales per Category.
func SumByCategory(view View) []models.CategorySales {
	sums := sumByDimension(view,
		func(cs *ColumnStore) []int32 { return cs.CategoryIDs },
		func(cs *ColumnStore) *Dictionary { return cs.Categories })
	out := make([]models.CategorySales, 0, len(sums))
	for _, s := range sums {
		out = append(out, models.CategorySales{Category: s.name, Sales: s.sales})
	}
	return out
}

// SumByRegion returns total Sales per Region.
func SumByRegion(view View) []models.RegionSales {
	sums := sumByDimension(view,
		func(cs *ColumnStore) []int32 { return cs.RegionIDs },
		func(cs *ColumnStore) *Dictionary { return cs.Regions })
	out := make([]models.RegionSales, 0, len(sums))
	for _, s := range sums {
		out = append(out, models.RegionSales{Region: s.name, Sales: s.sales})
	}
	return out
}

// SumBySegment returns total Sales per customer Segment.
func SumBySegment(view View) []models.SegmentSales {
	sums := sumByDimension(view,
		func(cs *ColumnStore) []int32 { return cs.SegmentIDs },
		func(cs *ColumnStore) *Dictionary { return cs.Segments })
	out := make([]models.SegmentSales, 0, len(sums))
	for _, s := range sums {
		out = append(out, models.SegmentSales{Segment: s.name, Sales: s.sales})
	}
	return out
}

// ============================================================================
// TIME SERIES
// ============================================================================

// MonthlyPeriodLayout formats a calendar month as "2019 : Nov".
const MonthlyPeriodLayout = "2006 : Jan"

// MonthlySeries sums Sales per calendar month, ordered chronologically.
func MonthlySeries(view View) []models.MonthlySales {
	if view.Len() == 0 {
		return []models.MonthlySales{}
	}
	cs := view.store

	// Month index: year*12 + (month-1) keeps chronological order numeric.
	monthRev := make(map[int]decimal.Decimal)
	for i := 0; i < view.Len(); i++ {
		j := view.at(i)
		d := cs.Dates[j]
		key := d.Year()*12 + int(d.Month()) - 1
		monthRev[key] = monthRev[key].Add(cs.Sales[j])
	}

	keys := make([]int, 0, len(monthRev))
	for k := range monthRev {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]models.MonthlySales, 0, len(keys))
	for _, k := range keys {
		year, month := k/12, time.Month(k%12+1)
		out = append(out, models.MonthlySales{
			Period: time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format(MonthlyPeriodLayout),
			Year:   year,
			Month:  month,
			Sales:  monthRev[k],
		})
	}
	return out
}

// ============================================================================
// HIERARCHY ROLLUP: Region → Category → Sub-Category
// ============================================================================

// HierarchyRollup sums Sales for every (Region, Category, Sub-Category)
// triple present in the view and nests them. Each inner node carries the sum
// of its children. Nodes at every level are sorted by name.
func HierarchyRollup(view View) []models.HierarchyNode {
	if view.Len() == 0 {
		return []models.HierarchyNode{}
	}
	cs := view.store
	numCats := int64(cs.Categories.Len())
	numSubs := int64(cs.SubCategories.Len())

	// THE MATRIX: flattened [Region][Category][SubCategory] index.
	// Stored sparsely, only present triples get an entry.
	matrix := make(map[int64]decimal.Decimal)
	for i := 0; i < view.Len(); i++ {
		j := view.at(i)
		idx := (int64(cs.RegionIDs[j])*numCats+int64(cs.CategoryIDs[j]))*numSubs + int64(cs.SubCategoryIDs[j])
		matrix[idx] = matrix[idx].Add(cs.Sales[j])
	}

	regions := make(map[int32]map[int32][]models.HierarchyNode)
	for idx, sales := range matrix {
		// Reverse Math: index -> rid, cid, sid
		sid := int32(idx % numSubs)
		cid := int32((idx / numSubs) % numCats)
		rid := int32(idx / numSubs / numCats)

		cats, ok := regions[rid]
		if !ok {
			cats = make(map[int32][]models.HierarchyNode)
			regions[rid] = cats
		}
		cats[cid] = append(cats[cid], models.HierarchyNode{
			Name:  cs.SubCategories.Values[sid],
			Sales: sales,
		})
	}

	out := make([]models.HierarchyNode, 0, len(regions))
	for rid, cats := range regions {
		region := models.HierarchyNode{Name: cs.Regions.Values[rid]}
		for cid, subs := range cats {
			sortNodes(subs)
			category := models.HierarchyNode{
				Name:     cs.Categories.Values[cid],
				Sales:    sumNodes(subs),
				Children: subs,
			}
			region.Children = append(region.Children, category)
		}
		sortNodes(region.Children)
		region.Sales = sumNodes(region.Children)
		out = append(out, region)
	}
	sortNodes(out)
	return out
}

func sortNodes(nodes []models.HierarchyNode) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
}

func sumNodes(nodes []models.HierarchyNode) decimal.Decimal {
	total := decimal.Zero
	for _, n := range nodes {
		total = total.Add(n.Sales)
	}
	return total
}

// ============================================================================
// PIVOT: Sub-Category x month name
// ============================================================================

// SubCategoryByMonth sums Sales per Sub-Category and calendar month name,
// across years. Rows are sorted by sub-category, columns run January to
// December and only include months that occur. A cell without matching rows
// is left invalid rather than zero.
func SubCategoryByMonth(view View) *models.Pivot {
	pivot := &models.Pivot{
		Rows:    []string{},
		Columns: []string{},
		Cells:   [][]decimal.NullDecimal{},
	}
	if view.Len() == 0 {
		return pivot
	}
	cs := view.store
	numSubs := cs.SubCategories.Len()

	// [SubCategory][Month-1]
	sums := make([][12]decimal.Decimal, numSubs)
	hit := make([][12]bool, numSubs)
	rowSeen := make([]bool, numSubs)
	var monthSeen [12]bool

	for i := 0; i < view.Len(); i++ {
		j := view.at(i)
		sid := cs.SubCategoryIDs[j]
		m := int(cs.Dates[j].Month()) - 1
		sums[sid][m] = sums[sid][m].Add(cs.Sales[j])
		hit[sid][m] = true
		rowSeen[sid] = true
		monthSeen[m] = true
	}

	months := make([]int, 0, 12)
	for m, ok := range monthSeen {
		if ok {
			months = append(months, m)
			pivot.Columns = append(pivot.Columns, time.Month(m+1).String())
		}
	}

	subs := make([]int32, 0, numSubs)
	for sid, ok := range rowSeen {
		if ok {
			subs = append(subs, int32(sid))
		}
	}
	sort.Slice(subs, func(a, b int) bool {
		return cs.SubCategories.Values[subs[a]] < cs.SubCategories.Values[subs[b]]
	})

	for _, sid := range subs {
		pivot.Rows = append(pivot.Rows, cs.SubCategories.Values[sid])
		cells := make([]decimal.NullDecimal, len(months))
		for c, m := range months {
			if hit[sid][m] {
				cells[c] = decimal.NullDecimal{Decimal: sums[sid][m], Valid: true}
			}
		}
		pivot.Cells = append(pivot.Cells, cells)
	}
	return pivot
}

// Preview returns at most n leading rows of the view, the quick look the
// dashboard shows above the pivot.
func Preview(view View, n int) []models.Row {
	return view.Slice(0, n)
}
