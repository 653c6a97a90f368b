package engine

import (
	"time"

	"salesdash/internal/models"

	"github.com/shopspring/decimal"
)

// Dictionary maps the distinct values of a dimension to dense IDs (0..N).
type Dictionary struct {
	Values []string
	index  map[string]int32
}

func newDictionary() *Dictionary {
	return &Dictionary{index: make(map[string]int32)}
}

func (d *Dictionary) intern(s string) int32 {
	if id, ok := d.index[s]; ok {
		return id
	}
	id := int32(len(d.Values))
	d.Values = append(d.Values, s)
	d.index[s] = id
	return id
}

// ID returns the dictionary ID of s, if s was seen while loading.
func (d *Dictionary) ID(s string) (int32, bool) {
	id, ok := d.index[s]
	return id, ok
}

func (d *Dictionary) Len() int { return len(d.Values) }

// ColumnStore holds the dataset in Struct-of-Arrays format.
// It is never mutated after NewColumnStore returns, so one store can be
// shared by any number of concurrent queries.
type ColumnStore struct {
	// Data Columns (Flat Arrays)
	Dates      []time.Time
	Sales      []decimal.Decimal
	Profits    []decimal.Decimal
	Quantities []int32

	// Dictionary Encoded IDs (0..N)
	RegionIDs      []int32
	StateIDs       []int32
	CityIDs        []int32
	CategoryIDs    []int32
	SubCategoryIDs []int32
	SegmentIDs     []int32

	// Dictionaries (ID -> String)
	Regions       *Dictionary
	States        *Dictionary
	Cities        *Dictionary
	Categories    *Dictionary
	SubCategories *Dictionary
	Segments      *Dictionary

	rows []models.Row
}

// NewColumnStore encodes rows into columns. Order dates are truncated to
// calendar days in UTC.
func NewColumnStore(rows []models.Row) *ColumnStore {
	n := len(rows)
	cs := &ColumnStore{
		Dates:          make([]time.Time, n),
		Sales:          make([]decimal.Decimal, n),
		Profits:        make([]decimal.Decimal, n),
		Quantities:     make([]int32, n),
		RegionIDs:      make([]int32, n),
		StateIDs:       make([]int32, n),
		CityIDs:        make([]int32, n),
		CategoryIDs:    make([]int32, n),
		SubCategoryIDs: make([]int32, n),
		SegmentIDs:     make([]int32, n),
		Regions:        newDictionary(),
		States:         newDictionary(),
		Cities:         newDictionary(),
		Categories:     newDictionary(),
		SubCategories:  newDictionary(),
		Segments:       newDictionary(),
		rows:           make([]models.Row, n),
	}

	for i, r := range rows {
		r.OrderDate = truncateDay(r.OrderDate)
		cs.rows[i] = r

		cs.Dates[i] = r.OrderDate
		cs.Sales[i] = r.Sales
		cs.Profits[i] = r.Profit
		cs.Quantities[i] = int32(r.Quantity)

		cs.RegionIDs[i] = cs.Regions.intern(r.Region)
		cs.StateIDs[i] = cs.States.intern(r.State)
		cs.CityIDs[i] = cs.Cities.intern(r.City)
		cs.CategoryIDs[i] = cs.Categories.intern(r.Category)
		cs.SubCategoryIDs[i] = cs.SubCategories.intern(r.SubCategory)
		cs.SegmentIDs[i] = cs.Segments.intern(r.Segment)
	}
	return cs
}

func (cs *ColumnStore) Len() int { return len(cs.Dates) }

// All returns a view over every row of the store.
func (cs *ColumnStore) All() View {
	return View{store: cs}
}

// View is a read-only window onto a ColumnStore: the store plus the list of
// physical row indices it exposes. A nil index list means every row.
type View struct {
	store *ColumnStore
	idx   []int32
}

func newSubView(parent View, idx []int32) View {
	return View{store: parent.store, idx: idx}
}

func (v View) Store() *ColumnStore { return v.store }

func (v View) Len() int {
	if v.store == nil {
		return 0
	}
	if v.idx == nil {
		return v.store.Len()
	}
	return len(v.idx)
}

// at maps a view position to a physical row index.
func (v View) at(i int) int32 {
	if v.idx == nil {
		return int32(i)
	}
	return v.idx[i]
}

// Row returns a copy of the i-th row of the view.
func (v View) Row(i int) models.Row {
	return v.store.rows[v.at(i)]
}

// Rows materializes the view, in dataset order.
func (v View) Rows() []models.Row {
	out := make([]models.Row, v.Len())
	for i := range out {
		out[i] = v.Row(i)
	}
	return out
}

// Slice returns rows [offset, offset+limit) of the view, clamped to its length.
func (v View) Slice(offset, limit int) []models.Row {
	n := v.Len()
	if offset >= n || limit <= 0 {
		return []models.Row{}
	}
	end := offset + limit
	if end > n {
		end = n
	}
	out := make([]models.Row, 0, end-offset)
	for i := offset; i < end; i++ {
		out = append(out, v.Row(i))
	}
	return out
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
