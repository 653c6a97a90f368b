package api

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"salesdash/internal/engine"
	"salesdash/internal/export"
	applog "salesdash/internal/log"
	"salesdash/internal/models"

	"github.com/labstack/echo/v4"
)

// Options tunes the handler; zero values get defaults.
type Options struct {
	RowPageLimit   int
	MaxUploadBytes int64
	StrictParse    bool
	Logger         *applog.Logger
}

// Handler serves dashboard views for the current dataset. The dataset is
// swapped atomically and never mutated, so requests share it without locks.
type Handler struct {
	data      atomic.Pointer[engine.Dataset]
	rowLimit  int
	maxUpload int64
	strict    bool
	logger    *applog.Logger
}

func NewHandler(data *engine.Dataset, opts Options) *Handler {
	if opts.RowPageLimit <= 0 {
		opts.RowPageLimit = 500
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if opts.Logger == nil {
		opts.Logger = applog.Nop()
	}
	h := &Handler{
		rowLimit:  opts.RowPageLimit,
		maxUpload: opts.MaxUploadBytes,
		strict:    opts.StrictParse,
		logger:    opts.Logger.WithComponent(applog.ComponentHTTP),
	}
	if data != nil {
		h.data.Store(data)
	}
	return h
}

// SetData replaces the dataset served by the API.
func (h *Handler) SetData(data *engine.Dataset) {
	h.data.Store(data)
}

// SetDataIfEmpty installs data only while no dataset is being served, so a
// slow startup load never replaces an upload. It reports whether data won.
func (h *Handler) SetDataIfEmpty(data *engine.Dataset) bool {
	return h.data.CompareAndSwap(nil, data)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/health", h.GetHealth)
	api.GET("/dataset", h.GetDataset)
	api.POST("/dataset", h.UploadDataset)
	api.GET("/filters", h.GetFilters)
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/rows", h.GetRows)

	sales := api.Group("/sales")
	sales.GET("/category", h.viewHandler(func(r *engine.Report) (interface{}, export.Table) {
		return r.Data.CategorySales, export.CategoryTable(r.Data.CategorySales)
	}))
	sales.GET("/region", h.viewHandler(func(r *engine.Report) (interface{}, export.Table) {
		return r.Data.RegionSales, export.RegionTable(r.Data.RegionSales)
	}))
	sales.GET("/segment", h.viewHandler(func(r *engine.Report) (interface{}, export.Table) {
		return r.Data.SegmentSales, export.SegmentTable(r.Data.SegmentSales)
	}))
	sales.GET("/monthly", h.viewHandler(func(r *engine.Report) (interface{}, export.Table) {
		return r.Data.MonthlySales, export.MonthlyTable(r.Data.MonthlySales)
	}))
	sales.GET("/hierarchy", h.viewHandler(func(r *engine.Report) (interface{}, export.Table) {
		return r.Data.Hierarchy, export.HierarchyTable(r.Data.Hierarchy)
	}))
	sales.GET("/subcategory-months", h.viewHandler(func(r *engine.Report) (interface{}, export.Table) {
		return r.Data.SubCategoryMonths, export.PivotTable(r.Data.SubCategoryMonths)
	}))
}

// --- RESPONSES ---

type dashboardResponse struct {
	Start   string                `json:"start"`
	End     string                `json:"end"`
	Filters models.FilterOptions  `json:"filters"`
	Preview []models.Row          `json:"preview"`
	Data    *models.DashboardData `json:"data"`
}

type filtersResponse struct {
	Start   string               `json:"start"`
	End     string               `json:"end"`
	Filters models.FilterOptions `json:"filters"`
}

// previewRows is the size of the quick-look table on the dashboard.
const previewRows = 5

// --- HANDLERS ---

func (h *Handler) GetHealth(c echo.Context) error {
	status := "ok"
	if h.data.Load() == nil {
		status = "loading"
	}
	return c.JSON(http.StatusOK, map[string]string{"status": status})
}

func (h *Handler) GetDataset(c echo.Context) error {
	ds, err := h.dataset()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ds.Info)
}

// UploadDataset replaces the dataset with the multipart "file" upload.
func (h *Handler) UploadDataset(c echo.Context) error {
	logger := h.logger.With(applog.FieldRequestID, c.Response().Header().Get(echo.HeaderXRequestID))

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing form file \"file\"").SetInternal(err)
	}
	if file.Size > h.maxUpload {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file is %d bytes, limit is %d", file.Size, h.maxUpload))
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	ds, err := engine.Load(file.Filename, src, engine.LoadOptions{Strict: h.strict, Logger: logger})
	var parseErr *engine.ParseError
	switch {
	case errors.Is(err, engine.ErrUnsupportedFileType):
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, err.Error()).SetInternal(err)
	case errors.As(err, &parseErr):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, parseErr.Error()).SetInternal(err)
	case err != nil:
		return err
	}

	h.SetData(ds)
	logger.Info("Dataset replaced",
		applog.FieldSource, ds.Info.Source,
		applog.FieldRows, ds.Info.Rows,
		applog.FieldDropped, ds.Info.Dropped)
	return c.JSON(http.StatusCreated, ds.Info)
}

func (h *Handler) GetFilters(c echo.Context) error {
	report, err := h.run(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, filtersResponse{
		Start:   report.Start.Format(dateLayout),
		End:     report.End.Format(dateLayout),
		Filters: report.Candidates,
	})
}

func (h *Handler) GetDashboard(c echo.Context) error {
	report, err := h.run(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardResponse{
		Start:   report.Start.Format(dateLayout),
		End:     report.End.Format(dateLayout),
		Filters: report.Candidates,
		Preview: engine.Preview(report.Dated, previewRows),
		Data:    report.Data,
	})
}

// GetRows returns the filtered rows. JSON is paginated; csv and arrow
// downloads contain every filtered row.
func (h *Handler) GetRows(c echo.Context) error {
	report, err := h.run(c)
	if err != nil {
		return err
	}
	rows := report.Filtered

	switch c.QueryParam("format") {
	case "csv":
		return writeCSV(c, export.RowsTable(rows.Rows()))
	case "arrow":
		c.Response().Header().Set(echo.HeaderContentType, "application/vnd.apache.arrow.stream")
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="Data.arrow"`)
		c.Response().WriteHeader(http.StatusOK)
		return export.WriteArrow(c.Response(), rows.Rows())
	case "", "json":
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "format must be json, csv or arrow")
	}

	total := rows.Len()
	limit, offset := getPaginationParams(c, h.rowLimit)
	if limit > h.rowLimit {
		limit = h.rowLimit
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   rows.Slice(offset, limit),
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// viewHandler serves one aggregate view as JSON, or as a CSV download with
// ?format=csv.
func (h *Handler) viewHandler(pick func(*engine.Report) (interface{}, export.Table)) echo.HandlerFunc {
	return func(c echo.Context) error {
		report, err := h.run(c)
		if err != nil {
			return err
		}
		view, table := pick(report)

		switch c.QueryParam("format") {
		case "csv":
			return writeCSV(c, table)
		case "", "json":
			return c.JSON(http.StatusOK, view)
		default:
			return echo.NewHTTPError(http.StatusBadRequest, "format must be json or csv")
		}
	}
}

// --- HELPERS ---

func (h *Handler) dataset() (*engine.Dataset, error) {
	ds := h.data.Load()
	if ds == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is loading, retry shortly")
	}
	return ds, nil
}

func (h *Handler) run(c echo.Context) (*engine.Report, error) {
	ds, err := h.dataset()
	if err != nil {
		return nil, err
	}
	q, err := parseQuery(c)
	if err != nil {
		return nil, err
	}

	t0 := time.Now()
	report, err := engine.Run(ds.Store, q)
	if errors.Is(err, engine.ErrEmptyDataset) {
		return nil, echo.NewHTTPError(http.StatusUnprocessableEntity, "dataset has no rows to derive a date range from").SetInternal(err)
	}
	if err != nil {
		return nil, err
	}

	h.logger.Debug("Query executed",
		applog.FieldStart, report.Start.Format(dateLayout),
		applog.FieldEnd, report.End.Format(dateLayout),
		applog.FieldRows, report.Filtered.Len(),
		applog.FieldDuration, time.Since(t0).Milliseconds())
	return report, nil
}

func writeCSV(c echo.Context, t export.Table) error {
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", t.FileName()))
	c.Response().WriteHeader(http.StatusOK)
	return export.WriteCSV(c.Response(), t)
}
