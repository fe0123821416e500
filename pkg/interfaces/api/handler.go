package api

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/supplyplan/pkg/application/dto"
	"github.com/vsinha/supplyplan/pkg/application/services/orchestration"
	"github.com/vsinha/supplyplan/pkg/domain/entities"
	"github.com/vsinha/supplyplan/pkg/infrastructure/cache"
	"github.com/vsinha/supplyplan/pkg/infrastructure/events"
	csvrepo "github.com/vsinha/supplyplan/pkg/infrastructure/repositories/csv"
	xlsxrepo "github.com/vsinha/supplyplan/pkg/infrastructure/repositories/xlsx"
)

// Handler serves the dashboard API
type Handler struct {
	workspace  Workspace
	planner    *orchestration.PlanningOrchestrator
	planCache  *cache.PlanCache
	eventStore events.EventStore
	defaults   dto.PlanOptions
	csvLoader  *csvrepo.Loader
	xlsxLoader *xlsxrepo.Loader
	startedAt  time.Time

	// one run at a time, so the latest run always matches the last request
	runMu sync.Mutex
}

// NewHandler creates the API handler. planCache and eventStore may be nil.
func NewHandler(workspace Workspace, planCache *cache.PlanCache, eventStore events.EventStore, defaults dto.PlanOptions) *Handler {
	return &Handler{
		workspace:  workspace,
		planner:    orchestration.NewPlanningOrchestrator(eventStore),
		planCache:  planCache,
		eventStore: eventStore,
		defaults:   defaults,
		csvLoader:  csvrepo.NewLoader(),
		xlsxLoader: xlsxrepo.NewLoader(),
		startedAt:  time.Now(),
	}
}

// RegisterRoutes registers the API routes on a router group
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)

	router.GET("/datasets/:kind", h.GetDataset)
	router.POST("/datasets/:kind", h.UploadDataset)

	router.POST("/runs", h.CreateRun)
	router.GET("/runs/latest", h.GetLatestRun)
	router.GET("/runs/latest/kpis", h.GetKPIs)
	router.GET("/runs/latest/forecasts", h.GetForecasts)
	router.GET("/runs/latest/recommendations", h.GetRecommendations)
	router.GET("/runs/latest/download/:table", h.Download)

	router.GET("/events", h.StreamEvents)
}

// GetStatus reports dataset row counts and the latest run
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	ds, err := h.workspace.Dataset(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	rows := make(gin.H, len(entities.AllDatasetKinds))
	for _, kind := range entities.AllDatasetKinds {
		rows[kind.String()] = ds.Len(kind)
	}

	status := gin.H{
		"datasets": rows,
		"ready":    len(ds.Sales) > 0 && len(ds.Inventory) > 0,
		"uptime":   time.Since(h.startedAt).Round(time.Second).String(),
	}

	latest, err := h.workspace.LatestRun(c.Request.Context())
	switch {
	case err == nil:
		status["latest_run"] = gin.H{
			"run_id":          latest.RunID,
			"generated_at":    latest.GeneratedAt,
			"recommendations": len(latest.Recommendations),
			"issues":          len(latest.Issues),
		}
	case !errors.Is(err, ErrNoRun):
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetDataset reports the row count of one dataset slot
// GET /api/datasets/:kind
func (h *Handler) GetDataset(c *gin.Context) {
	kind, err := entities.ParseDatasetKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ds, err := h.workspace.Dataset(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"dataset": kind.String(), "rows": ds.Len(kind)})
}

// UploadDataset replaces one dataset slot with an uploaded csv or xlsx file
// POST /api/datasets/:kind
func (h *Handler) UploadDataset(c *gin.Context) {
	kind, err := entities.ParseDatasetKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}

	header := files[0]
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open upload"})
		return
	}
	defer file.Close()

	var ds *entities.Dataset
	switch strings.ToLower(filepath.Ext(header.Filename)) {
	case ".csv":
		ds, err = h.csvLoader.ReadDataset(kind, file)
	case ".xlsx":
		ds, err = h.xlsxLoader.ReadDataset(kind, file)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported file type: %s (expected: .csv or .xlsx)", header.Filename)})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.workspace.Replace(c.Request.Context(), kind, ds); err != nil {
		respondError(c, err)
		return
	}

	log.Printf("📂 Replaced %s dataset with %d rows from %s", kind, ds.Len(kind), header.Filename)
	c.JSON(http.StatusOK, gin.H{"dataset": kind.String(), "rows": ds.Len(kind)})
}

// CreateRun plans the workspace dataset. The JSON body overrides the default options field by field.
// POST /api/runs
func (h *Handler) CreateRun(c *gin.Context) {
	opts := h.defaults
	opts.SKUs = append([]entities.SKU(nil), h.defaults.SKUs...)
	if err := c.ShouldBindJSON(&opts); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid options: " + err.Error()})
		return
	}
	opts.Period = opts.Period.Truncate()
	if err := opts.Validate(); err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	ds, err := h.workspace.Dataset(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	for _, kind := range []entities.DatasetKind{entities.SalesDataset, entities.InventoryDataset} {
		if ds.Len(kind) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s dataset has not been uploaded", kind)})
			return
		}
	}

	h.runMu.Lock()
	defer h.runMu.Unlock()

	fingerprint, err := cache.Fingerprint(ds, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	var cached dto.PlanResult
	if h.planCache.Get(ctx, fingerprint, &cached) {
		if err := h.workspace.SaveRun(ctx, &cached); err != nil {
			respondError(c, err)
			return
		}
		c.Header("X-Plan-Cache", "hit")
		c.JSON(http.StatusOK, &cached)
		return
	}

	result, err := h.planner.Run(ctx, ds, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.workspace.SaveRun(ctx, result); err != nil {
		respondError(c, err)
		return
	}
	if h.planCache != nil {
		if err := h.planCache.Set(ctx, fingerprint, result); err != nil {
			log.Printf("⚠️  Failed to cache run %s: %v", result.RunID, err)
		}
	}

	log.Printf("✅ Run %s planned %d SKUs with %d issues", result.RunID, len(result.KPIs), len(result.Issues))
	c.Header("X-Plan-Cache", "miss")
	c.JSON(http.StatusCreated, result)
}

// GetLatestRun returns the filtered latest run
// GET /api/runs/latest
func (h *Handler) GetLatestRun(c *gin.Context) {
	result, ok := h.filteredRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetKPIs returns the KPI table of the latest run
// GET /api/runs/latest/kpis
func (h *Handler) GetKPIs(c *gin.Context) {
	result, ok := h.filteredRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": result.RunID, "kpis": result.KPIs, "summary": result.Summary})
}

// GetForecasts returns the forecasts of the latest run
// GET /api/runs/latest/forecasts
func (h *Handler) GetForecasts(c *gin.Context) {
	result, ok := h.filteredRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"run_id": result.RunID, "forecasts": result.Forecasts})
}

// GetRecommendations returns the reorder recommendations and sourcing options of the latest run
// GET /api/runs/latest/recommendations
func (h *Handler) GetRecommendations(c *gin.Context) {
	result, ok := h.filteredRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":           result.RunID,
		"recommendations":  result.Recommendations,
		"sourcing_options": result.SourcingOptions,
	})
}

// Download exports one table of the latest run, or the whole report with table=report
// GET /api/runs/latest/download/:table?format=csv|xlsx
func (h *Handler) Download(c *gin.Context) {
	result, ok := h.filteredRun(c)
	if !ok {
		return
	}

	name := c.Param("table")
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	report := result.Report()

	var tables []csvrepo.Table
	if name == "report" && format == "xlsx" {
		tables = csvrepo.Tables(report)
	} else {
		table, found := csvrepo.FindTable(report, name)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown table: %s", name)})
			return
		}
		tables = []csvrepo.Table{table}
	}

	switch format {
	case "csv":
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", name))
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Status(http.StatusOK)
		if err := csvrepo.WriteTable(c.Writer, tables[0]); err != nil {
			log.Printf("⚠️  Failed to stream %s.csv: %v", name, err)
		}
	case "xlsx":
		f, err := xlsxrepo.ExportTables(tables)
		if err != nil {
			respondError(c, err)
			return
		}
		defer f.Close()
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", name))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Status(http.StatusOK)
		if err := f.Write(c.Writer); err != nil {
			log.Printf("⚠️  Failed to stream %s.xlsx: %v", name, err)
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid format: %s (expected: csv or xlsx)", format)})
	}
}

// filteredRun loads the latest run and applies the query filters, writing the error response itself
func (h *Handler) filteredRun(c *gin.Context) (*dto.PlanResult, bool) {
	filter, err := parseFilter(c)
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	result, err := h.workspace.LatestRun(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return result.Filter(filter), true
}

// parseFilter reads sku, supplier, from and to. sku and supplier may repeat or hold comma separated lists.
func parseFilter(c *gin.Context) (dto.FilterOptions, error) {
	var filter dto.FilterOptions
	for _, s := range splitQuery(c.QueryArray("sku")) {
		filter.SKUs = append(filter.SKUs, entities.SKU(s))
	}
	for _, s := range splitQuery(c.QueryArray("supplier")) {
		filter.Suppliers = append(filter.Suppliers, entities.SupplierID(s))
	}

	var err error
	if filter.From, err = parseQueryDate(c, "from"); err != nil {
		return filter, err
	}
	if filter.To, err = parseQueryDate(c, "to"); err != nil {
		return filter, err
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return filter, &dto.OptionsError{Field: "to", Reason: "must not be before from"}
	}
	return filter, nil
}

func splitQuery(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseQueryDate(c *gin.Context, key string) (time.Time, error) {
	value := c.Query(key)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(entities.DateLayout, value)
	if err != nil {
		return time.Time{}, &dto.OptionsError{Field: key, Reason: fmt.Sprintf("invalid date %q (expected YYYY-MM-DD)", value)}
	}
	return t, nil
}

// respondError maps input problems to 400, a missing run to 404 and everything else to 500
func respondError(c *gin.Context, err error) {
	var formatErr *entities.DataFormatError
	var optionsErr *dto.OptionsError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &formatErr), errors.As(err, &optionsErr):
		status = http.StatusBadRequest
	case errors.Is(err, ErrNoRun):
		status = http.StatusNotFound
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
