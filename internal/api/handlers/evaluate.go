package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"agrivoltaics/internal/api/models"
	"agrivoltaics/internal/config"
	"agrivoltaics/internal/data"
	"agrivoltaics/internal/pipeline"
	"agrivoltaics/internal/report"
	"agrivoltaics/internal/store"

	"github.com/gin-gonic/gin"
)

var errNoArchive = errors.New("run archive is not configured")

// EvaluateHandler runs single evaluations and serves archived runs.
type EvaluateHandler struct {
	engine  *pipeline.Engine
	sites   *SiteHandler
	archive *store.Archive // nil disables saving and the runs endpoints
	cache   *data.ResultCache
	pdf     *report.PDFRenderer
}

func NewEvaluateHandler(engine *pipeline.Engine, sites *SiteHandler, archive *store.Archive) *EvaluateHandler {
	return &EvaluateHandler{
		engine:  engine,
		sites:   sites,
		archive: archive,
		cache:   data.GetCache(),
		pdf:     report.NewPDFRenderer(),
	}
}

// Evaluate handles POST /api/v1/evaluate
func (h *EvaluateHandler) Evaluate(c *gin.Context) {
	var req models.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Save && h.archive == nil {
		writeError(c, errNoArchive)
		return
	}

	cfg, err := buildConfig(h.sites, req)
	if err != nil {
		writeError(c, err)
		return
	}
	in, err := cfg.Inputs()
	if err != nil {
		writeError(c, err)
		return
	}

	res, cached, err := h.run(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := toResponse(cfg.OutputName(), in, res)
	resp.Cached = cached
	if req.Save {
		id, err := h.archive.Save(c.Request.Context(), resp.Name, in, res)
		if err != nil {
			writeError(c, err)
			return
		}
		resp.ID = id
	}
	c.JSON(http.StatusOK, resp)
}

// Compare handles POST /api/v1/evaluate/compare
func (h *EvaluateHandler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	out := models.CompareResponse{Comparison: make([]models.ComparisonResult, 0, len(req.Variations))}
	for _, v := range req.Variations {
		r := models.ComparisonResult{Name: v.Name}

		res, err := h.evaluateVariation(c.Request.Context(), req.Base, v)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				writeError(c, err)
				return
			}
			_, detail := errorDetail(err)
			r.Error = &detail
		} else {
			econ := res.Economics
			r.Economics = &econ
			r.AnnualOutputKWh = res.AnnualOutputKWh()
			r.MeanCropImpact = res.MeanCropImpact()
		}
		out.Comparison = append(out.Comparison, r)
	}
	c.JSON(http.StatusOK, out)
}

func (h *EvaluateHandler) evaluateVariation(ctx context.Context, base models.EvaluateRequest, v models.Variation) (*pipeline.Result, error) {
	req := base
	req.Name = v.Name
	req.Site = base.Site.Then(v.Site)
	if v.Crop != "" {
		req.Crop = v.Crop
	}
	if v.SubsidyEUR != nil {
		req.SubsidyEUR = *v.SubsidyEUR
	}
	if v.DeficitOnly != nil {
		req.DeficitOnly = *v.DeficitOnly
	}

	cfg, err := buildConfig(h.sites, req)
	if err != nil {
		return nil, err
	}
	in, err := cfg.Inputs()
	if err != nil {
		return nil, err
	}
	res, _, err := h.run(ctx, in)
	return res, err
}

// ListRuns handles GET /api/v1/runs
func (h *EvaluateHandler) ListRuns(c *gin.Context) {
	if h.archive == nil {
		writeError(c, errNoArchive)
		return
	}
	limit := 50
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			badRequest(c, fmt.Errorf("limit must be a positive integer"))
			return
		}
		limit = n
	}
	runs, err := h.archive.List(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if runs == nil {
		runs = []store.RunSummary{}
	}
	c.JSON(http.StatusOK, models.RunListResponse{Runs: runs})
}

// GetRun handles GET /api/v1/runs/:id
func (h *EvaluateHandler) GetRun(c *gin.Context) {
	run, err := h.loadRun(c)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := toResponse(run.Name, run.Inputs, run.Result)
	resp.ID = run.ID
	c.JSON(http.StatusOK, models.RunResponse{EvaluateResponse: resp, CreatedAt: run.CreatedAt})
}

// DeleteRun handles DELETE /api/v1/runs/:id
func (h *EvaluateHandler) DeleteRun(c *gin.Context) {
	if h.archive == nil {
		writeError(c, errNoArchive)
		return
	}
	if err := h.archive.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetReport handles GET /api/v1/runs/:id/report?format=md|html|pdf
func (h *EvaluateHandler) GetReport(c *gin.Context) {
	run, err := h.loadRun(c)
	if err != nil {
		writeError(c, err)
		return
	}
	title := run.Name
	if title == "" {
		title = "Agrivoltaic evaluation " + run.ID
	}
	md := report.Markdown(title, run.Inputs, run.Result)

	format := c.DefaultQuery("format", "md")
	switch format {
	case "md", "markdown":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(md))
		return
	case "html", "pdf":
	default:
		badRequest(c, fmt.Errorf("unknown report format %q (want md, html or pdf)", format))
		return
	}

	page, err := report.HTML(title, md)
	if err != nil {
		writeError(c, err)
		return
	}
	if format == "html" {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
		return
	}
	pdf, err := h.pdf.Render(c.Request.Context(), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", run.ID+".pdf"))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *EvaluateHandler) loadRun(c *gin.Context) (*store.Run, error) {
	if h.archive == nil {
		return nil, errNoArchive
	}
	return h.archive.Get(c.Request.Context(), c.Param("id"))
}

// run evaluates in, consulting the result cache first.
func (h *EvaluateHandler) run(ctx context.Context, in pipeline.Inputs) (*pipeline.Result, bool, error) {
	key, keyErr := data.CacheKey(in, h.engine.SolarOptions())
	if keyErr == nil {
		if res, ok := h.cache.Get(key); ok {
			return res, true, nil
		}
	}
	res, err := h.engine.Run(ctx, in)
	if err != nil {
		return nil, false, err
	}
	if keyErr == nil {
		h.cache.Set(key, res)
	}
	return res, false, nil
}

// buildConfig layers the request over the site preset (if any) and the
// reference scenario, then validates the result.
func buildConfig(sites *SiteHandler, req models.EvaluateRequest) (*config.Config, error) {
	cfg := config.Default()
	cfg.Site.Name = ""
	cfg.Output.Name = req.Name
	if req.SiteFile != "" {
		preset, err := sites.Load(req.SiteFile)
		if err != nil {
			return nil, err
		}
		cfg.Site = preset.Apply(cfg.Site)
	}
	cfg.Site = req.Site.Apply(cfg.Site)
	if req.Crop != "" {
		cfg.Crop = req.Crop
	}
	cfg.Financial.SubsidyEUR = req.SubsidyEUR
	cfg.Financial.Assumptions = req.Assumptions.WithDefaults()
	cfg.Usage = req.Usage
	cfg.Output.DeficitOnly = req.DeficitOnly

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func toResponse(name string, in pipeline.Inputs, res *pipeline.Result) models.EvaluateResponse {
	resp := models.EvaluateResponse{
		Name:      name,
		Crop:      in.Crop,
		Mounting:  string(in.Site.Mounting),
		Monthly:   make([]models.MonthlyRow, 0, len(res.Monthly)),
		Economics: res.Economics,
	}
	for _, r := range res.Monthly {
		resp.Monthly = append(resp.Monthly, models.MonthlyRow{
			Month:           r.Month,
			EnergyOutputKWh: r.EnergyOutputKWh,
			PanelIrradiance: r.PanelIrradiance,
			CropIrradiance:  r.CropIrradiance,
			EnergyUsageKWh:  r.EnergyUsageKWh,
			EnergyExportKWh: r.EnergyExportKWh,
			CropImpact:      r.CropImpact,
			CropMinimum:     r.CropMinimum,
			CropMaximum:     r.CropMaximum,
			Stage:           string(r.Stage),
		})
	}
	return resp
}
