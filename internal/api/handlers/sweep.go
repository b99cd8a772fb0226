package handlers

import (
	"context"
	"fmt"
	"net/http"
	"runtime"

	"agrivoltaics/internal/analysis"
	"agrivoltaics/internal/api/models"
	"agrivoltaics/internal/pipeline"

	"github.com/gin-gonic/gin"
)

// MaxSweepPoints bounds the values per axis a request may ask for.
const MaxSweepPoints = 25

// SweepHandler runs parameter sweeps, as one request or streamed over a
// websocket.
type SweepHandler struct {
	engine  *pipeline.Engine
	sites   *SiteHandler
	workers int
}

func NewSweepHandler(engine *pipeline.Engine, sites *SiteHandler) *SweepHandler {
	return &SweepHandler{engine: engine, sites: sites, workers: runtime.GOMAXPROCS(0)}
}

type sweepPlan struct {
	kind      analysis.Kind
	x         analysis.Axis
	y         *analysis.Axis
	in        pipeline.Inputs
	objective analysis.Objective
	top       int
}

// RunSweep handles POST /api/v1/sweep
func (h *SweepHandler) RunSweep(c *gin.Context) {
	var req models.SweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	plan, err := h.prepare(req)
	if err != nil {
		writeError(c, err)
		return
	}
	resp, err := h.execute(c.Request.Context(), plan, nil)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *SweepHandler) prepare(req models.SweepRequest) (*sweepPlan, error) {
	kind, err := analysis.ParseKind(req.Kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	objective, err := analysis.ParseObjective(req.Objective)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	if req.Points < 0 || req.Points > MaxSweepPoints {
		return nil, fmt.Errorf("%w: points must be between 1 and %d", errInvalidRequest, MaxSweepPoints)
	}

	cfg, err := buildConfig(h.sites, req.Base)
	if err != nil {
		return nil, err
	}
	in, err := cfg.Inputs()
	if err != nil {
		return nil, err
	}
	x, y, err := kind.Axes(in.Site, req.Points)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return &sweepPlan{kind: kind, x: x, y: y, in: in, objective: objective, top: req.Top}, nil
}

func (h *SweepHandler) execute(ctx context.Context, plan *sweepPlan, onPoint func(analysis.Point)) (*models.SweepResponse, error) {
	sw := &analysis.Sweeper{Engine: h.engine, Workers: h.workers, OnPoint: onPoint}

	var g *analysis.Grid
	var err error
	if plan.y == nil {
		g, err = sw.Run1D(ctx, plan.in, plan.x)
	} else {
		g, err = sw.Run2D(ctx, plan.in, plan.x, *plan.y)
	}
	if err != nil {
		return nil, err
	}

	ranked := analysis.Rank(g.Points, plan.objective)
	if plan.top > 0 && plan.top < len(ranked) {
		ranked = ranked[:plan.top]
	}
	return &models.SweepResponse{
		Kind:     string(plan.kind),
		X:        g.X,
		Y:        g.Y,
		Summary:  analysis.Summarize(g.Points, plan.objective),
		Rankings: ranked,
	}, nil
}
