package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"agrivoltaics/internal/agriculture"
	"agrivoltaics/internal/economics"
	"agrivoltaics/internal/model"
	"agrivoltaics/internal/solar"
	"agrivoltaics/internal/usage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "agrivoltaics/internal/pipeline"

type Engine struct {
	estimator *solar.Estimator
	tracer    trace.Tracer
	logTiming bool
}

type Option func(*Engine)

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) { e.tracer = tp.Tracer(tracerName) }
}

// WithTiming logs the wall time of each stage.
func WithTiming(on bool) Option {
	return func(e *Engine) { e.logTiming = on }
}

func New(opts solar.Options, options ...Option) *Engine {
	e := &Engine{
		estimator: solar.NewEstimator(opts),
		tracer:    otel.Tracer(tracerName),
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// SolarOptions returns the model assumptions in effect.
func (e *Engine) SolarOptions() solar.Options { return e.estimator.Options() }

// Run evaluates one site: energy output, usage, export, crop impact and
// lifetime economics, in that order. The engine keeps no state between runs.
func (e *Engine) Run(ctx context.Context, in Inputs) (res *Result, err error) {
	ctx, span := e.tracer.Start(ctx, "pipeline.run", trace.WithAttributes(
		attribute.String("crop", in.Crop),
		attribute.String("mounting", string(in.Site.Mounting)),
		attribute.Float64("area_m2", in.Site.Area),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := in.Site.Validate(); err != nil {
		return nil, fmt.Errorf("site config invalid: %w", err)
	}

	var est *solar.Estimate
	if err := e.stage(ctx, "solar.estimate", func(ctx context.Context) (err error) {
		est, err = e.estimator.Estimate(ctx, in.Site)
		return err
	}); err != nil {
		return nil, fmt.Errorf("energy output: %w", err)
	}

	var use model.Monthly
	if err := e.stage(ctx, "usage.estimate", func(context.Context) (err error) {
		use, err = usage.Estimate(in.Usage)
		return err
	}); err != nil {
		return nil, fmt.Errorf("energy usage: %w", err)
	}
	export := est.EnergyKWh.Sub(use)

	var impact *agriculture.Impact
	if err := e.stage(ctx, "agriculture.evaluate", func(context.Context) (err error) {
		impact, err = agriculture.Evaluate(in.Crop, est.CropIrradiance)
		return err
	}); err != nil {
		return nil, fmt.Errorf("crop impact: %w", err)
	}
	cropImpact := impact.Impact
	if in.DeficitOnly {
		cropImpact = agriculture.DeficitOnly(cropImpact)
	}

	var econ *model.Economics
	if err := e.stage(ctx, "economics.evaluate", func(context.Context) (err error) {
		econ, err = economics.Evaluate(economics.InputsForSite(in.Site, export, in.SubsidyEUR), in.Assumptions)
		return err
	}); err != nil {
		return nil, fmt.Errorf("economics: %w", err)
	}

	rows := make([]MonthlyRow, 0, model.MonthsPerYear)
	for m := 0; m < model.MonthsPerYear; m++ {
		rows = append(rows, MonthlyRow{
			Month:           model.MonthNames[m],
			EnergyOutputKWh: est.EnergyKWh[m],
			PanelIrradiance: est.PanelIrradiance[m],
			CropIrradiance:  est.CropIrradiance[m],
			EnergyUsageKWh:  use[m],
			EnergyExportKWh: export[m],
			CropImpact:      cropImpact[m],
			CropMinimum:     impact.Minimum[m],
			CropMaximum:     impact.Maximum[m],
			Stage:           impact.Stages[m],
		})
	}

	span.SetAttributes(
		attribute.Float64("lcoe_eur_per_mwh", econ.LCOE),
		attribute.Float64("annual_export_kwh", econ.AnnualExportKWh),
	)
	return &Result{Monthly: rows, Economics: *econ}, nil
}

func (e *Engine) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := e.tracer.Start(ctx, name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if e.logTiming {
		log.Printf("Pipeline: %s took %s", name, time.Since(start))
	}
	return err
}
