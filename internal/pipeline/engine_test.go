package pipeline

import (
	"context"
	"errors"
	"testing"

	"agrivoltaics/internal/agriculture"
	"agrivoltaics/internal/economics"
	"agrivoltaics/internal/model"
	"agrivoltaics/internal/solar"
	"agrivoltaics/internal/usage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func exampleInputs() Inputs {
	return Inputs{
		Site: model.Site{
			Latitude:      36,
			Longitude:     14.5,
			Elevation:     10,
			Height:        3,
			Azimuth:       180,
			Tilt:          30,
			RowWidth:      4,
			Pitch:         9,
			Area:          100000,
			PanelArea:     2.42,
			RatedPower:    580,
			LifetimeYears: 30,
			Mounting:      model.MountingFixed,
		},
		Crop:        "potatoes",
		Assumptions: economics.DefaultAssumptions(),
	}
}

func TestRunBuildsTwelveRowsInMonthOrder(t *testing.T) {
	res, err := New(solar.DefaultOptions()).Run(context.Background(), exampleInputs())
	require.NoError(t, err)
	require.Len(t, res.Monthly, model.MonthsPerYear)

	for i, row := range res.Monthly {
		assert.Equal(t, model.MonthNames[i], row.Month)
		assert.Greater(t, row.EnergyOutputKWh, 0.0)
	}
	assert.Equal(t, agriculture.StageDormant, res.Monthly[7].Stage)
	assert.Zero(t, res.Monthly[7].CropImpact)

	// June gets more light under the panels than January.
	assert.Greater(t, res.Monthly[5].CropIrradiance, res.Monthly[0].CropIrradiance)

	e := res.Economics
	assert.InDelta(t, res.AnnualOutputKWh(), e.AnnualExportKWh, 1e-6)
	assert.InDelta(t, 10651.97, e.CapacityKW, 0.01)
	assert.InDelta(t, 372819.1, e.OMCostPerYear, 0.1)
	assert.InDelta(t, 69.94, e.LCOE, 1.5)
	assert.InDelta(t, 5.56, e.ROI, 0.3)

	// January is vegetative: about 44 W/m^2 reach the crop against 108.5 needed.
	assert.Equal(t, agriculture.StageVegetative, res.Monthly[0].Stage)
	assert.InDelta(t, -0.0645, res.Monthly[0].CropImpact, 0.002)
}

func TestRunExportIsOutputMinusUsage(t *testing.T) {
	in := exampleInputs()
	load := make([]float64, model.MonthsPerYear)
	for i := range load {
		load[i] = float64(1000 * (i + 1))
	}
	in.Usage = usage.Profile{MonthlyKWh: load}

	res, err := New(solar.DefaultOptions()).Run(context.Background(), in)
	require.NoError(t, err)

	var want float64
	for i, row := range res.Monthly {
		assert.Equal(t, load[i], row.EnergyUsageKWh)
		assert.InDelta(t, row.EnergyOutputKWh-load[i], row.EnergyExportKWh, 1e-9)
		want += row.EnergyExportKWh
	}
	assert.InDelta(t, want, res.Economics.AnnualExportKWh, 1e-6)
}

func TestRunDeficitOnly(t *testing.T) {
	in := exampleInputs()
	full, err := New(solar.DefaultOptions()).Run(context.Background(), in)
	require.NoError(t, err)

	in.DeficitOnly = true
	clipped, err := New(solar.DefaultOptions()).Run(context.Background(), in)
	require.NoError(t, err)

	for i := range clipped.Monthly {
		assert.LessOrEqual(t, clipped.Monthly[i].CropImpact, 0.0)
		if full.Monthly[i].CropImpact < 0 {
			assert.Equal(t, full.Monthly[i].CropImpact, clipped.Monthly[i].CropImpact)
		}
	}
	assert.Equal(t, full.Economics, clipped.Economics)
}

func TestRunUnsupportedCrop(t *testing.T) {
	in := exampleInputs()
	in.Crop = "wheat"

	_, err := New(solar.DefaultOptions()).Run(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, agriculture.ErrUnsupportedCrop))
}

func TestRunInvalidSite(t *testing.T) {
	in := exampleInputs()
	in.Site.Pitch = 3

	_, err := New(solar.DefaultOptions()).Run(context.Background(), in)
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "row_width", verr.Field)
}

func TestRunZeroExport(t *testing.T) {
	in := exampleInputs()
	load := make([]float64, model.MonthsPerYear)
	for i := range load {
		load[i] = 1e9
	}
	in.Usage = usage.Profile{MonthlyKWh: load}

	_, err := New(solar.DefaultOptions()).Run(context.Background(), in)
	assert.ErrorIs(t, err, economics.ErrZeroExport)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(solar.DefaultOptions()).Run(ctx, exampleInputs())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunRecordsStageSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	_, err := New(solar.DefaultOptions(), WithTracerProvider(tp)).Run(context.Background(), exampleInputs())
	require.NoError(t, err)

	spans := rec.Ended()
	require.Len(t, spans, 5)

	names := make([]string, 0, len(spans))
	for _, s := range spans {
		names = append(names, s.Name())
	}
	assert.ElementsMatch(t, []string{
		"pipeline.run",
		"solar.estimate",
		"usage.estimate",
		"agriculture.evaluate",
		"economics.evaluate",
	}, names)

	root := spans[len(spans)-1]
	assert.Equal(t, "pipeline.run", root.Name())
	for _, s := range spans[:len(spans)-1] {
		assert.Equal(t, root.SpanContext().SpanID(), s.Parent().SpanID())
	}
}
