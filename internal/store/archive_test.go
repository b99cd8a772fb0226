package store

import (
	"context"
	"path/filepath"
	"testing"

	"agrivoltaics/internal/agriculture"
	"agrivoltaics/internal/model"
	"agrivoltaics/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func sample(lcoe float64) (pipeline.Inputs, *pipeline.Result) {
	in := pipeline.Inputs{
		Site: model.Site{
			Latitude: 36, Longitude: 14.5, Height: 3, Azimuth: 180, Tilt: 30,
			RowWidth: 4, Pitch: 9, Area: 1e5, PanelArea: 2.42, RatedPower: 580,
			LifetimeYears: 30, Mounting: model.MountingSingleAxis,
		},
		Crop:       "potatoes",
		SubsidyEUR: 1000,
	}
	res := &pipeline.Result{Economics: model.Economics{LCOE: lcoe, ROI: 7.5, AnnualExportKWh: 2e7, CapacityKW: 10651.97}}
	for m := 0; m < model.MonthsPerYear; m++ {
		res.Monthly = append(res.Monthly, pipeline.MonthlyRow{
			Month:           model.MonthNames[m],
			EnergyOutputKWh: float64(m+1) * 1000.5,
			EnergyExportKWh: float64(m+1) * 1000.5,
			CropImpact:      -0.01 * float64(m),
			Stage:           agriculture.StageDormant,
		})
	}
	return in, res
}

func TestSaveAndGet(t *testing.T) {
	a := openArchive(t)
	ctx := context.Background()
	in, res := sample(69.94)

	id, err := a.Save(ctx, "malta", in, res)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := a.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "malta", run.Name)
	assert.Equal(t, "potatoes", run.Crop)
	assert.Equal(t, "single_axis", run.Mounting)
	assert.False(t, run.CreatedAt.IsZero())
	assert.Equal(t, in, run.Inputs)
	assert.Equal(t, res.Economics, run.Result.Economics)
	assert.Equal(t, res.Monthly, run.Result.Monthly)
}

func TestGetMissing(t *testing.T) {
	a := openArchive(t)
	_, err := a.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAndDelete(t *testing.T) {
	a := openArchive(t)
	ctx := context.Background()

	ids := map[string]bool{}
	for _, lcoe := range []float64{50, 60, 70} {
		in, res := sample(lcoe)
		id, err := a.Save(ctx, "run", in, res)
		require.NoError(t, err)
		ids[id] = true
	}

	all, err := a.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, r := range all {
		assert.True(t, ids[r.ID])
	}
	assert.False(t, all[0].CreatedAt.Before(all[2].CreatedAt))

	two, err := a.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)

	require.NoError(t, a.Delete(ctx, all[0].ID))
	assert.ErrorIs(t, a.Delete(ctx, all[0].ID), ErrNotFound)
	_, err = a.Get(ctx, all[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)

	rest, err := a.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}
