package pipeline

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"agrivoltaics/internal/agriculture"
	"agrivoltaics/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	res := &Result{}
	for m := 0; m < model.MonthsPerYear; m++ {
		res.Monthly = append(res.Monthly, MonthlyRow{
			Month:           model.MonthNames[m],
			EnergyOutputKWh: 1e6 + float64(m)*12345.678,
			PanelIrradiance: 200 + float64(m)/3,
			CropIrradiance:  50 + float64(m)/7,
			EnergyUsageKWh:  0,
			EnergyExportKWh: 1e6 + float64(m)*12345.678,
			CropImpact:      -0.1 / float64(m+1),
			CropMinimum:     0.1085,
			CropMaximum:     0.2604,
			Stage:           agriculture.StageVegetative,
		})
	}
	res.Economics = model.Economics{
		LCOE:            69.93768,
		ROI:             5.5573,
		OMCostPerYear:   372819.09,
		EnergyPrice:     0.1301,
		CapexEUR:        1.9e7 / 3,
		CapacityKW:      10651.974,
		PanelCount:      18365.472,
		AnnualExportKWh: 1.81e7,
		CapitalRecovery: 0.045576087,
		LifetimeYears:   30,
	}
	return res
}

func TestWriteOutputsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	res := sampleResult()

	monthly, onetime, err := WriteOutputs(dir, "site", res)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "site_monthly.csv"), monthly)
	assert.Equal(t, filepath.Join(dir, "site_onetime.csv"), onetime)

	rows, err := ReadMonthlyCSV(monthly)
	require.NoError(t, err)
	assert.Equal(t, res.Monthly, rows)

	econ, err := ReadEconomicsCSV(onetime)
	require.NoError(t, err)
	assert.Equal(t, res.Economics, *econ)
}

func TestWriteMonthlyHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMonthly(&buf, sampleResult().Monthly))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 13)
	assert.True(t, strings.HasPrefix(lines[0], "Month,Energy output [kWh],"))
	assert.True(t, strings.HasPrefix(lines[1], "January,"))
	assert.True(t, strings.HasSuffix(lines[12], ",vegetative"))
}

func TestReadMonthlyRejectsShortTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMonthly(&buf, sampleResult().Monthly[:11]))

	_, err := ReadMonthly(&buf)
	assert.Error(t, err)
}

func TestReadMonthlyRejectsWrongHeader(t *testing.T) {
	in := strings.NewReader("month,energy\nJanuary,1\n")
	_, err := ReadMonthly(in)
	assert.Error(t, err)
}

func TestReadEconomicsMissingFile(t *testing.T) {
	_, err := ReadEconomicsCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
