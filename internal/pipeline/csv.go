package pipeline

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"agrivoltaics/internal/agriculture"
	"agrivoltaics/internal/model"
)

var monthlyHeader = []string{
	"Month",
	"Energy output [kWh]",
	"Irradiation panels [W/m^2]",
	"Irradiation crops [W/m^2]",
	"Energy usage [kWh]",
	"Energy export [kWh]",
	"Crop impact [kW/m^2]",
	"Minimum crop [kW/m^2]",
	"Maximum crop [kW/m^2]",
	"Stage",
}

var economicsHeader = []string{
	"LCOE [EUR/MWh]",
	"ROI [%]",
	"Operation & Maintenance cost [EUR/y]",
	"Energy price [EUR/kWh]",
	"CAPEX [EUR]",
	"Subsidy [EUR]",
	"Capacity [kW]",
	"Panels",
	"Annual export [kWh]",
	"Capital recovery factor",
	"Lifetime [y]",
}

// WriteOutputs writes <name>_monthly.csv and <name>_onetime.csv into dir and
// returns their paths.
func WriteOutputs(dir, name string, res *Result) (monthlyPath, onetimePath string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	monthlyPath = filepath.Join(dir, name+"_monthly.csv")
	onetimePath = filepath.Join(dir, name+"_onetime.csv")
	if err := WriteMonthlyCSV(monthlyPath, res.Monthly); err != nil {
		return "", "", err
	}
	if err := WriteEconomicsCSV(onetimePath, res.Economics); err != nil {
		return "", "", err
	}
	return monthlyPath, onetimePath, nil
}

func WriteMonthlyCSV(path string, rows []MonthlyRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteMonthly(f, rows)
}

func WriteMonthly(out io.Writer, rows []MonthlyRow) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write(monthlyHeader); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{
			r.Month,
			fmtFloat(r.EnergyOutputKWh),
			fmtFloat(r.PanelIrradiance),
			fmtFloat(r.CropIrradiance),
			fmtFloat(r.EnergyUsageKWh),
			fmtFloat(r.EnergyExportKWh),
			fmtFloat(r.CropImpact),
			fmtFloat(r.CropMinimum),
			fmtFloat(r.CropMaximum),
			string(r.Stage),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func WriteEconomicsCSV(path string, e model.Economics) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteEconomics(f, e)
}

func WriteEconomics(out io.Writer, e model.Economics) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	if err := w.Write(economicsHeader); err != nil {
		return err
	}
	row := []string{
		fmtFloat(e.LCOE),
		fmtFloat(e.ROI),
		fmtFloat(e.OMCostPerYear),
		fmtFloat(e.EnergyPrice),
		fmtFloat(e.CapexEUR),
		fmtFloat(e.SubsidyEUR),
		fmtFloat(e.CapacityKW),
		fmtFloat(e.PanelCount),
		fmtFloat(e.AnnualExportKWh),
		fmtFloat(e.CapitalRecovery),
		fmtFloat(e.LifetimeYears),
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func ReadMonthlyCSV(path string) ([]MonthlyRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadMonthly(f)
}

// ReadMonthly parses a table written by WriteMonthly. It requires the
// header and exactly twelve rows in calendar order.
func ReadMonthly(in io.Reader) ([]MonthlyRow, error) {
	records, err := readTable(in, monthlyHeader)
	if err != nil {
		return nil, err
	}
	if len(records) != model.MonthsPerYear {
		return nil, fmt.Errorf("monthly table: want %d rows, got %d", model.MonthsPerYear, len(records))
	}

	rows := make([]MonthlyRow, 0, len(records))
	for i, rec := range records {
		if rec[0] != model.MonthNames[i] {
			return nil, fmt.Errorf("monthly table row %d: want %s, got %q", i+1, model.MonthNames[i], rec[0])
		}
		var vals [8]float64
		for j := range vals {
			if vals[j], err = strconv.ParseFloat(rec[j+1], 64); err != nil {
				return nil, fmt.Errorf("monthly table row %d column %q: %w", i+1, monthlyHeader[j+1], err)
			}
		}
		rows = append(rows, MonthlyRow{
			Month:           rec[0],
			EnergyOutputKWh: vals[0],
			PanelIrradiance: vals[1],
			CropIrradiance:  vals[2],
			EnergyUsageKWh:  vals[3],
			EnergyExportKWh: vals[4],
			CropImpact:      vals[5],
			CropMinimum:     vals[6],
			CropMaximum:     vals[7],
			Stage:           agriculture.Stage(rec[9]),
		})
	}
	return rows, nil
}

func ReadEconomicsCSV(path string) (*model.Economics, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadEconomics(f)
}

func ReadEconomics(in io.Reader) (*model.Economics, error) {
	records, err := readTable(in, economicsHeader)
	if err != nil {
		return nil, err
	}
	if len(records) != 1 {
		return nil, fmt.Errorf("economics table: want 1 row, got %d", len(records))
	}
	var vals [11]float64
	for j := range vals {
		if vals[j], err = strconv.ParseFloat(records[0][j], 64); err != nil {
			return nil, fmt.Errorf("economics table column %q: %w", economicsHeader[j], err)
		}
	}
	return &model.Economics{
		LCOE:            vals[0],
		ROI:             vals[1],
		OMCostPerYear:   vals[2],
		EnergyPrice:     vals[3],
		CapexEUR:        vals[4],
		SubsidyEUR:      vals[5],
		CapacityKW:      vals[6],
		PanelCount:      vals[7],
		AnnualExportKWh: vals[8],
		CapitalRecovery: vals[9],
		LifetimeYears:   vals[10],
	}, nil
}

func readTable(in io.Reader, header []string) ([][]string, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = len(header)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty table")
	}
	for i, h := range header {
		if records[0][i] != h {
			return nil, fmt.Errorf("unexpected column %d: want %q, got %q", i+1, h, records[0][i])
		}
	}
	return records[1:], nil
}

// fmtFloat uses the shortest representation that parses back to the same value.
func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
