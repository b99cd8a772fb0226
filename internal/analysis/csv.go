package analysis

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
)

func WriteGridCSVFile(path string, g *Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteGridCSV(f, g)
}

// WriteGridCSV writes one row per grid point in row-major order.
func WriteGridCSV(out io.Writer, g *Grid) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	header := []string{string(g.X.Param)}
	if g.Y != nil {
		header = append(header, string(g.Y.Param))
	}
	header = append(header,
		"Mean energy output [kWh]",
		"Mean crop impact [kW/m^2]",
		"LCOE [EUR/MWh]",
		"ROI [%]",
		"Annual export [kWh]",
		"error",
	)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, p := range g.Points {
		row := []string{fmtFloat(p.X)}
		if g.Y != nil {
			row = append(row, fmtFloat(p.Y))
		}
		row = append(row,
			fmtFloat(p.MeanEnergyKWh),
			fmtFloat(p.MeanCropImpact),
			fmtFloat(p.LCOE),
			fmtFloat(p.ROI),
			fmtFloat(p.AnnualExportKWh),
			p.Err,
		)
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
