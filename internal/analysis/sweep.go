// Package analysis runs the pipeline over parameter grids: the area sweep and
// the two-dimensional tilt/azimuth and tilt/pitch sweeps.
package analysis

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"

	"agrivoltaics/internal/agriculture"
	"agrivoltaics/internal/model"
	"agrivoltaics/internal/pipeline"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gopkg.in/cheggaaa/pb.v1"
)

// Parameter names a site field a sweep can vary.
type Parameter string

const (
	ParamArea     Parameter = "area"
	ParamTilt     Parameter = "tilt"
	ParamAzimuth  Parameter = "azimuth"
	ParamPitch    Parameter = "pitch"
	ParamRowWidth Parameter = "row_width"
	ParamHeight   Parameter = "height"
)

// Apply sets the parameter on site.
func (p Parameter) Apply(site *model.Site, v float64) error {
	switch p {
	case ParamArea:
		site.Area = v
	case ParamTilt:
		site.Tilt = v
	case ParamAzimuth:
		site.Azimuth = v
	case ParamPitch:
		site.Pitch = v
	case ParamRowWidth:
		site.RowWidth = v
	case ParamHeight:
		site.Height = v
	default:
		return fmt.Errorf("unknown sweep parameter %q", string(p))
	}
	return nil
}

// Axis is one swept parameter and the values it takes.
type Axis struct {
	Param  Parameter `json:"param"`
	Values []float64 `json:"values"`
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Point is the summary of one pipeline run on the grid. A point whose run
// failed carries the error text and zero metrics.
type Point struct {
	I int     `json:"i"`
	J int     `json:"j"`
	X float64 `json:"x"`
	Y float64 `json:"y"`

	MeanEnergyKWh   float64 `json:"mean_energy_kwh"`
	MeanCropImpact  float64 `json:"mean_crop_impact"`
	LCOE            float64 `json:"lcoe_eur_per_mwh"`
	ROI             float64 `json:"roi_percent"`
	AnnualExportKWh float64 `json:"annual_export_kwh"`

	Err string `json:"error,omitempty"`
}

func (p Point) OK() bool { return p.Err == "" }

// Grid holds a finished sweep. Matrices are len(X.Values) by len(Y.Values)
// (one column for a 1D sweep).
type Grid struct {
	X Axis
	Y *Axis

	Energy     *mat.Dense
	CropImpact *mat.Dense
	LCOE       *mat.Dense
	ROI        *mat.Dense

	// Points in row-major grid order.
	Points []Point
}

type Sweeper struct {
	Engine  *pipeline.Engine
	Workers int // defaults to GOMAXPROCS

	// Progress draws a progress bar on stderr.
	Progress bool

	// OnPoint is called once per finished point, from the goroutine that
	// called Run1D or Run2D.
	OnPoint func(Point)
}

func (s *Sweeper) Run1D(ctx context.Context, base pipeline.Inputs, x Axis) (*Grid, error) {
	return s.run(ctx, base, x, nil)
}

func (s *Sweeper) Run2D(ctx context.Context, base pipeline.Inputs, x, y Axis) (*Grid, error) {
	return s.run(ctx, base, x, &y)
}

type job struct {
	i, j int
	x, y float64
}

func (s *Sweeper) run(ctx context.Context, base pipeline.Inputs, x Axis, y *Axis) (*Grid, error) {
	if s.Engine == nil {
		return nil, fmt.Errorf("sweeper has no engine")
	}
	if len(x.Values) == 0 || (y != nil && len(y.Values) == 0) {
		return nil, fmt.Errorf("sweep axis has no values")
	}
	// Reject unknown parameters before starting any work.
	probe := base.Site
	if err := x.Param.Apply(&probe, 0); err != nil {
		return nil, err
	}
	cols := 1
	if y != nil {
		if err := y.Param.Apply(&probe, 0); err != nil {
			return nil, err
		}
		cols = len(y.Values)
	}
	rows := len(x.Values)
	total := rows * cols

	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > total {
		workers = total
	}

	var bar *pb.ProgressBar
	if s.Progress {
		bar = pb.New(total)
		bar.Output = os.Stderr
		bar.ShowTimeLeft = false
		bar.Start()
	}

	jobs := make(chan job, total)
	for i, xv := range x.Values {
		for j := 0; j < cols; j++ {
			jb := job{i: i, j: j, x: xv}
			if y != nil {
				jb.y = y.Values[j]
			}
			jobs <- jb
		}
	}
	close(jobs)

	results := make(chan Point, total)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for jb := range jobs {
				if ctx.Err() != nil {
					return
				}
				results <- s.evaluate(ctx, base, x.Param, y, jb)
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	g := &Grid{
		X:          x,
		Y:          y,
		Energy:     mat.NewDense(rows, cols, nil),
		CropImpact: mat.NewDense(rows, cols, nil),
		LCOE:       mat.NewDense(rows, cols, nil),
		ROI:        mat.NewDense(rows, cols, nil),
		Points:     make([]Point, total),
	}
	failed := 0
	for p := range results {
		g.Points[p.I*cols+p.J] = p
		g.Energy.Set(p.I, p.J, p.MeanEnergyKWh)
		g.CropImpact.Set(p.I, p.J, p.MeanCropImpact)
		g.LCOE.Set(p.I, p.J, p.LCOE)
		g.ROI.Set(p.I, p.J, p.ROI)
		if !p.OK() {
			failed++
		}
		if s.OnPoint != nil {
			s.OnPoint(p)
		}
		if bar != nil {
			bar.Increment()
		}
	}
	if bar != nil {
		bar.Finish()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failed > 0 {
		log.Printf("Sweep: %d of %d points failed", failed, total)
	}
	return g, nil
}

func (s *Sweeper) evaluate(ctx context.Context, base pipeline.Inputs, xp Parameter, y *Axis, jb job) Point {
	p := Point{I: jb.i, J: jb.j, X: jb.x, Y: jb.y}

	in := base
	// Parameters were checked in run; Apply cannot fail here.
	_ = xp.Apply(&in.Site, jb.x)
	if y != nil {
		_ = y.Param.Apply(&in.Site, jb.y)
	}

	res, err := s.Engine.Run(ctx, in)
	if err != nil {
		p.Err = err.Error()
		return p
	}
	impact := res.Column(func(r pipeline.MonthlyRow) float64 { return r.CropImpact })

	p.MeanEnergyKWh = res.MeanEnergyOutputKWh()
	p.MeanCropImpact = agriculture.DeficitOnly(impact).Mean()
	p.LCOE = res.Economics.LCOE
	p.ROI = res.Economics.ROI
	p.AnnualExportKWh = res.Economics.AnnualExportKWh
	return p
}
