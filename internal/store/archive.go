// Package store archives finished evaluations in SQLite so they can be listed
// and compared later.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"agrivoltaics/internal/agriculture"
	"agrivoltaics/internal/model"
	"agrivoltaics/internal/pipeline"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("run not found")

// Fixed width so created_at sorts as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL DEFAULT '',
	crop              TEXT NOT NULL,
	mounting          TEXT NOT NULL,
	created_at        TEXT NOT NULL,
	inputs            TEXT NOT NULL,
	economics         TEXT NOT NULL,
	lcoe              REAL NOT NULL,
	roi               REAL NOT NULL,
	annual_export_kwh REAL NOT NULL,
	capacity_kw       REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at);

CREATE TABLE IF NOT EXISTS monthly_rows (
	run_id            TEXT NOT NULL REFERENCES runs (id) ON DELETE CASCADE,
	month_index       INTEGER NOT NULL,
	month             TEXT NOT NULL,
	energy_output_kwh REAL NOT NULL,
	panel_irradiance  REAL NOT NULL,
	crop_irradiance   REAL NOT NULL,
	energy_usage_kwh  REAL NOT NULL,
	energy_export_kwh REAL NOT NULL,
	crop_impact       REAL NOT NULL,
	crop_minimum      REAL NOT NULL,
	crop_maximum      REAL NOT NULL,
	stage             TEXT NOT NULL,
	PRIMARY KEY (run_id, month_index)
);
`

// Archive is a SQLite-backed run archive. Safe for concurrent use; writes are
// serialized through a single connection.
type Archive struct {
	db *sqlx.DB
}

// Open creates the database file and schema if needed. Use ":memory:" only in
// tests that keep one Archive open.
func Open(path string) (*Archive, error) {
	db, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// RunSummary is one row of the run listing.
type RunSummary struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Crop            string    `db:"crop" json:"crop"`
	Mounting        string    `db:"mounting" json:"mounting"`
	CreatedAt       time.Time `db:"-" json:"created_at"`
	LCOE            float64   `db:"lcoe" json:"lcoe_eur_per_mwh"`
	ROI             float64   `db:"roi" json:"roi_percent"`
	AnnualExportKWh float64   `db:"annual_export_kwh" json:"annual_export_kwh"`
	CapacityKW      float64   `db:"capacity_kw" json:"capacity_kw"`

	CreatedAtRaw string `db:"created_at" json:"-"`
}

// Run is a fully loaded archived evaluation.
type Run struct {
	RunSummary
	Inputs pipeline.Inputs
	Result *pipeline.Result
}

type runRow struct {
	RunSummary
	InputsJSON    string `db:"inputs"`
	EconomicsJSON string `db:"economics"`
}

type monthlyRow struct {
	RunID           string  `db:"run_id"`
	MonthIndex      int     `db:"month_index"`
	Month           string  `db:"month"`
	EnergyOutputKWh float64 `db:"energy_output_kwh"`
	PanelIrradiance float64 `db:"panel_irradiance"`
	CropIrradiance  float64 `db:"crop_irradiance"`
	EnergyUsageKWh  float64 `db:"energy_usage_kwh"`
	EnergyExportKWh float64 `db:"energy_export_kwh"`
	CropImpact      float64 `db:"crop_impact"`
	CropMinimum     float64 `db:"crop_minimum"`
	CropMaximum     float64 `db:"crop_maximum"`
	Stage           string  `db:"stage"`
}

// Save stores one evaluation and returns its new ID.
func (a *Archive) Save(ctx context.Context, name string, in pipeline.Inputs, res *pipeline.Result) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	inputsJSON, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	econJSON, err := json.Marshal(res.Economics)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (id, name, crop, mounting, created_at, inputs, economics, lcoe, roi, annual_export_kwh, capacity_kw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, name, in.Crop, string(in.Site.Mounting), time.Now().UTC().Format(timeFormat),
		string(inputsJSON), string(econJSON),
		res.Economics.LCOE, res.Economics.ROI, res.Economics.AnnualExportKWh, res.Economics.CapacityKW)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for i, r := range res.Monthly {
		_, err := tx.NamedExecContext(ctx, `INSERT INTO monthly_rows (run_id, month_index, month, energy_output_kwh, panel_irradiance,
			crop_irradiance, energy_usage_kwh, energy_export_kwh, crop_impact, crop_minimum, crop_maximum, stage)
			VALUES (:run_id, :month_index, :month, :energy_output_kwh, :panel_irradiance,
			:crop_irradiance, :energy_usage_kwh, :energy_export_kwh, :crop_impact, :crop_minimum, :crop_maximum, :stage)`,
			monthlyRow{
				RunID:           id,
				MonthIndex:      i,
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
		if err != nil {
			return "", fmt.Errorf("insert monthly row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

func (a *Archive) Get(ctx context.Context, id string) (*Run, error) {
	var row runRow
	err := a.db.GetContext(ctx, &row, `SELECT id, name, crop, mounting, created_at, inputs, economics,
		lcoe, roi, annual_export_kwh, capacity_kw FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := row.parseTime(); err != nil {
		return nil, err
	}

	run := &Run{RunSummary: row.RunSummary, Result: &pipeline.Result{}}
	if err := json.Unmarshal([]byte(row.InputsJSON), &run.Inputs); err != nil {
		return nil, fmt.Errorf("decode inputs: %w", err)
	}
	if err := json.Unmarshal([]byte(row.EconomicsJSON), &run.Result.Economics); err != nil {
		return nil, fmt.Errorf("decode economics: %w", err)
	}

	var months []monthlyRow
	if err := a.db.SelectContext(ctx, &months, `SELECT * FROM monthly_rows WHERE run_id = ? ORDER BY month_index`, id); err != nil {
		return nil, err
	}
	if len(months) != model.MonthsPerYear {
		return nil, fmt.Errorf("run %s: want %d monthly rows, got %d", id, model.MonthsPerYear, len(months))
	}
	for _, m := range months {
		run.Result.Monthly = append(run.Result.Monthly, pipeline.MonthlyRow{
			Month:           m.Month,
			EnergyOutputKWh: m.EnergyOutputKWh,
			PanelIrradiance: m.PanelIrradiance,
			CropIrradiance:  m.CropIrradiance,
			EnergyUsageKWh:  m.EnergyUsageKWh,
			EnergyExportKWh: m.EnergyExportKWh,
			CropImpact:      m.CropImpact,
			CropMinimum:     m.CropMinimum,
			CropMaximum:     m.CropMaximum,
			Stage:           agriculture.Stage(m.Stage),
		})
	}
	return run, nil
}

// List returns the newest runs first. limit <= 0 means no limit.
func (a *Archive) List(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = -1
	}
	var out []RunSummary
	err := a.db.SelectContext(ctx, &out, `SELECT id, name, crop, mounting, created_at, lcoe, roi, annual_export_kwh, capacity_kw
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	for i := range out {
		if err := out[i].parseTime(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (a *Archive) Delete(ctx context.Context, id string) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RunSummary) parseTime() error {
	t, err := time.Parse(timeFormat, s.CreatedAtRaw)
	if err != nil {
		return fmt.Errorf("run %s: bad created_at %q: %w", s.ID, s.CreatedAtRaw, err)
	}
	s.CreatedAt = t
	return nil
}
