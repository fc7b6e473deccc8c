package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"dcf_valuation/pkg/core/scenario"
	"dcf_valuation/pkg/core/valuation"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ValuationRun is one saved valuation: the scenario that was asked for, the
// inputs actually used, and the outputs. Optional figures stay nil when the
// provider could not supply them.
type ValuationRun struct {
	ID                string              `json:"id"`
	CreatedAt         time.Time           `json:"created_at"`
	Scenario          scenario.Scenario   `json:"scenario"`
	CashFlowSource    string              `json:"cash_flow_source"` // provider | fallback | manual
	CashFlows         []float64           `json:"cash_flows"`
	Result            valuation.DCFResult `json:"result"`
	Price             *float64            `json:"price,omitempty"`
	MarketCap         *float64            `json:"market_cap,omitempty"`
	FairValuePerShare *float64            `json:"fair_value_per_share,omitempty"`
}

// RunsRepo persists valuation runs. Hybrid: DB (primary) + file (fallback).
type RunsRepo struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewRunsRepo creates a repo. Nil pool falls back to files under dir
// (default .cache/runs).
func NewRunsRepo(pool *pgxpool.Pool, dir string) *RunsRepo {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "runs")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] Check RunsRepo dir: %v\n", err)
		}
	}
	return &RunsRepo{pool: pool, fileDir: dir}
}

// Insert assigns an id and timestamp (when absent) and persists the run.
func (r *RunsRepo) Insert(ctx context.Context, run *ValuationRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	dataJSON, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	if r.pool != nil {
		query := `
			INSERT INTO valuation_runs (id, ticker, created_at, data)
			VALUES ($1, $2, $3, $4)
		`
		_, err = r.pool.Exec(ctx, query, run.ID, run.Scenario.Ticker, run.CreatedAt, dataJSON)
		if err != nil {
			return fmt.Errorf("failed to save run to db: %w", err)
		}
		return nil
	}

	if r.fileDir != "" {
		path := filepath.Join(r.fileDir, run.ID+".json")
		if err := os.WriteFile(path, dataJSON, 0644); err != nil {
			return fmt.Errorf("failed to save run to file: %w", err)
		}
	}

	return nil
}

// Recent returns up to limit runs, newest first.
func (r *RunsRepo) Recent(ctx context.Context, limit int) ([]*ValuationRun, error) {
	if limit <= 0 {
		limit = 20
	}

	if r.pool != nil {
		query := `
			SELECT data
			FROM valuation_runs
			ORDER BY created_at DESC
			LIMIT $1
		`
		rows, err := r.pool.Query(ctx, query, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to query runs: %w", err)
		}
		defer rows.Close()

		var runs []*ValuationRun
		for rows.Next() {
			var dataJSON []byte
			if err := rows.Scan(&dataJSON); err != nil {
				return nil, err
			}
			var run ValuationRun
			if err := json.Unmarshal(dataJSON, &run); err != nil {
				continue
			}
			runs = append(runs, &run)
		}
		return runs, rows.Err()
	}

	if r.fileDir != "" {
		entries, err := os.ReadDir(r.fileDir)
		if err != nil {
			return nil, nil
		}
		var runs []*ValuationRun
		for _, e := range entries {
			if filepath.Ext(e.Name()) != ".json" {
				continue
			}
			raw, err := os.ReadFile(filepath.Join(r.fileDir, e.Name()))
			if err != nil {
				continue
			}
			var run ValuationRun
			if err := json.Unmarshal(raw, &run); err != nil {
				continue
			}
			runs = append(runs, &run)
		}
		sort.Slice(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
		if len(runs) > limit {
			runs = runs[:limit]
		}
		return runs, nil
	}

	return nil, nil
}
