package tracker

import (
	"context"
	"fmt"

	"github.com/katsunarinishio0430-cmd/biolog-app/balance"
	"github.com/katsunarinishio0430-cmd/biolog-app/store"
)

// Refresh is the outcome of a summary rebuild.
type Refresh struct {
	Rows           []balance.DailySummaryRow `json:"rows"`
	BaseMetabolism float64                   `json:"base_metabolism"`
	Warnings       []string                  `json:"warnings,omitempty"`
}

// RefreshSummary reloads both logs, aggregates them and replaces the summary
// table. Any read failure aborts before the summary is touched. Concurrent
// refreshes are not coordinated; the last overwrite wins.
func (s *Service) RefreshSummary(ctx context.Context) (Refresh, error) {
	workouts, wDrift, err := s.Workouts(ctx)
	if err != nil {
		return Refresh{}, err
	}
	meals, mDrift, err := s.Meals(ctx)
	if err != nil {
		return Refresh{}, err
	}
	p, err := s.Profile(ctx)
	if err != nil {
		return Refresh{}, err
	}
	base, err := p.Baseline()
	if err != nil {
		return Refresh{}, fmt.Errorf("baseline: %w", err)
	}

	warnings := append(driftWarnings(store.TableWorkouts, wDrift), driftWarnings(store.TableMeals, mDrift)...)
	for _, w := range warnings {
		s.log.Warnf("[summary] %s", w)
	}

	rows := balance.Aggregate(workouts, meals, base)
	if err := s.store.Overwrite(ctx, store.TableSummary, balance.SummaryHeader, balance.SummaryValues(rows)); err != nil {
		return Refresh{}, fmt.Errorf("write summary: %w", err)
	}
	s.log.Infof("[summary] refreshed %d days (%d workouts, %d meals)", len(rows), len(workouts), len(meals))
	return Refresh{Rows: rows, BaseMetabolism: base, Warnings: warnings}, nil
}

// Summary reads the stored summary table, newest day first. It does not
// recompute anything.
func (s *Service) Summary(ctx context.Context) ([]balance.DailySummaryRow, error) {
	rows, err := s.store.ReadAll(ctx, store.TableSummary)
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}
	return balance.DecodeSummary(rows), nil
}

// RecentSummary returns at most n of the newest summary rows.
func (s *Service) RecentSummary(ctx context.Context, n int) ([]balance.DailySummaryRow, error) {
	rows, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows, nil
}

func driftWarnings(table string, d balance.Drift) []string {
	var out []string
	for _, col := range d.MissingColumns {
		out = append(out, fmt.Sprintf("%s: column %q missing, treated as zero", table, col))
	}
	if d.SkippedRows > 0 {
		out = append(out, fmt.Sprintf("%s: skipped %d rows without a day", table, d.SkippedRows))
	}
	return out
}
