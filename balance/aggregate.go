// Package balance derives per-day energy-balance summaries from workout and
// meal logs. Everything here is pure: no I/O, no package state.
package balance

import (
	"sort"
	"time"
)

// DayLayout is the calendar-day key format used throughout the logs.
const DayLayout = "2006-01-02"

// WorkoutEntry is one logged set.
type WorkoutEntry struct {
	Timestamp       time.Time `json:"timestamp"`
	Day             string    `json:"day"`
	Exercise        string    `json:"exercise"`
	Weight          float64   `json:"weight"`
	Reps            float64   `json:"reps"`
	Sets            float64   `json:"sets"`
	DurationMinutes float64   `json:"duration_minutes"`
	CaloriesBurned  float64   `json:"calories_burned"`
	Volume          float64   `json:"volume"`
	Notes           string    `json:"notes,omitempty"`
}

// MealEntry is one logged meal. Nutrition fields are zero when estimation
// failed or was skipped.
type MealEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Day       string    `json:"day"`
	MenuName  string    `json:"menu_name"`
	Calories  float64   `json:"calories"`
	Protein   float64   `json:"protein"`
	Fat       float64   `json:"fat"`
	Carbs     float64   `json:"carbs"`
}

// DailySummaryRow is one derived row of the daily summary table.
type DailySummaryRow struct {
	Day            string  `json:"day"`
	Intake         int     `json:"intake"`
	WorkoutBurn    int     `json:"workout_burn"`
	BaseMetabolism int     `json:"base_metabolism"`
	TotalOut       int     `json:"total_out"`
	Balance        int     `json:"balance"`
	ProteinTotal   float64 `json:"protein_total"`
	FatTotal       float64 `json:"fat_total"`
	CarbTotal      float64 `json:"carb_total"`
}

type dayTotals struct {
	intake, burn, protein, fat, carbs float64
}

// Aggregate groups both logs by day and emits one summary row per distinct
// day, newest first. baseMetabolism is applied to every day.
//
// Sums are accumulated unrounded; each field is rounded exactly once. TotalOut
// and Balance are derived from the rounded kcal figures so a row always adds up.
func Aggregate(workouts []WorkoutEntry, meals []MealEntry, baseMetabolism float64) []DailySummaryRow {
	totals := make(map[string]*dayTotals)
	get := func(day string) *dayTotals {
		t, ok := totals[day]
		if !ok {
			t = &dayTotals{}
			totals[day] = t
		}
		return t
	}

	for _, w := range workouts {
		get(w.Day).burn += w.CaloriesBurned
	}
	for _, m := range meals {
		t := get(m.Day)
		t.intake += m.Calories
		t.protein += m.Protein
		t.fat += m.Fat
		t.carbs += m.Carbs
	}

	// Rounded before summing: TotalOut is exactly BaseMetabolism + WorkoutBurn.
	base := roundKcal(baseMetabolism)
	rows := make([]DailySummaryRow, 0, len(totals))
	for day, t := range totals {
		intake := roundKcal(t.intake)
		burn := roundKcal(t.burn)
		totalOut := base + burn
		rows = append(rows, DailySummaryRow{
			Day:            day,
			Intake:         intake,
			WorkoutBurn:    burn,
			BaseMetabolism: base,
			TotalOut:       totalOut,
			Balance:        intake - totalOut,
			ProteinTotal:   round1(t.protein),
			FatTotal:       round1(t.fat),
			CarbTotal:      round1(t.carbs),
		})
	}

	// Day keys are zero-padded YYYY-MM-DD, so string order is date order.
	sort.Slice(rows, func(i, j int) bool { return rows[i].Day > rows[j].Day })
	return rows
}
