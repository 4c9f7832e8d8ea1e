package balance

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Column names of the workout log.
const (
	ColTimestamp       = "timestamp"
	ColDay             = "day"
	ColExercise        = "exercise"
	ColWeight          = "weight"
	ColReps            = "reps"
	ColSets            = "sets"
	ColDurationMinutes = "duration_minutes"
	ColCaloriesBurned  = "calories_burned"
	ColVolume          = "volume"
	ColNotes           = "notes"
)

// Column names of the meal log.
const (
	ColMenuName = "menu_name"
	ColCalories = "calories"
	ColProtein  = "protein"
	ColFat      = "fat"
	ColCarbs    = "carbs"
)

// SummaryHeader is the column order of the derived daily summary table.
var SummaryHeader = []string{
	"day", "intake", "workout_burn", "base_metabolism", "total_out",
	"balance", "protein_total", "fat_total", "carb_total",
}

var (
	workoutNumericCols = []string{ColWeight, ColReps, ColSets, ColDurationMinutes, ColCaloriesBurned}
	mealNumericCols    = []string{ColCalories, ColProtein, ColFat, ColCarbs}
)

// timestampLayouts are tried in order when a timestamp cell is a string.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	DayLayout,
	"2006/01/02",
}

// Drift reports what decoding had to repair in a loaded table.
type Drift struct {
	// MissingColumns lists expected columns absent from every row.
	MissingColumns []string `json:"missing_columns,omitempty"`
	// SkippedRows counts rows with no usable day.
	SkippedRows int `json:"skipped_rows,omitempty"`
}

// Clean reports whether nothing had to be repaired.
func (d Drift) Clean() bool {
	return len(d.MissingColumns) == 0 && d.SkippedRows == 0
}

// DecodeWorkouts converts raw workout-log rows into entries. Absent or
// non-numeric cells count as zero. Volume is recomputed when the stored
// value is missing.
func DecodeWorkouts(rows []map[string]any) ([]WorkoutEntry, Drift) {
	drift := Drift{MissingColumns: missingColumns(rows, workoutNumericCols)}
	out := make([]WorkoutEntry, 0, len(rows))
	for _, r := range rows {
		ts, day, ok := rowDay(r)
		if !ok {
			drift.SkippedRows++
			continue
		}
		e := WorkoutEntry{
			Timestamp:       ts,
			Day:             day,
			Exercise:        Text(r[ColExercise]),
			Weight:          Number(r[ColWeight]),
			Reps:            Number(r[ColReps]),
			Sets:            Number(r[ColSets]),
			DurationMinutes: Number(r[ColDurationMinutes]),
			CaloriesBurned:  Number(r[ColCaloriesBurned]),
			Notes:           Text(r[ColNotes]),
		}
		if _, has := r[ColVolume]; has {
			e.Volume = Number(r[ColVolume])
		} else {
			e.Volume = Volume(e.Weight, e.Reps, e.Sets)
		}
		out = append(out, e)
	}
	return out, drift
}

// DecodeMeals converts raw meal-log rows into entries with the same repair
// policy as DecodeWorkouts.
func DecodeMeals(rows []map[string]any) ([]MealEntry, Drift) {
	drift := Drift{MissingColumns: missingColumns(rows, mealNumericCols)}
	out := make([]MealEntry, 0, len(rows))
	for _, r := range rows {
		ts, day, ok := rowDay(r)
		if !ok {
			drift.SkippedRows++
			continue
		}
		out = append(out, MealEntry{
			Timestamp: ts,
			Day:       day,
			MenuName:  Text(r[ColMenuName]),
			Calories:  Number(r[ColCalories]),
			Protein:   Number(r[ColProtein]),
			Fat:       Number(r[ColFat]),
			Carbs:     Number(r[ColCarbs]),
		})
	}
	return out, drift
}

// WorkoutRecord renders e as a store row.
func WorkoutRecord(e WorkoutEntry) map[string]any {
	return map[string]any{
		ColTimestamp:       e.Timestamp.Format(time.RFC3339),
		ColDay:             e.Day,
		ColExercise:        e.Exercise,
		ColWeight:          e.Weight,
		ColReps:            e.Reps,
		ColSets:            e.Sets,
		ColDurationMinutes: e.DurationMinutes,
		ColCaloriesBurned:  e.CaloriesBurned,
		ColVolume:          e.Volume,
		ColNotes:           e.Notes,
	}
}

// MealRecord renders e as a store row.
func MealRecord(e MealEntry) map[string]any {
	return map[string]any{
		ColTimestamp: e.Timestamp.Format(time.RFC3339),
		ColDay:       e.Day,
		ColMenuName:  e.MenuName,
		ColCalories:  e.Calories,
		ColProtein:   e.Protein,
		ColFat:       e.Fat,
		ColCarbs:     e.Carbs,
	}
}

// SummaryValues renders rows in SummaryHeader column order.
func SummaryValues(rows []DailySummaryRow) [][]any {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{
			r.Day, r.Intake, r.WorkoutBurn, r.BaseMetabolism, r.TotalOut,
			r.Balance, r.ProteinTotal, r.FatTotal, r.CarbTotal,
		})
	}
	return out
}

// DecodeSummary reads rows previously written with SummaryValues. Output is
// re-sorted newest first.
func DecodeSummary(rows []map[string]any) []DailySummaryRow {
	out := make([]DailySummaryRow, 0, len(rows))
	for _, r := range rows {
		day := Text(r["day"])
		if day == "" {
			continue
		}
		out = append(out, DailySummaryRow{
			Day:            day,
			Intake:         roundKcal(Number(r["intake"])),
			WorkoutBurn:    roundKcal(Number(r["workout_burn"])),
			BaseMetabolism: roundKcal(Number(r["base_metabolism"])),
			TotalOut:       roundKcal(Number(r["total_out"])),
			Balance:        roundKcal(Number(r["balance"])),
			ProteinTotal:   round1(Number(r["protein_total"])),
			FatTotal:       round1(Number(r["fat_total"])),
			CarbTotal:      round1(Number(r["carb_total"])),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day > out[j].Day })
	return out
}

// Number coerces a cell to float64. Anything that is not a finite number,
// or a string starting with one, is zero.
func Number(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		f, _ = n.Float64()
	case string:
		f = leadingNumber(n)
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Text coerces a cell to a trimmed string.
func Text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

// leadingNumber parses the numeric prefix of s ("350 kcal" -> 350,
// "1,200" -> 1200). Returns 0 when s has none.
func leadingNumber(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	end := 0
	for i, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || (i == 0 && (r == '-' || r == '+')) {
			end = i + 1
			continue
		}
		break
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return f
}

func rowDay(r map[string]any) (time.Time, string, bool) {
	ts, tsOK := parseTimestamp(r[ColTimestamp])
	if day := Text(r[ColDay]); day != "" {
		if d, err := time.Parse(DayLayout, day); err == nil {
			if !tsOK {
				ts = d
			}
			return ts, d.Format(DayLayout), true
		}
	}
	if !tsOK {
		return time.Time{}, "", false
	}
	return ts, ts.Format(DayLayout), true
}

func parseTimestamp(v any) (time.Time, bool) {
	s := Text(v)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func missingColumns(rows []map[string]any, cols []string) []string {
	if len(rows) == 0 {
		return nil
	}
	var missing []string
	for _, c := range cols {
		found := false
		for _, r := range rows {
			if _, ok := r[c]; ok {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, c)
		}
	}
	return missing
}
