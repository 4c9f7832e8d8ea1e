// Package tracker is the application layer: it validates new log entries,
// writes them to the record store and rebuilds the daily summary.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/katsunarinishio0430-cmd/biolog-app/balance"
	"github.com/katsunarinishio0430-cmd/biolog-app/store"
)

var validate = validator.New()

// ErrInvalid marks input rejected by validation.
var ErrInvalid = errors.New("invalid input")

type Service struct {
	store store.Store
	log   *zap.SugaredLogger
	now   func() time.Time
}

func New(s store.Store, log *zap.SugaredLogger) *Service {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{store: s, log: log, now: time.Now}
}

// WorkoutInput is one workout as entered by the user. MET defaults to
// balance.DefaultMET; Timestamp defaults to now.
type WorkoutInput struct {
	Exercise        string    `json:"exercise" validate:"required"`
	Weight          float64   `json:"weight" validate:"gte=0"`
	Reps            float64   `json:"reps" validate:"gte=0"`
	Sets            float64   `json:"sets" validate:"gte=0"`
	DurationMinutes float64   `json:"duration_minutes" validate:"gte=0,lte=1440"`
	MET             float64   `json:"met,omitempty" validate:"gte=0,lte=30"`
	Notes           string    `json:"notes,omitempty"`
	Timestamp       time.Time `json:"timestamp,omitempty"`
}

// MealInput is one meal with its (possibly estimated) nutrition.
type MealInput struct {
	MenuName  string    `json:"menu_name" validate:"required"`
	Calories  float64   `json:"calories" validate:"gte=0"`
	Protein   float64   `json:"protein" validate:"gte=0"`
	Fat       float64   `json:"fat" validate:"gte=0"`
	Carbs     float64   `json:"carbs" validate:"gte=0"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// BuildWorkout validates in and turns it into a log entry, computing the
// burn from the current profile weight.
func (s *Service) BuildWorkout(ctx context.Context, in WorkoutInput) (balance.WorkoutEntry, error) {
	in.Exercise = strings.TrimSpace(in.Exercise)
	if err := validate.Struct(in); err != nil {
		return balance.WorkoutEntry{}, invalid(err)
	}
	p, err := s.Profile(ctx)
	if err != nil {
		return balance.WorkoutEntry{}, err
	}
	met := in.MET
	if met == 0 {
		met = balance.DefaultMET
	}
	ts := s.stamp(in.Timestamp)
	return balance.WorkoutEntry{
		Timestamp:       ts,
		Day:             ts.Format(balance.DayLayout),
		Exercise:        in.Exercise,
		Weight:          in.Weight,
		Reps:            in.Reps,
		Sets:            in.Sets,
		DurationMinutes: in.DurationMinutes,
		CaloriesBurned:  balance.EnergyExpenditure(p.WeightKg, in.DurationMinutes, met),
		Volume:          balance.Volume(in.Weight, in.Reps, in.Sets),
		Notes:           in.Notes,
	}, nil
}

// BuildMeal validates in and turns it into a log entry.
func (s *Service) BuildMeal(in MealInput) (balance.MealEntry, error) {
	in.MenuName = strings.TrimSpace(in.MenuName)
	if err := validate.Struct(in); err != nil {
		return balance.MealEntry{}, invalid(err)
	}
	ts := s.stamp(in.Timestamp)
	return balance.MealEntry{
		Timestamp: ts,
		Day:       ts.Format(balance.DayLayout),
		MenuName:  in.MenuName,
		Calories:  in.Calories,
		Protein:   in.Protein,
		Fat:       in.Fat,
		Carbs:     in.Carbs,
	}, nil
}

// AppendWorkouts writes entries to the workout log in one batch.
func (s *Service) AppendWorkouts(ctx context.Context, entries []balance.WorkoutEntry) error {
	rows := make([]store.Record, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, balance.WorkoutRecord(e))
	}
	if err := s.store.AppendMany(ctx, store.TableWorkouts, rows); err != nil {
		return fmt.Errorf("append workouts: %w", err)
	}
	return nil
}

// LogWorkout builds and appends a single workout.
func (s *Service) LogWorkout(ctx context.Context, in WorkoutInput) (balance.WorkoutEntry, error) {
	e, err := s.BuildWorkout(ctx, in)
	if err != nil {
		return balance.WorkoutEntry{}, err
	}
	if err := s.store.Append(ctx, store.TableWorkouts, balance.WorkoutRecord(e)); err != nil {
		return balance.WorkoutEntry{}, fmt.Errorf("append workout: %w", err)
	}
	return e, nil
}

// LogMeal builds and appends a single meal.
func (s *Service) LogMeal(ctx context.Context, in MealInput) (balance.MealEntry, error) {
	e, err := s.BuildMeal(in)
	if err != nil {
		return balance.MealEntry{}, err
	}
	if err := s.store.Append(ctx, store.TableMeals, balance.MealRecord(e)); err != nil {
		return balance.MealEntry{}, fmt.Errorf("append meal: %w", err)
	}
	return e, nil
}

// Workouts returns the whole workout log in append order.
func (s *Service) Workouts(ctx context.Context) ([]balance.WorkoutEntry, balance.Drift, error) {
	rows, err := s.store.ReadAll(ctx, store.TableWorkouts)
	if err != nil {
		return nil, balance.Drift{}, fmt.Errorf("read workouts: %w", err)
	}
	entries, drift := balance.DecodeWorkouts(rows)
	return entries, drift, nil
}

// Meals returns the whole meal log in append order.
func (s *Service) Meals(ctx context.Context) ([]balance.MealEntry, balance.Drift, error) {
	rows, err := s.store.ReadAll(ctx, store.TableMeals)
	if err != nil {
		return nil, balance.Drift{}, fmt.Errorf("read meals: %w", err)
	}
	entries, drift := balance.DecodeMeals(rows)
	return entries, drift, nil
}

// VolumeHistory returns per-day training volume for exercise, oldest first.
// An empty exercise returns every exercise.
func (s *Service) VolumeHistory(ctx context.Context, exercise string) ([]balance.VolumePoint, error) {
	workouts, _, err := s.Workouts(ctx)
	if err != nil {
		return nil, err
	}
	return balance.VolumeHistory(workouts, exercise), nil
}

func (s *Service) stamp(ts time.Time) time.Time {
	if ts.IsZero() {
		return s.now()
	}
	return ts
}

// invalid turns validator output into an ErrInvalid with a readable message.
func invalid(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}
