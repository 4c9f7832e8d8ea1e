package balance

import (
	"fmt"
	"math"
)

const (
	// DefaultMET is the intensity assumed for a set when no MET is supplied.
	DefaultMET = 6.0
	// CorrectionFactor scales every MET-based burn estimate.
	CorrectionFactor = 1.05
)

// Sex selects the Mifflin-St Jeor constant. Anything other than SexMale uses
// the female constant.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// ActivityLevel is one of the three activity tiers used for the daily baseline.
type ActivityLevel string

const (
	ActivityLow      ActivityLevel = "low"
	ActivityModerate ActivityLevel = "moderate"
	ActivityHigh     ActivityLevel = "high"
)

// activityFactors maps activity tiers to their TDEE multiplier. This is the
// single source of truth for valid activity levels.
var activityFactors = map[ActivityLevel]float64{
	ActivityLow:      1.2,
	ActivityModerate: 1.375,
	ActivityHigh:     1.55,
}

// ActivityFactor returns the multiplier for level and whether level is known.
func ActivityFactor(level ActivityLevel) (float64, bool) {
	f, ok := activityFactors[level]
	return f, ok
}

// EnergyExpenditure estimates kcal burned for a session of durationMinutes at
// the given MET, for a person weighing weightKg. Rounded to one decimal.
func EnergyExpenditure(weightKg, durationMinutes, met float64) float64 {
	return round1(met * weightKg * (durationMinutes / 60) * CorrectionFactor)
}

// BasalMetabolicRate computes BMR via Mifflin-St Jeor.
func BasalMetabolicRate(weightKg, heightCm, ageYears float64, sex Sex) float64 {
	bmr := 10*weightKg + 6.25*heightCm - 5*ageYears
	if sex == SexMale {
		return bmr + 5
	}
	return bmr - 161
}

// DailyBaseline multiplies bmr by the activity factor for level.
func DailyBaseline(bmr float64, level ActivityLevel) (float64, error) {
	f, ok := activityFactors[level]
	if !ok {
		return 0, fmt.Errorf("unknown activity level %q", level)
	}
	return bmr * f, nil
}

// Volume is the progressive-overload proxy for a set: weight × reps × sets.
func Volume(weight, reps, sets float64) float64 {
	return weight * reps * sets
}

// round1 rounds half away from zero to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// roundKcal rounds half away from zero to a whole kcal.
func roundKcal(v float64) int {
	return int(math.Round(v))
}
