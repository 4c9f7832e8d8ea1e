package tracker

import (
	"context"
	"fmt"

	"github.com/katsunarinishio0430-cmd/biolog-app/balance"
	"github.com/katsunarinishio0430-cmd/biolog-app/store"
)

// Profile is the body data behind the daily baseline and workout burn.
type Profile struct {
	WeightKg      float64               `json:"weight_kg" validate:"gt=0,lte=500"`
	HeightCm      float64               `json:"height_cm" validate:"gt=0,lte=300"`
	AgeYears      float64               `json:"age_years" validate:"gt=0,lte=130"`
	Sex           balance.Sex           `json:"sex" validate:"oneof=male female"`
	ActivityLevel balance.ActivityLevel `json:"activity_level" validate:"oneof=low moderate high"`
}

// DefaultProfile is used until the user saves one.
func DefaultProfile() Profile {
	return Profile{
		WeightKg:      70,
		HeightCm:      170,
		AgeYears:      30,
		Sex:           balance.SexMale,
		ActivityLevel: balance.ActivityModerate,
	}
}

func (p Profile) BMR() float64 {
	return balance.BasalMetabolicRate(p.WeightKg, p.HeightCm, p.AgeYears, p.Sex)
}

// Baseline is the BMR scaled by the activity factor.
func (p Profile) Baseline() (float64, error) {
	return balance.DailyBaseline(p.BMR(), p.ActivityLevel)
}

func (p Profile) String() string {
	return fmt.Sprintf("%.1f kg, %.0f cm, %.0f y, %s, %s activity",
		p.WeightKg, p.HeightCm, p.AgeYears, p.Sex, p.ActivityLevel)
}

var profileHeader = []string{"weight_kg", "height_cm", "age_years", "sex", "activity_level"}

// Profile returns the saved profile, or DefaultProfile when none is stored.
// A stored row with unusable values also falls back to the default.
func (s *Service) Profile(ctx context.Context) (Profile, error) {
	rows, err := s.store.ReadAll(ctx, store.TableProfile)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	if len(rows) == 0 {
		return DefaultProfile(), nil
	}
	r := rows[len(rows)-1]
	p := Profile{
		WeightKg:      balance.Number(r["weight_kg"]),
		HeightCm:      balance.Number(r["height_cm"]),
		AgeYears:      balance.Number(r["age_years"]),
		Sex:           balance.Sex(balance.Text(r["sex"])),
		ActivityLevel: balance.ActivityLevel(balance.Text(r["activity_level"])),
	}
	if err := validate.Struct(p); err != nil {
		s.log.Warnf("[profile] stored profile is invalid, using defaults: %v", err)
		return DefaultProfile(), nil
	}
	return p, nil
}

func (s *Service) SaveProfile(ctx context.Context, p Profile) error {
	if err := validate.Struct(p); err != nil {
		return invalid(err)
	}
	row := []any{p.WeightKg, p.HeightCm, p.AgeYears, string(p.Sex), string(p.ActivityLevel)}
	if err := s.store.Overwrite(ctx, store.TableProfile, profileHeader, [][]any{row}); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
