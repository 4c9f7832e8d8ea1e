package balance

import (
	"sort"
	"strings"
)

// VolumePoint is one day of training volume for an exercise.
type VolumePoint struct {
	Day       string  `json:"day"`
	Exercise  string  `json:"exercise"`
	Volume    float64 `json:"volume"`
	TopWeight float64 `json:"top_weight"`
	Sets      float64 `json:"sets"`
}

// VolumeHistory sums volume per (day, exercise), oldest first, for charting
// progressive overload. An empty exercise includes every exercise. Exercise
// names match case-insensitively.
func VolumeHistory(workouts []WorkoutEntry, exercise string) []VolumePoint {
	want := strings.ToLower(strings.TrimSpace(exercise))
	type key struct{ day, exercise string }
	points := make(map[key]*VolumePoint)
	for _, w := range workouts {
		name := strings.ToLower(strings.TrimSpace(w.Exercise))
		if want != "" && name != want {
			continue
		}
		k := key{w.Day, name}
		p, ok := points[k]
		if !ok {
			p = &VolumePoint{Day: w.Day, Exercise: strings.TrimSpace(w.Exercise)}
			points[k] = p
		}
		p.Volume += w.Volume
		p.Sets += w.Sets
		if w.Weight > p.TopWeight {
			p.TopWeight = w.Weight
		}
	}

	out := make([]VolumePoint, 0, len(points))
	for _, p := range points {
		p.Volume = round1(p.Volume)
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].Exercise < out[j].Exercise
	})
	return out
}
