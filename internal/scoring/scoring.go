// Package scoring holds the pure task-scoring formulas: the 1-100 priority
// score and the weighted T-shirt size estimator. Nothing here touches the
// clock or the database; the reference date is always an explicit parameter.
package scoring

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Tier is an ordinal T-shirt size, XS least complex.
type Tier string

const (
	TierXS Tier = "XS"
	TierS  Tier = "S"
	TierM  Tier = "M"
	TierL  Tier = "L"
	TierXL Tier = "XL"
)

var tierOrder = map[Tier]int{TierXS: 0, TierS: 1, TierM: 2, TierL: 3, TierXL: 4}

// Less reports whether t orders before other (XS < S < M < L < XL).
func (t Tier) Less(other Tier) bool {
	return tierOrder[t] < tierOrder[other]
}

// PriorityScore computes the 1-100 priority score for a task.
// raw = 100 - days_until_deadline*5 - duration_hours*3, clamped to [1,100].
// A nil deadline contributes no urgency adjustment (0 days); a past deadline
// yields negative days and therefore a higher raw score. A nil duration is
// treated as 0, and a negative duration is floored to 0 so it can never
// inflate the score; callers reject negative durations before getting here.
func PriorityScore(today time.Time, deadline *time.Time, durationHours *int) int {
	days := 0
	if deadline != nil {
		days = daysBetween(today, *deadline)
	}
	hours := 0
	if durationHours != nil && *durationHours > 0 {
		hours = *durationHours
	}
	raw := 100 - days*5 - hours*3
	return clamp(raw, 1, 100)
}

// daysBetween returns whole calendar days from a's date to b's date in UTC.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	start := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	end := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start) / (24 * time.Hour))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SizeInput carries the task attributes the size estimator reads.
type SizeInput struct {
	Title           string
	Description     string
	DurationHours   *int
	Deadline        *time.Time
	HasDependencies bool
}

// Weights configures the size estimator's factor caps, thresholds and
// keyword list. The boundary values are heuristic, so they are configuration
// rather than constants baked into the formula.
type Weights struct {
	DurationMax       int      `yaml:"duration_max" json:"duration_max"`
	DurationScaleHrs  int      `yaml:"duration_scale_hours" json:"duration_scale_hours"`
	KeywordPoints     int      `yaml:"keyword_points" json:"keyword_points"`
	KeywordMax        int      `yaml:"keyword_max" json:"keyword_max"`
	LengthCharsPerPt  int      `yaml:"length_chars_per_point" json:"length_chars_per_point"`
	LengthMax         int      `yaml:"length_max" json:"length_max"`
	DependencyBonus   int      `yaml:"dependency_bonus" json:"dependency_bonus"`
	UrgencyBands      [4]int   `yaml:"urgency_bands" json:"urgency_bands"` // ≤1d, ≤3d, ≤7d, ≤14d
	Keywords          []string `yaml:"keywords" json:"keywords"`
	TierBounds        [4]int   `yaml:"tier_bounds" json:"tier_bounds"` // XS≤, S≤, M≤, L≤
}

// DefaultWeights returns the stock scoring configuration: factors cap at
// 40 + 30 + 15 + 15 + 15 = 115, with tier bounds at ~20% steps of that scale.
func DefaultWeights() Weights {
	return Weights{
		DurationMax:      40,
		DurationScaleHrs: 24,
		KeywordPoints:    10,
		KeywordMax:       30,
		LengthCharsPerPt: 40,
		LengthMax:        15,
		DependencyBonus:  15,
		UrgencyBands:     [4]int{15, 12, 8, 4},
		Keywords: []string{
			"integration", "migration", "migrate", "refactor", "complex",
			"algorithm", "performance", "security", "optimization",
			"scalability", "concurrent", "distributed", "architecture",
		},
		TierBounds: [4]int{23, 46, 69, 92},
	}
}

// MaxRaw is the highest raw score these weights can produce.
func (w Weights) MaxRaw() int {
	return w.DurationMax + w.KeywordMax + w.LengthMax + w.DependencyBonus + w.UrgencyBands[0]
}

// Validate checks that the weights describe a usable scale.
func (w Weights) Validate() error {
	if w.DurationMax <= 0 || w.DurationScaleHrs <= 0 {
		return fmt.Errorf("scoring: duration weight and scale must be positive")
	}
	if w.KeywordPoints <= 0 || w.KeywordMax <= 0 {
		return fmt.Errorf("scoring: keyword weights must be positive")
	}
	if w.LengthCharsPerPt <= 0 || w.LengthMax < 0 {
		return fmt.Errorf("scoring: length weights invalid")
	}
	if w.DependencyBonus < 0 {
		return fmt.Errorf("scoring: dependency bonus must not be negative")
	}
	for i := 1; i < len(w.UrgencyBands); i++ {
		if w.UrgencyBands[i] > w.UrgencyBands[i-1] {
			return fmt.Errorf("scoring: urgency bands must not increase with distance")
		}
	}
	for i := 1; i < len(w.TierBounds); i++ {
		if w.TierBounds[i] <= w.TierBounds[i-1] {
			return fmt.Errorf("scoring: tier bounds must be strictly increasing")
		}
	}
	return nil
}

// Estimate is the size estimator's result: the discrete tier, the raw score
// it was mapped from, and a human-readable account of the contributing
// factors so callers can audit the tier without recomputing it.
type Estimate struct {
	Tier      Tier
	RawScore  int
	Rationale string

	DurationPoints   int
	KeywordPoints    int
	LengthPoints     int
	DependencyPoints int
	UrgencyPoints    int
}

// EstimateSize scores one task against the weighted multi-factor heuristic.
// Each factor is additive and capped; the raw total maps to a tier by the
// configured bounds. Pure: same inputs and reference date, same result.
func EstimateSize(today time.Time, in SizeInput, w Weights) Estimate {
	var e Estimate

	hours := 0
	if in.DurationHours != nil && *in.DurationHours > 0 {
		hours = *in.DurationHours
	}
	e.DurationPoints = clamp(hours*w.DurationMax/w.DurationScaleHrs, 0, w.DurationMax)

	matched := matchKeywords(in.Title+" "+in.Description, w.Keywords)
	e.KeywordPoints = clamp(len(matched)*w.KeywordPoints, 0, w.KeywordMax)

	e.LengthPoints = clamp(len(in.Description)/w.LengthCharsPerPt, 0, w.LengthMax)

	if in.HasDependencies {
		e.DependencyPoints = w.DependencyBonus
	}

	urgencyBand := ""
	if in.Deadline != nil {
		days := daysBetween(today, *in.Deadline)
		switch {
		case days <= 1:
			e.UrgencyPoints = w.UrgencyBands[0]
			urgencyBand = "due within a day or overdue"
		case days <= 3:
			e.UrgencyPoints = w.UrgencyBands[1]
			urgencyBand = "due within 3 days"
		case days <= 7:
			e.UrgencyPoints = w.UrgencyBands[2]
			urgencyBand = "due within 7 days"
		case days <= 14:
			e.UrgencyPoints = w.UrgencyBands[3]
			urgencyBand = "due within 14 days"
		}
	}

	e.RawScore = e.DurationPoints + e.KeywordPoints + e.LengthPoints + e.DependencyPoints + e.UrgencyPoints
	e.Tier = tierFor(e.RawScore, w.TierBounds)
	e.Rationale = buildRationale(e, hours, matched, urgencyBand)
	return e
}

func tierFor(raw int, bounds [4]int) Tier {
	switch {
	case raw <= bounds[0]:
		return TierXS
	case raw <= bounds[1]:
		return TierS
	case raw <= bounds[2]:
		return TierM
	case raw <= bounds[3]:
		return TierL
	default:
		return TierXL
	}
}

func matchKeywords(text string, keywords []string) []string {
	lowered := strings.ToLower(text)
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(lowered, kw) {
			matched = append(matched, kw)
		}
	}
	sort.Strings(matched)
	return matched
}

func buildRationale(e Estimate, hours int, matched []string, urgencyBand string) string {
	var parts []string
	switch {
	case hours == 0:
		parts = append(parts, "no duration estimate")
	case hours <= 2:
		parts = append(parts, fmt.Sprintf("short duration (%dh, +%d)", hours, e.DurationPoints))
	case hours <= 8:
		parts = append(parts, fmt.Sprintf("moderate duration (%dh, +%d)", hours, e.DurationPoints))
	default:
		parts = append(parts, fmt.Sprintf("long duration (%dh, +%d)", hours, e.DurationPoints))
	}
	if len(matched) > 0 {
		parts = append(parts, fmt.Sprintf("complexity keywords %s (+%d)", strings.Join(matched, ", "), e.KeywordPoints))
	}
	if e.LengthPoints > 0 {
		parts = append(parts, fmt.Sprintf("detailed description (+%d)", e.LengthPoints))
	}
	if e.DependencyPoints > 0 {
		parts = append(parts, fmt.Sprintf("has dependencies (+%d)", e.DependencyPoints))
	} else {
		parts = append(parts, "no dependencies")
	}
	if urgencyBand != "" {
		parts = append(parts, fmt.Sprintf("%s (+%d)", urgencyBand, e.UrgencyPoints))
	} else {
		parts = append(parts, "no deadline pressure")
	}
	return fmt.Sprintf("%s: %s (raw %d)", e.Tier, strings.Join(parts, "; "), e.RawScore)
}
