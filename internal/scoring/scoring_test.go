package scoring

import (
	"strings"
	"testing"
	"time"
)

var today = time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)

func deadlineIn(days int) *time.Time {
	d := today.AddDate(0, 0, days)
	return &d
}

func intPtr(v int) *int { return &v }

func TestPriorityScoreFormula(t *testing.T) {
	cases := []struct {
		name     string
		deadline *time.Time
		duration *int
		want     int
	}{
		{"deadline today, 4h", deadlineIn(0), intPtr(4), 88},
		{"15 days out, 1h", deadlineIn(15), intPtr(1), 22},
		{"far out, long task, clamps low", deadlineIn(40), intPtr(10), 1},
		{"overdue raises score", deadlineIn(-10), intPtr(0), 100},
		{"no deadline, no duration", nil, nil, 100},
		{"no deadline, 12h", nil, intPtr(12), 64},
		{"negative duration floored", deadlineIn(0), intPtr(-5), 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PriorityScore(today, tc.deadline, tc.duration)
			if got != tc.want {
				t.Fatalf("PriorityScore = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestPriorityScoreAlwaysClamped(t *testing.T) {
	for days := -100; days <= 100; days += 7 {
		for hours := 0; hours <= 80; hours += 8 {
			got := PriorityScore(today, deadlineIn(days), intPtr(hours))
			if got < 1 || got > 100 {
				t.Fatalf("score %d out of [1,100] for days=%d hours=%d", got, days, hours)
			}
		}
	}
}

func TestPriorityScoreMonotonicInDeadline(t *testing.T) {
	// Holding duration fixed, an earlier deadline never lowers the score.
	prev := -1
	for days := 60; days >= -60; days-- {
		got := PriorityScore(today, deadlineIn(days), intPtr(6))
		if got < prev {
			t.Fatalf("score dropped from %d to %d as deadline moved earlier (days=%d)", prev, got, days)
		}
		prev = got
	}
}

func TestPriorityScoreDeterministic(t *testing.T) {
	a := PriorityScore(today, deadlineIn(5), intPtr(3))
	b := PriorityScore(today, deadlineIn(5), intPtr(3))
	if a != b {
		t.Fatalf("same inputs gave %d then %d", a, b)
	}
}

func TestDaysBetweenUsesCalendarDates(t *testing.T) {
	// 23:59 today to 00:01 tomorrow is still one whole day.
	a := time.Date(2025, 6, 2, 23, 59, 0, 0, time.UTC)
	b := time.Date(2025, 6, 3, 0, 1, 0, 0, time.UTC)
	if got := daysBetween(a, b); got != 1 {
		t.Fatalf("daysBetween = %d, want 1", got)
	}
}

func TestEstimateSizeTrivialTask(t *testing.T) {
	e := EstimateSize(today, SizeInput{
		Title:         "Clean desk",
		DurationHours: intPtr(1),
	}, DefaultWeights())
	if e.Tier != TierXS {
		t.Fatalf("tier = %s, want XS (raw %d)", e.Tier, e.RawScore)
	}
	if e.RawScore > 23 {
		t.Fatalf("raw = %d, want <= 23", e.RawScore)
	}
}

func TestEstimateSizeMidTask(t *testing.T) {
	e := EstimateSize(today, SizeInput{
		Title:           "Implement OAuth integration",
		Description:     "Add OAuth 2.0 providers",
		DurationHours:   intPtr(12),
		Deadline:        deadlineIn(5),
		HasDependencies: true,
	}, DefaultWeights())
	if e.Tier != TierM {
		t.Fatalf("tier = %s, want M (raw %d)", e.Tier, e.RawScore)
	}
	for _, needle := range []string{"duration", "dependencies", "due within 7 days"} {
		if !strings.Contains(e.Rationale, needle) {
			t.Fatalf("rationale %q missing %q", e.Rationale, needle)
		}
	}
	if !strings.Contains(e.Rationale, "integration") {
		t.Fatalf("rationale %q does not cite the matched keyword", e.Rationale)
	}
}

func TestEstimateSizeMaxedFactors(t *testing.T) {
	desc := strings.Repeat("migrate the distributed security architecture ", 20)
	e := EstimateSize(today, SizeInput{
		Title:           "Refactor data migration with complex concurrent integration",
		Description:     desc,
		DurationHours:   intPtr(48),
		Deadline:        deadlineIn(0),
		HasDependencies: true,
	}, DefaultWeights())
	if e.Tier != TierXL {
		t.Fatalf("tier = %s, want XL (raw %d)", e.Tier, e.RawScore)
	}
	w := DefaultWeights()
	if e.RawScore > w.MaxRaw() {
		t.Fatalf("raw %d exceeds scale max %d", e.RawScore, w.MaxRaw())
	}
	if e.DurationPoints != w.DurationMax {
		t.Fatalf("duration points = %d, want cap %d", e.DurationPoints, w.DurationMax)
	}
	if e.KeywordPoints != w.KeywordMax {
		t.Fatalf("keyword points = %d, want cap %d", e.KeywordPoints, w.KeywordMax)
	}
}

func TestEstimateSizeMonotonicPerFactor(t *testing.T) {
	w := DefaultWeights()
	base := SizeInput{Title: "Build report", DurationHours: intPtr(4), Deadline: deadlineIn(10)}

	// duration
	prev := -1
	for h := 0; h <= 60; h += 4 {
		in := base
		in.DurationHours = intPtr(h)
		raw := EstimateSize(today, in, w).RawScore
		if raw < prev {
			t.Fatalf("raw dropped as duration grew (h=%d)", h)
		}
		prev = raw
	}

	// urgency: earlier deadline never lowers the raw score
	prev = -1
	for days := 30; days >= -2; days-- {
		in := base
		in.Deadline = deadlineIn(days)
		raw := EstimateSize(today, in, w).RawScore
		if raw < prev {
			t.Fatalf("raw dropped as deadline moved earlier (days=%d)", days)
		}
		prev = raw
	}

	// description length
	prev = -1
	for n := 0; n <= 1200; n += 120 {
		in := base
		in.Description = strings.Repeat("a", n)
		raw := EstimateSize(today, in, w).RawScore
		if raw < prev {
			t.Fatalf("raw dropped as description grew (n=%d)", n)
		}
		prev = raw
	}

	// dependencies flag
	without := EstimateSize(today, base, w).RawScore
	withDeps := base
	withDeps.HasDependencies = true
	if EstimateSize(today, withDeps, w).RawScore < without {
		t.Fatalf("dependency flag lowered the raw score")
	}

	// keywords
	kw := base
	kw.Title = "Build report with security migration"
	if EstimateSize(today, kw, w).RawScore < without {
		t.Fatalf("keyword match lowered the raw score")
	}
}

func TestTierBoundaries(t *testing.T) {
	bounds := DefaultWeights().TierBounds
	cases := []struct {
		raw  int
		want Tier
	}{
		{0, TierXS}, {23, TierXS}, {24, TierS}, {46, TierS},
		{47, TierM}, {69, TierM}, {70, TierL}, {92, TierL},
		{93, TierXL}, {115, TierXL},
	}
	for _, tc := range cases {
		if got := tierFor(tc.raw, bounds); got != tc.want {
			t.Fatalf("tierFor(%d) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestTierOrdering(t *testing.T) {
	ordered := []Tier{TierXS, TierS, TierM, TierL, TierXL}
	for i := 1; i < len(ordered); i++ {
		if !ordered[i-1].Less(ordered[i]) {
			t.Fatalf("%s should order before %s", ordered[i-1], ordered[i])
		}
	}
}

func TestWeightsValidate(t *testing.T) {
	if err := DefaultWeights().Validate(); err != nil {
		t.Fatalf("default weights invalid: %v", err)
	}
	bad := DefaultWeights()
	bad.TierBounds = [4]int{50, 40, 60, 90}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for non-increasing tier bounds")
	}
	bad = DefaultWeights()
	bad.DurationScaleHrs = 0
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected error for zero duration scale")
	}
}
