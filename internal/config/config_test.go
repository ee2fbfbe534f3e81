package config

import (
	"strings"
	"testing"

	"taskiq/internal/scoring"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Server.Addr == "" || cfg.Server.BasePath == "" {
		t.Fatalf("server defaults missing: %+v", cfg.Server)
	}
}

func TestWeightsDefaultWhenScoringOmitted(t *testing.T) {
	cfg, err := FromYAML([]byte("server:\n  addr: 127.0.0.1:9999\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, want := cfg.Weights(), scoring.DefaultWeights()
	if got.DurationMax != want.DurationMax || got.TierBounds != want.TierBounds {
		t.Fatalf("expected stock weights, got %+v", got)
	}
	if len(got.Keywords) != len(want.Keywords) {
		t.Fatalf("expected stock keyword list, got %v", got.Keywords)
	}
}

func TestScoringPartialOverrideKeepsDefaults(t *testing.T) {
	cfg, err := FromYAML([]byte(`scoring:
  keyword_points: 20
  duration_max: 50
  urgency_bands: [20, 15, 10, 5]
  tier_bounds: [10, 30, 60, 90]
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	w := cfg.Weights()
	if w.KeywordPoints != 20 || w.DurationMax != 50 {
		t.Fatalf("overrides not applied: %+v", w)
	}
	if w.UrgencyBands != [4]int{20, 15, 10, 5} || w.TierBounds != [4]int{10, 30, 60, 90} {
		t.Fatalf("band overrides not applied: %+v", w)
	}
	// omitted fields keep their defaults
	def := scoring.DefaultWeights()
	if w.DependencyBonus != def.DependencyBonus || w.LengthMax != def.LengthMax {
		t.Fatalf("untouched fields lost defaults: %+v", w)
	}
	if len(w.Keywords) != len(def.Keywords) {
		t.Fatalf("keyword list should be untouched, got %v", w.Keywords)
	}
}

func TestScoringKeywordOverrideReplacesList(t *testing.T) {
	cfg, err := FromYAML([]byte("scoring:\n  keywords: [kubernetes, terraform]\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	w := cfg.Weights()
	if len(w.Keywords) != 2 || w.Keywords[0] != "kubernetes" {
		t.Fatalf("keyword override not applied: %v", w.Keywords)
	}
	if w.KeywordPoints != scoring.DefaultWeights().KeywordPoints {
		t.Fatalf("keyword points should keep default: %d", w.KeywordPoints)
	}
}

func TestScoringOverrideValidated(t *testing.T) {
	if _, err := FromYAML([]byte("scoring:\n  tier_bounds: [90, 60, 30, 10]\n")); err == nil || !strings.Contains(err.Error(), "tier bounds") {
		t.Fatalf("expected tier bound validation error, got %v", err)
	}
	if _, err := FromYAML([]byte("scoring:\n  keywords: [ok, '']\n")); err == nil || !strings.Contains(err.Error(), "keywords[1]") {
		t.Fatalf("expected empty keyword error, got %v", err)
	}
}
