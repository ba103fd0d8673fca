package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/segni49/plugpost/internal/domain"
)

func TestDefaultScoringValidates(t *testing.T) {
	s := DefaultScoring()
	if err := s.validate(); err != nil {
		t.Fatalf("default scoring must validate: %v", err)
	}
}

func TestLoadReadsEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("WEIGHTS_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.CacheTTL != 30*time.Second {
		t.Errorf("expected 30s cache ttl, got %s", cfg.CacheTTL)
	}
	if cfg.Addr() != ":9090" {
		t.Errorf("unexpected addr %q", cfg.Addr())
	}
}

func TestWeightsFileOverridesTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.yaml")
	content := []byte(`weights:
  trending: 0.5
  similar_content: 0.5
  user_interest: 0
  collaborative_filtering: 0
  content_based: 0
decay_factor: 0.9
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write weights file: %v", err)
	}
	t.Setenv("WEIGHTS_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Scoring.Weights[domain.StrategyTrending] != 0.5 {
		t.Errorf("trending weight not overridden: %f", cfg.Scoring.Weights[domain.StrategyTrending])
	}
	if cfg.Scoring.DecayFactor != 0.9 {
		t.Errorf("decay factor not overridden: %f", cfg.Scoring.DecayFactor)
	}
	// Cold-start table was not in the file and keeps its defaults.
	if cfg.Scoring.ColdStartWeights[domain.StrategyTrending] != 0.45 {
		t.Errorf("cold-start weights must survive a partial override")
	}
}

func TestValidateRejectsBadTables(t *testing.T) {
	s := DefaultScoring()
	s.Weights[domain.StrategyTrending] = 0.9
	if err := s.validate(); err == nil {
		t.Error("weights summing past 1 must fail validation")
	}

	s = DefaultScoring()
	s.DecayFactor = 1.5
	if err := s.validate(); err == nil {
		t.Error("decay factor above 1 must fail validation")
	}
}
