package config

import (
	"os"
	"path/filepath"
	"testing"
)

const minimalYAML = `
environment: test
server:
  port: 8080
scorer:
  base_url: http://localhost:8000
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesEngineDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Signatures.HighAmount != 50_000_000 {
		t.Fatalf("expected high amount default, got %v", cfg.Signatures.HighAmount)
	}
	if cfg.Signatures.NightStartHour != 0 || cfg.Signatures.NightEndHour != 5 {
		t.Fatalf("expected night window [0,5), got [%d,%d)", cfg.Signatures.NightStartHour, cfg.Signatures.NightEndHour)
	}
	if cfg.Behavior.Shards != 64 {
		t.Fatalf("expected 64 shards, got %d", cfg.Behavior.Shards)
	}
	if cfg.Alerts.ScoreThreshold != 0.7 || cfg.Alerts.ModelThreshold != 0.5 {
		t.Fatalf("expected thresholds 0.7/0.5, got %v/%v", cfg.Alerts.ScoreThreshold, cfg.Alerts.ModelThreshold)
	}
	if cfg.Scorer.PredictPath != "/predict" || cfg.Scorer.HealthPath != "/health" {
		t.Fatalf("expected scorer path defaults, got %s %s", cfg.Scorer.PredictPath, cfg.Scorer.HealthPath)
	}
}

func TestLoadExplicitValuesWin(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML+`
signatures:
  high_amount: 1000
  foreign_locations: [Mars]
behavior:
  shards: 4
`))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Signatures.HighAmount != 1000 {
		t.Fatalf("expected explicit high amount, got %v", cfg.Signatures.HighAmount)
	}
	if len(cfg.Signatures.ForeignLocations) != 1 || cfg.Signatures.ForeignLocations[0] != "Mars" {
		t.Fatalf("expected explicit foreign set, got %v", cfg.Signatures.ForeignLocations)
	}
	if cfg.Behavior.Shards != 4 {
		t.Fatalf("expected 4 shards, got %d", cfg.Behavior.Shards)
	}
}

func TestLoadRejectsMissingScorer(t *testing.T) {
	if _, err := Load(writeConfig(t, "environment: test\n")); err == nil {
		t.Fatalf("expected error for missing scorer.base_url")
	}
}

func TestLoadRejectsBadNightWindow(t *testing.T) {
	_, err := Load(writeConfig(t, minimalYAML+`
signatures:
  night_start_hour: 6
  night_end_hour: 5
`))
	if err == nil {
		t.Fatalf("expected error for inverted night window")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SCORER_URL", "http://scorer:9000")
	t.Setenv("FOREIGN_LOCATIONS", "Narnia,Mordor")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Scorer.BaseURL != "http://scorer:9000" {
		t.Fatalf("expected env scorer url, got %s", cfg.Scorer.BaseURL)
	}
	want := []string{"Narnia", "Mordor"}
	if len(cfg.Signatures.ForeignLocations) != 2 ||
		cfg.Signatures.ForeignLocations[0] != want[0] ||
		cfg.Signatures.ForeignLocations[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, cfg.Signatures.ForeignLocations)
	}
}
