package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.Tiers.Tier0Max != 35 || p.Tiers.Tier1Max != 65 {
		t.Errorf("Tiers = %+v", p.Tiers)
	}
	if p.Labels.TierPrefix != "tier:" || p.Labels.IntentPrefix != "intent:" || p.Labels.RiskPrefix != "risk:" {
		t.Errorf("Labels = %+v", p.Labels)
	}
	if p.AutoMerge.MaxFiles != 5 {
		t.Errorf("AutoMerge.MaxFiles = %d, want 5", p.AutoMerge.MaxFiles)
	}
}

func TestLoadPolicy_MissingFileReturnsDefaults(t *testing.T) {
	p, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadPolicy error: %v", err)
	}
	if p.Tiers.Tier0Max != 35 {
		t.Errorf("Tier0Max = %d, want default 35", p.Tiers.Tier0Max)
	}
}

func TestLoadPolicy_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := `tiers:
  tier0Max: 20
risk:
  highKeywords: [crypto, ledger]
labels:
  tierPrefix: "review-tier/"
autoMerge:
  maxFiles: 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy error: %v", err)
	}
	if p.Tiers.Tier0Max != 20 {
		t.Errorf("Tier0Max = %d, want 20", p.Tiers.Tier0Max)
	}
	if p.Tiers.Tier1Max != 65 {
		t.Errorf("Tier1Max = %d, want default 65", p.Tiers.Tier1Max)
	}
	if len(p.Risk.HighKeywords) != 2 || p.Risk.HighKeywords[0] != "crypto" {
		t.Errorf("HighKeywords = %v", p.Risk.HighKeywords)
	}
	if p.Labels.TierPrefix != "review-tier/" {
		t.Errorf("TierPrefix = %q", p.Labels.TierPrefix)
	}
	if p.Labels.IntentPrefix != "intent:" {
		t.Errorf("IntentPrefix = %q, want default", p.Labels.IntentPrefix)
	}
	if p.AutoMerge.MaxFiles != 3 {
		t.Errorf("AutoMerge.MaxFiles = %d, want 3", p.AutoMerge.MaxFiles)
	}
	if len(p.AutoMerge.BlockedPaths) != 4 {
		t.Errorf("BlockedPaths = %v, want defaults kept", p.AutoMerge.BlockedPaths)
	}
}

func TestLoadPolicy_InvalidThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := "tiers:\n  tier0Max: 80\n  tier1Max: 65\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPolicy(path); err == nil {
		t.Error("expected error for tier0Max above tier1Max")
	}
}

func TestLoadPolicy_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte("tiers: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPolicy(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}
