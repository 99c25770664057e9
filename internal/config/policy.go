package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPolicyPath is where a repo-local policy file is looked up when the
// config does not name one.
const DefaultPolicyPath = ".code-analysis/policy.yaml"

// Policy holds the repo-tunable scoring and labeling knobs. Everything has a
// built-in default so the file is optional.
type Policy struct {
	Tiers     TierPolicy    `yaml:"tiers"`
	Risk      RiskPolicy    `yaml:"risk"`
	Labels    LabelPolicy   `yaml:"labels"`
	AutoMerge AutoMergeRule `yaml:"autoMerge"`
}

// TierPolicy sets the cognitive-score boundaries between review tiers.
type TierPolicy struct {
	Tier0Max int `yaml:"tier0Max"`
	Tier1Max int `yaml:"tier1Max"`
}

// RiskPolicy overrides the keyword lists used for risk assessment.
type RiskPolicy struct {
	HighKeywords   []string `yaml:"highKeywords"`
	MediumKeywords []string `yaml:"mediumKeywords"`
}

// LabelPolicy sets the prefixes for the managed label families. One label
// per family is applied to a pull request at a time.
type LabelPolicy struct {
	TierPrefix   string `yaml:"tierPrefix"`
	IntentPrefix string `yaml:"intentPrefix"`
	RiskPrefix   string `yaml:"riskPrefix"`
}

// AutoMergeRule constrains which changes may skip human review.
type AutoMergeRule struct {
	MaxFiles     int      `yaml:"maxFiles"`
	BlockedPaths []string `yaml:"blockedPaths"`
}

// DefaultPolicy returns the built-in policy.
func DefaultPolicy() Policy {
	return Policy{
		Tiers: TierPolicy{
			Tier0Max: 35,
			Tier1Max: 65,
		},
		Labels: LabelPolicy{
			TierPrefix:   "tier:",
			IntentPrefix: "intent:",
			RiskPrefix:   "risk:",
		},
		AutoMerge: AutoMergeRule{
			MaxFiles:     5,
			BlockedPaths: []string{"migration", "schema", "security", "payment"},
		},
	}
}

// LoadPolicy reads a policy file and merges it over the defaults. An empty
// path falls back to DefaultPolicyPath; a missing file yields the defaults.
func LoadPolicy(path string) (Policy, error) {
	if path == "" {
		path = DefaultPolicyPath
	}
	policy := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return policy, nil
		}
		return Policy{}, fmt.Errorf("reading policy file: %w", err)
	}

	var file Policy
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Policy{}, fmt.Errorf("parsing policy file: %w", err)
	}
	mergePolicy(&policy, file)

	if policy.Tiers.Tier0Max >= policy.Tiers.Tier1Max {
		return Policy{}, fmt.Errorf("invalid tier thresholds: tier0Max (%d) must be below tier1Max (%d)",
			policy.Tiers.Tier0Max, policy.Tiers.Tier1Max)
	}
	return policy, nil
}

func mergePolicy(dst *Policy, src Policy) {
	if src.Tiers.Tier0Max > 0 {
		dst.Tiers.Tier0Max = src.Tiers.Tier0Max
	}
	if src.Tiers.Tier1Max > 0 {
		dst.Tiers.Tier1Max = src.Tiers.Tier1Max
	}
	if len(src.Risk.HighKeywords) > 0 {
		dst.Risk.HighKeywords = src.Risk.HighKeywords
	}
	if len(src.Risk.MediumKeywords) > 0 {
		dst.Risk.MediumKeywords = src.Risk.MediumKeywords
	}
	if src.Labels.TierPrefix != "" {
		dst.Labels.TierPrefix = src.Labels.TierPrefix
	}
	if src.Labels.IntentPrefix != "" {
		dst.Labels.IntentPrefix = src.Labels.IntentPrefix
	}
	if src.Labels.RiskPrefix != "" {
		dst.Labels.RiskPrefix = src.Labels.RiskPrefix
	}
	if src.AutoMerge.MaxFiles > 0 {
		dst.AutoMerge.MaxFiles = src.AutoMerge.MaxFiles
	}
	if len(src.AutoMerge.BlockedPaths) > 0 {
		dst.AutoMerge.BlockedPaths = src.AutoMerge.BlockedPaths
	}
}
