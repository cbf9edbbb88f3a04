package upload

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	courseModels "coursehub/internal/domain/models/course"

	"gopkg.in/yaml.v3"
)

//go:embed policies/default.yaml
var defaultPolicyYAML []byte

// KindPolicy is the validation rule set for one upload kind
type KindPolicy struct {
	MaxBytes     int64    `yaml:"max_bytes"`
	AllowedTypes []string `yaml:"allowed_types"`
}

// Allows reports whether mimeType is accepted for this kind
func (p KindPolicy) Allows(mimeType string) bool {
	for _, t := range p.AllowedTypes {
		if t == mimeType {
			return true
		}
	}
	return false
}

// Policy maps each upload kind to its rules
type Policy map[courseModels.UploadKind]KindPolicy

// For returns the rules for kind
func (p Policy) For(kind courseModels.UploadKind) (KindPolicy, bool) {
	kp, ok := p[kind]
	return kp, ok
}

// Kinds returns the configured kinds, sorted
func (p Policy) Kinds() []string {
	kinds := make([]string, 0, len(p))
	for k := range p {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	return kinds
}

// LoadPolicy reads the embedded default policy, then merges an optional YAML
// file over it (kinds present in the file replace the defaults), then applies
// per-kind byte limit overrides. Zero overrides are ignored.
func LoadPolicy(overridePath string, maxBytes map[courseModels.UploadKind]int64) (Policy, error) {
	policy, err := parsePolicy(defaultPolicyYAML)
	if err != nil {
		return nil, fmt.Errorf("parse embedded upload policy: %w", err)
	}

	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("read upload policy %s: %w", overridePath, err)
		}
		override, err := parsePolicy(data)
		if err != nil {
			return nil, fmt.Errorf("parse upload policy %s: %w", overridePath, err)
		}
		for kind, kp := range override {
			policy[kind] = kp
		}
	}

	for kind, limit := range maxBytes {
		if limit <= 0 {
			continue
		}
		kp, ok := policy[kind]
		if !ok {
			return nil, fmt.Errorf("size override for unknown upload kind %q", kind)
		}
		kp.MaxBytes = limit
		policy[kind] = kp
	}

	return policy, nil
}

func parsePolicy(data []byte) (Policy, error) {
	var raw map[string]KindPolicy
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	policy := make(Policy, len(raw))
	for name, kp := range raw {
		if kp.MaxBytes <= 0 {
			return nil, fmt.Errorf("kind %q: max_bytes must be positive", name)
		}
		if len(kp.AllowedTypes) == 0 {
			return nil, fmt.Errorf("kind %q: allowed_types is empty", name)
		}
		for i, t := range kp.AllowedTypes {
			kp.AllowedTypes[i] = strings.ToLower(strings.TrimSpace(t))
		}
		policy[courseModels.UploadKind(name)] = kp
	}
	return policy, nil
}
