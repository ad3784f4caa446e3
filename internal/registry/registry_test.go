package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/admpjgj/yxip/internal/model"
)

func TestBuiltinDescriptorsAreValid(t *testing.T) {
	sources := Builtin()
	if len(sources) == 0 {
		t.Fatal("no built-in sources")
	}
	tiers := map[model.RiskTier]int{}
	for _, s := range sources {
		if err := s.Validate(); err != nil {
			t.Errorf("built-in source invalid: %v", err)
		}
		tiers[s.Tier]++
	}
	// The default table spans all three tiers; the scheduler's tier
	// policy is pointless otherwise.
	for _, tier := range []model.RiskTier{model.TierLow, model.TierMedium, model.TierHigh} {
		if tiers[tier] == 0 {
			t.Errorf("no built-in source in tier %s", tier)
		}
	}
}

func writeSourceFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeSourceFile(t, `
- url: https://example.com/list
  tier: low
  rule:
    kind: tag
    tag: pre
- url: https://example.com/hidden
  tier: high
  rule:
    kind: script
    container_pattern: 'var\s+ips\s*=\s*\[([^\]]+)\]'
    token_pattern: '"([^"]+)"'
- url: https://example.com/plain
  tier: medium
`)

	sources, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 3 {
		t.Fatalf("len = %d, want 3", len(sources))
	}
	if sources[0].Rule.Kind != KindTag || sources[0].Rule.Tag != "pre" {
		t.Fatalf("first rule = %+v", sources[0].Rule)
	}
	if sources[1].Tier != model.TierHigh {
		t.Fatalf("second tier = %s", sources[1].Tier)
	}
	// Absent rule means the generic fallback.
	if sources[2].Rule.Kind != KindGeneric {
		t.Fatalf("third rule kind = %s", sources[2].Rule.Kind)
	}
}

func TestLoadFileRejectsBadEntries(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"bad tier", "- url: https://example.com\n  tier: extreme\n"},
		{"bad url", "- url: ':::'\n  tier: low\n"},
		{"tag rule without tag", "- url: https://example.com\n  tier: low\n  rule:\n    kind: tag\n"},
		{"bad pattern", "- url: https://example.com\n  tier: high\n  rule:\n    kind: script\n    container_pattern: '(['\n    token_pattern: '\"'\n"},
		{"unknown kind", "- url: https://example.com\n  tier: low\n  rule:\n    kind: xpath\n"},
		{"empty list", "[]\n"},
		{"not yaml", "{{{{\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := LoadFile(writeSourceFile(t, tc.content)); err == nil {
				t.Fatal("want error")
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("want error for missing file")
	}
}
