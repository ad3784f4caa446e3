package registry

import (
	"fmt"
	"net/url"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/admpjgj/yxip/internal/model"
)

// RuleKind selects the extraction strategy for a source.
type RuleKind string

const (
	// KindTag scopes extraction to the text of matching HTML elements.
	KindTag RuleKind = "tag"
	// KindScript extracts tokens from a pattern-matched span of embedded
	// page script, e.g. a bracketed literal list assigned to a variable.
	KindScript RuleKind = "script"
	// KindGeneric scans the whole page content.
	KindGeneric RuleKind = "generic"
)

// Rule describes how to locate address strings in one source's markup.
// Exactly one kind applies per source; sources without site-specific
// structure use KindGeneric.
type Rule struct {
	Kind RuleKind

	// Tag rules
	Tag       string
	Attrs     map[string]string
	FirstOnly bool

	// Script rules
	ContainerPattern string
	TokenPattern     string
}

// Source is one immutable harvest target.
type Source struct {
	URL  string
	Tier model.RiskTier
	Rule Rule
}

// Validate rejects descriptors the pipeline cannot execute.
func (s Source) Validate() error {
	u, err := url.Parse(s.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid source url %q", s.URL)
	}
	switch s.Rule.Kind {
	case KindTag:
		if s.Rule.Tag == "" {
			return fmt.Errorf("source %s: tag rule without tag name", s.URL)
		}
	case KindScript:
		if _, err := regexp.Compile(s.Rule.ContainerPattern); err != nil {
			return fmt.Errorf("source %s: bad container pattern: %w", s.URL, err)
		}
		if _, err := regexp.Compile(s.Rule.TokenPattern); err != nil {
			return fmt.Errorf("source %s: bad token pattern: %w", s.URL, err)
		}
	case KindGeneric:
	default:
		return fmt.Errorf("source %s: unknown rule kind %q", s.URL, s.Rule.Kind)
	}
	return nil
}

// Builtin returns the default harvest targets, ordered Low to High by
// observed anti-automation strength.
func Builtin() []Source {
	return []Source{
		// Low tier: plain-text or near-plain pages
		{
			URL:  "https://www.cloudflare.com/ips-v4",
			Tier: model.TierLow,
			Rule: Rule{Kind: KindTag, Tag: "pre"},
		},
		{
			URL:  "https://cf-ip.cdtools.click",
			Tier: model.TierLow,
			Rule: Rule{Kind: KindTag, Tag: "textarea"},
		},
		{
			URL:  "https://ip.164746.xyz",
			Tier: model.TierLow,
			Rule: Rule{Kind: KindGeneric},
		},
		// Medium tier: structured markup, light defenses
		{
			URL:  "https://api.uouin.com/cloudflare.html",
			Tier: model.TierMedium,
			Rule: Rule{Kind: KindTag, Tag: "pre"},
		},
		{
			URL:  "https://cf.090227.xyz",
			Tier: model.TierMedium,
			Rule: Rule{Kind: KindTag, Tag: "div", Attrs: map[string]string{"class": "ip-list"}},
		},
		{
			URL:  "https://www.wetest.vip/page/cloudflare/address_v4.html",
			Tier: model.TierMedium,
			Rule: Rule{Kind: KindTag, Tag: "tr"},
		},
		// High tier: script-hidden content or browser checks
		{
			URL:  "https://ipdb.api.030101.xyz/?type=cfv4;proxy",
			Tier: model.TierHigh,
			Rule: Rule{
				Kind:             KindScript,
				ContainerPattern: `(?i)var\s+ips\s*=\s*\[([^\]]+)\]`,
				TokenPattern:     `"([^"]+)"`,
			},
		},
		{
			URL:  "https://addressesapi.090227.xyz/CloudFlareYes",
			Tier: model.TierHigh,
			Rule: Rule{Kind: KindGeneric},
		},
	}
}

type fileEntry struct {
	URL  string `yaml:"url"`
	Tier string `yaml:"tier"`
	Rule struct {
		Kind             string            `yaml:"kind"`
		Tag              string            `yaml:"tag"`
		Attrs            map[string]string `yaml:"attrs"`
		FirstOnly        bool              `yaml:"first_only"`
		ContainerPattern string            `yaml:"container_pattern"`
		TokenPattern     string            `yaml:"token_pattern"`
	} `yaml:"rule"`
}

// LoadFile reads a YAML source list that replaces the built-in table.
func LoadFile(path string) ([]Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source file: %w", err)
	}

	var entries []fileEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse source file: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("source file %s lists no sources", path)
	}

	sources := make([]Source, 0, len(entries))
	for i, e := range entries {
		tier, err := parseTier(e.Tier)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		s := Source{
			URL:  e.URL,
			Tier: tier,
			Rule: Rule{
				Kind:             RuleKind(e.Rule.Kind),
				Tag:              e.Rule.Tag,
				Attrs:            e.Rule.Attrs,
				FirstOnly:        e.Rule.FirstOnly,
				ContainerPattern: e.Rule.ContainerPattern,
				TokenPattern:     e.Rule.TokenPattern,
			},
		}
		// Absence of a specific rule means the generic fallback.
		if s.Rule.Kind == "" {
			s.Rule.Kind = KindGeneric
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, nil
}

func parseTier(s string) (model.RiskTier, error) {
	switch s {
	case "low", "":
		return model.TierLow, nil
	case "medium":
		return model.TierMedium, nil
	case "high":
		return model.TierHigh, nil
	default:
		return model.TierLow, fmt.Errorf("unknown risk tier %q", s)
	}
}
