package extract

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/admpjgj/yxip/internal/registry"
)

// addrPattern matches a dotted quad with an optional :port suffix in a
// single pass, so "8.8.8.8:8080" never also yields a bare "8.8.8.8".
// Octet range and private-range checks are deliberately left to the
// validator; tolerant extraction here avoids losing valid addresses.
var addrPattern = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}(?::\d{1,5})?\b`)

// HasAddress reports whether content contains anything shaped like an
// address. The fetcher uses it to decide between retry and escalation.
func HasAddress(content string) bool {
	return addrPattern.MatchString(content)
}

// Extract turns raw page content into candidate address strings per the
// source's rule. Output may contain duplicates and malformed tokens.
// When a site-specific rule yields nothing the generic whole-content
// scan runs as a fallback, never as silent failure.
func Extract(content string, rule registry.Rule) []string {
	if content == "" {
		return nil
	}

	var tokens []string
	switch rule.Kind {
	case registry.KindTag:
		tokens = extractTag(content, rule)
	case registry.KindScript:
		tokens = extractScript(content, rule)
	}

	if len(tokens) == 0 {
		tokens = addrPattern.FindAllString(content, -1)
	}
	return tokens
}

func extractTag(content string, rule registry.Rule) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		slog.Debug("html_parse_failed", "error", err)
		return nil
	}

	var tokens []string
	doc.Find(rule.Tag).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !attrsMatch(sel, rule.Attrs) {
			return true
		}
		tokens = append(tokens, addrPattern.FindAllString(sel.Text(), -1)...)
		return !(rule.FirstOnly && len(tokens) > 0)
	})
	return tokens
}

func attrsMatch(sel *goquery.Selection, attrs map[string]string) bool {
	for k, want := range attrs {
		got, ok := sel.Attr(k)
		if !ok {
			return false
		}
		// class-style attributes match on any whitespace-separated value
		if k == "class" {
			if !hasClassValue(got, want) {
				return false
			}
			continue
		}
		if got != want {
			return false
		}
	}
	return true
}

func hasClassValue(attr, want string) bool {
	for _, v := range strings.Fields(attr) {
		if v == want {
			return true
		}
	}
	return false
}

var patternCache sync.Map // pattern string -> *regexp.Regexp

func compiled(pattern string) *regexp.Regexp {
	if re, ok := patternCache.Load(pattern); ok {
		return re.(*regexp.Regexp)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		// Registry validation compiles every pattern up front, so this
		// only trips on rules constructed outside the registry.
		slog.Warn("bad_extraction_pattern", "pattern", pattern, "error", err)
		return nil
	}
	patternCache.Store(pattern, re)
	return re
}

func extractScript(content string, rule registry.Rule) []string {
	container := compiled(rule.ContainerPattern)
	token := compiled(rule.TokenPattern)
	if container == nil || token == nil {
		return nil
	}

	m := container.FindStringSubmatch(content)
	if m == nil {
		return nil
	}
	// Prefer the captured span, fall back to the whole match.
	span := m[0]
	if len(m) > 1 {
		span = m[1]
	}

	var tokens []string
	for _, tm := range token.FindAllStringSubmatch(span, -1) {
		if len(tm) > 1 {
			tokens = append(tokens, tm[1])
		} else {
			tokens = append(tokens, tm[0])
		}
	}
	return tokens
}
