package extract

import (
	"reflect"
	"testing"

	"github.com/admpjgj/yxip/internal/registry"
)

func TestExtractTagRule(t *testing.T) {
	content := `<html><body>
		<p>decoy 9.9.9.9</p>
		<pre>1.2.3.4
		5.6.7.8:2053</pre>
	</body></html>`

	got := Extract(content, registry.Rule{Kind: registry.KindTag, Tag: "pre"})
	want := []string{"1.2.3.4", "5.6.7.8:2053"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractTagRuleAttrPredicate(t *testing.T) {
	content := `<html><body>
		<div class="ads">6.6.6.6</div>
		<div class="ip-list main">1.1.1.1</div>
		<div class="ip-list">2.2.2.2</div>
	</body></html>`

	rule := registry.Rule{
		Kind:  registry.KindTag,
		Tag:   "div",
		Attrs: map[string]string{"class": "ip-list"},
	}
	got := Extract(content, rule)
	want := []string{"1.1.1.1", "2.2.2.2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractTagRuleFirstOnly(t *testing.T) {
	content := `<pre>1.1.1.1</pre><pre>2.2.2.2</pre>`

	rule := registry.Rule{Kind: registry.KindTag, Tag: "pre", FirstOnly: true}
	got := Extract(content, rule)
	want := []string{"1.1.1.1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractScriptRule(t *testing.T) {
	content := `<script>
		var other = ["zz"];
		var ips = ["1.2.3.4", "5.6.7.8:443", "not-an-ip"];
	</script>`

	rule := registry.Rule{
		Kind:             registry.KindScript,
		ContainerPattern: `(?i)var\s+ips\s*=\s*\[([^\]]+)\]`,
		TokenPattern:     `"([^"]+)"`,
	}
	got := Extract(content, rule)
	// Malformed tokens pass through; the validator drops them later.
	want := []string{"1.2.3.4", "5.6.7.8:443", "not-an-ip"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractGenericFallback(t *testing.T) {
	// A tag rule that matches nothing must fall back to the generic
	// whole-content scan, never fail silently.
	content := `<html><body><span>7.7.7.7 and 8.8.8.8:8080</span></body></html>`

	rule := registry.Rule{Kind: registry.KindTag, Tag: "pre"}
	got := Extract(content, rule)
	want := []string{"7.7.7.7", "8.8.8.8:8080"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractPortedAddressNotDoubleCounted(t *testing.T) {
	got := Extract("8.8.8.8:8080", registry.Rule{Kind: registry.KindGeneric})
	want := []string{"8.8.8.8:8080"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v (bare address must not also match)", got, want)
	}
}

func TestExtractTolerantOfMalformedOctets(t *testing.T) {
	// Extraction does not range-check; 999.1.1.1 still comes out and
	// the validator rejects it downstream.
	got := Extract("999.1.1.1", registry.Rule{Kind: registry.KindGeneric})
	if len(got) != 1 {
		t.Fatalf("got %v, want one tolerant match", got)
	}
}

func TestExtractEmptyContent(t *testing.T) {
	if got := Extract("", registry.Rule{Kind: registry.KindGeneric}); got != nil {
		t.Fatalf("got %v, want nil", got)
	}
}

func TestHasAddress(t *testing.T) {
	if !HasAddress("prefix 1.2.3.4 suffix") {
		t.Error("plain address not recognized")
	}
	if !HasAddress("1.2.3.4:8080") {
		t.Error("ported address not recognized")
	}
	if HasAddress("<html>checking your browser</html>") {
		t.Error("challenge page misrecognized as address content")
	}
}
