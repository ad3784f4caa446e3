package validate

import "testing"

func TestToken(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"plain address", "1.2.3.4", "1.2.3.4", true},
		{"address with port", "8.8.8.8:8080", "8.8.8.8:8080", true},
		{"surrounding whitespace", "  5.6.7.8\n", "5.6.7.8", true},
		{"boundary octets", "0.0.0.0", "0.0.0.0", true},
		{"max octets", "255.255.255.255", "255.255.255.255", true},
		{"octet out of range", "1.2.3.256", "", false},
		{"three fields", "1.2.3", "", false},
		{"five fields", "1.2.3.4.5", "", false},
		{"embedded punctuation", "1.2.3.4a", "", false},
		{"empty token", "", "", false},
		{"negative field", "-1.2.3.4", "", false},
		{"port not numeric", "1.2.3.4:http", "", false},
		{"port overflow", "1.2.3.4:70000", "", false},
		{"empty port suffix", "1.2.3.4:", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ep, ok := Token(tc.raw, "test")
			if ok != tc.ok {
				t.Fatalf("Token(%q) ok = %v, want %v", tc.raw, ok, tc.ok)
			}
			if ok && ep.String() != tc.want {
				t.Fatalf("Token(%q) = %q, want %q", tc.raw, ep.String(), tc.want)
			}
		})
	}
}

func TestTokenPrivateRanges(t *testing.T) {
	// The coarse upstream rule: 10.*, 192.168.*, and all of 172.*.
	rejected := []string{
		"10.0.0.5",
		"10.255.255.255",
		"192.168.1.1",
		"172.16.0.1",
		"172.0.0.1",
		"172.255.0.1",
		"10.0.0.5:443", // port never affects the exclusion
	}
	for _, raw := range rejected {
		if _, ok := Token(raw, "test"); ok {
			t.Errorf("Token(%q) accepted, want private-range rejection", raw)
		}
	}

	accepted := []string{
		"192.167.1.1",
		"192.169.1.1",
		"11.0.0.1",
		"173.0.0.1",
	}
	for _, raw := range accepted {
		if _, ok := Token(raw, "test"); !ok {
			t.Errorf("Token(%q) rejected, want accepted", raw)
		}
	}
}

func TestTokenIdempotence(t *testing.T) {
	for _, raw := range []string{"1.2.3.4", "8.8.8.8:8080", "203.0.113.9:65535"} {
		first, ok := Token(raw, "test")
		if !ok {
			t.Fatalf("Token(%q) rejected", raw)
		}
		second, ok := Token(first.String(), "test")
		if !ok {
			t.Fatalf("re-validating %q rejected", first.String())
		}
		if first.Key() != second.Key() {
			t.Fatalf("re-validation changed identity: %v vs %v", first, second)
		}
	}
}

func TestTokenPreservesSource(t *testing.T) {
	ep, ok := Token("9.9.9.9", "https://example.com/list")
	if !ok {
		t.Fatal("token rejected")
	}
	if ep.Source != "https://example.com/list" {
		t.Fatalf("source = %q", ep.Source)
	}
}
