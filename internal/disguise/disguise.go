package disguise

import (
	"math/rand"
	"net/http"
	"sync"
	"time"
)

// Profile is one set of outbound request headers used to reduce the
// chance of automated-traffic detection.
type Profile struct {
	UserAgent      string
	AcceptLanguage string
	Referer        string
}

// Apply writes the profile onto an outgoing request's headers.
func (p Profile) Apply(h http.Header) {
	h.Set("User-Agent", p.UserAgent)
	h.Set("Accept-Language", p.AcceptLanguage)
	h.Set("Referer", p.Referer)
	h.Set("DNT", "1")
	h.Set("Connection", "keep-alive")
}

var defaultAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Edg/124.0.2478.51",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:126.0) Gecko/20100101 Firefox/126.0",
}

var defaultReferers = []string{
	"https://www.baidu.com/",
	"https://www.google.com/",
}

var defaultLanguages = []string{
	"zh-CN,zh;q=0.9",
	"zh-CN,zh;q=0.9,en;q=0.8",
	"en-US,en;q=0.9",
}

// Provider hands out a fresh disguise profile per fetch attempt,
// drawn from a fixed pool. Safe for concurrent use.
type Provider struct {
	mu  sync.Mutex
	rnd *rand.Rand

	agents    []string
	referers  []string
	languages []string
}

func NewProvider() *Provider {
	return NewProviderWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewProviderWithRand allows a seeded source for deterministic tests.
func NewProviderWithRand(rnd *rand.Rand) *Provider {
	return &Provider{
		rnd:       rnd,
		agents:    defaultAgents,
		referers:  defaultReferers,
		languages: defaultLanguages,
	}
}

func (p *Provider) Next() Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Profile{
		UserAgent:      p.agents[p.rnd.Intn(len(p.agents))],
		AcceptLanguage: p.languages[p.rnd.Intn(len(p.languages))],
		Referer:        p.referers[p.rnd.Intn(len(p.referers))],
	}
}
