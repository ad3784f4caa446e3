package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/net/proxy"
	"golang.org/x/time/rate"

	"github.com/admpjgj/yxip/internal/disguise"
	"github.com/admpjgj/yxip/internal/extract"
	"github.com/admpjgj/yxip/internal/model"
	"github.com/admpjgj/yxip/internal/registry"
	"github.com/admpjgj/yxip/internal/render"
)

// ErrNoAddressFound marks a well-formed response that contains nothing
// shaped like an address. It is retried like a transport error because
// defended sources serve challenge pages with a 200 status.
var ErrNoAddressFound = errors.New("no address pattern in content")

const maxBodySize = 10 << 20

// Options configures a Fetcher. Timeouts and the backoff policy come
// from the run configuration so tests can inject zero-jitter variants.
type Options struct {
	Timeout    time.Duration
	Backoff    Backoff
	Rate       float64 // direct requests per second, 0 disables pacing
	SocksProxy string  // optional "host:port" SOCKS5 upstream
	Settle     time.Duration
	SettleHigh time.Duration
	Profiles   *disguise.Provider
	Renderer   render.Renderer // nil disables escalation
}

// Fetcher escalates from a lightweight transport fetch to a rendering
// fetch when the direct strategy keeps coming back empty.
type Fetcher struct {
	client     *http.Client
	profiles   *disguise.Provider
	renderer   render.Renderer
	limiter    *rate.Limiter
	backoff    Backoff
	timeout    time.Duration
	settle     time.Duration
	settleHigh time.Duration
}

func New(opts Options) (*Fetcher, error) {
	transport := &http.Transport{
		// Several sources serve self-signed or mismatched certificates.
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	if opts.SocksProxy != "" {
		dialer, err := proxy.SOCKS5("tcp", opts.SocksProxy, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("socks proxy: %w", err)
		}
		cd, ok := dialer.(proxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("socks proxy: dialer lacks context support")
		}
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return cd.DialContext(ctx, network, addr)
		}
	}

	f := &Fetcher{
		client:     &http.Client{Transport: transport},
		profiles:   opts.Profiles,
		renderer:   opts.Renderer,
		backoff:    opts.Backoff,
		timeout:    opts.Timeout,
		settle:     opts.Settle,
		settleHigh: opts.SettleHigh,
	}
	if f.profiles == nil {
		f.profiles = disguise.NewProvider()
	}
	if opts.Rate > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.Rate), 1)
	}
	return f, nil
}

// Fetch runs the escalation state machine for one source. It never
// returns an error: every failure collapses into a Failed outcome.
func (f *Fetcher) Fetch(ctx context.Context, src registry.Source) model.FetchOutcome {
	log := slog.With("url", src.URL, "tier", src.Tier.String())

	attempts := f.backoff.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 1; attempt <= attempts; attempt++ {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return model.FetchOutcome{Strategy: model.StrategyDirect, Failed: true}
			}
		}

		content, err := f.direct(ctx, src.URL)
		if err == nil {
			if extract.HasAddress(content) {
				log.Debug("direct_fetch_ok", "attempt", attempt, "bytes", len(content))
				return model.FetchOutcome{Strategy: model.StrategyDirect, Content: content}
			}
			err = ErrNoAddressFound
		}

		log.Debug("direct_attempt_failed", "attempt", attempt, "error", err)
		if attempt < attempts {
			f.backoff.Wait(src.Tier)
		}
	}

	return f.escalate(ctx, src, log)
}

func (f *Fetcher) escalate(ctx context.Context, src registry.Source, log *slog.Logger) model.FetchOutcome {
	if f.renderer == nil {
		log.Warn("escalation_unavailable")
		return model.FetchOutcome{Strategy: model.StrategyDirect, Failed: true}
	}

	settle := f.settle
	if src.Tier == model.TierHigh {
		// High tier gets a longer settle so challenge pages and
		// deferred script rendering have time to resolve.
		settle = f.settleHigh
	}

	log.Info("escalation_started", "settle", settle)
	content, err := f.renderer.Load(ctx, src.URL, settle)
	if err != nil {
		log.Warn("rendering_failed", "error", err)
		return model.FetchOutcome{Strategy: model.StrategyEscalated, Failed: true}
	}

	if !extract.HasAddress(content) {
		// One refresh-and-rewait before giving up.
		log.Debug("rendered_content_empty_refreshing")
		content, err = f.renderer.Load(ctx, src.URL, settle)
		if err != nil {
			log.Warn("rendering_refresh_failed", "error", err)
			return model.FetchOutcome{Strategy: model.StrategyEscalated, Failed: true}
		}
		if !extract.HasAddress(content) {
			log.Warn("rendered_content_empty")
			return model.FetchOutcome{Strategy: model.StrategyEscalated, Failed: true}
		}
	}

	log.Debug("escalated_fetch_ok", "bytes", len(content))
	return model.FetchOutcome{Strategy: model.StrategyEscalated, Content: content}
}

func (f *Fetcher) direct(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	f.profiles.Next().Apply(req.Header)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transport: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// Sources publish localized markup; decode whatever charset the
	// response declares (or sniffs as) into UTF-8 before extraction.
	r, err := charset.NewReader(io.LimitReader(resp.Body, maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("charset: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(data), nil
}
