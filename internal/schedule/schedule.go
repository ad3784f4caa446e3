package schedule

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/admpjgj/yxip/internal/aggregate"
	"github.com/admpjgj/yxip/internal/extract"
	"github.com/admpjgj/yxip/internal/model"
	"github.com/admpjgj/yxip/internal/registry"
	"github.com/admpjgj/yxip/internal/validate"
)

// ErrSourceFailed marks a source whose every fetch strategy came back
// empty. It lives in SourceStats, never aborts the run.
var ErrSourceFailed = errors.New("all fetch strategies failed")

// Fetcher is the fetch stage as the scheduler sees it.
type Fetcher interface {
	Fetch(ctx context.Context, src registry.Source) model.FetchOutcome
}

// Options holds the pacing knobs. Sleep and Rand are injectable so
// tests run with zero delay.
type Options struct {
	Workers int
	PaceMin time.Duration
	PaceMax time.Duration
	Sleep   func(time.Duration)
	Rand    *rand.Rand
}

// Scheduler drives the per-source pipeline under the risk-tiered
// concurrency policy: Low tier on a bounded worker pool, Medium and
// High strictly sequential. Sequential processing of the higher tiers
// paces outbound requests and serializes the shared rendering session.
type Scheduler struct {
	fetcher Fetcher
	opts    Options
}

func New(f Fetcher, opts Options) *Scheduler {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Scheduler{fetcher: f, opts: opts}
}

type taskResult struct {
	stats     model.SourceStats
	endpoints []model.Endpoint
}

// Run processes every source and returns the merged endpoint set plus
// per-source diagnostics. One source's failure never aborts another's
// task or the run.
func (s *Scheduler) Run(ctx context.Context, sources []registry.Source) (*aggregate.Set, []model.SourceStats) {
	byTier := map[model.RiskTier][]registry.Source{}
	for _, src := range sources {
		byTier[src.Tier] = append(byTier[src.Tier], src)
	}

	set := aggregate.New()
	var stats []model.SourceStats

	// Low tier: parallel, independent failure domains. Each task writes
	// its own slot; the merge happens single-threaded after the join so
	// the aggregate set needs no lock.
	low := byTier[model.TierLow]
	results := make([]taskResult, len(low))
	sem := make(chan struct{}, s.opts.Workers)
	var wg sync.WaitGroup
	for i, src := range low {
		s.pause(model.TierLow)
		wg.Add(1)
		go func(i int, src registry.Source) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.runSource(ctx, src)
		}(i, src)
	}
	wg.Wait()

	for _, r := range results {
		stats = append(stats, r.stats)
		set.AddAll(r.endpoints)
	}

	// Medium, then High: strictly sequential, by design.
	for _, tier := range []model.RiskTier{model.TierMedium, model.TierHigh} {
		for _, src := range byTier[tier] {
			s.pause(tier)
			r := s.runSource(ctx, src)
			stats = append(stats, r.stats)
			set.AddAll(r.endpoints)
		}
	}

	return set, stats
}

func (s *Scheduler) runSource(ctx context.Context, src registry.Source) taskResult {
	log := slog.With("url", src.URL, "tier", src.Tier.String())
	st := model.SourceStats{URL: src.URL, Tier: src.Tier, Strategy: model.StrategyNone}

	outcome := s.fetcher.Fetch(ctx, src)
	st.Strategy = outcome.Strategy
	if outcome.Failed {
		st.Err = ErrSourceFailed
		log.Warn("source_failed", "strategy", outcome.Strategy)
		return taskResult{stats: st}
	}

	raw := extract.Extract(outcome.Content, src.Rule)
	st.Extracted = len(raw)

	var eps []model.Endpoint
	for _, token := range raw {
		if ep, ok := validate.Token(token, src.URL); ok {
			eps = append(eps, ep)
		}
	}
	st.Valid = len(eps)

	log.Info("source_done",
		"strategy", outcome.Strategy,
		"extracted", st.Extracted,
		"valid", st.Valid,
	)
	return taskResult{stats: st, endpoints: eps}
}

// pause draws the inter-task delay from the tier-scaled jittered range,
// reducing detectable request-rate signatures.
func (s *Scheduler) pause(tier model.RiskTier) {
	span := s.opts.PaceMax - s.opts.PaceMin
	d := s.opts.PaceMin
	if span > 0 {
		d += time.Duration(s.opts.Rand.Int63n(int64(span)))
	}
	switch tier {
	case model.TierMedium:
		d *= 2
	case model.TierHigh:
		d *= 3
	}
	if d > 0 {
		s.opts.Sleep(d)
	}
}
