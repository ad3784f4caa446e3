package fetch

import (
	"math/rand"
	"time"

	"github.com/admpjgj/yxip/internal/model"
)

// Backoff is the retry policy consumed by the fetcher's direct loop.
// Sleep and Rand are injectable so tests run without real delay.
type Backoff struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Jitter      time.Duration
	Sleep       func(time.Duration)
	Rand        *rand.Rand
}

func NewBackoff(maxAttempts int, base, jitter time.Duration) Backoff {
	return Backoff{
		MaxAttempts: maxAttempts,
		BaseDelay:   base,
		Jitter:      jitter,
		Sleep:       time.Sleep,
		Rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// tierFactor scales delays so higher-defended sources see a slower,
// less regular request cadence.
func tierFactor(tier model.RiskTier) time.Duration {
	switch tier {
	case model.TierHigh:
		return 3
	case model.TierMedium:
		return 2
	default:
		return 1
	}
}

// Delay returns the jittered pause before the next attempt.
func (b Backoff) Delay(tier model.RiskTier) time.Duration {
	d := b.BaseDelay * tierFactor(tier)
	if b.Jitter > 0 && b.Rand != nil {
		d += time.Duration(b.Rand.Int63n(int64(b.Jitter)))
	}
	return d
}

// Wait sleeps for one backoff interval.
func (b Backoff) Wait(tier model.RiskTier) {
	if b.Sleep != nil {
		b.Sleep(b.Delay(tier))
	}
}
