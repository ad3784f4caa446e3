package model

import (
	"encoding/binary"
	"fmt"
	"strconv"
)

// RiskTier classifies a source by how aggressively it resists automated
// access. It drives both the fetch strategy and the scheduling policy.
type RiskTier int

const (
	TierLow RiskTier = iota
	TierMedium
	TierHigh
)

func (t RiskTier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	default:
		return "unknown"
	}
}

// FetchStrategy records which strategy produced a page.
type FetchStrategy string

const (
	StrategyNone      FetchStrategy = "none"
	StrategyDirect    FetchStrategy = "direct"
	StrategyEscalated FetchStrategy = "escalated"
)

// FetchOutcome is the terminal state of one source fetch. Failed outcomes
// carry no content; all transport and rendering errors end here.
type FetchOutcome struct {
	Strategy FetchStrategy
	Content  string
	Failed   bool
}

// Endpoint is a candidate network address harvested from a source.
// Identity is (address, port); Source is attribution only.
type Endpoint struct {
	Octets  [4]uint8
	Port    uint16
	HasPort bool
	Source  string
}

// Key is the comparable dedup identity of an Endpoint.
type Key struct {
	Octets  [4]uint8
	HasPort bool
	Port    uint16
}

func (e Endpoint) Key() Key {
	return Key{Octets: e.Octets, HasPort: e.HasPort, Port: e.Port}
}

// Addr renders the bare dotted-quad address without any port.
func (e Endpoint) Addr() string {
	return fmt.Sprintf("%d.%d.%d.%d", e.Octets[0], e.Octets[1], e.Octets[2], e.Octets[3])
}

// String renders the persisted line form: "a.b.c.d" or "a.b.c.d:port".
func (e Endpoint) String() string {
	if e.HasPort {
		return e.Addr() + ":" + strconv.Itoa(int(e.Port))
	}
	return e.Addr()
}

// Uint32 packs the four octets big-endian, the integer form used by
// interval classification.
func (e Endpoint) Uint32() uint32 {
	return binary.BigEndian.Uint32(e.Octets[:])
}

// Less defines the canonical output order: ascending numeric octets,
// ties broken by port with port-absent records first.
func (e Endpoint) Less(other Endpoint) bool {
	for i := 0; i < 4; i++ {
		if e.Octets[i] != other.Octets[i] {
			return e.Octets[i] < other.Octets[i]
		}
	}
	if e.HasPort != other.HasPort {
		return !e.HasPort
	}
	return e.Port < other.Port
}

// Region is a geographic classification tag.
type Region string

const (
	RegionHongKong  Region = "HK"
	RegionJapan     Region = "JP"
	RegionSingapore Region = "SG"
	RegionUnknown   Region = "UNKNOWN"
)

// ClassifiedEndpoint pairs an endpoint with its resolved region.
type ClassifiedEndpoint struct {
	Endpoint Endpoint
	Region   Region
}

// SourceStats is the per-source diagnostic record the scheduler emits.
// A failed source contributes zero endpoints and a non-nil Err.
type SourceStats struct {
	URL       string
	Tier      RiskTier
	Strategy  FetchStrategy
	Extracted int
	Valid     int
	Err       error
}
