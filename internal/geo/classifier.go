package geo

import (
	"net"
	"sort"
	"strings"

	"github.com/oschwald/geoip2-golang"

	"github.com/admpjgj/yxip/internal/model"
)

// Classifier resolves an endpoint's address to a region tag. All
// implementations return RegionUnknown rather than failing; malformed
// addresses are rejected upstream and never reach this stage.
type Classifier interface {
	Classify(e model.Endpoint) model.Region
}

// OctetRule is one coarse curated range: first two octets fixed, third
// octet within [O3Min, O3Max], fourth octet unconstrained.
type OctetRule struct {
	O1, O2       uint8
	O3Min, O3Max uint8
	Region       model.Region
}

// OctetTable matches rules by full scan in declaration order; order is
// the tie-break among overlapping rules, first match wins.
type OctetTable struct {
	rules []OctetRule
}

func NewOctetTable(rules []OctetRule) *OctetTable {
	return &OctetTable{rules: rules}
}

func (t *OctetTable) Classify(e model.Endpoint) model.Region {
	o := e.Octets
	for _, r := range t.rules {
		if o[0] == r.O1 && o[1] == r.O2 && o[2] >= r.O3Min && o[2] <= r.O3Max {
			return r.Region
		}
	}
	return model.RegionUnknown
}

// Interval is one external range row in 32-bit integer form.
type Interval struct {
	Start  uint32
	End    uint32
	Region model.Region
}

// IntervalTable answers containment queries over ranges sorted by start.
// Ranges may overlap; the interval with the largest start not above the
// address wins, mirroring a sorted-table last-row lookup.
type IntervalTable struct {
	rows []Interval
}

// NewIntervalTable sorts the rows ascending by start and drops any row
// with start > end.
func NewIntervalTable(rows []Interval) *IntervalTable {
	kept := make([]Interval, 0, len(rows))
	for _, r := range rows {
		if r.Start <= r.End {
			kept = append(kept, r)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return &IntervalTable{rows: kept}
}

func (t *IntervalTable) Len() int { return len(t.rows) }

func (t *IntervalTable) Classify(e model.Endpoint) model.Region {
	ip := e.Uint32()
	// Last row with Start <= ip.
	i := sort.Search(len(t.rows), func(i int) bool { return t.rows[i].Start > ip })
	if i == 0 {
		return model.RegionUnknown
	}
	row := t.rows[i-1]
	if row.End < ip {
		return model.RegionUnknown
	}
	return row.Region
}

// regionKeywords maps lowercase country/region substrings, English and
// localized, to the three target regions.
var regionKeywords = []struct {
	keyword string
	region  model.Region
}{
	{"hong kong", model.RegionHongKong},
	{"hongkong", model.RegionHongKong},
	{"香港", model.RegionHongKong},
	{"japan", model.RegionJapan},
	{"日本", model.RegionJapan},
	{"singapore", model.RegionSingapore},
	{"新加坡", model.RegionSingapore},
}

// MatchRegion resolves a dataset's country/region fields to a target
// region by case-insensitive keyword match. ISO codes are accepted
// because several datasets publish only those.
func MatchRegion(fields ...string) model.Region {
	for _, f := range fields {
		s := strings.ToLower(strings.TrimSpace(f))
		if s == "" {
			continue
		}
		switch s {
		case "hk":
			return model.RegionHongKong
		case "jp":
			return model.RegionJapan
		case "sg":
			return model.RegionSingapore
		}
		for _, k := range regionKeywords {
			if strings.Contains(s, k.keyword) {
				return k.region
			}
		}
	}
	return model.RegionUnknown
}

// MMDB classifies through a MaxMind country database when one is
// configured. Nil-safe: lookups against a missing reader are Unknown.
type MMDB struct {
	reader *geoip2.Reader
}

func OpenMMDB(path string) (*MMDB, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &MMDB{reader: r}, nil
}

func (d *MMDB) Classify(e model.Endpoint) model.Region {
	if d == nil || d.reader == nil {
		return model.RegionUnknown
	}
	ip := net.ParseIP(e.Addr())
	if ip == nil {
		return model.RegionUnknown
	}
	record, err := d.reader.Country(ip)
	if err != nil {
		return model.RegionUnknown
	}
	return MatchRegion(record.Country.IsoCode)
}

func (d *MMDB) Close() {
	if d != nil && d.reader != nil {
		d.reader.Close()
	}
}
