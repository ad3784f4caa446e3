package geo

import (
	"context"
	"encoding/binary"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

// ErrRegionDBUnavailable means every candidate interval dataset failed.
// Classification is skipped for the run; the Stage-1 artifact is not
// affected.
var ErrRegionDBUnavailable = errors.New("no region interval dataset available")

const ingestTimeout = 60 * time.Second

// header names accepted for each required column, lowercase. Datasets
// drift: some call the start column "start_ip", others "ip_start" or
// "network_start".
var (
	startNames   = []string{"start_ip", "startip", "ip_start", "network_start", "start", "from"}
	endNames     = []string{"end_ip", "endip", "ip_end", "network_end", "end", "to"}
	countryNames = []string{"country_name", "country", "country_code", "country_iso_code"}
	regionNames  = []string{"region_name", "region", "subdivision_1_name", "state"}
)

// FetchIntervalTable tries each candidate dataset URL in turn and
// returns the first that parses into a usable table. Schema drift is
// tolerated by resolving columns from the header row (or positionally
// for headerless files) and validating required fields before use.
func FetchIntervalTable(ctx context.Context, client *http.Client, urls []string) (*IntervalTable, error) {
	if client == nil {
		client = &http.Client{Timeout: ingestTimeout}
	}
	for _, u := range urls {
		table, err := fetchOne(ctx, client, u)
		if err != nil {
			slog.Warn("interval_dataset_failed", "url", u, "error", err)
			continue
		}
		slog.Info("interval_dataset_loaded", "url", u, "rows", table.Len())
		return table, nil
	}
	return nil, ErrRegionDBUnavailable
}

func fetchOne(ctx context.Context, client *http.Client, url string) (*IntervalTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return ParseIntervalCSV(resp.Body)
}

type columnLayout struct {
	start, end, country, region int
}

// ParseIntervalCSV reads rows of (startIP, endIP, country[, region])
// into an interval table. Rows whose addresses do not parse are
// skipped; a file yielding zero usable rows is an error so the caller
// moves on to the next candidate source.
func ParseIntervalCSV(r io.Reader) (*IntervalTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	first, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("empty dataset: %w", err)
	}

	layout, hasHeader := resolveColumns(first)
	var rows []Interval
	if !hasHeader {
		if iv, ok := rowToInterval(first, layout); ok {
			rows = append(rows, iv)
		}
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Tolerate ragged lines mid-file, keep what parsed.
			continue
		}
		if iv, ok := rowToInterval(rec, layout); ok {
			rows = append(rows, iv)
		}
	}

	if len(rows) == 0 {
		return nil, errors.New("dataset contains no usable rows")
	}
	return NewIntervalTable(rows), nil
}

// resolveColumns maps required fields to column indices. When the first
// row already looks like data (its start field parses as an address),
// the positional layout start,end,country[,region] is assumed.
func resolveColumns(first []string) (columnLayout, bool) {
	positional := columnLayout{start: 0, end: 1, country: 2, region: -1}
	if len(first) > 3 {
		positional.region = 3
	}
	if len(first) >= 2 {
		if _, ok := ipToUint32(first[0]); ok {
			return positional, false
		}
	}

	layout := columnLayout{start: -1, end: -1, country: -1, region: -1}
	for i, name := range first {
		n := strings.ToLower(strings.TrimSpace(name))
		switch {
		case layout.start == -1 && contains(startNames, n):
			layout.start = i
		case layout.end == -1 && contains(endNames, n):
			layout.end = i
		case layout.country == -1 && contains(countryNames, n):
			layout.country = i
		case layout.region == -1 && contains(regionNames, n):
			layout.region = i
		}
	}
	if layout.start == -1 || layout.end == -1 || layout.country == -1 {
		// Header did not expose the required fields; fall back to the
		// positional guess so oddly-labelled datasets still get a try.
		return positional, false
	}
	return layout, true
}

func contains(names []string, s string) bool {
	for _, n := range names {
		if n == s {
			return true
		}
	}
	return false
}

func rowToInterval(rec []string, layout columnLayout) (Interval, bool) {
	if layout.start >= len(rec) || layout.end >= len(rec) || layout.country >= len(rec) {
		return Interval{}, false
	}
	start, ok := ipToUint32(rec[layout.start])
	if !ok {
		return Interval{}, false
	}
	end, ok := ipToUint32(rec[layout.end])
	if !ok {
		return Interval{}, false
	}
	fields := []string{rec[layout.country]}
	if layout.region >= 0 && layout.region < len(rec) {
		fields = append(fields, rec[layout.region])
	}
	return Interval{Start: start, End: end, Region: MatchRegion(fields...)}, true
}

func ipToUint32(s string) (uint32, bool) {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return 0, false
	}
	v4 := ip.To4()
	if v4 == nil {
		return 0, false
	}
	return binary.BigEndian.Uint32(v4), true
}
