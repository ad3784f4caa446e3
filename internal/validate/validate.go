package validate

import (
	"strconv"
	"strings"

	"github.com/admpjgj/yxip/internal/model"
)

// Token checks one raw extracted token and normalizes it into an
// Endpoint. Rejections return ok=false and are counted, not reported,
// by the caller; extraction is deliberately tolerant so malformed
// tokens are expected here.
func Token(raw, sourceURL string) (model.Endpoint, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return model.Endpoint{}, false
	}

	addr, portStr, hasPort := strings.Cut(raw, ":")

	fields := strings.Split(addr, ".")
	if len(fields) != 4 {
		return model.Endpoint{}, false
	}

	var octets [4]uint8
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 || n > 255 {
			return model.Endpoint{}, false
		}
		octets[i] = uint8(n)
	}

	if privateRange(octets) {
		return model.Endpoint{}, false
	}

	ep := model.Endpoint{Octets: octets, Source: sourceURL}
	if hasPort {
		p, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			return model.Endpoint{}, false
		}
		ep.Port = uint16(p)
		ep.HasPort = true
	}
	return ep, true
}

// privateRange applies the coarse upstream exclusion: 10.*, 192.168.*,
// and all of 172.* (wider than 172.16/12 on purpose, matching the
// per-octet-prefix rule the sources were filtered with).
func privateRange(o [4]uint8) bool {
	if o[0] == 10 {
		return true
	}
	if o[0] == 192 && o[1] == 168 {
		return true
	}
	if o[0] == 172 {
		return true
	}
	return false
}
