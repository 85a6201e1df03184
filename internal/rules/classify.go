package rules

import (
	"net"
	"strings"
)

// Classification partitions the tokens of one address field by family.
// Every input token lands in exactly one bucket; order within each bucket
// preserves input order so downstream output stays diffable.
type Classification struct {
	V4    []string
	V6    []string
	Other []string
}

// Empty reports whether the field held no tokens at all.
func (c Classification) Empty() bool {
	return len(c.V4) == 0 && len(c.V6) == 0 && len(c.Other) == 0
}

// ClassifyAddresses partitions an address field into v4, v6 and other
// buckets. The field may be nil, a single token, or a list; each element may
// itself be a comma-joined list. Classification is per-token and purely
// syntactic: a token counts as v4 if it parses as an IPv4 address, CIDR or
// explicit range, v6 analogously, and anything else is recorded as other.
// Invalid tokens are never rejected here; rejection policy belongs to Decide.
func ClassifyAddresses(field []string) Classification {
	var c Classification
	for _, element := range field {
		for _, token := range strings.Split(element, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			switch tokenFamily(token) {
			case FamilyIPv4:
				c.V4 = append(c.V4, token)
			case FamilyIPv6:
				c.V6 = append(c.V6, token)
			default:
				c.Other = append(c.Other, token)
			}
		}
	}
	return c
}

// tokenFamily returns the family of a single address token, or 0 when the
// token does not parse as either family.
func tokenFamily(token string) Family {
	// CIDR notation
	if strings.Contains(token, "/") {
		ip, _, err := net.ParseCIDR(token)
		if err != nil {
			return 0
		}
		return ipFamily(ip)
	}

	// Explicit range a-b: both ends must parse and agree on family.
	// IPv6 text never contains '-', so splitting is unambiguous.
	if strings.Contains(token, "-") {
		bounds := strings.SplitN(token, "-", 2)
		lo := net.ParseIP(strings.TrimSpace(bounds[0]))
		hi := net.ParseIP(strings.TrimSpace(bounds[1]))
		if lo == nil || hi == nil {
			return 0
		}
		if ipFamily(lo) != ipFamily(hi) {
			return 0
		}
		return ipFamily(lo)
	}

	ip := net.ParseIP(token)
	if ip == nil {
		return 0
	}
	return ipFamily(ip)
}

func ipFamily(ip net.IP) Family {
	if ip.To4() != nil {
		return FamilyIPv4
	}
	return FamilyIPv6
}
