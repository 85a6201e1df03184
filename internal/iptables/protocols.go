package iptables

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"grimm.is/firn/internal/rules"
	"grimm.is/firn/internal/validation"
)

// protocolsFile is the system protocol database, consulted for lookups and
// the protocols subcommand.
const protocolsFile = "/etc/protocols"

// portProtocols are the protocols --sport/--dport and multiport understand.
var portProtocols = map[string]bool{
	"tcp":     true,
	"udp":     true,
	"udplite": true,
	"sctp":    true,
	"dccp":    true,
}

// wellKnownNumbers covers the strict protocol list so lookups work on hosts
// without /etc/protocols.
var wellKnownNumbers = map[string]int{
	"icmp":      1,
	"tcp":       6,
	"udp":       17,
	"gre":       47,
	"esp":       50,
	"ah":        51,
	"icmpv6":    58,
	"ipv6-icmp": 58,
	"sctp":      132,
	"mh":        135,
	"udplite":   136,
}

// IsStrictProtocol reports whether name is on the iptables built-in protocol
// list. Under strict checking these are the only names a rule may use.
func IsStrictProtocol(name string) bool {
	return validation.ValidateProtocol(name) == nil
}

// SupportsPorts reports whether the protocol takes port matches.
func SupportsPorts(proto string) bool {
	return portProtocols[strings.ToLower(proto)]
}

// CanonicalProtocol maps a protocol name to its canonical spelling for the
// family. ICMP is the only protocol that renames between families, so a
// dual-stack ping rule can say "icmp" once and still render as ipv6-icmp in
// the v6 file.
func CanonicalProtocol(proto string, family rules.Family) string {
	p := strings.ToLower(proto)
	switch family {
	case rules.FamilyIPv6:
		if p == "icmp" || p == "icmpv6" {
			return "ipv6-icmp"
		}
	case rules.FamilyIPv4:
		if p == "ipv6-icmp" || p == "icmpv6" {
			return "icmp"
		}
	}
	return p
}

// Protocol is one entry from the system protocol database.
type Protocol struct {
	Name    string
	Number  int
	Aliases []string
}

// LoadSystemProtocols parses /etc/protocols.
func LoadSystemProtocols() ([]Protocol, error) {
	return loadProtocols(protocolsFile)
}

// loadProtocols parses a protocol database in /etc/protocols format:
// name number [aliases...] [# comment]
func loadProtocols(path string) ([]Protocol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var protos []Protocol
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if idx := strings.Index(line, "#"); idx != -1 {
			line = line[:idx]
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		num, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}

		p := Protocol{Name: fields[0], Number: num}
		if len(fields) > 2 {
			p.Aliases = fields[2:]
		}
		protos = append(protos, p)
	}

	return protos, scanner.Err()
}

// LookupProtocol resolves a protocol name or number. It checks the strict
// list first, then numeric values, then the system database.
func LookupProtocol(name string) (Protocol, bool) {
	lower := strings.ToLower(name)

	if n, ok := wellKnownNumbers[lower]; ok {
		return Protocol{Name: lower, Number: n}, true
	}
	if lower == "all" {
		return Protocol{Name: "all", Number: 0}, true
	}

	if n, err := strconv.Atoi(lower); err == nil {
		if n < 0 || n > 255 {
			return Protocol{}, false
		}
		return Protocol{Name: lower, Number: n}, true
	}

	protos, err := LoadSystemProtocols()
	if err != nil {
		return Protocol{}, false
	}
	for _, p := range protos {
		if strings.EqualFold(p.Name, lower) {
			return p, true
		}
		for _, alias := range p.Aliases {
			if strings.EqualFold(alias, lower) {
				return p, true
			}
		}
	}
	return Protocol{}, false
}

// SearchProtocols returns system database entries whose name or aliases
// contain the query. An empty query returns the whole database.
func SearchProtocols(query string) ([]Protocol, error) {
	protos, err := LoadSystemProtocols()
	if err != nil {
		return nil, err
	}
	if query == "" {
		return protos, nil
	}

	query = strings.ToLower(query)
	var results []Protocol
	for _, p := range protos {
		match := strings.Contains(strings.ToLower(p.Name), query)
		if !match {
			for _, alias := range p.Aliases {
				if strings.Contains(strings.ToLower(alias), query) {
					match = true
					break
				}
			}
		}
		if match {
			results = append(results, p)
		}
	}
	return results, nil
}
