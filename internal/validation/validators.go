package validation

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Valid interface name: alphanumeric, dash, underscore, dot (for VLANs),
	// optional trailing + wildcard, max 15 chars
	interfaceNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,15}\+?$`)

	// Valid identifier: alphanumeric, dash, underscore
	identifierRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// Dangerous characters that should never appear in identifiers
	dangerousChars = []string{";", "|", "&", "$", "`", "(", ")", "<", ">", "\\", "\"", "'", "\n", "\r"}
)

// StrictProtocols are the protocol names iptables itself special-cases.
// Under strict checking these are the only accepted values.
var StrictProtocols = []string{
	"tcp", "udp", "udplite", "icmp", "icmpv6", "ipv6-icmp",
	"esp", "ah", "sctp", "mh", "gre", "all",
}

// Tables are the valid iptables table names.
var Tables = []string{"filter", "nat", "mangle", "raw", "security"}

// LogLevels are the valid syslog level names for the LOG target.
var LogLevels = []string{"emerg", "alert", "crit", "error", "warning", "notice", "info", "debug"}

// limitRegex matches the iptables limit grammar: N/period with optional units.
var limitRegex = regexp.MustCompile(`^[0-9]+/(second|sec|minute|min|hour|day)$`)

// ValidateInterfaceName validates a network interface name
func ValidateInterfaceName(name string) error {
	if name == "" {
		return fmt.Errorf("interface name cannot be empty")
	}

	if len(strings.TrimSuffix(name, "+")) > 15 {
		return fmt.Errorf("interface name too long (max 15 characters): %s", name)
	}

	if !interfaceNameRegex.MatchString(name) {
		return fmt.Errorf("invalid interface name: %s (must be alphanumeric with -_. and optional trailing +)", name)
	}

	// Check for dangerous characters
	for _, char := range dangerousChars {
		if strings.Contains(name, char) {
			return fmt.Errorf("interface name contains dangerous character: %s", char)
		}
	}

	return nil
}

// ValidateIdentifier validates a general identifier (titles used as keys, file stems, etc.)
func ValidateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("identifier cannot be empty")
	}

	if len(id) > 255 {
		return fmt.Errorf("identifier too long (max 255 characters)")
	}

	if !identifierRegex.MatchString(id) {
		return fmt.Errorf("invalid identifier: %s (must be alphanumeric with -_)", id)
	}

	// Check for dangerous characters
	for _, char := range dangerousChars {
		if strings.Contains(id, char) {
			return fmt.Errorf("identifier contains dangerous character: %s", char)
		}
	}

	return nil
}

// ValidateChainName validates an iptables chain name.
// The kernel caps chain names at 28 characters.
func ValidateChainName(name string) error {
	if name == "" {
		return fmt.Errorf("chain name cannot be empty")
	}

	if len(name) > 28 {
		return fmt.Errorf("chain name too long (max 28 characters): %s", name)
	}

	if !identifierRegex.MatchString(name) {
		return fmt.Errorf("invalid chain name: %s (must be alphanumeric with -_)", name)
	}

	return nil
}

// ValidateTableName validates an iptables table name.
func ValidateTableName(table string) error {
	if err := ValidateAllowlist(strings.ToLower(table), Tables); err != nil {
		return fmt.Errorf("invalid table: %s (must be one of: %s)", table, strings.Join(Tables, ", "))
	}
	return nil
}

// ValidateLogLevel validates a LOG target level, by name or numeric 0-7.
func ValidateLogLevel(level string) error {
	if n, err := strconv.Atoi(level); err == nil {
		if n < 0 || n > 7 {
			return fmt.Errorf("invalid log level: %d (must be 0-7)", n)
		}
		return nil
	}
	if err := ValidateAllowlist(strings.ToLower(level), LogLevels); err != nil {
		return fmt.Errorf("invalid log level: %s (must be 0-7 or one of: %s)", level, strings.Join(LogLevels, ", "))
	}
	return nil
}

// ValidateLimit validates a rate limit expression like "10/second" or "3/min".
func ValidateLimit(limit string) error {
	if !limitRegex.MatchString(strings.ToLower(limit)) {
		return fmt.Errorf("invalid limit: %s (expected N/second, N/minute, N/hour or N/day)", limit)
	}
	return nil
}

// ValidateIPOrCIDR validates an IP address or CIDR range
func ValidateIPOrCIDR(s string) error {
	if s == "" {
		return fmt.Errorf("IP/CIDR cannot be empty")
	}

	// Try parsing as CIDR first
	if strings.Contains(s, "/") {
		_, _, err := net.ParseCIDR(s)
		if err != nil {
			return fmt.Errorf("invalid CIDR: %w", err)
		}
		return nil
	}

	// Try parsing as IP
	ip := net.ParseIP(s)
	if ip == nil {
		return fmt.Errorf("invalid IP address: %s", s)
	}

	return nil
}

// ValidateAllowlist checks if a value is in an allowed list
func ValidateAllowlist(value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("value not in allowlist: %s", value)
}

// ValidatePortNumber validates a port number
func ValidatePortNumber(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port number: %d (must be 1-65535)", port)
	}
	return nil
}

// ValidatePortSpec validates a port specification: a single port, a range
// (80:443 or 80-443), or a comma-separated multiport list (max 15 ports).
func ValidatePortSpec(spec string) error {
	if spec == "" {
		return fmt.Errorf("port spec cannot be empty")
	}

	parts := strings.Split(spec, ",")
	if len(parts) > 15 {
		return fmt.Errorf("too many ports in spec (multiport max 15): %s", spec)
	}

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return fmt.Errorf("empty port in spec: %s", spec)
		}

		// Normalize both range separators
		sep := ""
		if strings.Contains(part, ":") {
			sep = ":"
		} else if strings.Contains(part, "-") {
			sep = "-"
		}

		if sep != "" {
			bounds := strings.SplitN(part, sep, 2)
			lo, err := strconv.Atoi(bounds[0])
			if err != nil {
				return fmt.Errorf("invalid port range start: %s", part)
			}
			hi, err := strconv.Atoi(bounds[1])
			if err != nil {
				return fmt.Errorf("invalid port range end: %s", part)
			}
			if err := ValidatePortNumber(lo); err != nil {
				return err
			}
			if err := ValidatePortNumber(hi); err != nil {
				return err
			}
			if lo > hi {
				return fmt.Errorf("inverted port range: %s", part)
			}
			continue
		}

		n, err := strconv.Atoi(part)
		if err != nil {
			return fmt.Errorf("invalid port: %s", part)
		}
		if err := ValidatePortNumber(n); err != nil {
			return err
		}
	}

	return nil
}

// ValidateProtocol validates a protocol name against the strict allowlist
func ValidateProtocol(proto string) error {
	proto = strings.ToLower(proto)

	for _, valid := range StrictProtocols {
		if proto == valid {
			return nil
		}
	}

	return fmt.Errorf("invalid protocol: %s (must be one of: %s)", proto, strings.Join(StrictProtocols, ", "))
}

// SanitizeString removes dangerous characters from a string (for display purposes)
func SanitizeString(s string) string {
	for _, char := range dangerousChars {
		s = strings.ReplaceAll(s, char, "")
	}
	return s
}
