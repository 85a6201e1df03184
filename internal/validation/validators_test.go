package validation

import (
	"strings"
	"testing"
)

func TestValidateInterfaceName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Happy paths
		{"simple", "eth0", false},
		{"with dash", "eth-0", false},
		{"with underscore", "eth_0", false},
		{"with dot (vlan)", "eth0.100", false},
		{"wildcard", "eth+", false},
		{"max length", "eth0123456789ab", false}, // 15 chars

		// Sad paths
		{"empty", "", true},
		{"too long", "eth01234567890123", true}, // 17 chars
		{"space", "eth 0", true},
		{"semicolon injection", "eth0;rm", true},
		{"pipe injection", "eth0|cat", true},
		{"ampersand", "eth0&", true},
		{"dollar sign", "eth0$USER", true},
		{"backtick", "eth0`whoami`", true},
		{"parentheses", "eth0()", true},
		{"redirect", "eth0>file", true},
		{"backslash", "eth0\\n", true},
		{"newline", "eth0\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInterfaceName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInterfaceName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Happy paths
		{"simple", "allow-ssh", false},
		{"underscore", "lan_rules", false},
		{"alphanumeric", "rule123", false},

		// Sad paths
		{"empty", "", true},
		{"space", "my rule", true},
		{"dot", "my.rule", true},
		{"semicolon", "rule;drop", true},
		{"long", strings.Repeat("a", 256), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateChainName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"builtin", "INPUT", false},
		{"custom", "LAN_IN", false},
		{"max length", strings.Repeat("a", 28), false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 29), true},
		{"space", "MY CHAIN", true},
		{"dot", "my.chain", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateChainName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateChainName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTableName(t *testing.T) {
	for _, table := range []string{"filter", "nat", "mangle", "raw", "security", "NAT"} {
		if err := ValidateTableName(table); err != nil {
			t.Errorf("ValidateTableName(%q) unexpected error: %v", table, err)
		}
	}
	for _, table := range []string{"", "filt", "iptable"} {
		if err := ValidateTableName(table); err == nil {
			t.Errorf("ValidateTableName(%q) expected error", table)
		}
	}
}

func TestValidateLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"warning", false},
		{"debug", false},
		{"INFO", false},
		{"4", false},
		{"0", false},
		{"7", false},

		{"8", true},
		{"-1", true},
		{"verbose", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateLogLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLogLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLimit(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"10/second", false},
		{"3/minute", false},
		{"1/hour", false},
		{"100/day", false},
		{"5/min", false},
		{"5/sec", false},

		{"", true},
		{"ten/second", true},
		{"10/fortnight", true},
		{"10", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := ValidateLimit(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLimit(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateIPOrCIDR(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		// Happy paths - IPs
		{"ipv4", "192.168.1.1", false},
		{"ipv6", "2001:db8::1", false},
		{"ipv4 loopback", "127.0.0.1", false},

		// Happy paths - CIDRs
		{"ipv4 cidr", "192.168.1.0/24", false},
		{"ipv6 cidr", "2001:db8::/32", false},

		// Sad paths
		{"empty", "", true},
		{"invalid ip", "999.999.999.999", true},
		{"invalid cidr", "192.168.1.0/99", true},
		{"text", "not-an-ip", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIPOrCIDR(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIPOrCIDR(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAllowlist(t *testing.T) {
	allowed := []string{"tcp", "udp", "icmp"}

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"in list", "tcp", false},
		{"in list 2", "udp", false},
		{"not in list", "rdp", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAllowlist(tt.value, allowed)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAllowlist(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePortNumber(t *testing.T) {
	tests := []struct {
		name    string
		port    int
		wantErr bool
	}{
		{"min valid", 1, false},
		{"http", 80, false},
		{"https", 443, false},
		{"max valid", 65535, false},

		{"zero", 0, true},
		{"negative", -1, true},
		{"too high", 65536, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePortNumber(tt.port)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePortNumber(%d) error = %v, wantErr %v", tt.port, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePortSpec(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{"single", "80", false},
		{"colon range", "80:443", false},
		{"dash range", "80-443", false},
		{"multiport", "22,80,443", false},
		{"multiport with range", "22,8000:8080", false},
		{"fifteen ports", "1,2,3,4,5,6,7,8,9,10,11,12,13,14,15", false},

		{"empty", "", true},
		{"sixteen ports", "1,2,3,4,5,6,7,8,9,10,11,12,13,14,15,16", true},
		{"inverted range", "443:80", true},
		{"zero", "0", true},
		{"too high", "65536", true},
		{"text", "http", true},
		{"trailing comma", "80,", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePortSpec(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePortSpec(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
		})
	}
}

func TestValidateProtocol(t *testing.T) {
	tests := []struct {
		name    string
		proto   string
		wantErr bool
	}{
		{"tcp", "tcp", false},
		{"udp", "udp", false},
		{"icmp", "icmp", false},
		{"icmpv6", "icmpv6", false},
		{"sctp", "sctp", false},
		{"uppercase", "TCP", false}, // Should be case-insensitive

		{"numeric", "47", true}, // numbers only pass with checking relaxed
		{"invalid", "xyz", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProtocol(tt.proto)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateProtocol(%q) error = %v, wantErr %v", tt.proto, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"clean", "hello", "hello"},
		{"semicolon", "hello;world", "helloworld"},
		{"pipe", "a|b", "ab"},
		{"multiple", "a;b|c&d", "abcd"},
		{"quotes", "a\"b'c", "abc"},
		{"newlines", "a\nb\rc", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeString(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeString(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
