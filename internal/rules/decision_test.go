package rules

import (
	"errors"
	"testing"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name        string
		src         []string
		dst         []string
		want        Decision
		wantSkipped int
		wantErr     bool
	}{
		{
			name: "v4 only",
			src:  []string{"10.0.0.1"},
			want: Decision{EmitV4: true},
		},
		{
			name: "v6 only",
			dst:  []string{"2001:db8::1"},
			want: Decision{EmitV6: true},
		},
		{
			name: "both families",
			src:  []string{"10.0.0.1"},
			dst:  []string{"2001:db8::1"},
			want: Decision{EmitV4: true, EmitV6: true},
		},
		{
			name: "no addresses is family agnostic",
			want: Decision{EmitV4: true, EmitV6: true},
		},
		{
			name:    "only invalid addresses fails",
			src:     []string{"not-an-ip"},
			wantErr: true,
		},
		{
			name:    "invalid on both sides fails",
			src:     []string{"junk"},
			dst:     []string{"more-junk"},
			wantErr: true,
		},
		{
			name:        "v4 with invalid keeps v4 and warns",
			src:         []string{"10.0.0.1", "not-an-ip"},
			want:        Decision{EmitV4: true},
			wantSkipped: 1,
		},
		{
			name:        "v6 with invalid keeps v6 and warns",
			src:         []string{"2001:db8::1", "junk"},
			want:        Decision{EmitV6: true},
			wantSkipped: 1,
		},
		{
			name:        "both families with invalid warns",
			src:         []string{"10.0.0.1", "junk"},
			dst:         []string{"2001:db8::1"},
			want:        Decision{EmitV4: true, EmitV6: true},
			wantSkipped: 1,
		},
		{
			name: "counts combine across source and destination",
			src:  []string{"10.0.0.1"},
			dst:  []string{"10.0.0.2"},
			want: Decision{EmitV4: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, skipped, err := Decide(ClassifyAddresses(tt.src), ClassifyAddresses(tt.dst))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				if !errors.Is(err, ErrOnlyInvalidAddresses) {
					t.Errorf("error should wrap ErrOnlyInvalidAddresses, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Decide() = %+v, want %+v", got, tt.want)
			}
			if len(skipped) != tt.wantSkipped {
				t.Errorf("skipped = %v, want %d entries", skipped, tt.wantSkipped)
			}
		})
	}
}

func TestNormalizeOrder(t *testing.T) {
	tests := []struct {
		name           string
		order          string
		priority       string
		want           string
		wantDeprecated bool
	}{
		{"order wins over priority", "5", "9", "5", false},
		{"priority used as fallback", "", "9", "9", true},
		{"both unset stays unset", "", "", "", false},
		{"order alone", "150", "", "150", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, deprecated := NormalizeOrder(tt.order, tt.priority)
			if got != tt.want {
				t.Errorf("effective order = %q, want %q", got, tt.want)
			}
			if deprecated != tt.wantDeprecated {
				t.Errorf("deprecated = %v, want %v", deprecated, tt.wantDeprecated)
			}
		})
	}
}

func TestParseVersionOverride(t *testing.T) {
	tests := []struct {
		input string
		want  VersionOverride
	}{
		{"", VersionUnspecified},
		{"4", VersionV4},
		{"v4", VersionV4},
		{"ip4", VersionV4},
		{"ipv4", VersionV4},
		{"IPv4", VersionV4},
		{"IPV4", VersionV4},
		{"6", VersionV6},
		{"v6", VersionV6},
		{"ipv6", VersionV6},
		{"IPv6", VersionV6},
		{" ipv6 ", VersionV6},
		{"5", VersionUnspecified},
		{"ip", VersionUnspecified},
		{"inet", VersionUnspecified},
		{"both", VersionUnspecified},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseVersionOverride(tt.input); got != tt.want {
				t.Errorf("ParseVersionOverride(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
