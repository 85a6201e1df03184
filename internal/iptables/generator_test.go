package iptables

import (
	"strings"
	"testing"

	"grimm.is/firn/internal/config"
	"grimm.is/firn/internal/rules"
)

func TestGeneratorActivate(t *testing.T) {
	chains := []config.Chain{
		{Name: "ssh_guard", Table: "filter", JumpFrom: "INPUT"},
		{Name: "v4_only", Family: "ipv4"},
	}
	g := NewGenerator(chains)

	g.Activate(rules.FamilyIPv4)
	g.Activate(rules.FamilyIPv4) // must be idempotent
	g.Activate(rules.FamilyIPv6)

	v4, ok := g.FileSet().File(rules.FamilyIPv4)
	if !ok {
		t.Fatal("v4 file not present after Activate")
	}
	out := string(v4.Render())
	if !strings.Contains(out, ":ssh_guard - [0:0]") {
		t.Errorf("custom chain not declared:\n%s", out)
	}
	if strings.Count(out, "-A INPUT -j ssh_guard") != 1 {
		t.Errorf("jump hookup missing or duplicated:\n%s", out)
	}
	if !strings.Contains(out, ":v4_only - [0:0]") {
		t.Errorf("v4-restricted chain missing from v4 file:\n%s", out)
	}

	v6, ok := g.FileSet().File(rules.FamilyIPv6)
	if !ok {
		t.Fatal("v6 file not present after Activate")
	}
	out6 := string(v6.Render())
	if strings.Contains(out6, "v4_only") {
		t.Errorf("family-restricted chain leaked into v6:\n%s", out6)
	}
	if !strings.Contains(out6, "ip6tables-restore") {
		t.Errorf("v6 header should name ip6tables-restore:\n%s", out6)
	}
}

func TestGeneratorEmit(t *testing.T) {
	g := NewGenerator(nil)
	g.Activate(rules.FamilyIPv4)

	err := g.Emit("100 allow ssh", rules.FamilyIPv4, rules.RuleOptions{
		Protocol:               "tcp",
		DestinationPort:        "22",
		StrictProtocolChecking: true,
	})
	if err != nil {
		t.Fatalf("Emit() error = %v", err)
	}

	if got := g.RuleCount(rules.FamilyIPv4); got != 1 {
		t.Errorf("RuleCount() = %d, want 1", got)
	}

	f, _ := g.FileSet().File(rules.FamilyIPv4)
	if !strings.Contains(string(f.Render()), "--dport 22") {
		t.Errorf("emitted rule missing from render:\n%s", f.Render())
	}
}

func TestGeneratorEmitRenderFailure(t *testing.T) {
	g := NewGenerator(nil)
	g.Activate(rules.FamilyIPv4)

	err := g.Emit("bad", rules.FamilyIPv4, rules.RuleOptions{
		Protocol:               "carrier-pigeon",
		StrictProtocolChecking: true,
	})
	if err == nil {
		t.Fatal("Emit() = nil error, want render failure")
	}
	if got := g.RuleCount(rules.FamilyIPv4); got != 0 {
		t.Errorf("RuleCount() after failed emit = %d, want 0", got)
	}
}

func TestGeneratorEndToEnd(t *testing.T) {
	decls := []rules.Declaration{
		{
			Title:           "100 allow ssh",
			Action:          "accept",
			Protocol:        "tcp",
			DestinationPort: "22",
			Source:          []string{"10.0.0.0/8", "2001:db8::/32"},
			State:           []string{"NEW"},
		},
		{
			Title:    "300 allow ping",
			Action:   "accept",
			Protocol: "icmp",
		},
		{
			Title:  "400 partner feed",
			Action: "accept",
			Source: []string{"203.0.113.7,bogus-host"},
		},
	}

	g := NewGenerator(nil)
	for _, d := range decls {
		res, err := rules.Process(d, g)
		if err != nil {
			t.Fatalf("Process(%q) error = %v", d.Title, err)
		}
		if d.Title == "400 partner feed" && len(res.Diagnostics) == 0 {
			t.Error("expected a skipped-address warning for the partner feed rule")
		}
	}

	if got := g.RuleCount(rules.FamilyIPv4); got != 3 {
		t.Errorf("v4 RuleCount() = %d, want 3", got)
	}
	if got := g.RuleCount(rules.FamilyIPv6); got != 2 {
		t.Errorf("v6 RuleCount() = %d, want 2", got)
	}

	v4, _ := g.FileSet().File(rules.FamilyIPv4)
	out4 := string(v4.Render())
	for _, want := range []string{
		"-s 10.0.0.0/8",
		"-p icmp",
		"-s 203.0.113.7",
	} {
		if !strings.Contains(out4, want) {
			t.Errorf("v4 file missing %q:\n%s", want, out4)
		}
	}
	if strings.Contains(out4, "2001:db8::/32") {
		t.Errorf("v6 address leaked into v4 file:\n%s", out4)
	}

	v6, _ := g.FileSet().File(rules.FamilyIPv6)
	out6 := string(v6.Render())
	for _, want := range []string{
		"-s 2001:db8::/32",
		"-p ipv6-icmp",
	} {
		if !strings.Contains(out6, want) {
			t.Errorf("v6 file missing %q:\n%s", want, out6)
		}
	}
	if strings.Contains(out6, "partner feed") {
		t.Errorf("v4-only rule leaked into v6 file:\n%s", out6)
	}

	// Title-derived ordering: ssh (100) renders before ping (300) before the
	// partner feed (400).
	sshIdx := strings.Index(out4, "100 allow ssh")
	pingIdx := strings.Index(out4, "300 allow ping")
	feedIdx := strings.Index(out4, "400 partner feed")
	if !(sshIdx < pingIdx && pingIdx < feedIdx) {
		t.Errorf("rules out of order: ssh=%d ping=%d feed=%d\n%s", sshIdx, pingIdx, feedIdx, out4)
	}
}
