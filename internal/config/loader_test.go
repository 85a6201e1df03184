package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func boolPtr(b bool) *bool { return &b }

func TestLoadHCL_RuleFile(t *testing.T) {
	hcl := `
schema_version = "1.0"

defaults {
  chain = "INPUT"
  table = "filter"
}

chain "ssh_guard" {
  table     = "filter"
  jump_from = "INPUT"
}

rule "100 allow ssh" {
  action           = "accept"
  protocol         = "tcp"
  destination_port = "22"
  source           = ["10.0.0.0/8", "2001:db8::/32"]
  state            = ["NEW"]
}

rule "900 drop the rest" {
  action = "drop"
}
`
	cfg, err := LoadHCL([]byte(hcl), "test.hcl")
	if err != nil {
		t.Fatalf("LoadHCL() error = %v", err)
	}

	if cfg.SchemaVersion != "1.0" {
		t.Errorf("SchemaVersion = %q, want %q", cfg.SchemaVersion, "1.0")
	}
	if len(cfg.Chains) != 1 {
		t.Errorf("len(Chains) = %d, want 1", len(cfg.Chains))
	}
	if len(cfg.Rules) != 2 {
		t.Fatalf("len(Rules) = %d, want 2", len(cfg.Rules))
	}

	ssh := cfg.FindRule("100 allow ssh")
	if ssh == nil {
		t.Fatal("FindRule() did not find rule by title")
	}
	if ssh.Protocol != "tcp" {
		t.Errorf("Protocol = %q, want %q", ssh.Protocol, "tcp")
	}
	if ssh.DestinationPort != "22" {
		t.Errorf("DestinationPort = %q, want %q", ssh.DestinationPort, "22")
	}
	if len(ssh.Source) != 2 {
		t.Errorf("len(Source) = %d, want 2", len(ssh.Source))
	}

	guard := cfg.FindChain("ssh_guard")
	if guard == nil {
		t.Fatal("FindChain() did not find declared chain")
	}
	if guard.JumpFrom != "INPUT" {
		t.Errorf("JumpFrom = %q, want %q", guard.JumpFrom, "INPUT")
	}

	// The defaults block fills in fields the rule left unset.
	drop := cfg.FindRule("900 drop the rest")
	if drop == nil {
		t.Fatal("FindRule() did not find second rule")
	}
	if drop.Chain != "INPUT" {
		t.Errorf("Chain = %q, want %q (from defaults)", drop.Chain, "INPUT")
	}
	if drop.Table != "filter" {
		t.Errorf("Table = %q, want %q (from defaults)", drop.Table, "filter")
	}
}

func TestLoadHCL_ExplicitValueBeatsDefault(t *testing.T) {
	hcl := `
defaults {
  chain  = "INPUT"
  action = "accept"
}

rule "outbound dns" {
  chain            = "OUTPUT"
  protocol         = "udp"
  destination_port = "53"
}
`
	cfg, err := LoadHCL([]byte(hcl), "test.hcl")
	if err != nil {
		t.Fatalf("LoadHCL() error = %v", err)
	}

	r := cfg.Rules[0]
	if r.Chain != "OUTPUT" {
		t.Errorf("Chain = %q, want %q (explicit value must win)", r.Chain, "OUTPUT")
	}
	if r.Action != "accept" {
		t.Errorf("Action = %q, want %q (from defaults)", r.Action, "accept")
	}
}

func TestLoadHCL_SkipDefaults(t *testing.T) {
	hcl := `
defaults {
  chain = "INPUT"
}

rule "minimal" {
  action = "drop"
}
`
	result, err := LoadHCLWithOptions([]byte(hcl), "test.hcl", LoadOptions{SkipDefaults: true})
	if err != nil {
		t.Fatalf("LoadHCLWithOptions() error = %v", err)
	}

	if result.Config.Rules[0].Chain != "" {
		t.Errorf("Chain = %q, want empty (defaults skipped)", result.Config.Rules[0].Chain)
	}
}

func TestLoadHCL_MissingVersionDefaultsTo1_0(t *testing.T) {
	hcl := `
rule "anything" {
  action = "accept"
}
`
	result, err := LoadHCLWithOptions([]byte(hcl), "test.hcl", DefaultLoadOptions())
	if err != nil {
		t.Fatalf("LoadHCLWithOptions() error = %v", err)
	}

	if result.Config.SchemaVersion != "1.0" {
		t.Errorf("SchemaVersion = %q, want %q (default)", result.Config.SchemaVersion, "1.0")
	}
	if result.OriginalVersion.String() != "1.0" {
		t.Errorf("OriginalVersion = %s, want 1.0", result.OriginalVersion)
	}
}

func TestLoadHCL_UnsupportedVersion(t *testing.T) {
	hcl := `
schema_version = "9.0"

rule "future" {
  action = "accept"
}
`
	_, err := LoadHCL([]byte(hcl), "test.hcl")
	if err == nil {
		t.Fatal("LoadHCL() = nil error, want unsupported version error")
	}
	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("error = %v, want mention of unsupported version", err)
	}
}

func TestLoadHCL_StrictVersion(t *testing.T) {
	hcl := `
schema_version = "1.1"

rule "newer minor" {
  action = "accept"
}
`
	// Minor version drift is fine by default.
	result, err := LoadHCLWithOptions([]byte(hcl), "test.hcl", DefaultLoadOptions())
	if err != nil {
		t.Fatalf("LoadHCLWithOptions() error = %v", err)
	}
	if result.OriginalVersion.String() != "1.1" {
		t.Errorf("OriginalVersion = %s, want 1.1", result.OriginalVersion)
	}

	// But not under StrictVersion.
	_, err = LoadHCLWithOptions([]byte(hcl), "test.hcl", LoadOptions{StrictVersion: true})
	if err == nil {
		t.Fatal("LoadHCLWithOptions(strict) = nil error, want version mismatch error")
	}
}

func TestLoadHCL_ParseError(t *testing.T) {
	_, err := LoadHCL([]byte(`rule "broken" {`), "broken.hcl")
	if err == nil {
		t.Fatal("LoadHCL() = nil error, want parse error")
	}
}

func TestLoadJSON_RuleFile(t *testing.T) {
	jsonContent := `{
  "schema_version": "1.0",
  "defaults": {"chain": "FORWARD"},
  "rules": [
    {"title": "allow web", "action": "accept", "protocol": "tcp", "destination_port": "80,443"}
  ]
}`
	cfg, err := LoadJSON([]byte(jsonContent))
	if err != nil {
		t.Fatalf("LoadJSON() error = %v", err)
	}

	if len(cfg.Rules) != 1 {
		t.Fatalf("len(Rules) = %d, want 1", len(cfg.Rules))
	}
	if cfg.Rules[0].DestinationPort != "80,443" {
		t.Errorf("DestinationPort = %q, want %q", cfg.Rules[0].DestinationPort, "80,443")
	}
	if cfg.Rules[0].Chain != "FORWARD" {
		t.Errorf("Chain = %q, want %q (from defaults)", cfg.Rules[0].Chain, "FORWARD")
	}
}

func TestLoadFile_DetectsFormat(t *testing.T) {
	tmpDir := t.TempDir()

	hclPath := filepath.Join(tmpDir, "rules.hcl")
	hclContent := `
rule "from hcl" {
  action = "accept"
}
`
	if err := os.WriteFile(hclPath, []byte(hclContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(hclPath)
	if err != nil {
		t.Fatalf("LoadFile(hcl) error = %v", err)
	}
	if cfg.FindRule("from hcl") == nil {
		t.Error("HCL rule not loaded")
	}

	jsonPath := filepath.Join(tmpDir, "rules.json")
	jsonContent := `{"rules": [{"title": "from json", "action": "drop"}]}`
	if err := os.WriteFile(jsonPath, []byte(jsonContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err = LoadFile(jsonPath)
	if err != nil {
		t.Fatalf("LoadFile(json) error = %v", err)
	}
	if cfg.FindRule("from json") == nil {
		t.Error("JSON rule not loaded")
	}
}

func TestLoadFile_UnknownExtensionFallsBackToJSON(t *testing.T) {
	tmpDir := t.TempDir()

	path := filepath.Join(tmpDir, "rules.conf")
	content := `{"rules": [{"title": "sideways", "action": "accept"}]}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result, err := LoadFileWithOptions(path, DefaultLoadOptions())
	if err != nil {
		t.Fatalf("LoadFileWithOptions() error = %v", err)
	}
	if result.Config.FindRule("sideways") == nil {
		t.Error("rule not loaded from JSON fallback")
	}

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "parsed as JSON") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want a JSON fallback warning", result.Warnings)
	}
}

func TestLoadHCL_StrictProtocolCheckingTriState(t *testing.T) {
	hcl := `
defaults {
  strict_protocol_checking = false
}

rule "inherits" {
  action = "accept"
}

rule "overrides" {
  action                   = "accept"
  strict_protocol_checking = true
}
`
	cfg, err := LoadHCL([]byte(hcl), "test.hcl")
	if err != nil {
		t.Fatalf("LoadHCL() error = %v", err)
	}

	inherits := cfg.FindRule("inherits")
	if inherits.StrictProtocolChecking == nil || *inherits.StrictProtocolChecking {
		t.Error("unset strict_protocol_checking did not inherit false from defaults")
	}

	overrides := cfg.FindRule("overrides")
	if overrides.StrictProtocolChecking == nil || !*overrides.StrictProtocolChecking {
		t.Error("explicit strict_protocol_checking = true was not preserved")
	}
}

func TestSaveFile_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &Config{
		SchemaVersion: "1.0",
		Rules: []Rule{
			{Title: "persisted", Action: "accept", Protocol: "tcp", DestinationPort: "8080"},
		},
	}

	hclPath := filepath.Join(tmpDir, "out.hcl")
	if err := SaveFile(cfg, hclPath); err != nil {
		t.Fatalf("SaveFile(hcl) error = %v", err)
	}
	loaded, err := LoadFile(hclPath)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.FindRule("persisted") == nil {
		t.Error("rule lost in HCL round trip")
	}

	jsonPath := filepath.Join(tmpDir, "out.json")
	if err := SaveFile(cfg, jsonPath); err != nil {
		t.Fatalf("SaveFile(json) error = %v", err)
	}
	loaded, err = LoadFile(jsonPath)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.FindRule("persisted") == nil {
		t.Error("rule lost in JSON round trip")
	}
}
