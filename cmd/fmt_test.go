package cmd

import (
	"os"
	"strings"
	"testing"

	"grimm.is/firn/internal/config"
)

func TestRunFmt_WriteInPlace(t *testing.T) {
	configPath := writeConfig(t, "messy.hcl", `
defaults {
      action                 =      "accept"
}

rule "100 allow ssh" {
  protocol="tcp"
      destination_port    = "22"
}
`)

	if err := RunFmt([]string{"-w", configPath}); err != nil {
		t.Fatalf("RunFmt() error = %v, want nil", err)
	}

	formatted, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("read formatted file: %v", err)
	}
	text := string(formatted)

	// The defaults block survives instead of being baked into the rule.
	if !strings.Contains(text, "defaults {") {
		t.Errorf("defaults block lost:\n%s", text)
	}
	if !strings.Contains(text, `rule "100 allow ssh" {`) {
		t.Errorf("rule block missing:\n%s", text)
	}
	if strings.Count(text, `action = "accept"`) != 1 {
		t.Errorf("defaults applied during fmt:\n%s", text)
	}

	// Formatted output still loads.
	if _, err := config.LoadFile(configPath); err != nil {
		t.Errorf("formatted config does not load: %v", err)
	}
}

func TestRunFmt_NoArgs(t *testing.T) {
	if err := RunFmt([]string{}); err == nil {
		t.Error("RunFmt() error = nil, want usage error")
	}
}

func TestRunFmt_BadFile(t *testing.T) {
	configPath := writeConfig(t, "broken.hcl", `rule "x" {`)

	if err := RunFmt([]string{configPath}); err == nil {
		t.Error("RunFmt() error = nil, want load error")
	}
}
