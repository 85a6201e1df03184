package imports

import (
	"testing"
)

func TestParseYAMLCatalog(t *testing.T) {
	content := `defaults:
  chain: INPUT
  action: accept
rules:
  - name: allow ssh
    order: "100"
    protocol: tcp
    destination_port: "22"
    source:
      - 10.0.0.0/8
      - 192.168.0.0/16
  - name: drop telnet
    order: "200"
    action: drop
    protocol: tcp
    destination_port: "23"
  - name: old rule
    disabled: true
`
	path := writeTempFile(t, "catalog.yaml", content)

	cat, err := ParseYAMLCatalog(path)
	if err != nil {
		t.Fatalf("ParseYAMLCatalog() error = %v", err)
	}
	if len(cat.Rules) != 3 {
		t.Fatalf("parsed %d rules, want 3", len(cat.Rules))
	}
	if cat.Defaults == nil || cat.Defaults.Chain != "INPUT" {
		t.Fatalf("defaults not parsed: %+v", cat.Defaults)
	}

	res := cat.ToImportResult()
	if len(res.Rules) != 2 {
		t.Fatalf("converted %d rules, want 2", len(res.Rules))
	}
	if len(res.Skipped) != 1 {
		t.Errorf("skipped = %v, want the disabled entry", res.Skipped)
	}

	ssh := res.Rules[0]
	if ssh.Title != "allow ssh" || ssh.Order != "100" {
		t.Errorf("ssh entry = %+v", ssh)
	}
	if ssh.Chain != "INPUT" || ssh.Action != "accept" {
		t.Errorf("defaults not applied: %+v", ssh)
	}
	if len(ssh.Source) != 2 || ssh.Source[0] != "10.0.0.0/8" {
		t.Errorf("ssh sources = %v", ssh.Source)
	}

	telnet := res.Rules[1]
	if telnet.Action != "drop" {
		t.Errorf("explicit action overridden by default: %+v", telnet)
	}
}

func TestYAMLCatalogToConfig(t *testing.T) {
	content := `rules:
  - name: allow dns
    order: "50"
    protocol: udp
    destination_port: "53"
    action: accept
  - protocol: tcp
    destination_port: "8080"
    action: accept
    comment: app traffic
`
	path := writeTempFile(t, "catalog.yaml", content)

	cat, err := ParseYAMLCatalog(path)
	if err != nil {
		t.Fatal(err)
	}

	conf := cat.ToImportResult().ToConfig()
	if len(conf.Rules) != 2 {
		t.Fatalf("converted %d rules, want 2", len(conf.Rules))
	}

	dns := conf.FindRule("allow dns")
	if dns == nil {
		t.Fatal("named entry lost its title")
	}
	if dns.Order != "50" {
		t.Errorf("dns order = %q, want 50", dns.Order)
	}

	// The unnamed entry gets a generated title from its comment.
	if conf.FindRule("110 app traffic") == nil {
		titles := make([]string, 0, len(conf.Rules))
		for _, r := range conf.Rules {
			titles = append(titles, r.Title)
		}
		t.Errorf("expected generated title %q, got titles %v", "110 app traffic", titles)
	}

	if errs := conf.Validate(); errs.HasErrors() {
		t.Errorf("imported config fails validation: %v", errs)
	}
}

func TestParseYAMLCatalog_BadInput(t *testing.T) {
	path := writeTempFile(t, "broken.yaml", "rules: [oops\n")
	if _, err := ParseYAMLCatalog(path); err == nil {
		t.Fatal("expected parse error")
	}
}
