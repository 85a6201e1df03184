package imports

import "testing"

func TestToConfigTitleDedupe(t *testing.T) {
	r := &ImportResult{
		Chains: []ImportedChain{{Name: "dmz", Table: "filter", JumpFrom: "FORWARD"}},
		Rules: []ImportedRule{
			{CanImport: true, Title: "allow ssh", Action: "accept"},
			{CanImport: true, Title: "allow ssh", Action: "drop"},
			{CanImport: false, Title: "never", Action: "accept"},
		},
	}

	conf := r.ToConfig()

	if len(conf.Rules) != 2 {
		t.Fatalf("got %d rules, want 2", len(conf.Rules))
	}
	if conf.Rules[0].Title != "allow ssh" {
		t.Errorf("first title = %q", conf.Rules[0].Title)
	}
	if conf.Rules[1].Title != "allow ssh 110" {
		t.Errorf("duplicate title not disambiguated: %q", conf.Rules[1].Title)
	}
	if conf.FindRule("never") != nil {
		t.Error("unimportable rule leaked into config")
	}

	dmz := conf.FindChain("dmz")
	if dmz == nil || dmz.JumpFrom != "FORWARD" {
		t.Errorf("chain not carried over: %+v", dmz)
	}
}
