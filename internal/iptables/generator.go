package iptables

import (
	"fmt"
	"sync"

	"grimm.is/firn/internal/config"
	"grimm.is/firn/internal/logging"
	"grimm.is/firn/internal/rules"
)

// Generator is the fan-in point for the rule processor: Activate seeds a
// family's ruleset on first use, Emit renders one record and appends it.
// Safe for concurrent use.
type Generator struct {
	mu     sync.Mutex
	files  *FileSet
	chains []config.Chain
	log    *logging.Logger

	v4Once sync.Once
	v6Once sync.Once
}

var _ rules.Emitter = (*Generator)(nil)

// NewGenerator returns a Generator that seeds activated families with the
// given custom chain declarations.
func NewGenerator(chains []config.Chain) *Generator {
	return &Generator{
		files:  NewFileSet(),
		chains: chains,
		log:    logging.WithComponent("iptables"),
	}
}

// Activate brings a family's ruleset under management. Redundant calls are
// free, so the processor activates alongside every dispatch.
func (g *Generator) Activate(family rules.Family) {
	if family == rules.FamilyIPv6 {
		g.v6Once.Do(func() { g.seed(rules.FamilyIPv6) })
		return
	}
	g.v4Once.Do(func() { g.seed(rules.FamilyIPv4) })
}

func (g *Generator) seed(family rules.Family) {
	g.mu.Lock()
	defer g.mu.Unlock()

	f := g.files.ensure(family)
	f.SetHeader(
		fmt.Sprintf("Generated by firn for %s.", family),
		fmt.Sprintf("Apply with %s; do not edit by hand.", RestoreCommand(family)),
	)

	for _, c := range g.chains {
		if !chainAppliesTo(c, family) {
			continue
		}
		f.DeclareChain(c.Table, c.Name)
		if c.JumpFrom != "" {
			f.AddPreamble(c.Table, fmt.Sprintf("-A %s -j %s", c.JumpFrom, c.Name))
		}
	}

	g.log.Debug("activated family", "family", family.String(), "chains", len(g.chains))
}

// chainAppliesTo checks a chain declaration's family restriction.
func chainAppliesTo(c config.Chain, family rules.Family) bool {
	switch c.Family {
	case "ipv4":
		return family == rules.FamilyIPv4
	case "ipv6":
		return family == rules.FamilyIPv6
	}
	return true
}

// Emit renders the rule and appends it to the family's ruleset.
func (g *Generator) Emit(title string, family rules.Family, opts rules.RuleOptions) error {
	lines, err := RenderRule(title, family, opts)
	if err != nil {
		return fmt.Errorf("render for %s: %w", family, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.files.ensure(family).Append(Entry{
		Table: opts.Table,
		Chain: chainOrDefault(opts.Chain),
		Order: opts.Order,
		Title: title,
		Lines: lines,
	})

	g.log.Debug("emitted rule", "title", title, "family", family.String(), "lines", len(lines))
	return nil
}

// FileSet returns the accumulated rulesets.
func (g *Generator) FileSet() *FileSet {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.files
}

// RuleCount returns the number of rules emitted for a family.
func (g *Generator) RuleCount(family rules.Family) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if f, ok := g.files.File(family); ok {
		return f.RuleCount()
	}
	return 0
}
