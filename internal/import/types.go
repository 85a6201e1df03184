package imports

import (
	"fmt"
	"strings"

	"grimm.is/firn/internal/config"
)

// ImportResult holds rules recovered from a foreign format, plus migration
// notes for whatever could not be carried over mechanically.
type ImportResult struct {
	Rules  []ImportedRule
	Chains []ImportedChain

	// Migration guidance
	Warnings    []string
	ManualSteps []string
	Skipped     []string
}

// ImportedRule is one rule in intermediate form, before titles are assigned.
type ImportedRule struct {
	Title             string // optional; generated during conversion when empty
	Order             string
	Action            string
	Chain             string
	Comment           string
	Source            []string
	Destination       []string
	SourcePort        string
	DestinationPort   string
	IncomingInterface string
	OutgoingInterface string
	Protocol          string
	State             []string
	Limit             string
	LimitBurst        int
	LogPrefix         string
	LogLevel          string
	RejectWith        string
	ToPort            string
	Table             string
	Version           string

	CanImport bool
	Notes     []string
}

// ImportedChain represents a custom chain discovered in the source.
type ImportedChain struct {
	Name     string
	Table    string
	JumpFrom string
}

// ToConfig materializes the imported rules as a rule file. Rules without a
// title get one generated from their comment (or chain), prefixed with an
// order number so the original ordering survives the conversion.
func (r *ImportResult) ToConfig() *config.Config {
	cfg := &config.Config{
		SchemaVersion: config.CurrentSchemaVersion,
	}

	for _, ch := range r.Chains {
		cfg.Chains = append(cfg.Chains, config.Chain{
			Name:     ch.Name,
			Table:    ch.Table,
			JumpFrom: ch.JumpFrom,
		})
	}

	seen := make(map[string]bool)
	n := 100
	for _, imp := range r.Rules {
		if !imp.CanImport {
			continue
		}

		title := imp.Title
		if title == "" {
			title = fmt.Sprintf("%d %s", n, titleBase(imp))
		}
		if seen[title] {
			title = fmt.Sprintf("%s %d", title, n)
		}
		seen[title] = true

		cfg.Rules = append(cfg.Rules, config.Rule{
			Title:             title,
			Order:             imp.Order,
			Action:            imp.Action,
			Chain:             imp.Chain,
			Comment:           imp.Comment,
			Source:            imp.Source,
			Destination:       imp.Destination,
			SourcePort:        imp.SourcePort,
			DestinationPort:   imp.DestinationPort,
			IncomingInterface: imp.IncomingInterface,
			OutgoingInterface: imp.OutgoingInterface,
			Protocol:          imp.Protocol,
			State:             imp.State,
			Limit:             imp.Limit,
			LimitBurst:        imp.LimitBurst,
			LogPrefix:         imp.LogPrefix,
			LogLevel:          imp.LogLevel,
			RejectWith:        imp.RejectWith,
			ToPort:            imp.ToPort,
			Table:             imp.Table,
			Version:           imp.Version,
		})
		n += 10
	}

	return cfg
}

// titleBase derives a human-readable stem for a generated title.
func titleBase(imp ImportedRule) string {
	if imp.Comment != "" {
		return imp.Comment
	}
	chain := imp.Chain
	if chain == "" {
		chain = "INPUT"
	}
	return fmt.Sprintf("%s rule", strings.ToLower(chain))
}
