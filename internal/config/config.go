package config

import (
	"fmt"

	"grimm.is/firn/internal/rules"
)

// CurrentSchemaVersion defines the current schema version of the configuration.
const CurrentSchemaVersion = "1.0"

// Config is the top-level structure for a rule definition file.
type Config struct {
	// Schema version for backward compatibility (e.g., "1.0", "2.0")
	// If empty, defaults to "1.0" for legacy configs
	SchemaVersion string `hcl:"schema_version,optional" json:"schema_version,omitempty"`

	Defaults *Defaults `hcl:"defaults,block" json:"defaults,omitempty"`
	Chains   []Chain   `hcl:"chain,block" json:"chains,omitempty"`
	Rules    []Rule    `hcl:"rule,block" json:"rules"`
}

// Defaults supplies values for rule fields left unset. Applied once after
// loading; an explicit value on a rule always wins.
type Defaults struct {
	Chain                  string `hcl:"chain,optional" json:"chain,omitempty"`
	Table                  string `hcl:"table,optional" json:"table,omitempty"`
	Action                 string `hcl:"action,optional" json:"action,omitempty"`
	Protocol               string `hcl:"protocol,optional" json:"protocol,omitempty"`
	StrictProtocolChecking *bool  `hcl:"strict_protocol_checking,optional" json:"strict_protocol_checking,omitempty"`
}

// Chain declares a custom chain. JumpFrom optionally names a built-in chain
// that gets an unconditional jump into this one.
type Chain struct {
	Name     string `hcl:"name,label" json:"name"`
	Table    string `hcl:"table,optional" json:"table,omitempty"`
	Family   string `hcl:"family,optional" json:"family,omitempty"` // ipv4, ipv6 or empty for both
	JumpFrom string `hcl:"jump_from,optional" json:"jump_from,omitempty"`
}

// Rule is one declarative firewall rule. Every field except the title is
// optional; "" (or nil) means "not set" and is omitted from rendered output.
type Rule struct {
	Title string `hcl:"title,label" json:"title"`

	Action            string   `hcl:"action,optional" json:"action,omitempty"`
	Chain             string   `hcl:"chain,optional" json:"chain,omitempty"`
	Comment           string   `hcl:"comment,optional" json:"comment,omitempty"`
	Destination       []string `hcl:"destination,optional" json:"destination,omitempty"`
	DestinationPort   string   `hcl:"destination_port,optional" json:"destination_port,omitempty"`
	IncomingInterface string   `hcl:"incoming_interface,optional" json:"incoming_interface,omitempty"`
	OutgoingInterface string   `hcl:"outgoing_interface,optional" json:"outgoing_interface,omitempty"`
	LogLevel          string   `hcl:"log_level,optional" json:"log_level,omitempty"`
	LogPrefix         string   `hcl:"log_prefix,optional" json:"log_prefix,omitempty"`
	Limit             string   `hcl:"limit,optional" json:"limit,omitempty"`
	LimitBurst        int      `hcl:"limit_burst,optional" json:"limit_burst,omitempty"`
	Order             string   `hcl:"order,optional" json:"order,omitempty"`
	Priority          string   `hcl:"priority,optional" json:"priority,omitempty"` // Deprecated: use Order
	Protocol          string   `hcl:"protocol,optional" json:"protocol,omitempty"`
	Raw               string   `hcl:"raw,optional" json:"raw,omitempty"`
	RawAfter          string   `hcl:"raw_after,optional" json:"raw_after,omitempty"`
	RejectWith        string   `hcl:"reject_with,optional" json:"reject_with,omitempty"`
	Source            []string `hcl:"source,optional" json:"source,omitempty"`
	SourcePort        string   `hcl:"source_port,optional" json:"source_port,omitempty"`
	State             []string `hcl:"state,optional" json:"state,omitempty"`

	StrictProtocolChecking *bool `hcl:"strict_protocol_checking,optional" json:"strict_protocol_checking,omitempty"`

	Table   string `hcl:"table,optional" json:"table,omitempty"`
	ToPort  string `hcl:"to_port,optional" json:"to_port,omitempty"`
	Version string `hcl:"version,optional" json:"version,omitempty"`
}

// ApplyDefaults fills unset rule fields from the defaults block.
func (c *Config) ApplyDefaults() {
	if c.Defaults == nil {
		return
	}
	d := c.Defaults
	for i := range c.Rules {
		r := &c.Rules[i]
		if r.Chain == "" {
			r.Chain = d.Chain
		}
		if r.Table == "" {
			r.Table = d.Table
		}
		if r.Action == "" {
			r.Action = d.Action
		}
		if r.Protocol == "" {
			r.Protocol = d.Protocol
		}
		if r.StrictProtocolChecking == nil {
			r.StrictProtocolChecking = d.StrictProtocolChecking
		}
	}
}

// FindRule returns the rule with the given title, or nil.
func (c *Config) FindRule(title string) *Rule {
	for i := range c.Rules {
		if c.Rules[i].Title == title {
			return &c.Rules[i]
		}
	}
	return nil
}

// FindChain returns the declared chain with the given name, or nil.
func (c *Config) FindChain(name string) *Chain {
	for i := range c.Chains {
		if c.Chains[i].Name == name {
			return &c.Chains[i]
		}
	}
	return nil
}

// Declaration converts the rule into the processing core's input form.
func (r *Rule) Declaration() rules.Declaration {
	return rules.Declaration{
		Title:                  r.Title,
		Action:                 r.Action,
		Chain:                  r.Chain,
		Comment:                r.Comment,
		Destination:            r.Destination,
		DestinationPort:        r.DestinationPort,
		IncomingInterface:      r.IncomingInterface,
		OutgoingInterface:      r.OutgoingInterface,
		LogLevel:               r.LogLevel,
		LogPrefix:              r.LogPrefix,
		Limit:                  r.Limit,
		LimitBurst:             r.LimitBurst,
		Order:                  r.Order,
		Priority:               r.Priority,
		Protocol:               r.Protocol,
		Raw:                    r.Raw,
		RawAfter:               r.RawAfter,
		RejectWith:             r.RejectWith,
		Source:                 r.Source,
		SourcePort:             r.SourcePort,
		State:                  r.State,
		StrictProtocolChecking: r.StrictProtocolChecking,
		Table:                  r.Table,
		ToPort:                 r.ToPort,
		Version:                r.Version,
	}
}

// String identifies the rule for log output.
func (r *Rule) String() string {
	return fmt.Sprintf("rule %q", r.Title)
}
