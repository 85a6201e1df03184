// HCL serialization for Config. Used by the importers to write converted
// rule definitions and by SaveHCL.
package config

import (
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// GenerateHCL generates formatted HCL bytes from a Config.
func GenerateHCL(cfg *Config) ([]byte, error) {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	if cfg.SchemaVersion != "" {
		body.SetAttributeValue("schema_version", cty.StringVal(cfg.SchemaVersion))
		body.AppendNewline()
	}

	if cfg.Defaults != nil {
		appendDefaultsBlock(body, cfg.Defaults)
		body.AppendNewline()
	}

	for i := range cfg.Chains {
		appendChainBlock(body, &cfg.Chains[i])
		body.AppendNewline()
	}

	for i := range cfg.Rules {
		appendRuleBlock(body, &cfg.Rules[i])
		body.AppendNewline()
	}

	return hclwrite.Format(f.Bytes()), nil
}

func appendDefaultsBlock(body *hclwrite.Body, d *Defaults) {
	block := body.AppendNewBlock("defaults", nil)
	b := block.Body()

	if d.Chain != "" {
		b.SetAttributeValue("chain", cty.StringVal(d.Chain))
	}
	if d.Table != "" {
		b.SetAttributeValue("table", cty.StringVal(d.Table))
	}
	if d.Action != "" {
		b.SetAttributeValue("action", cty.StringVal(d.Action))
	}
	if d.Protocol != "" {
		b.SetAttributeValue("protocol", cty.StringVal(d.Protocol))
	}
	if d.StrictProtocolChecking != nil {
		b.SetAttributeValue("strict_protocol_checking", cty.BoolVal(*d.StrictProtocolChecking))
	}
}

func appendChainBlock(body *hclwrite.Body, c *Chain) {
	block := body.AppendNewBlock("chain", []string{c.Name})
	b := block.Body()

	if c.Table != "" {
		b.SetAttributeValue("table", cty.StringVal(c.Table))
	}
	if c.Family != "" {
		b.SetAttributeValue("family", cty.StringVal(c.Family))
	}
	if c.JumpFrom != "" {
		b.SetAttributeValue("jump_from", cty.StringVal(c.JumpFrom))
	}
}

// appendRuleBlock adds a rule block to the body. Unset fields are omitted so
// round-tripped files stay minimal.
func appendRuleBlock(body *hclwrite.Body, rule *Rule) {
	block := body.AppendNewBlock("rule", []string{rule.Title})
	b := block.Body()

	if rule.Action != "" {
		b.SetAttributeValue("action", cty.StringVal(rule.Action))
	}
	if rule.Chain != "" {
		b.SetAttributeValue("chain", cty.StringVal(rule.Chain))
	}
	if rule.Table != "" {
		b.SetAttributeValue("table", cty.StringVal(rule.Table))
	}
	if rule.Protocol != "" {
		b.SetAttributeValue("protocol", cty.StringVal(rule.Protocol))
	}
	if len(rule.Source) > 0 {
		b.SetAttributeValue("source", toCtyStringList(rule.Source))
	}
	if rule.SourcePort != "" {
		b.SetAttributeValue("source_port", cty.StringVal(rule.SourcePort))
	}
	if len(rule.Destination) > 0 {
		b.SetAttributeValue("destination", toCtyStringList(rule.Destination))
	}
	if rule.DestinationPort != "" {
		b.SetAttributeValue("destination_port", cty.StringVal(rule.DestinationPort))
	}
	if rule.IncomingInterface != "" {
		b.SetAttributeValue("incoming_interface", cty.StringVal(rule.IncomingInterface))
	}
	if rule.OutgoingInterface != "" {
		b.SetAttributeValue("outgoing_interface", cty.StringVal(rule.OutgoingInterface))
	}
	if len(rule.State) > 0 {
		b.SetAttributeValue("state", toCtyStringList(rule.State))
	}
	if rule.Limit != "" {
		b.SetAttributeValue("limit", cty.StringVal(rule.Limit))
	}
	if rule.LimitBurst > 0 {
		b.SetAttributeValue("limit_burst", cty.NumberIntVal(int64(rule.LimitBurst)))
	}
	if rule.LogLevel != "" {
		b.SetAttributeValue("log_level", cty.StringVal(rule.LogLevel))
	}
	if rule.LogPrefix != "" {
		b.SetAttributeValue("log_prefix", cty.StringVal(rule.LogPrefix))
	}
	if rule.RejectWith != "" {
		b.SetAttributeValue("reject_with", cty.StringVal(rule.RejectWith))
	}
	if rule.ToPort != "" {
		b.SetAttributeValue("to_port", cty.StringVal(rule.ToPort))
	}
	if rule.Order != "" {
		b.SetAttributeValue("order", cty.StringVal(rule.Order))
	}
	if rule.Priority != "" {
		b.SetAttributeValue("priority", cty.StringVal(rule.Priority))
	}
	if rule.Version != "" {
		b.SetAttributeValue("version", cty.StringVal(rule.Version))
	}
	if rule.StrictProtocolChecking != nil {
		b.SetAttributeValue("strict_protocol_checking", cty.BoolVal(*rule.StrictProtocolChecking))
	}
	if rule.Raw != "" {
		b.SetAttributeValue("raw", cty.StringVal(rule.Raw))
	}
	if rule.RawAfter != "" {
		b.SetAttributeValue("raw_after", cty.StringVal(rule.RawAfter))
	}
	if rule.Comment != "" {
		b.SetAttributeValue("comment", cty.StringVal(rule.Comment))
	}
}

// toCtyStringList converts a []string to cty.Value list
func toCtyStringList(strs []string) cty.Value {
	if len(strs) == 0 {
		return cty.ListValEmpty(cty.String)
	}
	vals := make([]cty.Value, len(strs))
	for i, s := range strs {
		vals[i] = cty.StringVal(s)
	}
	return cty.ListVal(vals)
}
