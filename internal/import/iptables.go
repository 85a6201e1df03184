package imports

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"grimm.is/firn/internal/iptables"
)

// IPTablesConfig holds parsed iptables-save output.
type IPTablesConfig struct {
	Tables   map[string]*IPTablesTable
	Warnings []string
}

// IPTablesTable represents one table section of the dump.
type IPTablesTable struct {
	Name       string
	ChainOrder []string
	Chains     map[string]*IPTablesChain
}

// IPTablesChain represents a chain and its rules in declaration order.
type IPTablesChain struct {
	Name    string
	Policy  string // ACCEPT, DROP (built-in chains), "-" for custom ones
	Rules   []IPTablesRule
	Packets uint64
	Bytes   uint64
}

// IPTablesRule is one -A line, decomposed into the options firn understands.
type IPTablesRule struct {
	Chain        string
	Protocol     string
	Source       string
	Destination  string
	InInterface  string
	OutInterface string
	SrcPort      string
	DstPort      string
	States       []string
	Limit        string
	LimitBurst   int
	LogPrefix    string
	LogLevel     string
	Target       string
	RejectWith   string
	ToPorts      string
	Comment      string
	Matches      []string // -m modules named on the line
	Negated      bool     // line uses ! negation somewhere
	Line         string   // original text, for notes
}

var (
	ruleChainRe     = regexp.MustCompile(`^-A\s+(\S+)`)
	ruleProtoRe     = regexp.MustCompile(`\s-p\s+(\S+)`)
	ruleSrcRe       = regexp.MustCompile(`\s-s\s+(\S+)`)
	ruleDstRe       = regexp.MustCompile(`\s-d\s+(\S+)`)
	ruleInIfRe      = regexp.MustCompile(`\s-i\s+(\S+)`)
	ruleOutIfRe     = regexp.MustCompile(`\s-o\s+(\S+)`)
	ruleSportRe     = regexp.MustCompile(`--(?:sport|sports|source-ports)\s+(\S+)`)
	ruleDportRe     = regexp.MustCompile(`--(?:dport|dports|destination-ports)\s+(\S+)`)
	ruleStateRe     = regexp.MustCompile(`--(?:ctstate|state)\s+(\S+)`)
	ruleLimitRe     = regexp.MustCompile(`--limit\s+(\S+)`)
	ruleBurstRe     = regexp.MustCompile(`--limit-burst\s+(\d+)`)
	ruleSrcRangeRe  = regexp.MustCompile(`--src-range\s+(\S+)`)
	ruleDstRangeRe  = regexp.MustCompile(`--dst-range\s+(\S+)`)
	ruleMatchRe     = regexp.MustCompile(`\s-m\s+(\S+)`)
	ruleCommentRe   = regexp.MustCompile(`--comment\s+"([^"]*)"`)
	ruleTargetRe    = regexp.MustCompile(`\s-j\s+(\S+)`)
	ruleRejectRe    = regexp.MustCompile(`--reject-with\s+(\S+)`)
	ruleToPortsRe   = regexp.MustCompile(`--to-ports\s+(\S+)`)
	ruleLogPrefixRe = regexp.MustCompile(`--log-prefix\s+"([^"]*)"`)
	ruleLogLevelRe  = regexp.MustCompile(`--log-level\s+(\S+)`)
)

// matchModules firn can reconstruct from a dump. The protocol modules appear
// because iptables-save spells port matches as "-p tcp -m tcp --dport N".
var knownMatchModules = map[string]bool{
	"tcp": true, "udp": true, "udplite": true, "sctp": true, "dccp": true,
	"icmp": true, "icmp6": true, "icmpv6": true, "ipv6-icmp": true,
	"multiport": true, "conntrack": true, "state": true,
	"limit": true, "comment": true, "iprange": true,
}

// ParseIPTablesSave parses a file produced by iptables-save or ip6tables-save.
func ParseIPTablesSave(path string) (*IPTablesConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open iptables-save output: %w", err)
	}
	defer file.Close()

	return ReadIPTablesSave(file)
}

// ReadIPTablesSave parses iptables-save output from a reader.
func ReadIPTablesSave(r io.Reader) (*IPTablesConfig, error) {
	cfg := &IPTablesConfig{
		Tables: make(map[string]*IPTablesTable),
	}

	scanner := bufio.NewScanner(r)
	var currentTable *IPTablesTable

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Table declaration: *filter, *nat, *mangle, *raw
		if strings.HasPrefix(line, "*") {
			name := strings.TrimPrefix(line, "*")
			currentTable = &IPTablesTable{
				Name:   name,
				Chains: make(map[string]*IPTablesChain),
			}
			cfg.Tables[name] = currentTable
			continue
		}

		// Chain declaration: :INPUT ACCEPT [0:0]
		if strings.HasPrefix(line, ":") && currentTable != nil {
			if chain := parseChainDeclaration(line); chain != nil {
				currentTable.addChain(chain)
			}
			continue
		}

		// Rule: -A INPUT -p tcp --dport 22 -j ACCEPT
		if strings.HasPrefix(line, "-A ") && currentTable != nil {
			rule := parseIPTablesRuleLine(line)
			if rule == nil {
				cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("unparseable line: %s", line))
				continue
			}
			chain, ok := currentTable.Chains[rule.Chain]
			if !ok {
				chain = &IPTablesChain{Name: rule.Chain, Policy: "-"}
				currentTable.addChain(chain)
			}
			chain.Rules = append(chain.Rules, *rule)
			continue
		}

		if line == "COMMIT" {
			currentTable = nil
		}
	}

	return cfg, scanner.Err()
}

func (t *IPTablesTable) addChain(chain *IPTablesChain) {
	if _, ok := t.Chains[chain.Name]; !ok {
		t.ChainOrder = append(t.ChainOrder, chain.Name)
	}
	t.Chains[chain.Name] = chain
}

func parseChainDeclaration(line string) *IPTablesChain {
	// Format: :CHAINNAME POLICY [packets:bytes]
	line = strings.TrimPrefix(line, ":")

	parts := strings.Fields(line)
	if len(parts) < 2 {
		return nil
	}

	chain := &IPTablesChain{
		Name:   parts[0],
		Policy: parts[1],
	}

	if len(parts) >= 3 {
		counters := strings.Trim(parts[2], "[]")
		fmt.Sscanf(counters, "%d:%d", &chain.Packets, &chain.Bytes)
	}

	return chain
}

func parseIPTablesRuleLine(line string) *IPTablesRule {
	rule := &IPTablesRule{Line: line}

	if m := ruleChainRe.FindStringSubmatch(line); len(m) > 1 {
		rule.Chain = m[1]
	} else {
		return nil
	}

	rule.Negated = strings.Contains(line, "! ")

	if m := ruleProtoRe.FindStringSubmatch(line); len(m) > 1 {
		rule.Protocol = m[1]
	}
	if m := ruleSrcRe.FindStringSubmatch(line); len(m) > 1 {
		rule.Source = m[1]
	}
	if m := ruleDstRe.FindStringSubmatch(line); len(m) > 1 {
		rule.Destination = m[1]
	}
	if m := ruleSrcRangeRe.FindStringSubmatch(line); len(m) > 1 {
		rule.Source = m[1]
	}
	if m := ruleDstRangeRe.FindStringSubmatch(line); len(m) > 1 {
		rule.Destination = m[1]
	}
	if m := ruleInIfRe.FindStringSubmatch(line); len(m) > 1 {
		rule.InInterface = m[1]
	}
	if m := ruleOutIfRe.FindStringSubmatch(line); len(m) > 1 {
		rule.OutInterface = m[1]
	}
	if m := ruleSportRe.FindStringSubmatch(line); len(m) > 1 {
		rule.SrcPort = m[1]
	}
	if m := ruleDportRe.FindStringSubmatch(line); len(m) > 1 {
		rule.DstPort = m[1]
	}
	if m := ruleStateRe.FindStringSubmatch(line); len(m) > 1 {
		rule.States = strings.Split(m[1], ",")
	}
	if m := ruleLimitRe.FindStringSubmatch(line); len(m) > 1 {
		rule.Limit = m[1]
	}
	if m := ruleBurstRe.FindStringSubmatch(line); len(m) > 1 {
		rule.LimitBurst, _ = strconv.Atoi(m[1])
	}
	if m := ruleCommentRe.FindStringSubmatch(line); len(m) > 1 {
		rule.Comment = m[1]
	}
	if m := ruleTargetRe.FindStringSubmatch(line); len(m) > 1 {
		rule.Target = m[1]
	}
	if m := ruleRejectRe.FindStringSubmatch(line); len(m) > 1 {
		rule.RejectWith = m[1]
	}
	if m := ruleToPortsRe.FindStringSubmatch(line); len(m) > 1 {
		rule.ToPorts = m[1]
	}
	if m := ruleLogPrefixRe.FindStringSubmatch(line); len(m) > 1 {
		rule.LogPrefix = m[1]
	}
	if m := ruleLogLevelRe.FindStringSubmatch(line); len(m) > 1 {
		rule.LogLevel = m[1]
	}
	for _, m := range ruleMatchRe.FindAllStringSubmatch(line, -1) {
		if len(m) > 1 {
			rule.Matches = append(rule.Matches, m[1])
		}
	}

	return rule
}

// ToImportResult converts the parsed dump into intermediate imported rules.
// Only the filter and nat tables are converted; rules in other tables are
// reported as manual steps.
func (c *IPTablesConfig) ToImportResult() *ImportResult {
	result := &ImportResult{Warnings: c.Warnings}

	if filter, ok := c.Tables["filter"]; ok {
		convertTable(filter, result)
	}
	if nat, ok := c.Tables["nat"]; ok {
		convertTable(nat, result)
	}

	for _, name := range []string{"mangle", "raw", "security"} {
		table, ok := c.Tables[name]
		if !ok {
			continue
		}
		count := 0
		for _, chain := range table.Chains {
			count += len(chain.Rules)
		}
		if count > 0 {
			result.ManualSteps = append(result.ManualSteps,
				fmt.Sprintf("%d rules in the %s table were not imported", count, name))
		}
	}

	return result
}

func convertTable(table *IPTablesTable, result *ImportResult) {
	customIdx := make(map[string]int)

	for _, name := range table.ChainOrder {
		if iptables.IsBuiltinChain(table.Name, name) {
			chain := table.Chains[name]
			if chain.Policy == "DROP" || chain.Policy == "REJECT" {
				result.ManualSteps = append(result.ManualSteps,
					fmt.Sprintf("%s %s policy is %s; add a trailing catch-all rule (e.g. \"900 drop the rest\")",
						table.Name, name, chain.Policy))
			}
			continue
		}
		imported := ImportedChain{Name: name}
		if table.Name != "filter" {
			imported.Table = table.Name
		}
		customIdx[name] = len(result.Chains)
		result.Chains = append(result.Chains, imported)
	}

	for _, name := range table.ChainOrder {
		for _, rule := range table.Chains[name].Rules {
			// An unconditional jump into a custom chain is the chain's
			// wiring, not a rule of its own.
			if idx, ok := customIdx[rule.Target]; ok {
				target := &result.Chains[idx]
				if rule.Negated || hasMatches(rule) {
					result.Skipped = append(result.Skipped,
						fmt.Sprintf("conditional jump to chain %q: %s", rule.Target, rule.Line))
					continue
				}
				if target.JumpFrom != "" {
					result.Skipped = append(result.Skipped,
						fmt.Sprintf("chain %q is already wired from %s: %s", rule.Target, target.JumpFrom, rule.Line))
					continue
				}
				target.JumpFrom = rule.Chain
				continue
			}

			imp := ruleToImported(rule, table.Name)
			result.Rules = append(result.Rules, imp)
			if !imp.CanImport {
				result.Skipped = append(result.Skipped,
					fmt.Sprintf("%s: %s", strings.Join(imp.Notes, "; "), rule.Line))
			}
		}
	}
}

// hasMatches reports whether the rule constrains anything beyond its chain.
func hasMatches(rule IPTablesRule) bool {
	return rule.Protocol != "" || rule.Source != "" || rule.Destination != "" ||
		rule.InInterface != "" || rule.OutInterface != "" ||
		rule.SrcPort != "" || rule.DstPort != "" ||
		len(rule.States) > 0 || rule.Limit != ""
}

// ruleToImported converts one parsed rule into intermediate form.
func ruleToImported(rule IPTablesRule, tableName string) ImportedRule {
	imp := ImportedRule{
		Chain:             rule.Chain,
		Protocol:          rule.Protocol,
		SourcePort:        rule.SrcPort,
		DestinationPort:   rule.DstPort,
		IncomingInterface: rule.InInterface,
		OutgoingInterface: rule.OutInterface,
		State:             rule.States,
		Limit:             rule.Limit,
		LimitBurst:        rule.LimitBurst,
		CanImport:         true,
	}
	if tableName != "filter" {
		imp.Table = tableName
	}
	if rule.Source != "" {
		imp.Source = []string{rule.Source}
	}
	if rule.Destination != "" {
		imp.Destination = []string{rule.Destination}
	}

	// Comments written by firn itself carry the original title; round-trip it.
	if strings.HasPrefix(rule.Comment, iptables.CommentPrefix) {
		imp.Title = strings.TrimPrefix(rule.Comment, iptables.CommentPrefix)
	} else {
		imp.Comment = rule.Comment
	}

	switch rule.Target {
	case "ACCEPT":
		imp.Action = "accept"
	case "DROP":
		imp.Action = "drop"
	case "RETURN":
		imp.Action = "return"
	case "REJECT":
		imp.Action = "reject"
		imp.RejectWith = rule.RejectWith
	case "LOG":
		imp.Action = "log"
		imp.LogPrefix = rule.LogPrefix
		imp.LogLevel = rule.LogLevel
	case "REDIRECT":
		imp.Action = "redirect"
		imp.ToPort = rule.ToPorts
	case "MASQUERADE", "SNAT", "DNAT":
		imp.CanImport = false
		imp.Notes = append(imp.Notes, "address translation is out of scope; recreate by hand")
	default:
		imp.CanImport = false
		imp.Notes = append(imp.Notes, fmt.Sprintf("unsupported target %q", rule.Target))
	}

	if rule.Negated {
		imp.CanImport = false
		imp.Notes = append(imp.Notes, "negated matches cannot be expressed; use the raw attribute")
	}

	for _, module := range rule.Matches {
		if !knownMatchModules[module] {
			imp.CanImport = false
			imp.Notes = append(imp.Notes, fmt.Sprintf("unsupported match module %q; use the raw attribute", module))
		}
	}

	return imp
}
