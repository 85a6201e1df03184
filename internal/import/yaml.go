package imports

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLCatalog is the shape of a YAML rule catalog, the flat list format used
// by inventory tooling. Field names mirror the rule file attributes.
type YAMLCatalog struct {
	Defaults *YAMLDefaults `yaml:"defaults"`
	Rules    []YAMLRule    `yaml:"rules"`
}

// YAMLDefaults fills unset fields of every catalog entry.
type YAMLDefaults struct {
	Chain    string `yaml:"chain"`
	Table    string `yaml:"table"`
	Action   string `yaml:"action"`
	Protocol string `yaml:"protocol"`
}

// YAMLRule is one catalog entry.
type YAMLRule struct {
	Name              string   `yaml:"name"`
	Order             string   `yaml:"order"`
	Action            string   `yaml:"action"`
	Chain             string   `yaml:"chain"`
	Comment           string   `yaml:"comment"`
	Protocol          string   `yaml:"protocol"`
	Source            []string `yaml:"source"`
	Destination       []string `yaml:"destination"`
	SourcePort        string   `yaml:"source_port"`
	DestinationPort   string   `yaml:"destination_port"`
	IncomingInterface string   `yaml:"incoming_interface"`
	OutgoingInterface string   `yaml:"outgoing_interface"`
	State             []string `yaml:"state"`
	Limit             string   `yaml:"limit"`
	LimitBurst        int      `yaml:"limit_burst"`
	LogPrefix         string   `yaml:"log_prefix"`
	LogLevel          string   `yaml:"log_level"`
	RejectWith        string   `yaml:"reject_with"`
	ToPort            string   `yaml:"to_port"`
	Table             string   `yaml:"table"`
	Version           string   `yaml:"version"`
	Disabled          bool     `yaml:"disabled"`
}

// ParseYAMLCatalog parses a YAML rule catalog file.
func ParseYAMLCatalog(path string) (*YAMLCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open YAML catalog: %w", err)
	}

	var cat YAMLCatalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse YAML catalog: %w", err)
	}
	return &cat, nil
}

// ToImportResult applies catalog defaults and converts each entry. Disabled
// entries are reported as skipped.
func (c *YAMLCatalog) ToImportResult() *ImportResult {
	result := &ImportResult{}

	for i, yr := range c.Rules {
		label := yr.Name
		if label == "" {
			label = fmt.Sprintf("entry %d", i+1)
		}
		if yr.Disabled {
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s is disabled", label))
			continue
		}

		imp := ImportedRule{
			Title:             yr.Name,
			Order:             yr.Order,
			Action:            yr.Action,
			Chain:             yr.Chain,
			Comment:           yr.Comment,
			Protocol:          yr.Protocol,
			Source:            yr.Source,
			Destination:       yr.Destination,
			SourcePort:        yr.SourcePort,
			DestinationPort:   yr.DestinationPort,
			IncomingInterface: yr.IncomingInterface,
			OutgoingInterface: yr.OutgoingInterface,
			State:             yr.State,
			Limit:             yr.Limit,
			LimitBurst:        yr.LimitBurst,
			LogPrefix:         yr.LogPrefix,
			LogLevel:          yr.LogLevel,
			RejectWith:        yr.RejectWith,
			ToPort:            yr.ToPort,
			Table:             yr.Table,
			Version:           yr.Version,
			CanImport:         true,
		}

		if d := c.Defaults; d != nil {
			if imp.Chain == "" {
				imp.Chain = d.Chain
			}
			if imp.Table == "" {
				imp.Table = d.Table
			}
			if imp.Action == "" {
				imp.Action = d.Action
			}
			if imp.Protocol == "" {
				imp.Protocol = d.Protocol
			}
		}

		result.Rules = append(result.Rules, imp)
	}

	return result
}
