package config

import (
	"fmt"
	"strings"

	"grimm.is/firn/internal/validation"
)

// Actions are the supported rule actions, mapped to iptables targets by the
// renderer.
var Actions = []string{"accept", "drop", "reject", "log", "return", "redirect"}

// RejectTypes is the union of v4 and v6 reject-with values. Family
// compatibility is enforced by the renderer, which knows which file the rule
// lands in.
var RejectTypes = []string{
	"icmp-net-unreachable", "icmp-host-unreachable", "icmp-port-unreachable",
	"icmp-proto-unreachable", "icmp-net-prohibited", "icmp-host-prohibited",
	"icmp-admin-prohibited",
	"icmp6-no-route", "icmp6-adm-prohibited", "icmp6-addr-unreachable",
	"icmp6-port-unreachable",
	"tcp-reset",
}

// States are the conntrack states a rule may match.
var States = []string{"NEW", "ESTABLISHED", "RELATED", "INVALID", "UNTRACKED"}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validate validates the entire configuration. Address tokens are deliberately
// not checked here: invalid addresses are classified and reported during
// processing, where partial invalidity downgrades to a warning instead of
// rejecting the file outright.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors

	errs = append(errs, c.validateChains()...)
	errs = append(errs, c.validateRules()...)

	return errs
}

func (c *Config) validateChains() ValidationErrors {
	var errs ValidationErrors

	seen := make(map[string]bool)
	for i, chain := range c.Chains {
		field := fmt.Sprintf("chain[%s]", chain.Name)
		if chain.Name == "" {
			field = fmt.Sprintf("chain[%d]", i)
			errs = append(errs, ValidationError{Field: field, Message: "chain name cannot be empty"})
			continue
		}

		if seen[chain.Name] {
			errs = append(errs, ValidationError{Field: field, Message: "duplicate chain name"})
		}
		seen[chain.Name] = true

		if err := validation.ValidateChainName(chain.Name); err != nil {
			errs = append(errs, ValidationError{Field: field, Message: err.Error()})
		}
		if chain.Table != "" {
			if err := validation.ValidateTableName(chain.Table); err != nil {
				errs = append(errs, ValidationError{Field: field + ".table", Message: err.Error()})
			}
		}
		if chain.Family != "" && chain.Family != "ipv4" && chain.Family != "ipv6" {
			errs = append(errs, ValidationError{
				Field:   field + ".family",
				Message: fmt.Sprintf("invalid family %q (must be ipv4 or ipv6)", chain.Family),
			})
		}
		if chain.JumpFrom != "" {
			if err := validation.ValidateChainName(chain.JumpFrom); err != nil {
				errs = append(errs, ValidationError{Field: field + ".jump_from", Message: err.Error()})
			}
		}
	}

	return errs
}

func (c *Config) validateRules() ValidationErrors {
	var errs ValidationErrors

	seen := make(map[string]bool)
	for i, rule := range c.Rules {
		field := fmt.Sprintf("rule[%s]", rule.Title)
		if rule.Title == "" {
			field = fmt.Sprintf("rule[%d]", i)
			errs = append(errs, ValidationError{Field: field, Message: "rule title cannot be empty"})
		}

		if rule.Title != "" && seen[rule.Title] {
			errs = append(errs, ValidationError{Field: field, Message: "duplicate rule title"})
		}
		seen[rule.Title] = true

		errs = append(errs, validateRule(field, &rule)...)
	}

	return errs
}

func validateRule(field string, rule *Rule) ValidationErrors {
	var errs ValidationErrors

	if rule.Action != "" {
		if err := validation.ValidateAllowlist(strings.ToLower(rule.Action), Actions); err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".action",
				Message: fmt.Sprintf("invalid action %q (must be one of: %s)", rule.Action, strings.Join(Actions, ", ")),
			})
		}
	}

	if rule.Chain != "" {
		if err := validation.ValidateChainName(rule.Chain); err != nil {
			errs = append(errs, ValidationError{Field: field + ".chain", Message: err.Error()})
		}
	}

	if rule.Table != "" {
		if err := validation.ValidateTableName(rule.Table); err != nil {
			errs = append(errs, ValidationError{Field: field + ".table", Message: err.Error()})
		}
	}

	if rule.IncomingInterface != "" {
		if err := validation.ValidateInterfaceName(rule.IncomingInterface); err != nil {
			errs = append(errs, ValidationError{Field: field + ".incoming_interface", Message: err.Error()})
		}
	}

	if rule.OutgoingInterface != "" {
		if err := validation.ValidateInterfaceName(rule.OutgoingInterface); err != nil {
			errs = append(errs, ValidationError{Field: field + ".outgoing_interface", Message: err.Error()})
		}
	}

	if rule.SourcePort != "" {
		if err := validation.ValidatePortSpec(rule.SourcePort); err != nil {
			errs = append(errs, ValidationError{Field: field + ".source_port", Message: err.Error()})
		}
	}

	if rule.DestinationPort != "" {
		if err := validation.ValidatePortSpec(rule.DestinationPort); err != nil {
			errs = append(errs, ValidationError{Field: field + ".destination_port", Message: err.Error()})
		}
	}

	if rule.ToPort != "" {
		if err := validation.ValidatePortSpec(rule.ToPort); err != nil {
			errs = append(errs, ValidationError{Field: field + ".to_port", Message: err.Error()})
		}
	}

	if rule.Limit != "" {
		if err := validation.ValidateLimit(rule.Limit); err != nil {
			errs = append(errs, ValidationError{Field: field + ".limit", Message: err.Error()})
		}
	}

	if rule.LimitBurst < 0 {
		errs = append(errs, ValidationError{
			Field:   field + ".limit_burst",
			Message: fmt.Sprintf("limit_burst cannot be negative: %d", rule.LimitBurst),
		})
	}

	if rule.LimitBurst > 0 && rule.Limit == "" {
		errs = append(errs, ValidationError{
			Field:   field + ".limit_burst",
			Message: "limit_burst requires limit to be set",
		})
	}

	if rule.LogLevel != "" {
		if err := validation.ValidateLogLevel(rule.LogLevel); err != nil {
			errs = append(errs, ValidationError{Field: field + ".log_level", Message: err.Error()})
		}
	}

	if rule.RejectWith != "" {
		if err := validation.ValidateAllowlist(rule.RejectWith, RejectTypes); err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".reject_with",
				Message: fmt.Sprintf("invalid reject_with %q", rule.RejectWith),
			})
		}
	}

	for _, state := range rule.State {
		if err := validation.ValidateAllowlist(strings.ToUpper(state), States); err != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".state",
				Message: fmt.Sprintf("invalid state %q (must be one of: %s)", state, strings.Join(States, ", ")),
			})
		}
	}

	return errs
}
