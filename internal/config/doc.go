// Package config handles HCL rule file parsing, validation, and serialization.
//
// # Overview
//
// Firn uses HCL (HashiCorp Configuration Language) for its rule files, with
// JSON accepted as a secondary format. This package provides:
//   - HCL and JSON parsing with schema version probing
//   - Structural validation of chains and rules
//   - Defaults application (per-file defaults block)
//   - Canonical HCL serialization for firn fmt and firn import
//
// # Key Types
//
//   - [Config]: Top-level rule file with defaults, chains, and rules
//   - [Rule]: One declarative rule, converted via [Rule.Declaration]
//   - [LoadResult]: Result of loading a rule file (includes warnings)
//   - [ValidationErrors]: Collected per-field validation failures
//
// # Rule File Blocks
//
// Main HCL blocks:
//   - defaults: File-wide fallback values for chain, table, action, protocol
//   - chain: Custom chain definition with optional jump_from hookup
//   - rule: One firewall rule, labeled by its unique title
//
// Example:
//
//	schema_version = "1.0"
//
//	defaults {
//	    chain = "INPUT"
//	    table = "filter"
//	}
//
//	rule "100 allow ssh" {
//	    action           = "accept"
//	    protocol         = "tcp"
//	    destination_port = "22"
//	    source           = ["10.0.0.0/8", "2001:db8::/32"]
//	    state            = ["NEW"]
//	}
//
// # Schema Versioning
//
// Rule files include a schema_version field. The loader probes the version
// before decoding the body and rejects unsupported versions. See
// [CurrentSchemaVersion].
//
// # Validation
//
// [Config.Validate] checks everything except address tokens. Addresses are
// deliberately left to family classification at build time, where partially
// invalid lists degrade to warnings instead of rejecting the whole file.
package config
