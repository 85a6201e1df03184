// Package rules implements family resolution for declarative firewall rules.
//
// # Overview
//
// A single declaration may name IPv4 addresses, IPv6 addresses, both, or none
// at all. This package decides, per declaration, which address families the
// rule applies to and produces one family-scoped option record per emitted
// family, ready for rendering into iptables or ip6tables rule lines.
//
// # Architecture
//
//	Declaration → normalize → classify → decide → build options → route → Emitter
//
// # Key Types
//
//   - [Declaration]: caller-supplied rule description before family resolution
//   - [Classification]: per-field partition of address tokens into v4/v6/other
//   - [Decision]: which families to emit, derived from both classifications
//   - [RuleOptions]: the family-scoped output record handed to an [Emitter]
//   - [Emitter]: external per-family renderer receiving activation and emit calls
//
// # Processing Model
//
// Each declaration is processed independently by [Process]: no cross-declaration
// state, no I/O, no locks. A fatal failure for one declaration never affects its
// batch peers; callers decide whether to stop the run. Diagnostics (deprecation
// notices, skipped-address warnings) are returned on the [Result] rather than
// logged here.
package rules
