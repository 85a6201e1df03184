// Package iptables renders dispatched rules into iptables-restore rulesets.
//
// # Overview
//
// This package is the output side of firn. The rule processor decides which
// address family (or families) each declaration belongs to; this package
// turns those per-family records into iptables rule lines, groups them into
// tables and chains, and renders complete files in iptables-restore format.
// Nothing here talks to the kernel: the deliverable is text that
// iptables-restore and ip6tables-restore can apply atomically.
//
// # Architecture
//
//	rules.Process → Generator (Emitter) → FileSet → iptables.rules / ip6tables.rules
//
// # Key Types
//
//   - [Generator]: Emitter implementation; fan-in point for dispatched rules
//   - [FileSet]: per-family rulesets, populated as families activate
//   - [File]: one family's tables, chains, and ordered rule entries
//   - [Protocol]: an entry from the system protocol database
//
// # Rule Rendering
//
// [RenderRule] expands one record into its rule lines. Address lists expand
// to the cartesian product of sources and destinations, one line per pair,
// since a single iptables rule can carry at most one -s and one -d match.
// Explicit ranges (a-b) use the iprange module instead. Every generated line
// carries a comment match naming the rule title so iptables output can be
// traced back to the declaration that produced it.
//
// # Ordering
//
// Within a chain's table section, rules sort by their order key (falling back
// to the title) with numeric prefixes compared numerically, so "20 dns"
// renders before "100 ssh". Rules without any numeric key keep their
// declaration order.
package iptables
