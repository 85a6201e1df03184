package iptables

import (
	"fmt"
	"strings"

	"grimm.is/firn/internal/rules"
	"grimm.is/firn/internal/validation"
)

const (
	// The comment match truncates beyond this.
	maxCommentLength = 256

	// The kernel caps --log-prefix at 29 characters.
	maxLogPrefixLength = 29

	// CommentPrefix tags generated rules so iptables output can be traced
	// back to the declaration that produced a line.
	CommentPrefix = "firn: "
)

// chainOrDefault falls back to INPUT for rules that name no chain.
func chainOrDefault(chain string) string {
	if chain == "" {
		return "INPUT"
	}
	return chain
}

// RenderRule renders the iptables-restore lines for one dispatched rule.
//
// Source and destination lists expand to their cartesian product, one line
// per pair. When log_level or log_prefix is set on a non-log action, a LOG
// line with identical matches precedes each action line.
func RenderRule(title string, family rules.Family, opts rules.RuleOptions) ([]string, error) {
	action := strings.ToLower(opts.Action)
	if action == "" {
		action = "accept"
	}

	proto := CanonicalProtocol(opts.Protocol, family)
	if err := checkProtocol(proto, opts); err != nil {
		return nil, err
	}

	head := []string{"-A", chainOrDefault(opts.Chain)}
	if opts.IncomingInterface != "" {
		head = append(head, "-i", opts.IncomingInterface)
	}
	if opts.OutgoingInterface != "" {
		head = append(head, "-o", opts.OutgoingInterface)
	}
	if proto != "" && proto != "all" {
		head = append(head, "-p", proto)
	}

	tail := buildMatches(title, opts)

	target, err := buildTarget(family, action, opts)
	if err != nil {
		return nil, err
	}

	var logTarget string
	if action != "log" && (opts.LogPrefix != "" || opts.LogLevel != "") {
		logTarget = buildLogTarget(opts.LogPrefix, opts.LogLevel)
	}

	var lines []string
	for _, pair := range addressPairs(opts.Source, opts.Destination) {
		parts := make([]string, 0, len(head)+len(pair)+len(tail)+2)
		parts = append(parts, head...)
		parts = append(parts, pair...)
		parts = append(parts, tail...)

		if logTarget != "" {
			logParts := append(append([]string{}, parts...), logTarget)
			lines = append(lines, strings.Join(logParts, " "))
		}

		parts = append(parts, target)
		if opts.RawAfter != "" {
			parts = append(parts, opts.RawAfter)
		}
		lines = append(lines, strings.Join(parts, " "))
	}
	return lines, nil
}

// checkProtocol is where strict protocol checking lands. The rule processor
// only propagates the flag; rendering either accepts the protocol or fails
// the declaration.
func checkProtocol(proto string, opts rules.RuleOptions) error {
	hasPorts := opts.SourcePort != "" || opts.DestinationPort != ""

	if proto == "" || proto == "all" {
		if hasPorts {
			return fmt.Errorf("port matches require a port-aware protocol (tcp, udp, udplite, sctp)")
		}
		return nil
	}

	if opts.StrictProtocolChecking && !IsStrictProtocol(proto) {
		return fmt.Errorf("unknown protocol %q (set strict_protocol_checking = false to pass it through)", proto)
	}

	if hasPorts && !SupportsPorts(proto) {
		return fmt.Errorf("protocol %q does not take ports", proto)
	}
	return nil
}

// addressPairs expands the source and destination lists into per-line match
// segments. An empty side contributes one unconstrained iteration, so a rule
// with no addresses still renders exactly one line.
func addressPairs(sources, dests []string) [][]string {
	srcSegs := addressSegments(sources, "src")
	dstSegs := addressSegments(dests, "dst")

	pairs := make([][]string, 0, len(srcSegs)*len(dstSegs))
	for _, s := range srcSegs {
		for _, d := range dstSegs {
			pair := make([]string, 0, len(s)+len(d))
			pair = append(pair, s...)
			pair = append(pair, d...)
			pairs = append(pairs, pair)
		}
	}
	return pairs
}

// addressSegments renders address tokens to match segments. Explicit ranges
// use the iprange module; plain addresses and CIDRs use -s/-d.
func addressSegments(addrs []string, side string) [][]string {
	if len(addrs) == 0 {
		return [][]string{nil}
	}

	flag := "-s"
	if side == "dst" {
		flag = "-d"
	}

	segs := make([][]string, 0, len(addrs))
	for _, a := range addrs {
		if strings.Contains(a, "-") {
			segs = append(segs, []string{"-m", "iprange", "--" + side + "-range", a})
		} else {
			segs = append(segs, []string{flag, a})
		}
	}
	return segs
}

// buildMatches renders the match options shared by every line of the rule:
// ports, conntrack state, rate limit, comments, and the raw escape hatch.
func buildMatches(title string, opts rules.RuleOptions) []string {
	var parts []string

	if seg := portMatch(opts.SourcePort, "sport", "source-ports"); seg != "" {
		parts = append(parts, seg)
	}
	if seg := portMatch(opts.DestinationPort, "dport", "destination-ports"); seg != "" {
		parts = append(parts, seg)
	}

	if len(opts.State) > 0 {
		states := make([]string, len(opts.State))
		for i, s := range opts.State {
			states[i] = strings.ToUpper(s)
		}
		parts = append(parts, "-m conntrack --ctstate "+strings.Join(states, ","))
	}

	if opts.Limit != "" {
		seg := "-m limit --limit " + strings.ToLower(opts.Limit)
		if opts.LimitBurst > 0 {
			seg += fmt.Sprintf(" --limit-burst %d", opts.LimitBurst)
		}
		parts = append(parts, seg)
	}

	parts = append(parts, commentMatch(CommentPrefix+title))
	if opts.Comment != "" {
		parts = append(parts, commentMatch(opts.Comment))
	}

	if opts.Raw != "" {
		parts = append(parts, opts.Raw)
	}

	return parts
}

// portMatch renders a port spec. Single ports use the plain --sport/--dport
// match; lists and ranges go through multiport, which wants : for ranges.
func portMatch(spec, single, multi string) string {
	if spec == "" {
		return ""
	}
	spec = strings.ReplaceAll(spec, " ", "")
	spec = strings.ReplaceAll(spec, "-", ":")
	if !strings.ContainsAny(spec, ",:") {
		return fmt.Sprintf("--%s %s", single, spec)
	}
	return fmt.Sprintf("-m multiport --%s %s", multi, spec)
}

func commentMatch(comment string) string {
	comment = validation.SanitizeString(comment)
	if len(comment) > maxCommentLength {
		comment = comment[:maxCommentLength]
	}
	return fmt.Sprintf(`-m comment --comment "%s"`, comment)
}

// buildTarget renders the -j clause with its target options.
func buildTarget(family rules.Family, action string, opts rules.RuleOptions) (string, error) {
	switch action {
	case "accept":
		return "-j ACCEPT", nil
	case "drop":
		return "-j DROP", nil
	case "return":
		return "-j RETURN", nil
	case "log":
		return buildLogTarget(opts.LogPrefix, opts.LogLevel), nil
	case "reject":
		with, err := rejectWith(family, opts.RejectWith)
		if err != nil {
			return "", err
		}
		return "-j REJECT --reject-with " + with, nil
	case "redirect":
		t := "-j REDIRECT"
		if opts.ToPort != "" {
			// REDIRECT wants a dash range, the inverse of multiport.
			t += " --to-ports " + strings.ReplaceAll(opts.ToPort, ":", "-")
		}
		return t, nil
	default:
		return "", fmt.Errorf("unsupported action %q", action)
	}
}

// rejectWith picks the reject type for the family. The v4 and v6 ICMP type
// names are disjoint; tcp-reset works on both.
func rejectWith(family rules.Family, with string) (string, error) {
	if with == "" {
		if family == rules.FamilyIPv6 {
			return "icmp6-port-unreachable", nil
		}
		return "icmp-port-unreachable", nil
	}

	switch {
	case with == "tcp-reset":
		return with, nil
	case strings.HasPrefix(with, "icmp6-"):
		if family != rules.FamilyIPv6 {
			return "", fmt.Errorf("reject type %q is IPv6-only", with)
		}
		return with, nil
	case strings.HasPrefix(with, "icmp-"):
		if family != rules.FamilyIPv4 {
			return "", fmt.Errorf("reject type %q is IPv4-only", with)
		}
		return with, nil
	}
	return "", fmt.Errorf("unknown reject type %q", with)
}

func buildLogTarget(prefix, level string) string {
	t := "-j LOG"
	if prefix != "" {
		prefix = validation.SanitizeString(prefix)
		if len(prefix) > maxLogPrefixLength {
			prefix = prefix[:maxLogPrefixLength]
		}
		t += fmt.Sprintf(` --log-prefix "%s"`, prefix)
	}
	if level != "" {
		t += " --log-level " + strings.ToLower(level)
	}
	return t
}
