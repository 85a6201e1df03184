package rules

// BuildOptions assembles both per-family option records from a declaration.
// The v4 record is scoped to the v4 address buckets and the v6 record to the
// v6 buckets; every non-address field is copied verbatim using the effective
// order. Both records are always built regardless of the family decision so
// this stays a pure transformation; the router decides which are dispatched.
func BuildOptions(decl Declaration, order string, src, dst Classification) (v4, v6 RuleOptions) {
	base := RuleOptions{
		Action:                 decl.Action,
		Chain:                  decl.Chain,
		Comment:                decl.Comment,
		DestinationPort:        decl.DestinationPort,
		IncomingInterface:      decl.IncomingInterface,
		OutgoingInterface:      decl.OutgoingInterface,
		LogLevel:               decl.LogLevel,
		LogPrefix:              decl.LogPrefix,
		Limit:                  decl.Limit,
		LimitBurst:             decl.LimitBurst,
		Order:                  order,
		Protocol:               decl.Protocol,
		Raw:                    decl.Raw,
		RawAfter:               decl.RawAfter,
		RejectWith:             decl.RejectWith,
		SourcePort:             decl.SourcePort,
		State:                  decl.State,
		StrictProtocolChecking: decl.StrictProtocolChecking == nil || *decl.StrictProtocolChecking,
		Table:                  decl.Table,
		ToPort:                 decl.ToPort,
	}

	v4 = base
	v4.Source = src.V4
	v4.Destination = dst.V4

	v6 = base
	v6.Source = src.V6
	v6.Destination = dst.V6

	return v4, v6
}
