package rules

import "strings"

// VersionOverride is the parsed form of a declaration's version field.
type VersionOverride int

const (
	VersionUnspecified VersionOverride = iota
	VersionV4
	VersionV6
)

// ParseVersionOverride interprets an explicit family override string.
// Matching is case-insensitive with the "ip" and "v" segments optional, so
// "4", "v4", "ip4", "ipv4" and "IPv4" all pin IPv4. Unrecognized values fall
// through to VersionUnspecified rather than failing.
func ParseVersionOverride(s string) VersionOverride {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "ip")
	v = strings.TrimPrefix(v, "v")
	switch v {
	case "4":
		return VersionV4
	case "6":
		return VersionV6
	default:
		return VersionUnspecified
	}
}

// route dispatches the built option records to the emitter. An explicit
// override always wins over the automatic decision, even when address
// analysis excluded that family; this is the documented escape hatch for
// interface-only or protocol-only rules pinned to one stack. The family's
// infrastructure is activated alongside every dispatch; activation is
// idempotent so redundant requests are harmless.
func route(title string, override VersionOverride, d Decision, v4, v6 RuleOptions, em Emitter) ([]Family, error) {
	var dispatched []Family

	emit := func(family Family, opts RuleOptions) error {
		em.Activate(family)
		if err := em.Emit(title, family, opts); err != nil {
			return err
		}
		dispatched = append(dispatched, family)
		return nil
	}

	switch override {
	case VersionV4:
		if err := emit(FamilyIPv4, v4); err != nil {
			return dispatched, err
		}
	case VersionV6:
		if err := emit(FamilyIPv6, v6); err != nil {
			return dispatched, err
		}
	default:
		if d.EmitV4 {
			if err := emit(FamilyIPv4, v4); err != nil {
				return dispatched, err
			}
		}
		if d.EmitV6 {
			if err := emit(FamilyIPv6, v6); err != nil {
				return dispatched, err
			}
		}
	}

	return dispatched, nil
}
