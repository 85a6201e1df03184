package rules

import "errors"

// ErrOnlyInvalidAddresses indicates that a declaration supplied addresses but
// none of them parsed as either family, so no family can be determined.
var ErrOnlyInvalidAddresses = errors.New("declaration names only invalid addresses")

// Decision records which families a declaration applies to. At least one flag
// is true unless Decide returned an error.
type Decision struct {
	EmitV4 bool
	EmitV6 bool
}

// Decide combines the source and destination classifications into a family
// decision. skipped returns the invalid tokens excluded from emitted address
// lists on any non-fatal outcome; callers surface them as a warning. The only
// error case is a declaration whose addresses are all invalid: emitting an
// unrestricted rule there would silently widen the match, so it fails instead.
func Decide(src, dst Classification) (d Decision, skipped []string, err error) {
	v4Count := len(src.V4) + len(dst.V4)
	v6Count := len(src.V6) + len(dst.V6)
	otherCount := len(src.Other) + len(dst.Other)

	if otherCount > 0 {
		skipped = append(skipped, src.Other...)
		skipped = append(skipped, dst.Other...)
	}

	// First matching row wins.
	switch {
	case v4Count > 0 && v6Count == 0:
		d = Decision{EmitV4: true}
	case v4Count == 0 && v6Count > 0:
		d = Decision{EmitV6: true}
	case v4Count == 0 && v6Count == 0 && otherCount > 0:
		return Decision{}, nil, ErrOnlyInvalidAddresses
	case v4Count == 0 && v6Count == 0:
		// No addresses restrict the rule; it is family-agnostic.
		d = Decision{EmitV4: true, EmitV6: true}
	default:
		d = Decision{EmitV4: true, EmitV6: true}
	}

	return d, skipped, nil
}
