package rules

// NormalizeOrder resolves the deprecated priority field against order.
// Order wins when both are set; priority is used only as a fallback, in which
// case deprecated reports true so the caller can surface a notice. Unset stays
// unset. This step never fails.
func NormalizeOrder(order, priority string) (effective string, deprecated bool) {
	if order == "" && priority != "" {
		return priority, true
	}
	return order, false
}
