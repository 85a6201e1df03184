package rules

import (
	"fmt"
	"strings"
)

// Severity classifies a non-fatal diagnostic.
type Severity string

const (
	SeverityNotice  Severity = "notice"
	SeverityWarning Severity = "warning"
)

// Diagnostic is a non-fatal finding surfaced during declaration processing,
// carrying the declaration title for context.
type Diagnostic struct {
	Severity Severity
	Title    string
	Message  string
}

// DeclarationError is a fatal per-declaration failure. One failed declaration
// never affects its batch peers; callers decide whether to stop the run.
type DeclarationError struct {
	Title string
	Err   error
}

func (e *DeclarationError) Error() string {
	return fmt.Sprintf("rule %q: %v", e.Title, e.Err)
}

func (e *DeclarationError) Unwrap() error {
	return e.Err
}

// Result reports the outcome of processing one declaration.
type Result struct {
	Title       string
	Decision    Decision
	Dispatched  []Family
	Diagnostics []Diagnostic
}

// Process resolves one declaration and dispatches its family-scoped options
// to the emitter. The declaration is only read, never mutated. On a fatal
// outcome no options are dispatched and the returned error carries the title.
func Process(decl Declaration, em Emitter) (*Result, error) {
	result := &Result{Title: decl.Title}

	order, deprecated := NormalizeOrder(decl.Order, decl.Priority)
	if deprecated {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Severity: SeverityNotice,
			Title:    decl.Title,
			Message:  fmt.Sprintf("priority is deprecated, use order instead (priority=%q taken as order)", decl.Priority),
		})
	}

	src := ClassifyAddresses(decl.Source)
	dst := ClassifyAddresses(decl.Destination)

	decision, skipped, err := Decide(src, dst)
	if err != nil {
		return nil, &DeclarationError{Title: decl.Title, Err: err}
	}
	result.Decision = decision

	if len(skipped) > 0 {
		result.Diagnostics = append(result.Diagnostics, Diagnostic{
			Severity: SeverityWarning,
			Title:    decl.Title,
			Message:  fmt.Sprintf("skipping invalid addresses: %s", strings.Join(skipped, ", ")),
		})
	}

	v4, v6 := BuildOptions(decl, order, src, dst)

	override := ParseVersionOverride(decl.Version)
	dispatched, err := route(decl.Title, override, decision, v4, v6, em)
	result.Dispatched = dispatched
	if err != nil {
		return result, &DeclarationError{Title: decl.Title, Err: err}
	}

	return result, nil
}
