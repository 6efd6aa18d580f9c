package templify

import "strings"

// MissingVariableBehavior controls what happens when a placeholder
// resolves to a missing value.
type MissingVariableBehavior int

const (
	// MissingLeaveUnchanged leaves the placeholder's original "{{ ... }}"
	// text in place untouched.
	MissingLeaveUnchanged MissingVariableBehavior = iota
	// MissingEmitBlank substitutes an empty string.
	MissingEmitBlank
	// MissingFail aborts the whole process() call with an error.
	MissingFail
)

// UpdateFieldsOnOpen controls the word/settings.xml <w:updateFields> flag
// on save.
type UpdateFieldsOnOpen int

const (
	// UpdateFieldsAuto sets the flag only when the document contains
	// field codes (TOC, REF, ...).
	UpdateFieldsAuto UpdateFieldsOnOpen = iota
	UpdateFieldsAlways
	UpdateFieldsNever
)

// BooleanFormatter renders a bool under a named format (registry lookup,
// case-insensitive).
type BooleanFormatter func(v bool) string

// Options is the set-level configuration for one Process/Validate call.
type Options struct {
	// Culture selects the numeric formatting convention for Integer and
	// Decimal values ("" uses a culture-invariant default: plain ASCII
	// digits, "." as decimal separator, no grouping).
	Culture string

	MissingVariableBehavior MissingVariableBehavior

	// DocumentProperties overrides docProps/core.xml values by local
	// element name (e.g. "title", "creator") before save.
	DocumentProperties map[string]string

	// BooleanFormatterRegistry maps a format-id (matched case-
	// insensitively) to a BooleanFormatter, consulted by format.go when a
	// placeholder carries a `:format-id` specifier over a Bool value.
	BooleanFormatterRegistry map[string]BooleanFormatter

	// TextReplacements are literal substitutions applied before markdown
	// parsing in the inline-value renderer's first phase.
	TextReplacements map[string]string

	// EnableNewlineSupport toggles phase 2 of the inline-value renderer
	// (newline-to-break-sentinel normalization). Defaults to true.
	EnableNewlineSupport bool

	UpdateFieldsOnOpen UpdateFieldsOnOpen
}

// DefaultOptions returns the zero-config baseline: invariant culture,
// leave-unchanged missing-variable policy, newline support on, automatic
// field-update detection, and the built-in boolean formatter registry
// from format.go.
func DefaultOptions() *Options {
	return &Options{
		MissingVariableBehavior: MissingLeaveUnchanged,
		EnableNewlineSupport:    true,
		UpdateFieldsOnOpen:      UpdateFieldsAuto,
		BooleanFormatterRegistry: defaultBooleanFormatters(),
	}
}

func (o *Options) booleanFormatter(id string) (BooleanFormatter, bool) {
	if o == nil || o.BooleanFormatterRegistry == nil {
		return nil, false
	}
	for k, f := range o.BooleanFormatterRegistry {
		if strings.EqualFold(k, id) {
			return f, true
		}
	}
	return nil, false
}
