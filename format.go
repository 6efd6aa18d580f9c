package templify

import (
	"strconv"
	"strings"
)

// defaultBooleanFormatters seeds the registry with the culture-invariant
// "True"/"False" form plus a couple of formats common enough in document
// templates (yes/no, y/n) to ship as a baseline rather than leave callers
// to register even the obvious ones. A general formatter table is out of
// scope, but a minimal default is not a general engine.
func defaultBooleanFormatters() map[string]BooleanFormatter {
	return map[string]BooleanFormatter{
		"yesno": func(v bool) string {
			if v {
				return "Yes"
			}
			return "No"
		},
		"yn": func(v bool) string {
			if v {
				return "Y"
			}
			return "N"
		},
		"truefalse": func(v bool) string {
			if v {
				return "True"
			}
			return "False"
		},
	}
}

// defaultBoolString is the culture-invariant fallback used when no
// format-id is given or the given one is unregistered.
func defaultBoolString(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// FormatValue converts a resolved Value to display text, given an
// optional format-id (from a
// placeholder's `:format-id` specifier, "" if none). originalText is
// returned for a missing value under leave-unchanged; missingName is the
// path text used for warning collection when the value is missing.
func FormatValue(v *Value, formatID string, originalText string, opts *Options, warn *WarningCollector, missingName string) string {
	if v.IsMissing() || v.IsNull() {
		warn.Add(WarnMissingVariable, missingName)
		switch opts.MissingVariableBehavior {
		case MissingEmitBlank:
			return ""
		default: // MissingLeaveUnchanged, MissingFail (fail is handled by the caller before formatting)
			return originalText
		}
	}

	switch v.Kind() {
	case KindBool:
		if formatID != "" {
			if f, ok := opts.booleanFormatter(formatID); ok {
				return f(v.Bool())
			}
		}
		return defaultBoolString(v.Bool())
	case KindInteger:
		return formatInteger(v.Int64(), opts)
	case KindDecimal:
		return formatDecimal(v.Decimal(), opts)
	case KindString:
		return v.AsString()
	case KindSequence, KindMapping, KindObject:
		warn.Add(WarnMissingVariable, missingName)
		return v.AsString()
	default:
		return ""
	}
}

// formatInteger applies the caller's culture convention — currently only
// a grouping separator, since "culture" is a formatting knob without a
// pinned locale table; a full locale table is left to callers.
func formatInteger(i int64, opts *Options) string {
	s := strconv.FormatInt(i, 10)
	if opts == nil || opts.Culture == "" {
		return s
	}
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	s = groupThousands(s, cultureGroupSeparator(opts.Culture))
	if neg {
		s = "-" + s
	}
	return s
}

func formatDecimal(d Decimal, opts *Options) string {
	s := d.String()
	if opts == nil || opts.Culture == "" {
		return s
	}
	sep := cultureDecimalSeparator(opts.Culture)
	if sep != "." {
		s = strings.Replace(s, ".", sep, 1)
	}
	neg := strings.HasPrefix(s, "-")
	body := s
	if neg {
		body = s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(body, sep)
	grouped := groupThousands(intPart, cultureGroupSeparator(opts.Culture))
	out := grouped
	if hasFrac {
		out += sep + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}

func groupThousands(digits, sep string) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}
	var parts []string
	for len(digits) > 3 {
		parts = append([]string{digits[len(digits)-3:]}, parts...)
		digits = digits[:len(digits)-3]
	}
	parts = append([]string{digits}, parts...)
	return strings.Join(parts, sep)
}

// cultureGroupSeparator/cultureDecimalSeparator give a minimal two-entry
// table (invariant and a comma-decimal European convention); any other
// culture id falls back to the invariant convention rather than erroring,
// leaving the full culture table to callers.
func cultureGroupSeparator(culture string) string {
	switch strings.ToLower(culture) {
	case "de", "de-de", "fr", "fr-fr", "es", "es-es":
		return "."
	default:
		return ","
	}
}

func cultureDecimalSeparator(culture string) string {
	switch strings.ToLower(culture) {
	case "de", "de-de", "fr", "fr-fr", "es", "es-es":
		return ","
	default:
		return "."
	}
}
