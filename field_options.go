package wrschema

import (
	"regexp"
	"slices"
)

// FieldOption configures a Field at construction or clone time.
type FieldOption func(*Field)

// Mapped sets the field's mapping. Fields without one use Str.
func Mapped(m *Mapping) FieldOption {
	return func(f *Field) { f.mapping = m }
}

// SourceNames sets the alias keys looked up in raw data, in order. Without
// aliases the field name itself is used.
func SourceNames(names ...string) FieldOption {
	return func(f *Field) { f.sourceNames = slices.Clone(names) }
}

// Default sets the value written when no source provides one. The default
// bypasses the mapping and validation. An explicit nil default makes the field
// nullable.
func Default(v any) FieldOption {
	return func(f *Field) {
		f.def = v
		f.hasDefault = true
	}
}

// NoDefault clears a default, mainly for clones.
func NoDefault() FieldOption {
	return func(f *Field) {
		f.def = nil
		f.hasDefault = false
	}
}

// Nullable controls whether nil is accepted at load time.
func Nullable(b bool) FieldOption {
	return func(f *Field) { f.nullable = b }
}

// Required makes Schema.Load fail with ErrMissing when no value is found.
func Required() FieldOption {
	return func(f *Field) { f.required = true }
}

// Forbidden rejects any supplied value with ErrForbidden.
func Forbidden() FieldOption {
	return func(f *Field) { f.forbidden = true }
}

// MaxLen bounds the length of the loaded value.
func MaxLen(n int) FieldOption {
	return func(f *Field) { f.maxLen = &n }
}

// MinLen sets the minimum length of the loaded value.
func MinLen(n int) FieldOption {
	return func(f *Field) { f.minLen = &n }
}

// AutoTrim truncates values longer than MaxLen instead of rejecting them.
func AutoTrim() FieldOption {
	return func(f *Field) { f.autoTrim = true }
}

// Min sets an inclusive lower bound (numbers, text or times).
func Min(v any) FieldOption {
	return func(f *Field) { f.min = v }
}

// Max sets an inclusive upper bound (numbers, text or times).
func Max(v any) FieldOption {
	return func(f *Field) { f.max = v }
}

// Choices restricts loaded values to the given set.
func Choices(values ...any) FieldOption {
	return func(f *Field) { f.choices = slices.Clone(values) }
}

// Regex requires textual values matching pattern at their start. It panics
// if pattern does not compile; use RegexOf with a precompiled expression for
// dynamic patterns.
func Regex(pattern string) FieldOption {
	re := regexp.MustCompile(`^(?:` + pattern + `)`)
	return func(f *Field) {
		f.pattern = pattern
		f.regex = re
	}
}

// RegexOf is Regex with a compiled expression. The expression is used as is.
func RegexOf(re *regexp.Regexp) FieldOption {
	return func(f *Field) {
		f.pattern = re.String()
		f.regex = re
	}
}
