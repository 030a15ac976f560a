package wrschema

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
)

type nothing struct{}

func (nothing) String() string { return "<nothing>" }

// Nothing is returned by Field.Default when no default was declared. It is
// distinct from an explicit nil default.
var Nothing any = nothing{}

// Field binds a name to a Mapping, validation constraints and the rules for
// locating its raw value in a container. Fields are immutable; Clone,
// Reverse and MapAs return new fields.
type Field struct {
	name        string
	sourceNames []string
	mapping     *Mapping
	def         any
	hasDefault  bool
	nullable    bool
	required    bool
	forbidden   bool
	maxLen      *int
	minLen      *int
	autoTrim    bool
	min         any
	max         any
	choices     []any
	pattern     string
	regex       *regexp.Regexp
}

// NewField declares a field. Without Mapped the field loads and dumps text.
func NewField(name string, opts ...FieldOption) *Field {
	f := &Field{name: name, mapping: Str, nullable: true}
	return f.apply(opts)
}

func (f *Field) apply(opts []FieldOption) *Field {
	for _, opt := range opts {
		opt(f)
	}
	if f.mapping == nil {
		f.mapping = Str
	}
	if f.hasDefault && f.def == nil {
		f.nullable = true
	}
	return f
}

// Name is the key the loaded value is written under.
func (f *Field) Name() string { return f.name }

// SourceNames returns the declared aliases, or nil when none were declared.
func (f *Field) SourceNames() []string { return slices.Clone(f.sourceNames) }

// Mapping returns the field's mapping.
func (f *Field) Mapping() *Mapping { return f.mapping }

// Nullable reports whether nil is accepted at load time.
func (f *Field) Nullable() bool { return f.nullable }

// IsRequired reports whether a missing value is an error.
func (f *Field) IsRequired() bool { return f.required }

// IsForbidden reports whether supplying a value is an error.
func (f *Field) IsForbidden() bool { return f.forbidden }

// Pattern returns the regex source, or "" when unset.
func (f *Field) Pattern() string { return f.pattern }

// Default returns a shallow copy of the declared default, or Nothing.
func (f *Field) Default() any {
	if !f.hasDefault {
		return Nothing
	}
	return shallowCopy(f.def)
}

// HasDefault reports whether a default was declared (nil included).
func (f *Field) HasDefault() bool { return f.hasDefault }

// lookupNames are the keys searched in raw containers.
func (f *Field) lookupNames() []string {
	if len(f.sourceNames) > 0 {
		return f.sourceNames
	}
	return []string{f.name}
}

// dumpName is the key written by Schema.Dump.
func (f *Field) dumpName() string {
	if len(f.sourceNames) > 0 {
		return f.sourceNames[0]
	}
	return f.name
}

// Load converts raw through the mapping and checks the constraints in a
// fixed order: nullability, conversion, length, bounds, choices, regex.
func (f *Field) Load(raw any) (any, error) {
	if raw == nil && !f.nullable {
		return nil, invalid(f.name, ReasonNullable, nil)
	}

	value, err := f.mapping.Load(raw)
	if err != nil {
		if fe, ok := AsFieldError(err); ok {
			return nil, nest(f.name, fe)
		}
		return nil, invalid(f.name, ReasonMapping, err)
	}
	if value == nil {
		if !f.nullable {
			return nil, invalid(f.name, ReasonNullable, nil)
		}
		return nil, nil
	}

	if f.maxLen != nil || f.minLen != nil {
		n, ok := length(value)
		if !ok {
			reason := ReasonMaxLen
			if f.maxLen == nil {
				reason = ReasonMinLen
			}
			return nil, invalid(f.name, reason, fmt.Errorf("%T has no length", value))
		}
		if f.maxLen != nil && n > *f.maxLen {
			if !f.autoTrim {
				return nil, invalid(f.name, ReasonMaxLen, nil)
			}
			value = truncate(value, *f.maxLen)
			n = *f.maxLen
		}
		if f.minLen != nil && n < *f.minLen {
			return nil, invalid(f.name, ReasonMinLen, nil)
		}
	}

	if f.max != nil {
		c, err := compareValues(value, f.max)
		if err != nil || c > 0 {
			return nil, invalid(f.name, ReasonMax, err)
		}
	}
	if f.min != nil {
		c, err := compareValues(value, f.min)
		if err != nil || c < 0 {
			return nil, invalid(f.name, ReasonMin, err)
		}
	}

	if f.choices != nil {
		if !slices.ContainsFunc(f.choices, func(c any) bool { return equalValues(value, c) }) {
			return nil, invalid(f.name, ReasonChoices, nil)
		}
	}

	if f.regex != nil {
		s, ok := value.(string)
		if !ok {
			return nil, invalid(f.name, ReasonRegex, fmt.Errorf("%T is not text", value))
		}
		if !f.regex.MatchString(s) {
			return nil, invalid(f.name, ReasonRegex, nil)
		}
	}

	return value, nil
}

// Dump converts a loaded value back to its raw form. Constraints are not
// re-checked.
func (f *Field) Dump(value any) (any, error) {
	raw, err := f.mapping.Dump(value)
	if err != nil {
		if fe, ok := AsFieldError(err); ok {
			return nil, nest(f.name, fe)
		}
		return nil, invalid(f.name, ReasonMapping, err)
	}
	return raw, nil
}

// HasValueIn reports whether any lookup key is present in container.
func (f *Field) HasValueIn(container map[string]any) bool {
	_, ok := f.lookup(container, nil)
	return ok
}

// GetValueIn returns the value under the first present lookup key, or def.
func (f *Field) GetValueIn(container map[string]any, def any) any {
	key, ok := f.lookup(container, nil)
	if !ok {
		return def
	}
	return container[key]
}

// SetValueIn writes value under the field name. Forbidden fields refuse.
func (f *Field) SetValueIn(container map[string]any, value any) error {
	if f.forbidden {
		return forbidden(f.name)
	}
	container[f.name] = value
	return nil
}

// lookup finds the first lookup key present in container and not claimed by
// an earlier field.
func (f *Field) lookup(container map[string]any, claimed map[string]struct{}) (string, bool) {
	if container == nil {
		return "", false
	}
	for _, key := range f.lookupNames() {
		if _, taken := claimed[key]; taken {
			continue
		}
		if _, ok := container[key]; ok {
			return key, true
		}
	}
	return "", false
}

// Clone returns a copy with opts applied on top of the current
// configuration.
func (f *Field) Clone(opts ...FieldOption) *Field {
	c := *f
	c.sourceNames = slices.Clone(f.sourceNames)
	c.choices = slices.Clone(f.choices)
	return c.apply(opts)
}

// Reverse returns a field that works in the opposite direction: the mapping
// is reversed, the new name is the first source name (or the old name) and
// the only source name is the old name.
func (f *Field) Reverse(opts ...FieldOption) *Field {
	c := f.Clone()
	c.name = f.dumpName()
	c.sourceNames = []string{f.name}
	c.mapping = f.mapping.Reverse()
	return c.apply(opts)
}

// MapAs re-keys the field: it is written as newName and read from the old
// name.
func (f *Field) MapAs(newName string, opts ...FieldOption) *Field {
	c := f.Clone()
	c.name = newName
	c.sourceNames = []string{f.name}
	return c.apply(opts)
}

func (f *Field) String() string {
	return fmt.Sprintf("Field(%s <- %v, %s)", f.name, f.lookupNames(), f.mapping.kind)
}

func shallowCopy(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return maps.Clone(t)
	case Record:
		return maps.Clone(t)
	case []any:
		return slices.Clone(t)
	case []string:
		return slices.Clone(t)
	}
	return v
}
