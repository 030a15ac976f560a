package wrschema

import (
	"fmt"
	"slices"
)

// Schema is an ordered set of fields describing one record shape. Schemas
// are immutable and safe for concurrent use.
type Schema struct {
	fields  []*Field
	factory InstanceFactory
}

// New builds a schema from fields in declaration order. Field names must be
// unique.
func New(fields ...*Field) (*Schema, error) {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if f == nil {
			return nil, fmt.Errorf("wrschema: nil field")
		}
		if _, dup := seen[f.name]; dup {
			return nil, fmt.Errorf("wrschema: duplicate field name %q", f.name)
		}
		seen[f.name] = struct{}{}
	}
	return &Schema{fields: slices.Clone(fields)}, nil
}

// MustNew is New that panics on error. Intended for package-level schema
// declarations.
func MustNew(fields ...*Field) *Schema {
	s, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Excluding returns a schema without the referenced fields. A reference is
// either a field name or a *Field.
func (s *Schema) Excluding(refs ...any) *Schema {
	names := map[string]struct{}{}
	ptrs := map[*Field]struct{}{}
	for _, r := range refs {
		switch t := r.(type) {
		case string:
			names[t] = struct{}{}
		case []string:
			for _, n := range t {
				names[n] = struct{}{}
			}
		case *Field:
			ptrs[t] = struct{}{}
		}
	}
	out := make([]*Field, 0, len(s.fields))
	for _, f := range s.fields {
		if _, ok := names[f.name]; ok {
			continue
		}
		if _, ok := ptrs[f]; ok {
			continue
		}
		out = append(out, f)
	}
	return &Schema{fields: out, factory: s.factory}
}

// WithFactory returns a schema whose Instance results are built by f.
func (s *Schema) WithFactory(f InstanceFactory) *Schema {
	return &Schema{fields: s.fields, factory: f}
}

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []*Field { return slices.Clone(s.fields) }

// Names returns the field names in declaration order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.name
	}
	return out
}

// Field looks a field up by name. It returns an error wrapping
// ErrUnknownField when there is none.
func (s *Schema) Field(name string) (*Field, error) {
	for _, f := range s.fields {
		if f.name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// MustField is Field that panics when the name is unknown.
func (s *Schema) MustField(name string) *Field {
	f, err := s.Field(name)
	if err != nil {
		panic(err)
	}
	return f
}

// Load resolves every field from extras (highest precedence) and data. It
// stops at the first failing field in declaration order.
func (s *Schema) Load(data, extras map[string]any) (Record, error) {
	return s.LoadSources(extras, data)
}

// LoadSources resolves every field from an ordered list of candidate
// sources; earlier sources take precedence. For each field: the first source
// holding a value wins, then forbidden fields are skipped, then the default
// is copied in, then a required field fails with ErrMissing; otherwise the
// field is left out of the record.
//
// When several fields alias the same source key the first declared field
// claims it and later fields do not see it.
func (s *Schema) LoadSources(sources ...map[string]any) (Record, error) {
	out := make(Record, len(s.fields))
	claimed := map[string]struct{}{}
	for _, f := range s.fields {
		found := false
		for _, src := range sources {
			key, ok := f.lookup(src, claimed)
			if !ok {
				continue
			}
			claimed[key] = struct{}{}
			found = true
			if f.forbidden {
				return nil, forbidden(f.name)
			}
			v, err := f.Load(src[key])
			if err != nil {
				return nil, err
			}
			if err := f.SetValueIn(out, v); err != nil {
				return nil, err
			}
			break
		}
		switch {
		case found:
		case f.forbidden:
		case f.hasDefault:
			out[f.name] = shallowCopy(f.def)
		case f.required:
			return nil, missing(f.name)
		}
	}
	return out, nil
}

// Instance is Load followed by the instance factory, if any.
func (s *Schema) Instance(data, extras map[string]any) (any, error) {
	r, err := s.Load(data, extras)
	if err != nil {
		return nil, err
	}
	return s.build(r)
}

func (s *Schema) build(r Record) (any, error) {
	if s.factory == nil {
		return r, nil
	}
	return s.factory(r)
}

// Dump converts a loaded record back to its wire shape. Each field present
// in v is dumped under its first source name (or its name). Fields absent
// from v are skipped. A nil v dumps to nil.
func (s *Schema) Dump(v any) (map[string]any, error) {
	if v == nil {
		return nil, nil
	}
	in, ok := asContainer(v)
	if !ok {
		if in, ok = structToContainer(v); !ok {
			return nil, fmt.Errorf("%w: %T", ErrNotContainer, v)
		}
	}
	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		val, ok := in[f.name]
		if !ok {
			continue
		}
		key := f.dumpName()
		if _, taken := out[key]; taken {
			continue
		}
		raw, err := f.Dump(val)
		if err != nil {
			return nil, err
		}
		out[key] = raw
	}
	return out, nil
}

// Reverse returns the inverse schema: every field reversed, same order. The
// factory is not carried over.
func (s *Schema) Reverse() *Schema {
	out := make([]*Field, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Reverse()
	}
	return &Schema{fields: out}
}

// Mapping adapts the schema for use as a field mapping. Loading accepts a
// container and yields the factory result; dumping yields the wire map.
func (s *Schema) Mapping() *Mapping {
	return &Mapping{
		kind: "schema",
		loader: noneAware(func(raw any) (any, error) {
			in, ok := asContainer(raw)
			if !ok {
				return nil, fmt.Errorf("%w: %T", ErrNotContainer, raw)
			}
			r, err := s.Load(in, nil)
			if err != nil {
				return nil, err
			}
			return s.build(r)
		}),
		dumper: noneAware(func(v any) (any, error) {
			out, err := s.Dump(v)
			if err != nil {
				return nil, err
			}
			return out, nil
		}),
	}
}
