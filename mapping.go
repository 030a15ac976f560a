package wrschema

// Func converts a value in one direction of a Mapping.
type Func func(v any) (any, error)

// Mapping is a reversible transformation between a wire representation and a
// typed value. A Mapping is immutable; Reverse and Append return new values.
type Mapping struct {
	kind    string
	loader  Func
	dumper  Func
	formats []string
}

// NewMapping builds a Mapping from a loader and a dumper. A nil dumper falls
// back to the text conversion used by Str.
func NewMapping(loader, dumper Func) *Mapping {
	if loader == nil {
		loader = identity
	}
	if dumper == nil {
		dumper = toText
	}
	return &Mapping{kind: "custom", loader: loader, dumper: dumper}
}

// Load converts a raw value into a typed value.
func (m *Mapping) Load(raw any) (any, error) { return m.loader(raw) }

// Dump converts a typed value back into its raw representation.
func (m *Mapping) Dump(v any) (any, error) { return m.dumper(v) }

// Reverse swaps the loading and dumping directions.
func (m *Mapping) Reverse() *Mapping {
	return &Mapping{kind: m.kind, loader: m.dumper, dumper: m.loader, formats: m.formats}
}

// Append chains next after m: loading runs m then next, dumping runs next
// then m.
func (m *Mapping) Append(next *Mapping) *Mapping {
	return &Mapping{
		kind: m.kind + "+" + next.kind,
		loader: func(raw any) (any, error) {
			v, err := m.Load(raw)
			if err != nil {
				return nil, err
			}
			return next.Load(v)
		},
		dumper: func(v any) (any, error) {
			raw, err := next.Dump(v)
			if err != nil {
				return nil, err
			}
			return m.Dump(raw)
		},
	}
}

// Kind names the catalog entry the mapping was built from ("int", "date",
// "list", ...). Custom mappings report "custom".
func (m *Mapping) Kind() string { return m.kind }

// Formats returns the time layouts of date and datetime mappings. The first
// layout is used for dumping.
func (m *Mapping) Formats() []string {
	out := make([]string, len(m.formats))
	copy(out, m.formats)
	return out
}

// noneAware keeps nil as a fixed point of fn.
func noneAware(fn Func) Func {
	return func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		return fn(v)
	}
}

func identity(v any) (any, error) { return v, nil }
