package wrschema

import (
	"maps"
	"time"
)

// Record is the default result of Schema.Load: loaded values keyed by field
// name. Absent keys mean the field had no value, no default and was not
// required.
type Record map[string]any

// Get returns the value stored under name.
func (r Record) Get(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}

// Has reports whether name is present (a nil value counts as present).
func (r Record) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// Text returns the text value under name, or "".
func (r Record) Text(name string) string {
	s, _ := r[name].(string)
	return s
}

// Int returns the int value under name, or 0.
func (r Record) Int(name string) int {
	n, _ := r[name].(int)
	return n
}

// Time returns the time value under name, or the zero time.
func (r Record) Time(name string) time.Time {
	t, _ := r[name].(time.Time)
	return t
}

// Record returns the nested record under name, or nil.
func (r Record) Record(name string) Record {
	n, _ := r[name].(Record)
	return n
}

// Clone returns a shallow copy.
func (r Record) Clone() Record { return maps.Clone(r) }

// asContainer views v as a string-keyed container.
func asContainer(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Record:
		return t, true
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out, true
	}
	return nil, false
}
