// Package decl builds schemas from YAML or JSON documents.
//
// A document lists fields in order:
//
//	fields:
//	  - name: date_of_birth
//	    source_names: [dob]
//	    mapping: date
//	    formats: ["02.01.2006"]
//	  - name: tags
//	    mapping: list
//	    items: {mapping: str}
//	    default: []
//	excluding: [internal_id]
//
// Entries are themselves loaded through a wrschema.Schema.
package decl

import (
	"fmt"
	"regexp"
	"slices"
	"sort"

	j "github.com/goccy/go-json"

	"github.com/reoring/wrschema"
	"github.com/reoring/wrschema/source"
)

// Mapping kinds accepted in the mapping key.
var mappingKinds = []any{"str", "int", "float", "bool", "date", "datetime", "rfc3339", "uuid", "list", "schema", "any"}

var (
	mappingKey = wrschema.NewField("mapping", wrschema.Default("str"), wrschema.Nullable(false), wrschema.Choices(mappingKinds...))

	entrySchema = wrschema.MustNew(
		wrschema.NewField("name", wrschema.Required(), wrschema.Nullable(false), wrschema.MinLen(1)),
		wrschema.NewField("source_names", wrschema.Mapped(wrschema.List(wrschema.Str))),
		wrschema.NewField("source_name"),
		mappingKey,
		wrschema.NewField("formats", wrschema.Mapped(wrschema.List(wrschema.Str))),
		wrschema.NewField("items", wrschema.Mapped(wrschema.Identity)),
		wrschema.NewField("fields", wrschema.Mapped(wrschema.List(wrschema.Identity))),
		wrschema.NewField("default", wrschema.Mapped(wrschema.Identity)),
		wrschema.NewField("nullable", wrschema.Mapped(wrschema.Bool), wrschema.Nullable(false)),
		wrschema.NewField("required", wrschema.Mapped(wrschema.Bool), wrschema.Default(false), wrschema.Nullable(false)),
		wrschema.NewField("forbidden", wrschema.Mapped(wrschema.Bool), wrschema.Default(false), wrschema.Nullable(false)),
		wrschema.NewField("max_len", wrschema.Mapped(wrschema.Int), wrschema.Min(0)),
		wrschema.NewField("min_len", wrschema.Mapped(wrschema.Int), wrschema.Min(0)),
		wrschema.NewField("auto_trim", wrschema.Mapped(wrschema.Bool), wrschema.Default(false), wrschema.Nullable(false)),
		wrschema.NewField("min", wrschema.Mapped(wrschema.Identity)),
		wrschema.NewField("max", wrschema.Mapped(wrschema.Identity)),
		wrschema.NewField("choices", wrschema.Mapped(wrschema.List(wrschema.Identity))),
		wrschema.NewField("regex", wrschema.Nullable(false), wrschema.MinLen(1)),
	)

	// list items only describe a mapping
	itemSchema = entrySchema.Excluding(
		"name", "source_names", "source_name", "default", "nullable", "required", "forbidden",
		"max_len", "min_len", "auto_trim", "min", "max", "choices", "regex",
	)

	documentSchema = wrschema.MustNew(
		wrschema.NewField("fields", wrschema.Mapped(wrschema.List(wrschema.Identity)), wrschema.Required(), wrschema.Nullable(false)),
		wrschema.NewField("excluding", wrschema.Mapped(wrschema.List(wrschema.Str)), wrschema.Default([]any{}), wrschema.Nullable(false)),
	)
)

// FromYAML builds a schema from a YAML document.
func FromYAML(b []byte) (*wrschema.Schema, error) {
	m, err := source.YAMLBytes(b)
	if err != nil {
		return nil, fmt.Errorf("decl: %w", err)
	}
	return FromMap(m)
}

// FromJSON builds a schema from a JSON document. JSON numbers become int
// when integral and float64 otherwise.
func FromJSON(b []byte) (*wrschema.Schema, error) {
	m, err := source.JSONBytes(b)
	if err != nil {
		return nil, fmt.Errorf("decl: %w", err)
	}
	return FromMap(normalizeNumbers(m).(map[string]any))
}

// FromMap builds a schema from an already decoded document.
func FromMap(doc map[string]any) (*wrschema.Schema, error) {
	if err := checkKeys(doc, documentSchema, "document"); err != nil {
		return nil, err
	}
	rec, err := documentSchema.Load(doc, nil)
	if err != nil {
		return nil, fmt.Errorf("decl: document: %w", err)
	}
	s, err := buildSchema(rec["fields"].([]any), "fields")
	if err != nil {
		return nil, err
	}
	var drop []string
	for _, n := range rec["excluding"].([]any) {
		if name, ok := n.(string); ok {
			drop = append(drop, name)
		}
	}
	return s.Excluding(drop), nil
}

func buildSchema(entries []any, path string) (*wrschema.Schema, error) {
	fields := make([]*wrschema.Field, 0, len(entries))
	for i, e := range entries {
		at := fmt.Sprintf("%s[%d]", path, i)
		f, err := buildField(e, at)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	s, err := wrschema.New(fields...)
	if err != nil {
		return nil, fmt.Errorf("decl: %s: %w", path, err)
	}
	return s, nil
}

func buildField(entry any, at string) (*wrschema.Field, error) {
	m, ok := entry.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("decl: %s: %w: %T", at, wrschema.ErrNotContainer, entry)
	}
	if err := checkKeys(m, entrySchema, at); err != nil {
		return nil, err
	}
	rec, err := entrySchema.Load(m, nil)
	if err != nil {
		return nil, fmt.Errorf("decl: %s: %w", at, err)
	}
	at = fmt.Sprintf("%s (%s)", at, rec.Text("name"))

	mapping, err := buildMapping(rec, at)
	if err != nil {
		return nil, err
	}
	opts := []wrschema.FieldOption{wrschema.Mapped(mapping)}

	var names []string
	if sn, ok := rec["source_names"].([]any); ok {
		for _, n := range sn {
			if name, ok := n.(string); ok {
				names = append(names, name)
			}
		}
	}
	if n := rec.Text("source_name"); n != "" {
		names = append([]string{n}, names...)
	}
	if len(names) > 0 {
		opts = append(opts, wrschema.SourceNames(names...))
	}

	if v, ok := rec["nullable"]; ok {
		opts = append(opts, wrschema.Nullable(v.(bool)))
	}
	if rec["required"].(bool) {
		opts = append(opts, wrschema.Required())
	}
	if rec["forbidden"].(bool) {
		opts = append(opts, wrschema.Forbidden())
	}
	if rec["max_len"] != nil {
		opts = append(opts, wrschema.MaxLen(rec.Int("max_len")))
	}
	if rec["min_len"] != nil {
		opts = append(opts, wrschema.MinLen(rec.Int("min_len")))
	}
	if rec["auto_trim"].(bool) {
		opts = append(opts, wrschema.AutoTrim())
	}

	// bounds, choices and defaults are written in wire form
	wire := func(key string) (any, error) {
		v, err := mapping.Load(rec[key])
		if err != nil {
			return nil, fmt.Errorf("decl: %s: %s: %w", at, key, err)
		}
		return v, nil
	}
	if rec["min"] != nil {
		v, err := wire("min")
		if err != nil {
			return nil, err
		}
		opts = append(opts, wrschema.Min(v))
	}
	if rec["max"] != nil {
		v, err := wire("max")
		if err != nil {
			return nil, err
		}
		opts = append(opts, wrschema.Max(v))
	}
	if cs, ok := rec["choices"].([]any); ok {
		choices := make([]any, len(cs))
		for i, c := range cs {
			v, err := mapping.Load(c)
			if err != nil {
				return nil, fmt.Errorf("decl: %s: choices[%d]: %w", at, i, err)
			}
			choices[i] = v
		}
		opts = append(opts, wrschema.Choices(choices...))
	}
	if pat := rec.Text("regex"); pat != "" {
		re, err := regexp.Compile(`^(?:` + pat + `)`)
		if err != nil {
			return nil, fmt.Errorf("decl: %s: regex: %w", at, err)
		}
		opts = append(opts, wrschema.RegexOf(re))
	}
	if rec.Has("default") {
		v, err := wire("default")
		if err != nil {
			return nil, err
		}
		opts = append(opts, wrschema.Default(v))
	}

	return wrschema.NewField(rec.Text("name"), opts...), nil
}

func buildMapping(rec wrschema.Record, at string) (*wrschema.Mapping, error) {
	var formats []string
	if fs, ok := rec["formats"].([]any); ok {
		for _, f := range fs {
			if layout, ok := f.(string); ok {
				formats = append(formats, layout)
			}
		}
	}
	switch kind := rec.Text("mapping"); kind {
	case "str":
		return wrschema.Str, nil
	case "int":
		return wrschema.Int, nil
	case "float":
		return wrschema.Float, nil
	case "bool":
		return wrschema.Bool, nil
	case "any":
		return wrschema.Identity, nil
	case "uuid":
		return wrschema.UUID(), nil
	case "rfc3339":
		return wrschema.RFC3339(), nil
	case "date":
		return wrschema.Date(formats...), nil
	case "datetime":
		return wrschema.DateTime(formats...), nil
	case "list":
		item := wrschema.Str
		if raw, ok := rec["items"]; ok && raw != nil {
			m, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("decl: %s: items: %w: %T", at, wrschema.ErrNotContainer, raw)
			}
			if err := checkKeys(m, itemSchema, at+": items"); err != nil {
				return nil, err
			}
			ir, err := itemSchema.Load(m, nil)
			if err != nil {
				return nil, fmt.Errorf("decl: %s: items: %w", at, err)
			}
			if item, err = buildMapping(ir, at+": items"); err != nil {
				return nil, err
			}
		}
		return wrschema.List(item), nil
	case "schema":
		entries, ok := rec["fields"].([]any)
		if !ok {
			return nil, fmt.Errorf("decl: %s: schema mapping needs fields", at)
		}
		s, err := buildSchema(entries, at+".fields")
		if err != nil {
			return nil, err
		}
		return wrschema.Nested(s), nil
	default:
		return nil, fmt.Errorf("decl: %s: unknown mapping %q", at, kind)
	}
}

// checkKeys rejects keys s does not declare.
func checkKeys(m map[string]any, s *wrschema.Schema, at string) error {
	known := s.Names()
	var unknown []string
	for k := range m {
		if !slices.Contains(known, k) {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("decl: %s: %w: %v", at, wrschema.ErrUnknownField, unknown)
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, vv := range t {
			t[k] = normalizeNumbers(vv)
		}
		return t
	case []any:
		for i := range t {
			t[i] = normalizeNumbers(t[i])
		}
		return t
	case j.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}
