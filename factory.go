package wrschema

import (
	"fmt"
	"reflect"
	"strings"
)

// InstanceFactory turns a loaded record into a caller-defined value. A schema
// without a factory yields the Record itself.
type InstanceFactory func(Record) (any, error)

// StructFactory returns a factory that fills a new *T from the record.
// Record keys are matched to struct fields with ResolveStructKey.
func StructFactory[T any]() InstanceFactory {
	return func(r Record) (any, error) {
		out := new(T)
		if err := fillStruct(reflect.ValueOf(out).Elem(), r); err != nil {
			return nil, err
		}
		return out, nil
	}
}

// Into loads data and extras through s and fills a T from the record,
// ignoring the schema's own factory.
func Into[T any](s *Schema, data, extras map[string]any) (T, error) {
	var out T
	r, err := s.Load(data, extras)
	if err != nil {
		return out, err
	}
	rv := reflect.ValueOf(&out).Elem()
	if rv.Kind() != reflect.Struct {
		return out, fmt.Errorf("wrschema: Into requires a struct type, got %s", rv.Type())
	}
	if err := fillStruct(rv, r); err != nil {
		return out, err
	}
	return out, nil
}

// ResolveStructKey resolves a struct field's record key.
// Priority: wrschema:"name=..." > json tag name > field name; "-" disables the field.
func ResolveStructKey(sf reflect.StructField) string {
	if gt := sf.Tag.Get("wrschema"); gt != "" {
		parts := strings.Split(gt, ",")
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			return jt[:i]
		}
		return jt
	}
	return sf.Name
}

func structKeys(t reflect.Type) map[string]int {
	keys := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		key := ResolveStructKey(sf)
		if key == "-" {
			continue
		}
		keys[key] = i
	}
	return keys
}

func fillStruct(rv reflect.Value, r Record) error {
	keys := structKeys(rv.Type())
	for k, v := range r {
		idx, ok := keys[k]
		if !ok {
			return fmt.Errorf("wrschema: %s has no field for %q", rv.Type(), k)
		}
		if v == nil {
			continue
		}
		dst := rv.Field(idx)
		src := reflect.ValueOf(v)
		switch {
		case src.Type().AssignableTo(dst.Type()):
			dst.Set(src)
		case src.Type().ConvertibleTo(dst.Type()) && src.Kind() != reflect.String && dst.Kind() != reflect.String:
			dst.Set(src.Convert(dst.Type()))
		case dst.Kind() == reflect.Pointer && src.Type().AssignableTo(dst.Type().Elem()):
			p := reflect.New(dst.Type().Elem())
			p.Elem().Set(src)
			dst.Set(p)
		default:
			return fmt.Errorf("wrschema: cannot assign %T to %s.%s", v, rv.Type(), rv.Type().Field(idx).Name)
		}
	}
	return nil
}

// structToContainer views a struct (or pointer to one) as a container using
// the same key rules as StructFactory.
func structToContainer(v any) (map[string]any, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	keys := structKeys(rv.Type())
	out := make(map[string]any, len(keys))
	for k, i := range keys {
		fv := rv.Field(i)
		if fv.Kind() == reflect.Pointer {
			if fv.IsNil() {
				out[k] = nil
				continue
			}
			fv = fv.Elem()
		}
		out[k] = fv.Interface()
	}
	return out, true
}
