package wrschema

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Primitive mappings. Each treats nil as a fixed point in both directions, so
// an absent value never triggers a conversion failure.
var (
	Int   = primitive("int", toInt)
	Str   = primitive("str", toText)
	Float = primitive("float", toFloat)
	Bool  = primitive("bool", toBool)
)

// Identity passes values through unchanged in both directions.
var Identity = &Mapping{kind: "any", loader: identity, dumper: identity}

func primitive(kind string, conv Func) *Mapping {
	fn := noneAware(conv)
	return &Mapping{kind: kind, loader: fn, dumper: fn}
}

// List maps item over every element of a slice. A nil list stays nil;
// individual nil elements are handed to item, which decides.
func List(item *Mapping) *Mapping {
	return &Mapping{
		kind: "list",
		loader: noneAware(func(raw any) (any, error) {
			return mapItems(raw, item.Load)
		}),
		dumper: noneAware(func(v any) (any, error) {
			return mapItems(v, item.Dump)
		}),
	}
}

// Nested uses a whole schema as a mapping: loading builds a record (or a
// factory instance) and dumping produces the wire-shaped map.
func Nested(s *Schema) *Mapping { return s.Mapping() }

// UUID converts between the canonical text form and uuid.UUID.
func UUID() *Mapping {
	return &Mapping{
		kind: "uuid",
		loader: noneAware(func(raw any) (any, error) {
			switch t := raw.(type) {
			case uuid.UUID:
				return t, nil
			case [16]byte:
				return uuid.UUID(t), nil
			}
			s, err := toText(raw)
			if err != nil {
				return nil, err
			}
			return uuid.Parse(strings.TrimSpace(s.(string)))
		}),
		dumper: noneAware(func(v any) (any, error) {
			switch t := v.(type) {
			case uuid.UUID:
				return t.String(), nil
			case string:
				id, err := uuid.Parse(t)
				if err != nil {
					return nil, err
				}
				return id.String(), nil
			}
			return nil, fmt.Errorf("cannot dump %T as uuid", v)
		}),
	}
}

// mapItems applies fn to every element of a slice. Element failures are
// reported as field errors keyed by the element index.
func mapItems(raw any, fn Func) (any, error) {
	items, ok := asSlice(raw)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", raw)
	}
	out := make([]any, len(items))
	for i, it := range items {
		v, err := fn(it)
		if err != nil {
			idx := strconv.Itoa(i)
			if fe, ok := AsFieldError(err); ok {
				return nil, nest(idx, fe)
			}
			return nil, invalid(idx, ReasonMapping, err)
		}
		out[i] = v
	}
	return out, nil
}

func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	case string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// number is satisfied by encoding/json.Number and go-json's alias of it.
type number interface {
	String() string
	Int64() (int64, error)
	Float64() (float64, error)
}

func toInt(v any) (any, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int8:
		return int(t), nil
	case int16:
		return int(t), nil
	case int32:
		return int(t), nil
	case int64:
		return int(t), nil
	case uint:
		return int(t), nil
	case uint8:
		return int(t), nil
	case uint16:
		return int(t), nil
	case uint32:
		return int(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return nil, fmt.Errorf("%d overflows int", t)
		}
		return int(t), nil
	case float32:
		return floatToInt(float64(t))
	case float64:
		return floatToInt(t)
	case bool:
		if t {
			return 1, nil
		}
		return 0, nil
	case number:
		if n, err := t.Int64(); err == nil {
			return int(n), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return floatToInt(f)
	case string:
		return strconv.Atoi(strings.TrimSpace(t))
	case []byte:
		return strconv.Atoi(strings.TrimSpace(string(t)))
	}
	return nil, fmt.Errorf("cannot convert %T to int", v)
}

// floatToInt truncates toward zero.
func floatToInt(f float64) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("cannot convert %v to int", f)
	}
	return int(math.Trunc(f)), nil
}

func toFloat(v any) (any, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int8:
		return float64(t), nil
	case int16:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint:
		return float64(t), nil
	case uint8:
		return float64(t), nil
	case uint16:
		return float64(t), nil
	case uint32:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	case bool:
		if t {
			return 1.0, nil
		}
		return 0.0, nil
	case number:
		return t.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(t), 64)
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(t)), 64)
	}
	return nil, fmt.Errorf("cannot convert %T to float", v)
}

func toBool(v any) (any, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(t))
	case []byte:
		return strconv.ParseBool(strings.TrimSpace(string(t)))
	}
	f, err := toFloat(v)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %T to bool", v)
	}
	return f.(float64) != 0, nil
}

func toText(v any) (any, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case fmt.Stringer:
		return t.String(), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), nil
	}
	return fmt.Sprint(v), nil
}
