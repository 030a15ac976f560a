package wrschema

import (
	"fmt"
	"reflect"
	"time"
	"unicode/utf8"
)

// length reports the length of text (in runes), slices and maps.
func length(v any) (int, bool) {
	switch t := v.(type) {
	case string:
		return utf8.RuneCountInString(t), true
	case []any:
		return len(t), true
	case map[string]any:
		return len(t), true
	case Record:
		return len(t), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}

// truncate cuts text (by runes) or a slice to n elements.
func truncate(v any, n int) any {
	switch t := v.(type) {
	case string:
		r := []rune(t)
		if len(r) <= n {
			return t
		}
		return string(r[:n])
	case []any:
		if len(t) <= n {
			return t
		}
		return t[:n:n]
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice && rv.Len() > n {
		return rv.Slice3(0, n, n).Interface()
	}
	return v
}

// compareValues orders numbers (across Go numeric types), text and times.
func compareValues(a, b any) (int, error) {
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			switch {
			case fa < fb:
				return -1, nil
			case fa > fb:
				return 1, nil
			}
			return 0, nil
		}
	}
	switch ta := a.(type) {
	case string:
		if tb, ok := b.(string); ok {
			switch {
			case ta < tb:
				return -1, nil
			case ta > tb:
				return 1, nil
			}
			return 0, nil
		}
	case time.Time:
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb), nil
		}
	}
	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

// equalValues is deep equality with numbers compared by value.
func equalValues(a, b any) bool {
	if fa, ok := asFloat(a); ok {
		if fb, ok := asFloat(b); ok {
			return fa == fb
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Equal(tb)
		}
	}
	return reflect.DeepEqual(a, b)
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return reflect.ValueOf(t).Convert(reflect.TypeOf(float64(0))).Float(), true
	case number:
		f, err := t.Float64()
		return f, err == nil
	}
	return 0, false
}
