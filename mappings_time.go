package wrschema

import (
	"fmt"
	"time"
)

// Default layouts for Date and DateTime.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Date parses text with the given layouts (DateLayout when none) and yields
// a time.Time truncated to midnight. Dumping formats with the first layout.
func Date(layouts ...string) *Mapping {
	return timeMapping("date", layouts, DateLayout, true)
}

// DateTime is Date without the truncation to midnight.
func DateTime(layouts ...string) *Mapping {
	return timeMapping("datetime", layouts, DateTimeLayout, false)
}

// RFC3339 accepts RFC3339 with or without fractional seconds and dumps the
// canonical UTC RFC3339Nano form.
func RFC3339() *Mapping {
	m := timeMapping("rfc3339", []string{time.RFC3339Nano, time.RFC3339}, "", false)
	m.dumper = noneAware(func(v any) (any, error) {
		t, ok := v.(time.Time)
		if !ok {
			return nil, fmt.Errorf("expected time.Time, got %T", v)
		}
		// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
		return t.UTC().Format(time.RFC3339Nano), nil
	})
	return m
}

func timeMapping(kind string, layouts []string, fallback string, isDate bool) *Mapping {
	if len(layouts) == 0 {
		layouts = []string{fallback}
	}
	formats := make([]string, len(layouts))
	copy(formats, layouts)

	loader := func(raw any) (any, error) {
		var s string
		switch t := raw.(type) {
		case time.Time:
			if isDate {
				return midnight(t), nil
			}
			return t, nil
		case *time.Time:
			if t == nil {
				return nil, nil
			}
			if isDate {
				return midnight(*t), nil
			}
			return *t, nil
		case string:
			s = t
		case []byte:
			s = string(t)
		default:
			return nil, fmt.Errorf("expected text or time.Time, got %T", raw)
		}
		var lastErr error
		for _, layout := range formats {
			t, err := time.Parse(layout, s)
			if err == nil {
				if isDate {
					return midnight(t), nil
				}
				return t, nil
			}
			lastErr = err
		}
		return nil, lastErr
	}

	dumper := func(v any) (any, error) {
		switch t := v.(type) {
		case time.Time:
			return t.Format(formats[0]), nil
		case *time.Time:
			if t == nil {
				return nil, nil
			}
			return t.Format(formats[0]), nil
		}
		return nil, fmt.Errorf("expected time.Time, got %T", v)
	}

	return &Mapping{kind: kind, loader: noneAware(loader), dumper: noneAware(dumper), formats: formats}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
