// Package source turns request bodies, query strings and documents into the
// string-keyed containers that wrschema.Schema loads from.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrNotObject is returned when a document decodes to something other than
// an object.
var ErrNotObject = errors.New("source: document is not an object")

// JSONBytes decodes a JSON object. Numbers are kept as json.Number so the
// field mapping decides between int and float. Empty input yields an empty
// source.
func JSONBytes(b []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return map[string]any{}, nil
	}
	return JSONReader(bytes.NewReader(b))
}

// JSONReader decodes a single JSON object from r.
func JSONReader(r io.Reader) (map[string]any, error) {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("source: decode json: %w", err)
	}
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case nil:
		return map[string]any{}, nil
	}
	return nil, fmt.Errorf("%w: got %T", ErrNotObject, v)
}

// YAMLBytes decodes a YAML mapping. Keys are normalised to strings at every
// level; non-string keys are dropped.
func YAMLBytes(b []byte) (map[string]any, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("source: decode yaml: %w", err)
	}
	if v == nil {
		return map[string]any{}, nil
	}
	m := yamlAnyToStringMap(v)
	if m == nil {
		return nil, fmt.Errorf("%w: got %T", ErrNotObject, v)
	}
	return m, nil
}

func yamlAnyToStringMap(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlNormalizeValue(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = yamlNormalizeValue(vv)
		}
		return out
	default:
		return nil
	}
}

func yamlNormalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any, map[any]any:
		return yamlAnyToStringMap(t)
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = yamlNormalizeValue(t[i])
		}
		return arr
	default:
		return v
	}
}

// Values flattens query or form values. A key with one value maps to that
// string; a key with several values maps to a []any of strings.
func Values(v url.Values) map[string]any {
	out := make(map[string]any, len(v))
	for k, vs := range v {
		switch len(vs) {
		case 0:
		case 1:
			out[k] = vs[0]
		default:
			items := make([]any, len(vs))
			for i, s := range vs {
				items[i] = s
			}
			out[k] = items
		}
	}
	return out
}

// Fold merges sources key by key; the first source holding a key wins.
func Fold(sources ...map[string]any) map[string]any {
	out := map[string]any{}
	for i := len(sources) - 1; i >= 0; i-- {
		for k, v := range sources[i] {
			out[k] = v
		}
	}
	return out
}
