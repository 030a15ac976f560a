// Package chimw binds wrschema schemas to chi routes. Route URL parameters
// are the highest-precedence source.
package chimw

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reoring/wrschema"
	"github.com/reoring/wrschema/middleware"
)

// Bind loads requests through s with chi URL parameters as extras. Options
// given later override the URL parameter extras.
func Bind(s *wrschema.Schema, opts ...middleware.Option) func(http.Handler) http.Handler {
	opts = append([]middleware.Option{middleware.WithExtras(URLParams)}, opts...)
	return middleware.Bind(s, opts...)
}

// URLParams returns the matched route parameters of r.
func URLParams(r *http.Request) map[string]any {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return nil
	}
	out := make(map[string]any, len(rctx.URLParams.Keys))
	for i, k := range rctx.URLParams.Keys {
		if k == "*" || i >= len(rctx.URLParams.Values) {
			continue
		}
		out[k] = rctx.URLParams.Values[i]
	}
	return out
}

// GetRecord fetches the record stored by Bind.
func GetRecord(r *http.Request) (wrschema.Record, bool) {
	return middleware.RecordFromContext(r.Context())
}
