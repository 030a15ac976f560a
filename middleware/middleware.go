// Package middleware loads HTTP requests through a wrschema.Schema.
package middleware

import (
	"context"
	"fmt"
	"mime"
	"net/http"

	j "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/reoring/wrschema"
	"github.com/reoring/wrschema/source"
)

const maxMultipartMemory = 32 << 20

// FromRequest loads r through s. Candidate sources are consulted in order:
// extras, the query string, a JSON body (Content-Type application/json) and
// finally form values.
func FromRequest(r *http.Request, s *wrschema.Schema, extras map[string]any) (wrschema.Record, error) {
	sources, err := requestSources(r)
	if err != nil {
		return nil, err
	}
	return s.LoadSources(append([]map[string]any{extras}, sources...)...)
}

func requestSources(r *http.Request) ([]map[string]any, error) {
	out := []map[string]any{source.Values(r.URL.Query())}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/json":
		if r.Body == nil {
			return out, nil
		}
		body, err := source.JSONReader(r.Body)
		if err != nil {
			return nil, err
		}
		out = append(out, body)
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return nil, fmt.Errorf("middleware: parse form: %w", err)
		}
		out = append(out, source.Values(r.PostForm))
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("middleware: parse form: %w", err)
		}
		out = append(out, source.Values(r.PostForm))
	}
	return out, nil
}

type ctxKeyRecord struct{}

// ContextWithRecord attaches a loaded record to the context.
func ContextWithRecord(ctx context.Context, rec wrschema.Record) context.Context {
	return context.WithValue(ctx, ctxKeyRecord{}, rec)
}

// RecordFromContext retrieves the record stored by ContextWithRecord.
func RecordFromContext(ctx context.Context) (wrschema.Record, bool) {
	rec, ok := ctx.Value(ctxKeyRecord{}).(wrschema.Record)
	return rec, ok
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues wrschema.Issues) map[string]any {
	return map[string]any{"issues": issues}
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return j.NewEncoder(w).Encode(v)
}

// WriteDump dumps v through s and writes the wire form as JSON.
func WriteDump(w http.ResponseWriter, status int, s *wrschema.Schema, v any) error {
	out, err := s.Dump(v)
	if err != nil {
		return err
	}
	return WriteJSON(w, status, out)
}

// WriteError answers 400 with an issues payload. Errors that are not field
// errors are reported as a single parse_error issue.
func WriteError(w http.ResponseWriter, err error) {
	iss, _ := wrschema.AsIssues(err)
	_ = WriteJSON(w, http.StatusBadRequest, ErrorPayload(iss))
}

// ErrorHandler answers a request whose load failed.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Config controls Bind.
type Config struct {
	Logger  *zap.Logger
	Extras  func(r *http.Request) map[string]any
	OnError ErrorHandler
}

// Option configures Bind.
type Option func(*Config)

// WithLogger sets the logger used to report rejected requests.
func WithLogger(l *zap.Logger) Option { return func(c *Config) { c.Logger = l } }

// WithExtras sets the function producing the highest-precedence source.
func WithExtras(fn func(r *http.Request) map[string]any) Option {
	return func(c *Config) { c.Extras = fn }
}

// WithErrorHandler replaces the default 400 response.
func WithErrorHandler(h ErrorHandler) Option { return func(c *Config) { c.OnError = h } }

// NewConfig applies opts over the defaults.
func NewConfig(opts ...Option) Config {
	c := Config{
		Logger:  zap.NewNop(),
		OnError: func(w http.ResponseWriter, _ *http.Request, err error) { WriteError(w, err) },
	}
	for _, o := range opts {
		o(&c)
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// Bind loads every request through s and stores the record in the request
// context for next. Requests that fail to load never reach next.
func Bind(s *wrschema.Schema, opts ...Option) func(http.Handler) http.Handler {
	cfg := NewConfig(opts...)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var extras map[string]any
			if cfg.Extras != nil {
				extras = cfg.Extras(r)
			}
			rec, err := FromRequest(r, s, extras)
			if err != nil {
				fields := []zap.Field{zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err)}
				if fe, ok := wrschema.AsFieldError(err); ok {
					fields = append(fields, zap.String("field", fe.Name), zap.String("reason", fe.Reason))
				}
				cfg.Logger.Debug("request rejected", fields...)
				cfg.OnError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithRecord(r.Context(), rec)))
		})
	}
}
