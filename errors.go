package wrschema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/wrschema/i18n"
)

// Reason codes carried by FieldError.Reason.
const (
	ReasonNullable  = "nullable"
	ReasonMapping   = "mapping"
	ReasonMaxLen    = "max_len"
	ReasonMinLen    = "min_len"
	ReasonMax       = "max"
	ReasonMin       = "min"
	ReasonChoices   = "choices"
	ReasonRegex     = "regex"
	ReasonRequired  = "required"
	ReasonForbidden = "forbidden"
)

// Error kinds. Use errors.Is against these to classify a *FieldError.
var (
	ErrInvalid   = errors.New("wrschema: invalid")
	ErrMissing   = errors.New("wrschema: missing")
	ErrForbidden = errors.New("wrschema: forbidden")
)

var (
	// ErrUnknownField is returned by Schema.Field when no field has the name.
	ErrUnknownField = errors.New("wrschema: unknown field")
	// ErrNotContainer is returned when a key-value container was expected.
	ErrNotContainer = errors.New("wrschema: not a key-value container")
)

// FieldError reports a field-scoped validation failure. Name is dotted for
// failures inside nested schemas or list items (e.g. "users.1.username").
type FieldError struct {
	Kind   error // ErrInvalid, ErrMissing or ErrForbidden.
	Name   string
	Reason string
	Cause  error
}

func (e *FieldError) Error() string {
	msg := i18n.T(e.Reason, map[string]string{"field": e.Name})
	if e.Cause != nil {
		return fmt.Sprintf("%s: field %q: %s: %v", e.Kind, e.Name, msg, e.Cause)
	}
	return fmt.Sprintf("%s: field %q: %s", e.Kind, e.Name, msg)
}

// Is matches the error kind sentinels.
func (e *FieldError) Is(target error) bool { return target == e.Kind }

func (e *FieldError) Unwrap() error { return e.Cause }

// Path renders the dotted name as a JSON Pointer.
func (e *FieldError) Path() string {
	if e.Name == "" {
		return "/"
	}
	parts := strings.Split(e.Name, ".")
	for i, p := range parts {
		// escape '~' -> '~0', '/' -> '~1' per RFC6901
		parts[i] = strings.ReplaceAll(strings.ReplaceAll(p, "~", "~0"), "/", "~1")
	}
	return "/" + strings.Join(parts, "/")
}

// Issue projects the error into the wire-friendly Issue shape.
func (e *FieldError) Issue() Issue {
	return Issue{
		Path:    e.Path(),
		Field:   e.Name,
		Code:    e.Reason,
		Message: i18n.T(e.Reason, map[string]string{"field": e.Name}),
		Cause:   e.Cause,
	}
}

func invalid(name, reason string, cause error) *FieldError {
	return &FieldError{Kind: ErrInvalid, Name: name, Reason: reason, Cause: cause}
}

func missing(name string) *FieldError {
	return &FieldError{Kind: ErrMissing, Name: name, Reason: ReasonRequired}
}

func forbidden(name string) *FieldError {
	return &FieldError{Kind: ErrForbidden, Name: name, Reason: ReasonForbidden}
}

// nest re-keys a nested field error under prefix, keeping kind and reason.
func nest(prefix string, fe *FieldError) *FieldError {
	name := prefix
	if fe.Name != "" {
		name = prefix + "." + fe.Name
	}
	return &FieldError{Kind: fe.Kind, Name: name, Reason: fe.Reason, Cause: fe.Cause}
}

// AsFieldError extracts a *FieldError using errors.As.
func AsFieldError(err error) (*FieldError, bool) {
	if err == nil {
		return nil, false
	}
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// Issue is a single validation entry as surfaced to API clients.
type Issue struct {
	Path    string `json:"path"` // JSON Pointer (for example: /users/1/username).
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Issues is a collection of validation entries that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. max_len at /username
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AsIssues converts err into Issues. Field errors become a single issue and
// any other error becomes a parse_error issue at the root.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	if fe, ok := AsFieldError(err); ok {
		return Issues{fe.Issue()}, true
	}
	return Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Cause: err}}, false
}

// CodeParseError marks input that could not be decoded into a container.
const CodeParseError = "parse_error"
