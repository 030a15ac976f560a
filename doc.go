// Package wrschema describes the shape of loosely structured input (JSON
// bodies, query strings, form data) with composable fields and converts it
// into validated records, and converts records back into the wire shape.
//
// The building blocks:
//
//   - Mapping: a reversible load/dump transformation. The catalog provides
//     Int, Str, Float, Bool, Date, DateTime, RFC3339, UUID, List and Nested.
//   - Field: a name bound to a Mapping, constraints (MinLen, MaxLen, Min, Max,
//     Choices, Regex) and container rules (SourceNames, Default, Required,
//     Forbidden, Nullable).
//   - Schema: an ordered set of fields; Load resolves each field by source
//     precedence, Dump writes the wire shape and Reverse derives the inverse
//     schema.
//
// Typical usage:
//
//	user := wrschema.MustNew(
//		wrschema.NewField("username", wrschema.Required(), wrschema.MaxLen(32)),
//		wrschema.NewField("dob", wrschema.SourceNames("dateOfBirth"),
//			wrschema.Mapped(wrschema.Date()), wrschema.Default(nil)),
//	)
//	rec, err := user.Load(body, map[string]any{"username": pathUser})
//	wire, err := user.Dump(rec)
//	serializer := user.Reverse()
//
// Failures are *FieldError values classified by ErrInvalid, ErrMissing and
// ErrForbidden; subpackages provide request adapters (middleware), source
// decoders (source) and declarative schema documents (decl).
package wrschema
