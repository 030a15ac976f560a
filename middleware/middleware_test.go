package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	j "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/reoring/wrschema"
	"github.com/reoring/wrschema/middleware"
)

var createUser = wrschema.MustNew(
	wrschema.NewField("username", wrschema.Required()),
	wrschema.NewField("password", wrschema.SourceNames("Password")),
	wrschema.NewField("dob", wrschema.Mapped(wrschema.Date()), wrschema.Default(nil)),
)

func TestFromRequest_Precedence(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/?username=user&Password=RealPassword",
		strings.NewReader(`{"Password":"pass","dob":"1994-07-29"}`))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")

	rec, err := middleware.FromRequest(r, createUser, map[string]any{"dob": "1995-11-10"})
	require.NoError(t, err)
	assert.Equal(t, "user", rec["username"])
	assert.Equal(t, "RealPassword", rec["password"])
	assert.Equal(t, "1995-11-10", rec.Time("dob").Format("2006-01-02"))
}

func TestFromRequest_Form(t *testing.T) {
	form := url.Values{"username": {"form-user"}, "Password": {"p"}}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec, err := middleware.FromRequest(r, createUser, nil)
	require.NoError(t, err)
	assert.Equal(t, wrschema.Record{"username": "form-user", "password": "p", "dob": nil}, rec)
}

func TestFromRequest_Errors(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?Password=p", nil)
	_, err := middleware.FromRequest(r, createUser, nil)
	assert.ErrorIs(t, err, wrschema.ErrMissing)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"username":`))
	r.Header.Set("Content-Type", "application/json")
	_, err = middleware.FromRequest(r, createUser, nil)
	require.Error(t, err)
	_, isField := wrschema.AsFieldError(err)
	assert.False(t, isField)
}

func TestContextRecord(t *testing.T) {
	_, ok := middleware.RecordFromContext(context.Background())
	assert.False(t, ok)

	ctx := middleware.ContextWithRecord(context.Background(), wrschema.Record{"a": 1})
	rec, ok := middleware.RecordFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, rec["a"])
}

func TestWriteDump(t *testing.T) {
	person := wrschema.MustNew(
		wrschema.NewField("weight", wrschema.Mapped(wrschema.Int), wrschema.SourceNames("weight_in_kgs")),
	)
	w := httptest.NewRecorder()
	require.NoError(t, middleware.WriteDump(w, http.StatusOK, person, wrschema.Record{"weight": 60}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"weight_in_kgs":60}`, w.Body.String())
}

func TestBind(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	var got wrschema.Record
	h := middleware.Bind(createUser, middleware.WithLogger(zap.New(core)))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, _ = middleware.RecordFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/?username=u", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "u", got.Text("username"))

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var payload struct {
		Issues []wrschema.Issue `json:"issues"`
	}
	require.NoError(t, j.Unmarshal(w.Body.Bytes(), &payload))
	require.Len(t, payload.Issues, 1)
	assert.Equal(t, "/username", payload.Issues[0].Path)
	assert.Equal(t, wrschema.ReasonRequired, payload.Issues[0].Code)

	entries := logs.FilterMessage("request rejected").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "username", entries[0].ContextMap()["field"])
}

func TestBind_CustomErrorHandler(t *testing.T) {
	h := middleware.Bind(createUser, middleware.WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))(http.NotFoundHandler())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
