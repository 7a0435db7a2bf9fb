package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// Request describes one call made with Do
type Request struct {
	Method  string
	Path    string
	Body    io.Reader
	Token   string // sent as a bearer token
	APIKey  string // sent as X-API-Key
	Headers map[string]string
}

// Do serves req through h and returns the recorded response
func Do(h http.Handler, req Request) *httptest.ResponseRecorder {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	r := httptest.NewRequest(method, req.Path, req.Body)
	if req.Token != "" {
		r.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if req.APIKey != "" {
		r.Header.Set("X-API-Key", req.APIKey)
	}
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

// DecodeJSON unmarshals the response body into T
func DecodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}
