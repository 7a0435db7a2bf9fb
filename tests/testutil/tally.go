package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// TallyServer is a fake Tally XML server. It tells customer, stock item and
// company requests apart the way Tally does, by the request body.
type TallyServer struct {
	*httptest.Server

	mu        sync.Mutex
	customers []byte
	items     []byte
	status    int
	requests  map[string]int
}

// NewTallyServer serves the customers.xml and items.xml fixtures
func NewTallyServer(t *testing.T) *TallyServer {
	t.Helper()
	ts := &TallyServer{
		customers: Fixture(t, "customers.xml"),
		items:     Fixture(t, "items.xml"),
		status:    http.StatusOK,
		requests:  map[string]int{},
	}
	ts.Server = httptest.NewServer(http.HandlerFunc(ts.serve))
	t.Cleanup(ts.Close)
	return ts
}

// Requests returns how many requests of kind ("customers", "items" or
// "company") were served
func (ts *TallyServer) Requests(kind string) int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.requests[kind]
}

// SetCustomers replaces the customers export body
func (ts *TallyServer) SetCustomers(raw []byte) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.customers = raw
}

// FailWith makes every following request answer status with an empty body
func (ts *TallyServer) FailWith(status int) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.status = status
}

func (ts *TallyServer) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	kind := requestKind(body)

	ts.mu.Lock()
	ts.requests[kind]++
	status := ts.status
	var answer []byte
	switch kind {
	case "customers":
		answer = ts.customers
	case "items":
		answer = ts.items
	default:
		answer = []byte("<ENVELOPE><COMPANY>ok</COMPANY></ENVELOPE>")
	}
	ts.mu.Unlock()

	if status != http.StatusOK {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write(answer)
}

func requestKind(body []byte) string {
	switch {
	case bytes.Contains(body, []byte("<REPORTNAME>Company</REPORTNAME>")):
		return "company"
	case bytes.Contains(body, []byte("IsItemWise")):
		return "items"
	}
	return "customers"
}
