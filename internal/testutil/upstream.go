// Package testutil provides test doubles for the open-data API.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// BasePath mirrors the path prefix of the real API so addresses built by the
// client look like production ones.
const BasePath = "/api/v2"

// FakeUpstream is an httptest server answering canned responses keyed by
// request URI (path plus query), counting every hit.
type FakeUpstream struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]route
	hits   map[string]int
	total  int
}

type route struct {
	status int
	body   string
}

// NewFakeUpstream starts a fake upstream that is closed when the test ends.
// Unregistered addresses answer 404.
func NewFakeUpstream(t *testing.T) *FakeUpstream {
	t.Helper()

	f := &FakeUpstream{
		routes: make(map[string]route),
		hits:   make(map[string]int),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL is the API root to configure clients with.
func (f *FakeUpstream) BaseURL() string {
	return f.URL + BasePath
}

// Handle registers a response for uri, given relative to BasePath (for
// example "/votacoes/1/votos?pagina=2"). Occurrences of {{base}} in body are
// replaced by BaseURL when served.
func (f *FakeUpstream) Handle(uri string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[BasePath+uri] = route{status: status, body: body}
}

// Hits returns how many times uri (relative to BasePath) was requested.
func (f *FakeUpstream) Hits(uri string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[BasePath+uri]
}

// TotalHits returns the number of requests served.
func (f *FakeUpstream) TotalHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.total
}

func (f *FakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	key := r.URL.RequestURI()

	f.mu.Lock()
	f.hits[key]++
	f.total++
	rt, ok := f.routes[key]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status":404,"title":"Recurso não encontrado"}`))
		return
	}
	w.WriteHeader(rt.status)
	w.Write([]byte(strings.ReplaceAll(rt.body, "{{base}}", f.BaseURL())))
}
