// Package storetest runs the reference store on an httptest server so
// client-side packages can be tested against real HTTP.
package storetest

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/starford/pastebin/internal/api"
	"github.com/starford/pastebin/internal/pasteservice"
	"github.com/starford/pastebin/internal/testutil"
)

// Server is a reference store with request counting and fault injection.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	counts map[string]int
	status  int
	gate    chan struct{}
	release func()
}

// New starts a store backed by a temp directory. It is closed on test cleanup.
func New(t *testing.T, opts ...pasteservice.Option) *Server {
	t.Helper()
	_, store := testutil.TestStore(t)
	svc := pasteservice.NewService(store, opts...)
	router := api.NewRouter(svc, nil)

	s := &Server{counts: make(map[string]int)}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.counts[r.Method]++
		status := s.status
		gate := s.gate
		s.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(func() {
		s.mu.Lock()
		release := s.release
		s.mu.Unlock()
		if release != nil {
			release()
		}
		s.Server.Close()
	})
	return s
}

// Count returns how many requests with method have been received.
func (s *Server) Count(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[method]
}

// Fail makes every following request answer with status. Zero restores normal handling.
func (s *Server) Fail(status int) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// Hold blocks following requests until the returned release func is called.
func (s *Server) Hold() (release func()) {
	gate := make(chan struct{})
	var once sync.Once
	release = func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gate == gate {
				s.gate = nil
				s.release = nil
			}
			s.mu.Unlock()
			close(gate)
		})
	}

	s.mu.Lock()
	s.gate = gate
	s.release = release
	s.mu.Unlock()
	return release
}
