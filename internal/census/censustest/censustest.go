// Package censustest serves canned Census API responses for tests.
package censustest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	"github.com/KaramelBytes/census-explorer/internal/census"
)

// Header is the column row the API sends for census.DefaultQuery.
func Header() []string {
	return append(append([]string{"NAME"}, census.DefaultQuery().Variables...), "state", "county")
}

// Rows returns the header followed by n synthetic Alabama counties with distinct
// incomes. When withTerritory is set a Puerto Rico municipio is appended.
func Rows(n int, withTerritory bool) [][]string {
	out := [][]string{Header()}
	for i := 0; i < n; i++ {
		out = append(out, []string{
			fmt.Sprintf("County %d, Alabama", i+1),
			fmt.Sprintf("0.%d", 4000+37*i),
			fmt.Sprintf("%d", 40000+1750*i),
			fmt.Sprintf("%d", 20000+500*i),
			fmt.Sprintf("%d", 800+13*i),
			fmt.Sprintf("%d", 50000+1000*i),
			fmt.Sprintf("%d", 2000+75*i),
			"01",
			fmt.Sprintf("%03d", 2*i+1),
		})
	}
	if withTerritory {
		out = append(out, []string{"Adjuntas Municipio, Puerto Rico", "0.5211", "16000", "4500", "900", "18000", "2100", "72", "001"})
	}
	return out
}

// Server is a fake Census API. Every request is answered with the configured rows
// unless a failure status is set.
type Server struct {
	*httptest.Server

	hits   atomic.Int64
	mu     sync.Mutex
	rows   [][]string
	status int
}

// NewServer starts a fake API answering with rows.
func NewServer(rows [][]string) *Server {
	s := &Server{rows: rows}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Hits returns the number of requests received.
func (s *Server) Hits() int { return int(s.hits.Load()) }

// SetRows replaces the response body rows.
func (s *Server) SetRows(rows [][]string) {
	s.mu.Lock()
	s.rows = rows
	s.mu.Unlock()
}

// SetStatus makes the server fail with code. Zero restores normal answers.
func (s *Server) SetStatus(code int) {
	s.mu.Lock()
	s.status = code
	s.mu.Unlock()
}

func (s *Server) serve(w http.ResponseWriter, _ *http.Request) {
	s.hits.Add(1)
	s.mu.Lock()
	rows, status := s.rows, s.status
	s.mu.Unlock()
	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rows)
}
