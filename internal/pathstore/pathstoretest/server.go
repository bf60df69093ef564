package pathstoretest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Server is an in-memory pathstore KV API for tests.
type Server struct {
	*httptest.Server
	APIKey string

	mu       sync.Mutex
	nodes    map[string]json.RawMessage
	failNext int
}

type node struct {
	Key   string          `json:"key_path"`
	Value json.RawMessage `json:"value"`
}

func NewServer(apiKey string) *Server {
	s := &Server{APIKey: apiKey, nodes: make(map[string]json.RawMessage)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// FailNext makes the next n requests fail with 503.
func (s *Server) FailNext(n int) {
	s.mu.Lock()
	s.failNext = n
	s.mu.Unlock()
}

// Keys returns the stored keys in sorted order.
func (s *Server) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.nodes))
	for k := range s.nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+s.APIKey {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	path := r.URL.EscapedPath()
	if !strings.HasPrefix(path, "/kv/") {
		http.NotFound(w, r)
		return
	}
	key := strings.TrimPrefix(path, "/kv/")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext > 0 {
		s.failNext--
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(key, "/*"):
		s.list(w, r, strings.TrimSuffix(key, "*"))
	case r.Method == http.MethodGet:
		v, ok := s.nodes[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, node{Key: key, Value: v})
	case r.Method == http.MethodPut:
		var req struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		status := http.StatusCreated
		if _, ok := s.nodes[key]; ok {
			status = http.StatusOK
		}
		s.nodes[key] = req.Value
		w.WriteHeader(status)
	case r.Method == http.MethodDelete:
		if _, ok := s.nodes[key]; !ok {
			http.NotFound(w, r)
			return
		}
		delete(s.nodes, key)
		if r.URL.Query().Get("children") == "true" {
			for k := range s.nodes {
				if strings.HasPrefix(k, key+"/") {
					delete(s.nodes, k)
				}
			}
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, prefix string) {
	keys := make([]string, 0)
	for k := range s.nodes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && limit < len(keys) {
		keys = keys[:limit]
	}
	out := struct {
		Nodes []node `json:"nodes"`
	}{Nodes: make([]node, 0, len(keys))}
	for _, k := range keys {
		out.Nodes = append(out.Nodes, node{Key: k, Value: s.nodes[k]})
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
