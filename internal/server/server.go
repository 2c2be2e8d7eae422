// Package server exposes the encoder's output directory over HTTP for the
// browser front end. It carries no format logic: static files, a health
// endpoint, and a websocket that tells connected browsers when a served
// file changes so they can reload.
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Server watches one directory and serves it.
type Server struct {
	mu        sync.RWMutex
	dir       string
	clients   map[*websocket.Conn]bool
	mtimes    map[string]time.Time
	startTime time.Time
}

// New returns a server rooted at dir.
func New(dir string) *Server {
	return &Server{
		dir:       dir,
		clients:   map[*websocket.Conn]bool{},
		mtimes:    map[string]time.Time{},
		startTime: time.Now(),
	}
}

// Handler builds the route table: /ws, /health, and the static tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	mux.HandleFunc("/health", s.HandleHealth)
	mux.Handle("/", noCache(http.FileServer(http.Dir(s.dir))))
	return withCORS(mux)
}

// HandleWS registers a browser for change notifications.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.clients, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// HandleHealth reports uptime and connected client count.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	resp := map[string]any{
		"uptime_s": time.Since(s.startTime).Seconds(),
		"clients":  len(s.clients),
		"dir":      s.dir,
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// WatchChanges polls the directory's modification times at the given
// interval and notifies clients of changed files. Run it as a goroutine;
// it returns when the done channel closes.
func (s *Server) WatchChanges(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	s.scan() // prime the baseline without notifying
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if changed := s.scan(); len(changed) > 0 {
				s.broadcastChange(changed)
			}
		}
	}
}

// scan walks the served tree and returns paths whose mtime moved since the
// previous scan.
func (s *Server) scan() []string {
	var changed []string
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = filepath.WalkDir(s.dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return nil
		}
		if prev, ok := s.mtimes[rel]; !ok || info.ModTime().After(prev) {
			if ok {
				changed = append(changed, rel)
			}
			s.mtimes[rel] = info.ModTime()
		}
		return nil
	})
	return changed
}

func (s *Server) broadcastChange(files []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type change struct {
		T     int64    `json:"t"`
		Files []string `json:"files"`
	}
	b, _ := json.Marshal(change{T: time.Now().UnixNano(), Files: files})
	for c := range s.clients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			log.Debug().Err(err).Msg("write change notice")
		}
	}
}

// noCache disables browser caching so file edits take effect on reload.
func noCache(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		h.ServeHTTP(w, r)
	})
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
