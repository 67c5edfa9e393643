// Package preview serves a projects root directory's generated output
// over plain HTTP, for browsing the rendered transcripts locally without
// opening files directly from disk.
package preview

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Server is a local, read-only static file server over a projects root.
type Server struct {
	root string
	log  zerolog.Logger

	addr       string
	httpServer *http.Server
}

// NewServer returns a Server that serves root at host:port.
func NewServer(host string, port int, root string, log zerolog.Logger) *Server {
	return &Server{
		root: root,
		log:  log,
		addr: fmt.Sprintf("%s:%d", host, port),
	}
}

// Start begins serving in a background goroutine.
func (s *Server) Start() error {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	fsys := http.Dir(s.root)
	router.PathPrefix("/").Handler(noDirListing(fsys, http.FileServer(fsys)))

	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.log.Info().Str("addr", s.addr).Str("root", s.root).Msg("starting preview server")
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("preview server error")
		}
	}()
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	s.log.Info().Msg("stopping preview server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// noDirListing wraps a file-serving handler so a request for a directory
// without an index.html inside it 404s rather than listing contents; a
// directory that has one is passed through and served its index.html.
func noDirListing(fsys http.FileSystem, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) > 0 && r.URL.Path[len(r.URL.Path)-1] == '/' {
			f, err := fsys.Open(r.URL.Path + "index.html")
			if err != nil {
				http.NotFound(w, r)
				return
			}
			f.Close()
		}
		h.ServeHTTP(w, r)
	})
}
