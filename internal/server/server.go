// Package server is the local development server for the CTF site. It serves
// files from a directory, except that directory URLs which would not land on
// an index.html are sent back to the home page instead of being listed.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Handler returns the router for the site rooted at dir.
func Handler(dir string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	site := &siteHandler{root: http.Dir(dir)}
	site.files = http.FileServer(site.root)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(RequestLogger(logger))

	r.Get("/*", site.get)
	r.Head("/*", site.files.ServeHTTP)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unsupported method ("+r.Method+")", http.StatusNotImplemented)
	})
	return r
}

type siteHandler struct {
	root  http.Dir
	files http.Handler
}

func (s *siteHandler) get(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Path
	if s.isDir(p) {
		// a directory must be asked for with a trailing slash and must have
		// an index.html, the root excepted
		if !strings.HasSuffix(p, "/") {
			redirectHome(w)
			return
		}
		if p != "/" && !s.exists(path.Join(p, "index.html")) {
			redirectHome(w)
			return
		}
	}
	s.files.ServeHTTP(w, r)
}

func (s *siteHandler) isDir(name string) bool {
	f, err := s.root.Open(path.Clean("/" + name))
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	return err == nil && info.IsDir()
}

func (s *siteHandler) exists(name string) bool {
	f, err := s.root.Open(name)
	if err != nil {
		return false
	}
	f.Close()
	return true
}

func redirectHome(w http.ResponseWriter) {
	w.Header().Set("Location", "/")
	w.WriteHeader(http.StatusFound)
}

// Server serves Dir on Addr until its context is cancelled.
type Server struct {
	Addr            string
	Dir             string
	Logger          *zap.Logger
	ShutdownTimeout time.Duration
}

// Run listens on s.Addr and serves until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener. The listener is closed on return.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := &http.Server{
		Handler:           Handler(s.Dir, logger),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	addr := ln.Addr().String()
	if tcp, ok := ln.Addr().(*net.TCPAddr); ok && tcp.IP.IsUnspecified() {
		addr = fmt.Sprintf("127.0.0.1:%d", tcp.Port)
	}
	logger.Info(fmt.Sprintf("Serving at http://%s", addr), zap.String("dir", s.Dir))

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	timeout := s.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	logger.Info("Server stopped.")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
