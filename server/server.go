// Package server serves the portfolio site: the index page rendered from
// the page catalog, and the static assets the browser engine loads.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/ndev/portfolio/core"
	"github.com/ndev/portfolio/loader"
	"github.com/ndev/portfolio/site"
	log "github.com/sirupsen/logrus"
)

// New prepares a server for the catalog with assets as the site root. The
// index template is expanded and parsed once, in the development
// environment on every request.
func New(cfg core.Configuration, assets loader.Lister, catalog site.Catalog) (*Server, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	s := &Server{
		cfg:     cfg.Server,
		assets:  assets,
		catalog: catalog,
		reload:  cfg.Environment == "development",
	}
	index, err := s.parseIndex()
	if err != nil {
		return nil, err
	}
	s.index = index
	return s, nil
}

// Server is the site HTTP server
type Server struct {
	cfg     core.ServerConfiguration
	assets  loader.Lister
	catalog site.Catalog
	reload  bool

	mutex sync.RWMutex
	index *template.Template
}

type indexData struct {
	Title   string
	Pages   []site.Page
	Current site.Page
}

func (s *Server) parseIndex() (*template.Template, error) {
	r, err := s.assets.Open(s.cfg.Template)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", s.cfg.Template, err)
	}
	defer r.Close()
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", s.cfg.Template, err)
	}

	html, err := Expand(string(raw), s.assets)
	if err != nil {
		log.WithError(err).WithField("template", s.cfg.Template).Warn("template has unresolved labels")
	}
	return template.New(path.Base(s.cfg.Template)).Parse(html)
}

func (s *Server) template() (*template.Template, error) {
	if s.reload {
		index, err := s.parseIndex()
		if err != nil {
			return nil, err
		}
		s.mutex.Lock()
		s.index = index
		s.mutex.Unlock()
		return index, nil
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.index, nil
}

// Handler returns the routes of the site wrapped in request logging
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.serveIndex)
	mux.Handle("/static/", s.serveAssets("/static/", StaticDir))
	mux.Handle("/shaders/", s.serveAssets("/shaders/", StaticDir+"/shaders"))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	})
	return logRequests(mux)
}

// serveIndex renders the page catalog, /<id> opens on page id
func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	current := s.catalog.Pages[0]
	if id := strings.Trim(r.URL.Path, "/"); id != "" {
		page, ok := s.catalog.Page(id)
		if !ok {
			http.NotFound(w, r)
			return
		}
		current = page
	}

	index, err := s.template()
	if err != nil {
		log.WithError(err).Error("index template unavailable")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err = index.Execute(w, indexData{
		Title:   current.Title,
		Pages:   s.catalog.Pages,
		Current: current,
	})
	if err != nil {
		log.WithError(err).Error("index render failed")
	}
}

func (s *Server) serveAssets(prefix, dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := loader.Clean(strings.TrimPrefix(r.URL.Path, prefix))
		if name == "" {
			http.NotFound(w, r)
			return
		}

		f, err := s.assets.Open(path.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		} else if err != nil {
			log.WithError(err).WithField("asset", name).Error("asset unavailable")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		defer f.Close()

		if ctype := mime.TypeByExtension(path.Ext(name)); ctype != "" {
			w.Header().Set("Content-Type", ctype)
		}
		io.Copy(w, f)
	})
}

// ListenAndServe serves until ctx is done, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Address,
		Handler: s.Handler(),
	}

	failed := make(chan error, 1)
	go func() {
		log.WithField("address", s.cfg.Address).Info("serving site")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			failed <- err
		}
		close(failed)
	}()

	select {
	case err := <-failed:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdown, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Info("request")
	})
}
