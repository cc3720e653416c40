// Package api serves the socialdb collections over HTTP.
//
// Routes mirror the collections of pkg/socialdb: list, get, create, change
// and delete per collection, the subscription endpoints under /users/{id},
// the read-only /member-types catalog and Prometheus metrics on /metrics.
// Errors are returned as RequestError bodies.
package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mesh-intelligence/socialdb/pkg/socialdb"
	"github.com/mesh-intelligence/socialdb/pkg/types"
)

// Collection names used in routes and metric labels.
const (
	collectionUsers       = "users"
	collectionProfiles    = "profiles"
	collectionPosts       = "posts"
	collectionMemberTypes = "member-types"
)

// Server routes HTTP requests to a socialdb.DB.
type Server struct {
	db      *socialdb.DB
	logger  *slog.Logger
	metrics *Metrics
	schemas *Schemas
	mux     *http.ServeMux
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics replaces the metrics collectors, for example to inspect them
// in tests.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New builds a Server over db with every route registered.
func New(db *socialdb.DB, opts ...Option) (*Server, error) {
	schemas, err := NewSchemas()
	if err != nil {
		return nil, err
	}
	s := &Server{
		db:      db,
		schemas: schemas,
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.index)
	s.mux.Handle("GET /metrics", s.metrics.Handler())

	s.mux.HandleFunc("GET /users", s.listUsers)
	s.mux.HandleFunc("POST /users", s.createUser)
	s.mux.HandleFunc("GET /users/{id}", s.getUser)
	s.mux.HandleFunc("PATCH /users/{id}", s.changeUser)
	s.mux.HandleFunc("DELETE /users/{id}", s.deleteUser)
	s.mux.HandleFunc("POST /users/{id}/subscribeTo", s.subscribeTo)
	s.mux.HandleFunc("POST /users/{id}/unsubscribeFrom", s.unsubscribeFrom)
	s.mux.HandleFunc("GET /users/{id}/followers", s.followers)
	s.mux.HandleFunc("GET /users/{id}/subscriptions", s.subscriptions)

	s.mux.HandleFunc("GET /profiles", s.listProfiles)
	s.mux.HandleFunc("POST /profiles", s.createProfile)
	s.mux.HandleFunc("GET /profiles/{id}", s.getProfile)
	s.mux.HandleFunc("PATCH /profiles/{id}", s.changeProfile)
	s.mux.HandleFunc("DELETE /profiles/{id}", s.deleteProfile)

	s.mux.HandleFunc("GET /posts", s.listPosts)
	s.mux.HandleFunc("POST /posts", s.createPost)
	s.mux.HandleFunc("GET /posts/{id}", s.getPost)
	s.mux.HandleFunc("PATCH /posts/{id}", s.changePost)
	s.mux.HandleFunc("DELETE /posts/{id}", s.deletePost)

	s.mux.HandleFunc("GET /member-types", s.listMemberTypes)
	s.mux.HandleFunc("GET /member-types/{id}", s.getMemberType)
}

// Handler returns the root handler with request metrics and logging.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			s.mux.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		s.mux.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveRequest(r.Method, route, strconv.Itoa(rec.status), elapsed.Seconds())
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", elapsed)
	})
}

// index is the health check.
func (s *Server) index(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "OK")
}

// pathID returns the {id} path value, writing a 400 response when it is not
// a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if !types.IsID(id) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("id %q must be a UUID", id))
		return "", false
	}
	return id, true
}

// reply writes v or maps err to a status, recording the operation outcome.
func (s *Server) reply(w http.ResponseWriter, collection, op string, v any, err error, notFound int) {
	s.metrics.ObserveOperation(collection, op, err)
	if err != nil {
		status := statusFor(err, notFound)
		if status >= http.StatusInternalServerError {
			s.logger.Error("operation failed", "collection", collection, "operation", op, "error", err)
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// decode validates the body against def, writing a 400 response on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, def string, out any) bool {
	if err := s.schemas.Decode(def, r.Body, out); err != nil {
		writeError(w, statusFor(err, http.StatusBadRequest), err.Error())
		return false
	}
	return true
}
