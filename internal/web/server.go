package web

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vbonduro/hbnb/internal/apperror"
	"github.com/vbonduro/hbnb/internal/authz"
	"github.com/vbonduro/hbnb/internal/service"
)

const apiPrefix = "/api/v1"

// tokenService issues and verifies the bearer tokens carried by API calls.
type tokenService interface {
	Issue(id authz.Identity) (string, error)
	Parse(token string) (authz.Identity, error)
}

type Server struct {
	facade *service.Facade
	tokens tokenService
	mux    *http.ServeMux
	logger *slog.Logger
}

func NewServer(facade *service.Facade, tokens tokenService, logger *slog.Logger) *Server {
	s := &Server{
		facade: facade,
		tokens: tokens,
		mux:    http.NewServeMux(),
		logger: logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST "+apiPrefix+"/auth/login", s.handleLogin)

	s.mux.HandleFunc("POST "+apiPrefix+"/users", s.handleCreateUser)
	s.mux.HandleFunc("GET "+apiPrefix+"/users", s.requireAdmin(s.handleListUsers))
	s.mux.HandleFunc("GET "+apiPrefix+"/users/{id}", s.handleGetUser)
	s.mux.HandleFunc("PUT "+apiPrefix+"/users/{id}", s.requireAuth(s.handleUpdateUser))
	s.mux.HandleFunc("DELETE "+apiPrefix+"/users/{id}", s.requireAuth(s.handleDeleteUser))
	s.mux.HandleFunc("GET "+apiPrefix+"/users/{id}/places", s.handleListUserPlaces)

	s.mux.HandleFunc("POST "+apiPrefix+"/places", s.requireAuth(s.handleCreatePlace))
	s.mux.HandleFunc("GET "+apiPrefix+"/places", s.handleListPlaces)
	s.mux.HandleFunc("GET "+apiPrefix+"/places/{id}", s.handleGetPlace)
	s.mux.HandleFunc("PUT "+apiPrefix+"/places/{id}", s.requireAuth(s.handleUpdatePlace))
	s.mux.HandleFunc("DELETE "+apiPrefix+"/places/{id}", s.requireAuth(s.handleDeletePlace))
	s.mux.HandleFunc("GET "+apiPrefix+"/places/{id}/reviews", s.handleListPlaceReviews)
	s.mux.HandleFunc("POST "+apiPrefix+"/places/{id}/amenities/{amenityID}", s.requireAuth(s.handleLinkAmenity))
	s.mux.HandleFunc("DELETE "+apiPrefix+"/places/{id}/amenities/{amenityID}", s.requireAuth(s.handleUnlinkAmenity))

	s.mux.HandleFunc("POST "+apiPrefix+"/reviews", s.requireAuth(s.handleCreateReview))
	s.mux.HandleFunc("GET "+apiPrefix+"/reviews", s.handleListReviews)
	s.mux.HandleFunc("GET "+apiPrefix+"/reviews/{id}", s.handleGetReview)
	s.mux.HandleFunc("PUT "+apiPrefix+"/reviews/{id}", s.requireAuth(s.handleUpdateReview))
	s.mux.HandleFunc("DELETE "+apiPrefix+"/reviews/{id}", s.requireAuth(s.handleDeleteReview))

	s.mux.HandleFunc("POST "+apiPrefix+"/amenities", s.requireAdmin(s.handleCreateAmenity))
	s.mux.HandleFunc("GET "+apiPrefix+"/amenities", s.handleListAmenities)
	s.mux.HandleFunc("GET "+apiPrefix+"/amenities/{id}", s.handleGetAmenity)
	s.mux.HandleFunc("PUT "+apiPrefix+"/amenities/{id}", s.requireAdmin(s.handleUpdateAmenity))
	s.mux.HandleFunc("DELETE "+apiPrefix+"/amenities/{id}", s.requireAdmin(s.handleDeleteAmenity))
}

// securityHeaders sets the hardening headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if id, ok := identityFrom(r.Context()); ok {
			attrs = append(attrs, "user_id", id.ID)
		}
		logger.Info("request", attrs...)
	})
}

type identityKey struct{}

// authenticate attaches the identity carried by a valid bearer token to the
// request context, with admin rights taken from the stored user. Requests
// without a token pass through anonymous; a token that fails verification or
// names a deleted user is rejected.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			writeMessage(w, http.StatusUnauthorized, "authorization header must be Bearer {token}")
			return
		}
		id, err := s.tokens.Parse(token)
		if err != nil {
			s.logger.Debug("token rejected", "error", err)
			writeMessage(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		// Admin rights come from the stored user, not the token claim.
		user, err := s.facade.GetUser(r.Context(), id.ID)
		if apperror.IsKind(err, apperror.KindNotFound) {
			s.logger.Debug("token subject no longer exists", "user_id", id.ID)
			writeMessage(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		if err != nil {
			s.writeError(w, err)
			return
		}
		id.IsAdmin = user.IsAdmin
		if holder, ok := r.Context().Value(identityKey{}).(*authz.Identity); ok {
			*holder = id
		}
		next.ServeHTTP(w, r)
	})
}

func identityFrom(ctx context.Context) (authz.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(*authz.Identity)
	if !ok || id == nil || id.ID == "" {
		return authz.Identity{}, false
	}
	return *id, true
}

// requireAuth rejects anonymous requests with 401.
func (s *Server) requireAuth(h func(http.ResponseWriter, *http.Request, authz.Identity)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := identityFrom(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}
		h(w, r, id)
	}
}

// requireAdmin rejects anonymous requests with 401 and non-admins with 403.
func (s *Server) requireAdmin(h func(http.ResponseWriter, *http.Request, authz.Identity)) http.HandlerFunc {
	return s.requireAuth(func(w http.ResponseWriter, r *http.Request, id authz.Identity) {
		if err := authz.RequireAdmin(id, "perform this action"); err != nil {
			s.writeError(w, err)
			return
		}
		h(w, r, id)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// authenticate fills in the identity; requestLogger reads it afterwards.
	r = r.WithContext(context.WithValue(r.Context(), identityKey{}, &authz.Identity{}))
	requestLogger(s.logger, securityHeaders(s.authenticate(s.mux))).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}
