package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-library-web/auth"
	"github.com/jrsteele09/go-library-web/internal/config"
	"github.com/jrsteele09/go-library-web/library"
	"github.com/jrsteele09/go-library-web/server/ui"
	"github.com/jrsteele09/go-library-web/sessions"
	"github.com/rs/zerolog/log"
)

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	store   *sessions.Store
	auth    *auth.Service
	library *library.Service
}

func New(config config.Config, store *sessions.Store, authService *auth.Service, libraryService *library.Service) (*Server, error) {
	if config == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if store == nil {
		return nil, errors.New("[Server New] session store is required")
	}
	if authService == nil {
		return nil, errors.New("[Server New] auth service is required")
	}
	if libraryService == nil {
		return nil, errors.New("[Server New] library service is required")
	}

	s := &Server{
		env:     strings.ToUpper(config.GetEnv()),
		mux:     http.NewServeMux(),
		config:  config,
		store:   store,
		auth:    authService,
		library: libraryService,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

// Routes returns the registered route patterns in registration order
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Debug().Msgf("[%-19s] %s", displayMethod(method), path)
}

func displayMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := ui.MethodColors[method]; ok {
		return color + paddedMethod + ui.ResetColor
	}
	return ui.Gray + paddedMethod + ui.ResetColor
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
