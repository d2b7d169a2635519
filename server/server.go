package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-mcp-oauth/auth"
	"github.com/jrsteele09/go-mcp-oauth/identity"
	"github.com/jrsteele09/go-mcp-oauth/internal/config"
	"github.com/jrsteele09/go-mcp-oauth/server/authflowrepo"
	"github.com/jrsteele09/go-mcp-oauth/token/jwt"
	"github.com/rs/zerolog/log"
)

// Authenticator is the identity provider side of the login flow
type Authenticator interface {
	AuthorizationURL(state, codeChallenge string) string
	Exchange(ctx context.Context, code, codeVerifier string) (*auth.TokenInfo, error)
}

// TokenIssuer mints and checks the internal bearer tokens
type TokenIssuer interface {
	Issue(userInfo identity.Claims) (string, *jwt.Payload, error)
	Verify(rawToken string) (*jwt.Payload, error)
}

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	auth      Authenticator
	tokens    TokenIssuer
	authState authflowrepo.Repo
}

func New(config config.Config, authenticator Authenticator, tokens TokenIssuer, authStateRepo authflowrepo.Repo) (*Server, error) {
	switch {
	case config == nil:
		return nil, errors.New("[Server New] config is required")
	case authenticator == nil:
		return nil, errors.New("[Server New] authenticator is required")
	case tokens == nil:
		return nil, errors.New("[Server New] token issuer is required")
	case authStateRepo == nil:
		return nil, errors.New("[Server New] auth flow state repo is required")
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		auth:      authenticator,
		tokens:    tokens,
		authState: authStateRepo,
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

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
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
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}
