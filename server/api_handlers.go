package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/go-mcp-oauth/identity"
	"github.com/rs/zerolog/log"
)

const serviceName = "mcp-oauth-auth-server"

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// pinger is implemented by auth flow stores backed by an external service
type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness. A store that can be pinged must answer for
// the server to be healthy.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p, ok := s.authState.(pinger); ok {
			if err := p.Ping(r.Context()); err != nil {
				log.Err(err).Msg("Auth flow store unreachable")
				writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy", Service: serviceName})
				return
			}
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Service: serviceName})
	}
}

type meResponse struct {
	UserInfo  identity.Claims `json:"user_info"`
	IssuedAt  time.Time       `json:"issued_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// MeHandler returns the identity carried by the caller's bearer token. It
// must sit behind RequireBearerAuth.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := PayloadFromContext(r.Context())
		if !ok {
			writeUnauthorized(w, "Missing token")
			return
		}

		resp := meResponse{UserInfo: payload.UserInfo}
		if payload.IssuedAt != nil {
			resp.IssuedAt = payload.IssuedAt.UTC()
		}
		if payload.ExpiresAt != nil {
			resp.ExpiresAt = payload.ExpiresAt.UTC()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
