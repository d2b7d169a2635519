package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-mcp-oauth/token/jwt"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyPayload stores the verified internal token payload
const ContextKeyPayload ContextKey = "token_payload"

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// PayloadFromContext returns the payload stored by RequireBearerAuth
func PayloadFromContext(ctx context.Context) (*jwt.Payload, bool) {
	payload, ok := ctx.Value(ContextKeyPayload).(*jwt.Payload)
	return payload, ok && payload != nil
}

// RequireBearerAuth is middleware that validates an internal bearer token
// from the Authorization header and stores its payload in the request context.
func (s *Server) RequireBearerAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeUnauthorized(w, "Missing Authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeUnauthorized(w, "Invalid Authorization header format")
				return
			}

			token := strings.TrimSpace(parts[1])
			if token == "" {
				writeUnauthorized(w, "Empty token")
				return
			}

			payload, err := s.tokens.Verify(token)
			if err != nil {
				log.Debug().Err(err).Msg("Bearer token rejected")
				writeUnauthorized(w, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyPayload, payload)
			next(w, r.WithContext(ctx))
		}
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	writeJSON(w, http.StatusUnauthorized, errorResponse{
		Error:            "unauthorized",
		ErrorDescription: description,
	})
}
