package server

import (
	"net/http"
	"time"

	"github.com/jrsteele09/go-mcp-oauth/pkce"
	"github.com/jrsteele09/go-mcp-oauth/server/authflowrepo"
	"github.com/rs/zerolog/log"
)

var nowTimeFunc = time.Now

// LoginHandler starts a login: it records a fresh PKCE pair under a new state
// value and redirects the browser to Entra ID.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pair := pkce.GeneratePair()

		state, err := generateRandomString(stateLength)
		if err != nil {
			log.Err(err).Msg("Failed to generate state")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		err = s.authState.Put(r.Context(), state, authflowrepo.AuthFlowState{
			CodeVerifier:  pair.Verifier,
			CodeChallenge: pair.Challenge,
			CreatedAt:     nowTimeFunc(),
		})
		if err != nil {
			log.Err(err).Msg("Failed to store auth flow state")
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, s.auth.AuthorizationURL(state, pair.Challenge), http.StatusFound)
	}
}
