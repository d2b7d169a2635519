package server

import (
	"html/template"
	"net/http"
	"time"

	apperrors "github.com/jrsteele09/go-mcp-oauth/internal/errors"
	"github.com/jrsteele09/go-mcp-oauth/server/authflowrepo"
	"github.com/rs/zerolog/log"
)

// CallbackPageData is rendered after a successful login
type CallbackPageData struct {
	Name      string
	Email     string
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// OAuthCallbackHandler completes a login. The state entry is consumed before
// the code exchange, so a state can be redeemed at most once whatever the
// outcome.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	successTmpl := mustParseTemplate("callback.html")

	return func(w http.ResponseWriter, r *http.Request) {
		// r.FormValue covers both query params and form_post bodies
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")
		errorDesc := r.FormValue("error_description")

		if errorParam != "" {
			reason := errorDesc
			if reason == "" {
				reason = errorParam
			}
			writeCallbackError(w, apperrors.NewAuthenticationError(
				apperrors.Wrapf(apperrors.ErrProviderError, "%s", errorParam),
				"Authentication failed: %s", reason))
			return
		}

		if code == "" || state == "" {
			writeCallbackError(w, apperrors.NewAuthenticationError(apperrors.ErrMissingParameter,
				"Missing authorization code or state parameter"))
			return
		}

		authState, err := s.authState.Take(r.Context(), state)
		if apperrors.Is(err, authflowrepo.ErrStateNotFound) {
			err = apperrors.NewAuthenticationError(apperrors.Wrapf(apperrors.ErrInvalidState, "%v", err),
				"Invalid or expired state parameter")
		}
		if err != nil {
			writeCallbackError(w, err)
			return
		}

		tokenInfo, err := s.auth.Exchange(r.Context(), code, authState.CodeVerifier)
		if err != nil {
			writeCallbackError(w, err)
			return
		}

		jwtToken, payload, err := s.tokens.Issue(tokenInfo.UserInfo)
		if err != nil {
			writeCallbackError(w, apperrors.Wrapf(err, "issuing token"))
			return
		}

		log.Info().Str("user_id", tokenInfo.UserInfo.UserID).Msg("Login completed")

		s.renderCallbackSuccess(w, successTmpl, CallbackPageData{
			Name:      orNA(tokenInfo.UserInfo.Name),
			Email:     orNA(tokenInfo.UserInfo.Email),
			UserID:    orNA(tokenInfo.UserInfo.UserID),
			Token:     jwtToken,
			ExpiresAt: payload.ExpiresAt.UTC(),
		})
	}
}

// writeCallbackError answers 400 with the message of an AuthenticationError
// and a generic 500 for anything else.
func writeCallbackError(w http.ResponseWriter, err error) {
	var authErr *apperrors.AuthenticationError
	if apperrors.As(err, &authErr) {
		log.Warn().Err(authErr.Err).Msg(authErr.Message)
		http.Error(w, authErr.Message, http.StatusBadRequest)
		return
	}
	log.Err(err).Msg("Login failed unexpectedly")
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func (s *Server) renderCallbackSuccess(w http.ResponseWriter, tmpl *template.Template, data CallbackPageData) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.Header().Set("Cache-Control", "no-store")
	if err := tmpl.Execute(w, data); err != nil {
		log.Err(err).Msg("Failed to render callback template")
	}
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
