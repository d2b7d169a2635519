package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// IndexHandler renders the home page
func (s *Server) IndexHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]interface{}{
			"AppName":   s.config.GetAppName(),
			"LoginPath": RouteAuthLogin,
			"ServerURL": s.config.GetServerURL(),
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := tmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render index template")
		}
	}
}
