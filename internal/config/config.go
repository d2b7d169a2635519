package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

type Config interface {
	ServerConfig
	CorsConfig
	OAuthConfig
	SecurityConfig
}

type ServerConfig interface {
	GetAppName() string
	GetEnv() string
	GetAuthServerAddr() string
	GetAuthServerURL() string
	GetServerURL() string
	GetSessionRedisAddr() string
	GetOpenBrowser() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
}

// New loads the configuration from the process environment. It fails when a
// mandatory variable is missing; callers treat that as fatal.
func New() (Config, error) {
	return NewFromEnvironment(nil)
}

// NewFromEnvironment loads the configuration from the given variables. A nil
// map reads the process environment.
func NewFromEnvironment(environ map[string]string) (Config, error) {
	var vars EnvVars
	if err := env.ParseWithOptions(&vars, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("[config New] %w", err)
	}

	vars.Scopes = trimAll(vars.Scopes)
	vars.AllowedOrigins = trimAll(vars.AllowedOrigins)

	if vars.JWTSecretKey == "" {
		secret, err := randomHex(32)
		if err != nil {
			return nil, fmt.Errorf("[config New] generating JWT secret: %w", err)
		}
		vars.JWTSecretKey = secret
		log.Warn().Msg("JWT_SECRET_KEY not set, using a random secret; issued tokens will not survive a restart")
	}

	if err := vars.validate(); err != nil {
		return nil, fmt.Errorf("[config New] %w", err)
	}

	return mainConfig{
		EnvVars: vars,
		Cors:    newCors(vars.AllowedOrigins),
	}, nil
}

func trimAll(values []string) []string {
	trimmed := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			trimmed = append(trimmed, v)
		}
	}
	return trimmed
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
