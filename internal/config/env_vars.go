package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// EnvVars is the raw environment backed configuration
type EnvVars struct {
	AppName string `env:"APP_NAME" envDefault:"MCP OAuth"`
	Env     string `env:"ENV" envDefault:"DEV"`

	// Entra ID application registration
	TenantID     string   `env:"AUTH_TENANT_ID,required,notEmpty"`
	ClientID     string   `env:"AUTH_CLIENT_ID,required,notEmpty"`
	ClientSecret string   `env:"AUTH_CLIENT_SECRET"`
	RedirectURI  string   `env:"AUTH_REDIRECT_URI" envDefault:"http://localhost:8000/auth/callback"`
	Scopes       []string `env:"AUTH_SCOPES" envDefault:"openid,profile,email" envSeparator:","`
	GraphMeURL   string   `env:"GRAPH_ME_URL" envDefault:"https://graph.microsoft.com/v1.0/me"`

	ServerHost     string `env:"SERVER_HOST" envDefault:"localhost"`
	ServerPort     int    `env:"SERVER_PORT" envDefault:"8080"`
	AuthServerPort int    `env:"AUTH_SERVER_PORT" envDefault:"8000"`

	JWTSecretKey       string `env:"JWT_SECRET_KEY"`
	TokenExpirySeconds int    `env:"TOKEN_EXPIRY_SECONDS" envDefault:"3600"`

	SessionRedisAddr string   `env:"SESSION_REDIS_ADDR"`
	OpenBrowser      bool     `env:"OPEN_BROWSER" envDefault:"true"`
	AllowedOrigins   []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

var _ ServerConfig = EnvVars{}

func (e EnvVars) validate() error {
	if len(e.Scopes) == 0 {
		return errors.New("AUTH_SCOPES must contain at least one scope")
	}
	if e.TokenExpirySeconds <= 0 {
		return fmt.Errorf("TOKEN_EXPIRY_SECONDS must be positive, got %d", e.TokenExpirySeconds)
	}
	for name, port := range map[string]int{"SERVER_PORT": e.ServerPort, "AUTH_SERVER_PORT": e.AuthServerPort} {
		if port <= 0 || port > 65535 {
			return fmt.Errorf("%s out of range: %d", name, port)
		}
	}
	return nil
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	return e.Env
}

// GetAuthServerAddr is the listen address of the authentication server
func (e EnvVars) GetAuthServerAddr() string {
	return net.JoinHostPort(e.ServerHost, strconv.Itoa(e.AuthServerPort))
}

func (e EnvVars) GetAuthServerURL() string {
	return "http://" + e.GetAuthServerAddr()
}

// GetServerURL is the URL of the protected tool server that consumes issued tokens
func (e EnvVars) GetServerURL() string {
	return "http://" + net.JoinHostPort(e.ServerHost, strconv.Itoa(e.ServerPort))
}

func (e EnvVars) GetSessionRedisAddr() string {
	return e.SessionRedisAddr
}

func (e EnvVars) GetOpenBrowser() bool {
	return e.OpenBrowser
}
