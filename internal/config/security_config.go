package config

import "time"

type SecurityConfig interface {
	GetJWTSecretKey() string
	GetTokenExpiry() time.Duration
}

var _ SecurityConfig = EnvVars{}

func (e EnvVars) GetJWTSecretKey() string {
	return e.JWTSecretKey
}

func (e EnvVars) GetTokenExpiry() time.Duration {
	return time.Duration(e.TokenExpirySeconds) * time.Second
}
