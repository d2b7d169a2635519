package config

type OAuthConfig interface {
	GetTenantID() string
	GetClientID() string
	GetClientSecret() string
	GetRedirectURI() string
	GetScopes() []string
	GetAuthority() string
	GetGraphMeURL() string
}

var _ OAuthConfig = EnvVars{}

func (e EnvVars) GetTenantID() string {
	return e.TenantID
}

func (e EnvVars) GetClientID() string {
	return e.ClientID
}

// GetClientSecret is empty for public client registrations
func (e EnvVars) GetClientSecret() string {
	return e.ClientSecret
}

func (e EnvVars) GetRedirectURI() string {
	return e.RedirectURI
}

func (e EnvVars) GetScopes() []string {
	scopes := make([]string, len(e.Scopes))
	copy(scopes, e.Scopes)
	return scopes
}

// GetAuthority returns the Entra ID authority for the tenant
func (e EnvVars) GetAuthority() string {
	return "https://login.microsoftonline.com/" + e.TenantID
}

func (e EnvVars) GetGraphMeURL() string {
	return e.GraphMeURL
}
