package identity

// Claims are the user attributes asserted by Entra ID and re-issued inside the
// internal JWT. Absent provider claims are left as empty strings.
type Claims struct {
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	TenantID   string `json:"tenant_id"`
}

// Entra ID token claim names
const (
	claimObjectID          = "oid"
	claimEmail             = "email"
	claimPreferredUsername = "preferred_username"
	claimName              = "name"
	claimGivenName         = "given_name"
	claimFamilyName        = "family_name"
	claimTenantID          = "tid"
)

// FromIDTokenClaims extracts identity claims from decoded ID token claims. It
// never fails: missing or non-string values become "". Email falls back to
// preferred_username, which is where Entra puts the UPN for work accounts.
func FromIDTokenClaims(raw map[string]any) Claims {
	email := stringClaim(raw, claimEmail)
	if email == "" {
		email = stringClaim(raw, claimPreferredUsername)
	}

	return Claims{
		UserID:     stringClaim(raw, claimObjectID),
		Email:      email,
		Name:       stringClaim(raw, claimName),
		GivenName:  stringClaim(raw, claimGivenName),
		FamilyName: stringClaim(raw, claimFamilyName),
		TenantID:   stringClaim(raw, claimTenantID),
	}
}

func stringClaim(raw map[string]any, name string) string {
	s, _ := raw[name].(string)
	return s
}
