package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-mcp-oauth/identity"
	"github.com/jrsteele09/go-mcp-oauth/internal/config"
	apperrors "github.com/jrsteele09/go-mcp-oauth/internal/errors"
	"github.com/jrsteele09/go-mcp-oauth/token/keys"
)

// Issuer is the fixed iss claim of every internal token
const Issuer = "mcp-oauth-example"

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Payload is the body of an internal bearer token
type Payload struct {
	UserInfo identity.Claims `json:"user_info"`
	jwtlib.RegisteredClaims
}

// TokenIssuer handles creation and verification of internal bearer tokens
type TokenIssuer struct {
	signer keys.Signer
	expiry time.Duration
}

// NewTokenIssuer creates an issuer signing with the configured shared secret
func NewTokenIssuer(cfg config.SecurityConfig) (*TokenIssuer, error) {
	signer, err := keys.NewHMACSigner(cfg.GetJWTSecretKey())
	if err != nil {
		return nil, fmt.Errorf("[jwt NewTokenIssuer] %w", err)
	}
	if cfg.GetTokenExpiry() <= 0 {
		return nil, errors.New("[jwt NewTokenIssuer] token expiry must be positive")
	}
	return &TokenIssuer{
		signer: signer,
		expiry: cfg.GetTokenExpiry(),
	}, nil
}

// Issue signs a token carrying userInfo, valid for the configured expiry. The
// returned payload is exactly what was signed.
func (i *TokenIssuer) Issue(userInfo identity.Claims) (string, *Payload, error) {
	now := NowTimeFunc()
	payload := &Payload{
		UserInfo: userInfo,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    Issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(i.expiry)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := i.signer.Sign(payload)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, payload, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the
// payload. Every failure is an *errors.AuthenticationError.
func (i *TokenIssuer) Verify(rawToken string) (*Payload, error) {
	payload := &Payload{}
	token, err := jwtlib.ParseWithClaims(rawToken, payload, i.signer.GetVerificationKey,
		jwtlib.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwtlib.WithIssuer(Issuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithIssuedAt(),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	if err != nil {
		cause := apperrors.ErrInvalidToken
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			cause = apperrors.ErrTokenExpired
		}
		return nil, apperrors.NewAuthenticationError(fmt.Errorf("%w: %w", cause, err), "Invalid token: %v", err)
	}
	if !token.Valid {
		return nil, apperrors.NewAuthenticationError(apperrors.ErrInvalidToken, "Invalid token")
	}
	return payload, nil
}
