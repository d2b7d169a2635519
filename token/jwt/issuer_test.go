package jwt_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-mcp-oauth/identity"
	apperrors "github.com/jrsteele09/go-mcp-oauth/internal/errors"
	"github.com/jrsteele09/go-mcp-oauth/token/jwt"
	"github.com/jrsteele09/go-mcp-oauth/token/keys"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing"

type securityConfig struct {
	secret string
	expiry time.Duration
}

func (c securityConfig) GetJWTSecretKey() string       { return c.secret }
func (c securityConfig) GetTokenExpiry() time.Duration { return c.expiry }

var testUser = identity.Claims{
	UserID:     "user-123",
	Email:      "user@example.com",
	Name:       "Test User",
	GivenName:  "Test",
	FamilyName: "User",
	TenantID:   "tenant-123",
}

func newIssuer(t *testing.T) *jwt.TokenIssuer {
	t.Helper()
	issuer, err := jwt.NewTokenIssuer(securityConfig{secret: testSecret, expiry: time.Hour})
	require.NoError(t, err)
	return issuer
}

func freezeTime(t *testing.T, now time.Time) {
	t.Helper()
	jwt.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { jwt.NowTimeFunc = time.Now })
}

func requireAuthError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, apperrors.IsAuthenticationError(err), "expected AuthenticationError, got %T", err)
	require.Contains(t, err.Error(), "Invalid token")
}

func TestNewTokenIssuer(t *testing.T) {
	_, err := jwt.NewTokenIssuer(securityConfig{secret: "", expiry: time.Hour})
	require.Error(t, err)

	_, err = jwt.NewTokenIssuer(securityConfig{secret: testSecret, expiry: 0})
	require.Error(t, err)
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := newIssuer(t)

	token, issued, err := issuer.Issue(testUser)
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)

	payload, err := issuer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, issued.ExpiresAt.Unix(), payload.ExpiresAt.Unix())
	require.Equal(t, issued.ID, payload.ID)
	require.Equal(t, testUser, payload.UserInfo)
	require.Equal(t, jwt.Issuer, payload.Issuer)
	require.NotEmpty(t, payload.ID)
	require.Equal(t, time.Hour, payload.ExpiresAt.Sub(payload.IssuedAt.Time))
}

func TestTokenIssuer_UniqueIDs(t *testing.T) {
	issuer := newIssuer(t)

	first, _, err := issuer.Issue(testUser)
	require.NoError(t, err)
	second, _, err := issuer.Issue(testUser)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := newIssuer(t)
	issuedAt := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	freezeTime(t, issuedAt)
	token, issued, err := issuer.Issue(testUser)
	require.NoError(t, err)
	require.True(t, issuedAt.Add(time.Hour).Equal(issued.ExpiresAt.Time))

	freezeTime(t, issuedAt.Add(59*time.Minute))
	_, err = issuer.Verify(token)
	require.NoError(t, err)

	freezeTime(t, issuedAt.Add(time.Hour+time.Second))
	_, err = issuer.Verify(token)
	requireAuthError(t, err)
	require.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestTokenIssuer_Invalid(t *testing.T) {
	issuer := newIssuer(t)

	valid, _, err := issuer.Issue(testUser)
	require.NoError(t, err)

	t.Run("malformed", func(t *testing.T) {
		_, err := issuer.Verify("invalid.jwt.token")
		requireAuthError(t, err)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := issuer.Verify("")
		requireAuthError(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := jwt.NewTokenIssuer(securityConfig{secret: "another-secret", expiry: time.Hour})
		require.NoError(t, err)
		forged, _, err := other.Issue(testUser)
		require.NoError(t, err)

		_, err = issuer.Verify(forged)
		requireAuthError(t, err)
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(valid, ".")
		body, err := base64.RawURLEncoding.DecodeString(parts[1])
		require.NoError(t, err)
		body = []byte(strings.Replace(string(body), "user-123", "admin-99", 1))
		parts[1] = base64.RawURLEncoding.EncodeToString(body)

		_, err = issuer.Verify(strings.Join(parts, "."))
		requireAuthError(t, err)
	})

	t.Run("alg none", func(t *testing.T) {
		unsigned := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, jwt.Payload{
			UserInfo: testUser,
			RegisteredClaims: jwtlib.RegisteredClaims{
				Issuer:    jwt.Issuer,
				ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		raw, err := unsigned.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.Verify(raw)
		requireAuthError(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		signer, err := keys.NewHMACSigner(testSecret)
		require.NoError(t, err)
		raw, err := signer.Sign(jwt.Payload{
			UserInfo: testUser,
			RegisteredClaims: jwtlib.RegisteredClaims{
				Issuer:    "someone-else",
				ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		require.NoError(t, err)

		_, err = issuer.Verify(raw)
		requireAuthError(t, err)
	})

	t.Run("missing expiry", func(t *testing.T) {
		signer, err := keys.NewHMACSigner(testSecret)
		require.NoError(t, err)
		raw, err := signer.Sign(jwt.Payload{
			UserInfo:         testUser,
			RegisteredClaims: jwtlib.RegisteredClaims{Issuer: jwt.Issuer},
		})
		require.NoError(t, err)

		_, err = issuer.Verify(raw)
		requireAuthError(t, err)
	})
}
