package keys_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-mcp-oauth/token/keys"
	"github.com/stretchr/testify/require"
)

func TestHMACSigner(t *testing.T) {
	_, err := keys.NewHMACSigner("")
	require.Error(t, err)

	signer, err := keys.NewHMACSigner("test-secret")
	require.NoError(t, err)
	require.Equal(t, "HS256", signer.GetSigningMethod().Alg())

	signed, err := signer.Sign(jwt.MapClaims{"sub": "user-1"})
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, signer.GetVerificationKey)
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	t.Run("rejects other signing methods", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1"})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = jwt.Parse(raw, signer.GetVerificationKey)
		require.Error(t, err)
	})

	t.Run("rejects a different secret", func(t *testing.T) {
		other, err := keys.NewHMACSigner("other-secret")
		require.NoError(t, err)

		_, err = jwt.Parse(signed, other.GetVerificationKey)
		require.ErrorIs(t, err, jwt.ErrSignatureInvalid)
	})
}
