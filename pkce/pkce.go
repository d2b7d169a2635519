// Package pkce generates Proof Key for Code Exchange (RFC 7636) verifier and
// challenge pairs for the S256 method.
package pkce

import (
	"golang.org/x/oauth2"
)

// MethodS256 is the only challenge method this server sends.
const MethodS256 = "S256"

// Pair is a single-use PKCE verifier and its S256 challenge. The verifier stays
// with the server; only the challenge is sent to the identity provider.
type Pair struct {
	Verifier  string
	Challenge string
}

// GeneratePair returns a fresh pair. The verifier is 32 bytes from crypto/rand,
// base64url encoded without padding (43 characters).
func GeneratePair() Pair {
	verifier := oauth2.GenerateVerifier()
	return Pair{
		Verifier:  verifier,
		Challenge: ChallengeFromVerifier(verifier),
	}
}

// ChallengeFromVerifier computes BASE64URL(SHA256(verifier)) without padding.
func ChallengeFromVerifier(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}

// Matches reports whether the challenge was derived from the verifier.
func (p Pair) Matches() bool {
	return p.Verifier != "" && ChallengeFromVerifier(p.Verifier) == p.Challenge
}
