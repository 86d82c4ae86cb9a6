package linkedin

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWKSServer(t *testing.T, kid string, pub *rsa.PublicKey) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"keys": []map[string]string{{
				"kty": "RSA",
				"kid": kid,
				"use": "sig",
				"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
				"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
			}},
		})
	}))
}

func signIDToken(t *testing.T, key *rsa.PrivateKey, kid string, claims jwt.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	raw, err := token.SignedString(key)
	require.NoError(t, err)
	return raw
}

func TestVerifyIDToken_Valid(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := newJWKSServer(t, "kid-1", &key.PublicKey)
	defer srv.Close()

	c := NewClient(Config{
		ClientID: "client-1",
		Issuer:   "https://idp.example.com",
		JWKSURL:  srv.URL,
	})

	raw := signIDToken(t, key, "kid-1", idTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://idp.example.com",
			Audience:  jwt.ClaimStrings{"client-1"},
			Subject:   "sub-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Name:          "Alex Smith",
		Email:         "alex@example.com",
		EmailVerified: true,
	})

	profile, err := c.verifyIDToken(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "sub-1", profile.SubjectID)
	assert.Equal(t, "Alex Smith", profile.Name)
	assert.True(t, profile.EmailVerified)
}

func TestVerifyIDToken_WrongIssuer(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := newJWKSServer(t, "kid-1", &key.PublicKey)
	defer srv.Close()

	c := NewClient(Config{
		ClientID: "client-1",
		Issuer:   "https://idp.example.com",
		JWKSURL:  srv.URL,
	})

	raw := signIDToken(t, key, "kid-1", idTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://evil.example.com",
			Audience:  jwt.ClaimStrings{"client-1"},
			Subject:   "sub-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err = c.verifyIDToken(context.Background(), raw)
	require.Error(t, err)
}

func TestVerifyIDToken_UnknownKid(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := newJWKSServer(t, "kid-1", &key.PublicKey)
	defer srv.Close()

	c := NewClient(Config{
		ClientID: "client-1",
		Issuer:   "https://idp.example.com",
		JWKSURL:  srv.URL,
	})

	raw := signIDToken(t, key, "kid-other", idTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://idp.example.com",
			Audience:  jwt.ClaimStrings{"client-1"},
			Subject:   "sub-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err = c.verifyIDToken(context.Background(), raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kid")
}

func TestVerifyIDToken_ExpiredRejected(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	srv := newJWKSServer(t, "kid-1", &key.PublicKey)
	defer srv.Close()

	c := NewClient(Config{
		ClientID: "client-1",
		Issuer:   "https://idp.example.com",
		JWKSURL:  srv.URL,
	})

	raw := signIDToken(t, key, "kid-1", idTokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://idp.example.com",
			Audience:  jwt.ClaimStrings{"client-1"},
			Subject:   "sub-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err = c.verifyIDToken(context.Background(), raw)
	require.Error(t, err)
}
