package linkedin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeURL(t *testing.T) {
	c := NewClient(Config{
		ClientID:    "client-1",
		RedirectURI: "https://app.example.com/verify",
	})

	raw, err := c.AuthorizeURL("TEST-abc")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client-1", q.Get("client_id"))
	assert.Equal(t, "https://app.example.com/verify", q.Get("redirect_uri"))
	assert.Equal(t, "openid profile email", q.Get("scope"))

	hashID, err := DecodeState(q.Get("state"))
	require.NoError(t, err)
	assert.Equal(t, "TEST-abc", hashID)
}

func TestAuthorizeURL_NoClientID(t *testing.T) {
	c := NewClient(Config{})
	_, err := c.AuthorizeURL("r1")
	require.Error(t, err)
}

func TestExchangeCode_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		assert.Equal(t, "code-1", r.Form.Get("code"))
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"access_token": "at-1",
			"id_token":     "idt-1",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	c := NewClient(Config{ClientID: "c", ClientSecret: "s", TokenURL: srv.URL})
	tok, err := c.ExchangeCode(context.Background(), "code-1")
	require.NoError(t, err)
	assert.Equal(t, "at-1", tok.AccessToken)
	assert.Equal(t, "idt-1", tok.IDToken)
}

func TestExchangeCode_ProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
			"error":             "invalid_grant",
			"error_description": "authorization code expired",
		})
	}))
	defer srv.Close()

	c := NewClient(Config{ClientID: "c", TokenURL: srv.URL})
	_, err := c.ExchangeCode(context.Background(), "stale")
	require.Error(t, err)
	assert.True(t, IsAuthExchangeError(err))
	assert.Contains(t, err.Error(), "authorization code expired")
}

func TestExchangeCode_NoAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{}) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient(Config{ClientID: "c", TokenURL: srv.URL})
	_, err := c.ExchangeCode(context.Background(), "code")
	require.Error(t, err)
	assert.True(t, IsAuthExchangeError(err))
}

func TestResolveProfile_UserInfoFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"sub":            "sub-1",
			"given_name":     "Alex",
			"family_name":    "Smith",
			"email":          "alex@example.com",
			"email_verified": true,
		})
	}))
	defer srv.Close()

	// A malformed id token forces the userinfo fallback.
	c := NewClient(Config{ClientID: "c", UserInfoURL: srv.URL, JWKSURL: srv.URL + "/jwks"})
	profile, err := c.ResolveProfile(context.Background(), &Token{
		AccessToken: "at-1",
		IDToken:     "not.a.jwt",
	})
	require.NoError(t, err)
	assert.Equal(t, "sub-1", profile.SubjectID)
	assert.Equal(t, "Alex Smith", profile.Name)
	assert.Equal(t, "alex@example.com", profile.Email)
	assert.True(t, profile.EmailVerified)
}

func TestResolveProfile_UserInfoFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(Config{ClientID: "c", UserInfoURL: srv.URL})
	_, err := c.ResolveProfile(context.Background(), &Token{AccessToken: "bad"})
	require.Error(t, err)
	assert.True(t, IsProfileFetchError(err))
}
