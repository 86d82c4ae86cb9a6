// Package linkedin provides the OAuth identity-provider client used by the
// verification flow: authorization URL construction, code-for-token
// exchange, and profile resolution from a signed id token or the userinfo
// endpoint.
package linkedin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Identity is the subset of the provider client the verification
// orchestrator depends on.
type Identity interface {
	ExchangeCode(ctx context.Context, code string) (*Token, error)
	ResolveProfile(ctx context.Context, token *Token) (*Profile, error)
}

// Token is the result of a successful authorization-code exchange. The id
// token is optional; providers only issue it when the openid scope was
// granted.
type Token struct {
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
}

// Profile is the identity decoded from the provider.
type Profile struct {
	SubjectID     string `json:"subjectId"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Picture       string `json:"picture,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

// Config holds provider credentials and endpoints. Zero-value endpoints
// default to LinkedIn's published URLs.
type Config struct {
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri" mapstructure:"redirect_uri"`
	AuthURL      string `yaml:"auth_url" mapstructure:"auth_url"`
	TokenURL     string `yaml:"token_url" mapstructure:"token_url"`
	UserInfoURL  string `yaml:"userinfo_url" mapstructure:"userinfo_url"`
	JWKSURL      string `yaml:"jwks_url" mapstructure:"jwks_url"`
	Issuer       string `yaml:"issuer" mapstructure:"issuer"`
	Scopes       string `yaml:"scopes" mapstructure:"scopes"`
}

func (c *Config) applyDefaults() {
	if c.AuthURL == "" {
		c.AuthURL = "https://www.linkedin.com/oauth/v2/authorization"
	}
	if c.TokenURL == "" {
		c.TokenURL = "https://www.linkedin.com/oauth/v2/accessToken"
	}
	if c.UserInfoURL == "" {
		c.UserInfoURL = "https://api.linkedin.com/v2/userinfo"
	}
	if c.JWKSURL == "" {
		c.JWKSURL = "https://www.linkedin.com/oauth/openid/jwks"
	}
	if c.Issuer == "" {
		c.Issuer = "https://www.linkedin.com/oauth"
	}
	if c.Scopes == "" {
		c.Scopes = "openid profile email"
	}
}

// Client talks to the identity provider.
type Client struct {
	cfg        Config
	httpClient *http.Client
	keys       *jwksCache
}

// NewClient creates a provider client. Endpoints not set in cfg default to
// LinkedIn's.
func NewClient(cfg Config) *Client {
	cfg.applyDefaults()
	httpClient := &http.Client{Timeout: 15 * time.Second}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		keys:       newJWKSCache(cfg.JWKSURL, httpClient),
	}
}

// AuthorizeURL builds the provider authorization URL for the given
// respondent. Fails if no client ID is configured.
func (c *Client) AuthorizeURL(hashID string) (string, error) {
	if c.cfg.ClientID == "" {
		return "", eris.New("linkedin: client id not configured")
	}
	state, err := EncodeState(hashID)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.cfg.ClientID)
	q.Set("redirect_uri", c.cfg.RedirectURI)
	q.Set("scope", c.cfg.Scopes)
	q.Set("state", state)
	return c.cfg.AuthURL + "?" + q.Encode(), nil
}

// ExchangeCode trades an authorization code for tokens. Provider rejections
// surface as AuthExchangeError with the provider's description.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("redirect_uri", c.cfg.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, eris.Wrap(err, "linkedin: create token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &AuthExchangeError{Description: "token endpoint unreachable", Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, eris.Wrap(err, "linkedin: read token response")
	}

	if resp.StatusCode != http.StatusOK {
		var provErr struct {
			Error       string `json:"error"`
			Description string `json:"error_description"`
		}
		desc := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &provErr) == nil && provErr.Description != "" {
			desc = provErr.Description
		}
		return nil, &AuthExchangeError{Description: desc}
	}

	var tok Token
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, eris.Wrap(err, "linkedin: decode token response")
	}
	if tok.AccessToken == "" {
		return nil, &AuthExchangeError{Description: "no access token in response"}
	}
	return &tok, nil
}

// ResolveProfile resolves the authenticated identity. When the exchange
// issued an id token it is verified against the provider's published keys
// and its claims are used directly; otherwise, or on any verification
// failure, the userinfo endpoint is queried with the access token.
func (c *Client) ResolveProfile(ctx context.Context, token *Token) (*Profile, error) {
	if token.IDToken != "" {
		profile, err := c.verifyIDToken(ctx, token.IDToken)
		if err == nil {
			return profile, nil
		}
		zap.L().Warn("id token verification failed, falling back to userinfo",
			zap.Error(err),
		)
	}

	profile, err := c.fetchUserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, &ProfileFetchError{Description: "userinfo fetch failed", Err: err}
	}
	return profile, nil
}

func (c *Client) fetchUserInfo(ctx context.Context, accessToken string) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.UserInfoURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "linkedin: create userinfo request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "linkedin: userinfo request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("linkedin: userinfo status %d", resp.StatusCode)
	}

	var info struct {
		Sub           string `json:"sub"`
		Name          string `json:"name"`
		GivenName     string `json:"given_name"`
		FamilyName    string `json:"family_name"`
		Email         string `json:"email"`
		Picture       string `json:"picture"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, eris.Wrap(err, "linkedin: decode userinfo")
	}

	name := info.Name
	if name == "" {
		name = strings.TrimSpace(info.GivenName + " " + info.FamilyName)
	}
	return &Profile{
		SubjectID:     info.Sub,
		Name:          name,
		Email:         info.Email,
		Picture:       info.Picture,
		EmailVerified: info.EmailVerified,
	}, nil
}
