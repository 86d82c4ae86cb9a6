package linkedin

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"
)

// idTokenClaims are the OpenID Connect claims we read off a verified id
// token.
type idTokenClaims struct {
	jwt.RegisteredClaims
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Email         string `json:"email"`
	Picture       string `json:"picture"`
	EmailVerified bool   `json:"email_verified"`
}

// verifyIDToken parses the id token, verifies its RS256 signature against
// the provider's JWKS and checks issuer and audience before trusting any
// claim. Unverified decoding is never used.
func (c *Client) verifyIDToken(ctx context.Context, raw string) (*Profile, error) {
	claims := &idTokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, c.keys.keyfunc(ctx),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer(c.cfg.Issuer),
		jwt.WithAudience(c.cfg.ClientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "linkedin: verify id token")
	}

	name := claims.Name
	if name == "" {
		name = claims.GivenName
		if claims.FamilyName != "" {
			name += " " + claims.FamilyName
		}
	}
	return &Profile{
		SubjectID:     claims.Subject,
		Name:          name,
		Email:         claims.Email,
		Picture:       claims.Picture,
		EmailVerified: claims.EmailVerified,
	}, nil
}

// jwksCache fetches and caches the provider's published signing keys.
type jwksCache struct {
	url        string
	httpClient *http.Client

	mu        sync.Mutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
	ttl       time.Duration
}

func newJWKSCache(url string, httpClient *http.Client) *jwksCache {
	return &jwksCache{
		url:        url,
		httpClient: httpClient,
		ttl:        time.Hour,
	}
}

// keyfunc returns a jwt.Keyfunc resolving kid headers against the cached
// JWKS, refetching once on an unknown kid (key rotation).
func (j *jwksCache) keyfunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, eris.New("linkedin: id token missing kid header")
		}

		key, err := j.lookup(ctx, kid, false)
		if err != nil {
			return nil, err
		}
		if key == nil {
			if key, err = j.lookup(ctx, kid, true); err != nil {
				return nil, err
			}
		}
		if key == nil {
			return nil, eris.Errorf("linkedin: no JWKS key for kid %s", kid)
		}
		return key, nil
	}
}

func (j *jwksCache) lookup(ctx context.Context, kid string, force bool) (*rsa.PublicKey, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	stale := j.keys == nil || time.Since(j.fetchedAt) > j.ttl
	if force || stale {
		keys, err := j.fetch(ctx)
		if err != nil {
			return nil, err
		}
		j.keys = keys
		j.fetchedAt = time.Now()
	}
	return j.keys[kid], nil
}

func (j *jwksCache) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "linkedin: create jwks request")
	}

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "linkedin: fetch jwks")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("linkedin: jwks status %d", resp.StatusCode)
	}

	var doc struct {
		Keys []struct {
			Kty string `json:"kty"`
			Kid string `json:"kid"`
			Use string `json:"use"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, eris.Wrap(err, "linkedin: decode jwks")
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		pub, err := parseRSAKey(k.N, k.E)
		if err != nil {
			return nil, eris.Wrapf(err, "linkedin: parse jwk %s", k.Kid)
		}
		keys[k.Kid] = pub
	}
	return keys, nil
}

func parseRSAKey(n64, e64 string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(n64)
	if err != nil {
		return nil, eris.Wrap(err, "decode modulus")
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(e64)
	if err != nil {
		return nil, eris.Wrap(err, "decode exponent")
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}
