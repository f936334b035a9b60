package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// jwksRefreshInterval bounds how long cached signing keys are trusted before
// the key set is fetched again.
const jwksRefreshInterval = 6 * time.Hour

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwks struct {
	Keys []jwk `json:"keys"`
}

// JWKSVerifier validates RS256 identity tokens against a remote JWKS
// endpoint, such as Apple's https://appleid.apple.com/auth/keys.
type JWKSVerifier struct {
	url      string
	audience string
	http     *resty.Client
	logger   zerolog.Logger

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// NewJWKSVerifier builds a verifier for the given JWKS URL. If audience is
// non-empty, tokens must carry it in their aud claim.
func NewJWKSVerifier(url, audience string, logger zerolog.Logger) *JWKSVerifier {
	return &JWKSVerifier{
		url:      url,
		audience: audience,
		http:     resty.New().SetTimeout(10 * time.Second),
		logger:   logger.With().Str("component", "jwks").Logger(),
	}
}

func (v *JWKSVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"RS256"})}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}
	token, err := jwt.Parse(idToken, func(t *jwt.Token) (interface{}, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token missing kid header")
		}
		return v.signingKey(ctx, kid)
	}, opts...)
	if err != nil {
		v.logger.Debug().Err(err).Msg("token verification failed")
		return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: unexpected claims type", ErrUnauthorized)
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return "", fmt.Errorf("%w: token has no email claim", ErrUnauthorized)
	}
	return email, nil
}

// signingKey returns the cached key for kid, refreshing the key set when the
// cache is stale or the kid is unknown (key rotation).
func (v *JWKSVerifier) signingKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key, ok := v.keys[kid]
	fresh := time.Since(v.fetchedAt) < jwksRefreshInterval
	v.mu.RUnlock()
	if ok && fresh {
		return key, nil
	}
	if err := v.refresh(ctx); err != nil {
		return nil, err
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	key, ok = v.keys[kid]
	if !ok {
		return nil, fmt.Errorf("no signing key for kid %q", kid)
	}
	return key, nil
}

func (v *JWKSVerifier) refresh(ctx context.Context) error {
	var set jwks
	resp, err := v.http.R().SetContext(ctx).SetResult(&set).Get(v.url)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("fetch jwks: status %d", resp.StatusCode())
	}
	keys := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" {
			continue
		}
		pub, err := rsaPublicKey(k)
		if err != nil {
			v.logger.Warn().Err(err).Str("kid", k.Kid).Msg("skipping unparsable jwk")
			continue
		}
		keys[k.Kid] = pub
	}
	if len(keys) == 0 {
		return fmt.Errorf("jwks at %s contained no usable RSA keys", v.url)
	}
	v.mu.Lock()
	v.keys = keys
	v.fetchedAt = time.Now()
	v.mu.Unlock()
	v.logger.Debug().Int("keys", len(keys)).Msg("refreshed jwks")
	return nil
}

func rsaPublicKey(k jwk) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}
	e := 0
	for _, b := range eb {
		e = e<<8 | int(b)
	}
	if e == 0 {
		return nil, fmt.Errorf("zero exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}
