package identity

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type tokenVerifier struct {
	jwks *jwksCache
}

func newTokenVerifier(httpClient *http.Client, jwksURL string) *tokenVerifier {
	cache := newJWKSCache(httpClient)
	cache.setURL(jwksURL)
	return &tokenVerifier{jwks: cache}
}

func (v *tokenVerifier) verify(ctx context.Context, tokenString string) (*TokenClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, fmt.Errorf("token is empty")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256", "ES256"}))
	claims := jwt.MapClaims{}

	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if strings.TrimSpace(kid) == "" {
			return nil, fmt.Errorf("missing kid")
		}
		return v.jwks.getKey(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if tok == nil || !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if exp, err := claims.GetExpirationTime(); err != nil || exp == nil {
		return nil, fmt.Errorf("missing exp")
	} else if time.Now().After(exp.Time) {
		return nil, fmt.Errorf("token expired")
	}

	sub, _ := claims["sub"].(string)
	subject, err := uuid.Parse(strings.TrimSpace(sub))
	if err != nil {
		return nil, fmt.Errorf("invalid sub claim")
	}

	out := &TokenClaims{Subject: subject}
	if email, _ := claims["email"].(string); email != "" {
		out.Email = email
	}
	if role, _ := claims["role"].(string); role != "" {
		out.Role = role
	}
	return out, nil
}

// ----- JWKS cache (supports RSA + EC) -----

type jwksCache struct {
	httpClient *http.Client

	mu      sync.RWMutex
	jwksURL string
	keys    map[string]any // kid -> *rsa.PublicKey or *ecdsa.PublicKey

	fetchedAt time.Time
	ttl       time.Duration
}

func newJWKSCache(httpClient *http.Client) *jwksCache {
	return &jwksCache{
		httpClient: httpClient,
		keys:       map[string]any{},
		ttl:        6 * time.Hour,
	}
}

func (j *jwksCache) setURL(url string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jwksURL = url
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`

	// RSA
	N string `json:"n"`
	E string `json:"e"`

	// EC
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

func (j *jwksCache) getKey(ctx context.Context, kid string) (any, error) {
	j.mu.RLock()
	key := j.keys[kid]
	stale := time.Since(j.fetchedAt) > j.ttl
	url := j.jwksURL
	j.mu.RUnlock()

	if key != nil && !stale {
		return key, nil
	}
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("jwks url not set")
	}

	if err := j.refresh(ctx, url); err != nil {
		// fallback to cached key if present
		j.mu.RLock()
		key = j.keys[kid]
		j.mu.RUnlock()
		if key != nil {
			return key, nil
		}
		return nil, err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	key = j.keys[kid]
	if key == nil {
		return nil, fmt.Errorf("kid not found in jwks: %s", kid)
	}
	return key, nil
}

func (j *jwksCache) refresh(ctx context.Context, url string) error {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	res, err := j.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("jwks fetch failed: %s", res.Status)
	}

	var set jwkSet
	if err := json.NewDecoder(res.Body).Decode(&set); err != nil {
		return err
	}

	next := map[string]any{}
	for _, k := range set.Keys {
		if strings.TrimSpace(k.Kid) == "" {
			continue
		}
		switch k.Kty {
		case "RSA":
			pub, err := rsaFromModExp(k.N, k.E)
			if err == nil {
				next[k.Kid] = pub
			}
		case "EC":
			pub, err := ecdsaFromXY(k.Crv, k.X, k.Y)
			if err == nil {
				next[k.Kid] = pub
			}
		}
	}

	if len(next) == 0 {
		return fmt.Errorf("jwks contained no usable keys")
	}

	j.mu.Lock()
	j.keys = next
	j.fetchedAt = time.Now()
	j.mu.Unlock()
	return nil
}

func rsaFromModExp(nB64, eB64 string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(nB64)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(eB64)
	if err != nil {
		return nil, err
	}
	n := new(big.Int).SetBytes(nb)
	e := new(big.Int).SetBytes(eb)
	if !e.IsInt64() || e.Int64() <= 0 {
		return nil, fmt.Errorf("invalid rsa exponent")
	}
	return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil
}

func ecdsaFromXY(crv, xB64, yB64 string) (*ecdsa.PublicKey, error) {
	var curve elliptic.Curve
	switch crv {
	case "P-256":
		curve = elliptic.P256()
	case "P-384":
		curve = elliptic.P384()
	case "P-521":
		curve = elliptic.P521()
	default:
		return nil, fmt.Errorf("unsupported curve %q", crv)
	}
	xb, err := base64.RawURLEncoding.DecodeString(xB64)
	if err != nil {
		return nil, err
	}
	yb, err := base64.RawURLEncoding.DecodeString(yB64)
	if err != nil {
		return nil, err
	}
	return &ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(xb),
		Y:     new(big.Int).SetBytes(yb),
	}, nil
}
