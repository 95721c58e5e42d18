// Package auth authenticates bearer tokens against a keyring of scoped tokens.
package auth

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/zeebo/blake3"
)

// ScopeAll grants every scope.
const ScopeAll = "*"

var (
	// ErrNoCredentials is returned when no bearer token was presented.
	ErrNoCredentials = errors.New("missing bearer token")
	// ErrScheme is returned for an Authorization header that is not Bearer.
	ErrScheme = errors.New("authorization scheme must be Bearer")
)

// TokenConfig is a bearer token with a set of scopes.
type TokenConfig struct {
	Token  string
	Scopes []string
}

// Principal is an authenticated caller. ID is a short digest of the token
// and is safe to log.
type Principal struct {
	ID     string
	Scopes map[string]struct{}
}

// Allows reports whether p holds one of scopes, or ScopeAll. No scopes
// means any authenticated caller.
func (p Principal) Allows(scopes ...string) bool {
	if len(scopes) == 0 {
		return true
	}
	if _, ok := p.Scopes[ScopeAll]; ok {
		return true
	}
	for _, s := range scopes {
		if _, ok := p.Scopes[s]; ok {
			return true
		}
	}
	return false
}

type principalKey struct{}

// NewContext returns ctx carrying p.
func NewContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by NewContext.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrNoCredentials
	}
	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return "", ErrScheme
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNoCredentials
	}
	return token, nil
}

// Keyring holds digests of the configured tokens, never the tokens.
type Keyring struct {
	entries []keyEntry
}

type keyEntry struct {
	digest [32]byte
	id     string
	scopes map[string]struct{}
}

// NewKeyring digests tokens. Empty tokens are skipped.
func NewKeyring(tokens []TokenConfig) *Keyring {
	k := &Keyring{}
	for _, t := range tokens {
		if t.Token == "" {
			continue
		}
		d := blake3.Sum256([]byte(t.Token))
		k.entries = append(k.entries, keyEntry{
			digest: d,
			id:     hex.EncodeToString(d[:4]),
			scopes: scopeSet(t.Scopes),
		})
	}
	return k
}

// Len is the number of usable tokens.
func (k *Keyring) Len() int {
	if k == nil {
		return 0
	}
	return len(k.entries)
}

// Authenticate looks up presented. Digests have a fixed length and every
// entry is compared, so timing does not depend on which token matched.
func (k *Keyring) Authenticate(presented string) (Principal, bool) {
	if presented == "" || k.Len() == 0 {
		return Principal{}, false
	}
	d := blake3.Sum256([]byte(presented))
	match := -1
	for i, e := range k.entries {
		if subtle.ConstantTimeCompare(d[:], e.digest[:]) == 1 && match < 0 {
			match = i
		}
	}
	if match < 0 {
		return Principal{}, false
	}
	e := k.entries[match]
	return Principal{ID: e.id, Scopes: e.scopes}, true
}

func scopeSet(scopes []string) map[string]struct{} {
	out := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		if s = strings.TrimSpace(s); s != "" {
			out[s] = struct{}{}
		}
	}
	return out
}
