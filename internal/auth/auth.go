// Package auth implements the optional shared-secret API key gate.
package auth

import (
	"crypto/subtle"
	stderrors "errors"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

var (
	// ErrKeyRequired is returned when no candidate key was supplied.
	ErrKeyRequired = stderrors.New("API key required")
	// ErrInvalidKey is returned when the candidate does not match.
	ErrInvalidKey = stderrors.New("Invalid API key")
)

// QueryParams lists the query parameters that may carry a key, in order.
var QueryParams = []string{"api_key", "apikey", "key"}

// Gate checks requests against a configured secret. An empty secret
// disables the gate.
type Gate struct {
	secret atomic.Pointer[string]
}

// New returns a Gate for secret.
func New(secret string) *Gate {
	g := &Gate{}
	g.SetSecret(secret)
	return g
}

// SetSecret replaces the secret.
func (g *Gate) SetSecret(secret string) {
	secret = strings.TrimSpace(secret)
	g.secret.Store(&secret)
}

// Enabled reports whether a secret is configured.
func (g *Gate) Enabled() bool {
	return *g.secret.Load() != ""
}

// Check validates the request's key.
func (g *Gate) Check(r *http.Request) error {
	secret := *g.secret.Load()
	if secret == "" {
		return nil
	}
	candidate := ExtractKey(r)
	if candidate == "" {
		return ErrKeyRequired
	}
	if !Equal(candidate, secret) {
		return ErrInvalidKey
	}
	return nil
}

// ExtractKey returns the first key found in the X-API-Key header, a bearer
// Authorization header or the key query parameters.
func ExtractKey(r *http.Request) string {
	if r == nil {
		return ""
	}
	if key := strings.TrimSpace(r.Header.Get("X-API-Key")); key != "" {
		return key
	}
	if authz := r.Header.Get("Authorization"); authz != "" {
		if key := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer ")); key != "" {
			return key
		}
	}
	query := r.URL.Query()
	for _, name := range QueryParams {
		if key := strings.TrimSpace(query.Get(name)); key != "" {
			return key
		}
	}
	return ""
}

// Equal compares in time independent of where the inputs differ.
func Equal(candidate, secret string) bool {
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(secret)) == 1
}

// KeyLength is the length of generated keys.
const KeyLength = 32

// GenerateKey returns a random 32 character hex key built from a version 4
// UUID.
func GenerateKey() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}

// Describe summarizes the gate for status output.
func (g *Gate) Describe() string {
	if g.Enabled() {
		return "enabled"
	}
	return "disabled"
}

// UsageInstructions explains how callers supply a key.
func UsageInstructions() []string {
	return []string{
		"Send the key in the X-API-Key header: X-API-Key: <key>",
		"Or as a bearer token: Authorization: Bearer <key>",
		"Or as a query parameter: ?api_key=<key> (also apikey or key)",
	}
}
