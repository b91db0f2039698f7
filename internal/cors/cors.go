// Package cors decides which browser origins may read responses and builds
// the matching CORS headers.
package cors

import (
	"net/http"
	"slices"
	"strings"
	"sync/atomic"
)

// Wildcard allows every origin.
const Wildcard = "*"

// NullOrigin is reflected when an explicit origin is rejected.
const NullOrigin = "null"

const (
	allowHeaders = "Content-Type, X-API-Key, Authorization"
	allowMethods = "GET, OPTIONS"
	maxAge       = "86400"
)

type policy struct {
	origins  []string
	wildcard bool
}

// Validator holds the allow-list. It is safe for concurrent use and can be
// replaced at runtime with Update.
type Validator struct {
	policy atomic.Pointer[policy]
}

// New builds a Validator for the given allow-list.
func New(allowed []string) *Validator {
	v := &Validator{}
	v.Update(allowed)
	return v
}

// Update replaces the allow-list.
func (v *Validator) Update(allowed []string) {
	p := &policy{}
	for _, origin := range allowed {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == Wildcard {
			p.wildcard = true
		}
		p.origins = append(p.origins, origin)
	}
	v.policy.Store(p)
}

// Origins returns a copy of the allow-list.
func (v *Validator) Origins() []string {
	return slices.Clone(v.policy.Load().origins)
}

// Allowed reports whether origin may receive a response. An empty origin
// comes from a non-browser or same-origin caller and is always allowed.
func (v *Validator) Allowed(origin string) bool {
	if origin == "" {
		return true
	}
	p := v.policy.Load()
	if p.wildcard {
		return true
	}
	return slices.Contains(p.origins, origin)
}

// AllowOriginValue computes Access-Control-Allow-Origin for origin.
func (v *Validator) AllowOriginValue(origin string) string {
	p := v.policy.Load()
	allowed := v.Allowed(origin)
	switch {
	case origin != "" && !allowed:
		return NullOrigin
	case origin != "" && !p.wildcard:
		return origin
	default:
		return Wildcard
	}
}

// Apply writes the CORS header set for origin and reports whether the
// origin is allowed.
func (v *Validator) Apply(h http.Header, origin string) bool {
	h.Set("Access-Control-Allow-Origin", v.AllowOriginValue(origin))
	h.Set("Access-Control-Allow-Headers", allowHeaders)
	h.Set("Access-Control-Allow-Methods", allowMethods)
	h.Set("Access-Control-Allow-Credentials", "false")
	h.Set("Access-Control-Max-Age", maxAge)
	h.Set("Content-Type", "application/json")
	if origin != "" && !v.policy.Load().wildcard {
		h.Add("Vary", "Origin")
	}
	return v.Allowed(origin)
}
