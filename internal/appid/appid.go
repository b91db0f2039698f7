// Package appid exposes the application identity: binary name, env prefix
// and config name.
package appid

import (
	"context"
	"strings"

	"github.com/fulmenhq/gofulmen/appidentity"

	appidentityassets "github.com/vidlinks/vidlinks/internal/assets/appidentity"
)

// Fallbacks used when no identity can be loaded.
const (
	DefaultBinaryName = "vidlinks"
	DefaultEnvPrefix  = "VIDLINKS_"
)

func init() {
	// Explicit identity files remain authoritative; the embedded copy covers
	// standalone binaries.
	_ = appidentity.RegisterEmbeddedIdentityYAML(appidentityassets.YAML)
}

func Get(ctx context.Context) (*appidentity.Identity, error) {
	return appidentity.Get(ctx)
}

// EnvPrefix returns the identity's env prefix, always ending in "_".
func EnvPrefix(identity *appidentity.Identity) string {
	prefix := DefaultEnvPrefix
	if identity != nil && strings.TrimSpace(identity.EnvPrefix) != "" {
		prefix = strings.TrimSpace(identity.EnvPrefix)
	}
	if !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	return prefix
}

// BinaryName returns the identity's binary name or the default.
func BinaryName(identity *appidentity.Identity) string {
	if identity != nil && strings.TrimSpace(identity.BinaryName) != "" {
		return identity.BinaryName
	}
	return DefaultBinaryName
}
