package cmd

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidlinks/vidlinks/internal/appid"
)

func TestAppIdentityLoading(t *testing.T) {
	identity, err := appid.Get(context.Background())
	require.NoError(t, err)
	require.NotNil(t, identity)

	assert.Equal(t, "vidlinks", identity.BinaryName)
	assert.NotEmpty(t, identity.Vendor)
	assert.NotEmpty(t, identity.ConfigName)
	assert.True(t, strings.HasSuffix(appid.EnvPrefix(identity), "_"))
}
