package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fulmenhq/gofulmen/appidentity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionHandlerIncludesIdentityMetadata(t *testing.T) {
	SetVersionInfo("1.2.3", "abcd123", "2026-10-01T12:00:00Z")
	SetAppIdentity(&appidentity.Identity{BinaryName: "vidlinks"})
	t.Cleanup(func() { SetAppIdentity(nil) })

	rec := httptest.NewRecorder()
	VersionHandler(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp VersionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, "vidlinks", resp.App.Name)
	assert.Equal(t, "1.2.3", resp.App.Version)
	assert.Equal(t, "abcd123", resp.App.Commit)
	assert.NotEmpty(t, resp.Dependencies.Gofulmen)
	assert.NotEmpty(t, resp.Dependencies.Crucible)
}

func TestBinaryNameFallsBackToArgs(t *testing.T) {
	SetAppIdentity(nil)
	assert.NotEmpty(t, binaryName())

	SetAppIdentity(&appidentity.Identity{BinaryName: "vidlinks"})
	t.Cleanup(func() { SetAppIdentity(nil) })
	assert.Equal(t, "vidlinks", binaryName())
}

func TestLinkedModulesSkipsUnknownPaths(t *testing.T) {
	found := linkedModules("example.invalid/not-linked")
	assert.NotContains(t, found, "example.invalid/not-linked")
}
