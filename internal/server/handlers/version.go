package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"

	"github.com/fulmenhq/gofulmen/appidentity"
	"github.com/fulmenhq/gofulmen/crucible"

	"github.com/vidlinks/vidlinks/internal/server/respond"
)

// Build metadata, injected from main via SetVersionInfo.
var (
	AppVersion   = "dev"
	AppCommit    = "unknown"
	AppBuildDate = "unknown"
	appIdentity  *appidentity.Identity
)

// Modules whose linked versions /version reports.
const (
	extractorModule = "github.com/kkdai/youtube/v2"
	routerModule    = "github.com/go-chi/chi/v5"
)

// SetVersionInfo records the build metadata main was linked with.
func SetVersionInfo(version, commit, buildDate string) {
	AppVersion = version
	AppCommit = commit
	AppBuildDate = buildDate
}

// SetAppIdentity sets the identity whose binary name /version reports.
func SetAppIdentity(identity *appidentity.Identity) {
	appIdentity = identity
}

// VersionResponse is the /version body and the data behind
// `vidlinks version --extended`.
type VersionResponse struct {
	App          AppInfo     `json:"app" yaml:"app"`
	Dependencies DepInfo     `json:"dependencies" yaml:"dependencies"`
	Runtime      RuntimeInfo `json:"runtime" yaml:"runtime"`
}

type AppInfo struct {
	Name      string `json:"name" yaml:"name"`
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"git_commit" yaml:"git_commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
	GoVersion string `json:"go_version,omitempty" yaml:"go_version,omitempty"`
}

type DepInfo struct {
	Gofulmen  string `json:"gofulmen" yaml:"gofulmen"`
	Crucible  string `json:"crucible" yaml:"crucible"`
	Extractor string `json:"extractor,omitempty" yaml:"extractor,omitempty"`
	Router    string `json:"router,omitempty" yaml:"router,omitempty"`
}

type RuntimeInfo struct {
	Platform      string `json:"platform" yaml:"platform"`
	NumCPU        int    `json:"num_cpu" yaml:"num_cpu"`
	NumGoroutines int    `json:"num_goroutines" yaml:"num_goroutines"`
}

// CurrentVersion snapshots build, dependency and runtime information.
func CurrentVersion() VersionResponse {
	deps := linkedModules(extractorModule, routerModule)
	lib := crucible.GetVersion()
	return VersionResponse{
		App: AppInfo{
			Name:      binaryName(),
			Version:   AppVersion,
			Commit:    AppCommit,
			BuildDate: AppBuildDate,
			GoVersion: runtime.Version(),
		},
		Dependencies: DepInfo{
			Gofulmen:  lib.Gofulmen,
			Crucible:  lib.Crucible,
			Extractor: deps[extractorModule],
			Router:    deps[routerModule],
		},
		Runtime: RuntimeInfo{
			Platform:      runtime.GOOS + "/" + runtime.GOARCH,
			NumCPU:        runtime.NumCPU(),
			NumGoroutines: runtime.NumGoroutine(),
		},
	}
}

// VersionHandler serves CurrentVersion as JSON.
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, CurrentVersion())
}

// ExtractorVersion reports the linked video extraction module version.
func ExtractorVersion() string {
	return linkedModules(extractorModule)[extractorModule]
}

func binaryName() string {
	if appIdentity != nil && appIdentity.BinaryName != "" {
		return appIdentity.BinaryName
	}
	if len(os.Args) > 0 && os.Args[0] != "" {
		return filepath.Base(os.Args[0])
	}
	return "unknown"
}

// linkedModules maps each requested module path to the version in the build
// info, honoring replace directives. Missing modules are absent.
func linkedModules(paths ...string) map[string]string {
	found := make(map[string]string, len(paths))
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return found
	}
	for _, dep := range info.Deps {
		for _, p := range paths {
			if dep.Path != p {
				continue
			}
			if dep.Replace != nil {
				found[p] = dep.Replace.Version
			} else {
				found[p] = dep.Version
			}
		}
	}
	return found
}
