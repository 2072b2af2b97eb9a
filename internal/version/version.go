// Package version carries the build identity stamped into the symscan
// binary, reported by `symscan --version` and the server health endpoint.
package version

// Set at build time via
// -ldflags "-X github.com/MeKo-Tech/symscan/internal/version.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the version, commit and build date.
func Info() (string, string, string) {
	return Version, GitCommit, BuildDate
}
