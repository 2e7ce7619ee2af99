// Package version exposes build version information for wirekit
// applications.
//
// Version, git commit, branch, and build time are stamped at compile
// time via -ldflags:
//
//	go build -ldflags "-X github.com/skillsenselab/wirekit/version.Version=1.0.0"
//
// Fields left unstamped are filled from runtime/debug build info when
// available. The bootstrap harness falls back to Short() when the
// application config carries no version.
package version
