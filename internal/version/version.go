// Package version exposes the build version, overridden at link time
// via -ldflags "-X github.com/lotfolio/lotfolio/internal/version.Version=...".
package version

// Version is the application version string.
var Version = "dev"
