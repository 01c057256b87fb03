// Package version exposes the build version string.
package version

// Version is overridden at build time via
// -ldflags "-X github.com/daverage/veristat/internal/version.Version=...".
var Version = "0.3.0-dev"
