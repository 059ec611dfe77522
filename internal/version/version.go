// Package version provides build and version information for flowlens.
package version

// Version is the current release version of flowlens.
// This can be overridden at build time using:
//
//	go build -ldflags "-X github.com/Defantinis/flowlens/internal/version.Version=x.y.z"
var Version = "0.3.0"
