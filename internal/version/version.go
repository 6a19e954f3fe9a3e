// Package version carries build metadata, set at link time via
// -ldflags "-X ...".
package version

var (
	Version   = "dev"
	BuildDate = "unknown"
)
