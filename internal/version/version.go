// Package version exposes the build version stamped in via ldflags.
package version

// version is set at build time, see magefile.go.
var version = "v0.0.0"

// Value returns the build version.
func Value() string {
	return version
}
