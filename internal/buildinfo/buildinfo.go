// Package buildinfo exposes version metadata set at build time via -ldflags.
package buildinfo

import (
	"strings"

	"golang.org/x/mod/semver"
)

var (
	// Version is the semantic version of dunemcp.
	Version = "dev"
	// Build is the git commit hash or build identifier.
	Build = "unknown"
)

const productName = "dunemcp"

// CanonicalVersion returns Version in canonical semver form ("v1.2.3"), or
// false for development builds.
func CanonicalVersion() (string, bool) {
	return normalizeSemver(Version)
}

// ServerVersion is the version advertised over MCP.
func ServerVersion() string {
	if canonical, ok := CanonicalVersion(); ok {
		return strings.TrimPrefix(canonical, "v")
	}
	return Version
}

// UserAgent identifies this build to the upstream API.
func UserAgent() string {
	return productName + "/" + ServerVersion()
}

func normalizeSemver(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" || value == "dev" {
		return "", false
	}
	if !strings.HasPrefix(value, "v") {
		value = "v" + value
	}
	normalized := semver.Canonical(value)
	if normalized == "" {
		return "", false
	}
	return normalized, true
}
