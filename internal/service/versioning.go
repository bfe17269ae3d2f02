package service

import (
	"strings"

	"golang.org/x/mod/semver"
)

// IsSemanticVersion checks if a version string follows semantic versioning format
// Uses the official golang.org/x/mod/semver package for validation
// Requires exactly three parts: major.minor.patch (optionally with prerelease/build)
func IsSemanticVersion(version string) bool {
	// The semver package requires a "v" prefix, so add it for validation
	versionWithV := ensureVPrefix(version)
	if !semver.IsValid(versionWithV) {
		return false
	}

	// semver.IsValid accepts "v1" and "v1.2" as shorthands
	versionCore := strings.TrimPrefix(versionWithV, "v")
	if idx := strings.IndexAny(versionCore, "-+"); idx != -1 {
		versionCore = versionCore[:idx]
	}

	parts := strings.Split(versionCore, ".")
	return len(parts) == 3
}

// ensureVPrefix adds a "v" prefix if not present
func ensureVPrefix(version string) string {
	if !strings.HasPrefix(version, "v") {
		return "v" + version
	}
	return version
}

// CompareAPIVersions compares the info.version of two documents.
// Returns:
//
//	-1 if previous < current
//	 0 if equal, or if either is not a semantic version
//	+1 if previous > current
func CompareAPIVersions(previous, current string) int {
	if !IsSemanticVersion(previous) || !IsSemanticVersion(current) {
		return 0
	}
	return semver.Compare(ensureVPrefix(previous), ensureVPrefix(current))
}
