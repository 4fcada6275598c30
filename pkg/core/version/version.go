// ============================================================================
// nic - Chat-Kommando-Framework
// ============================================================================
//
// Package:     version
// Description: Central version management for the nic components
// Author:      Mike Stoffels
// Created:     2026-10-18
// License:     MIT
// ============================================================================

package version

// Version constants for all nic components
const (
	// Platform version
	Platform = "0.3.0"

	// Component versions
	Scanner = "1.0.0"
	Binder  = "1.0.0"
	Gateway = "0.3.0"
	Console = "0.2.0"
	Catalog = "0.2.0"
)

// Build metadata, set with -ldflags "-X github.com/msto63/nic/pkg/core/version.Commit=..."
var (
	Commit    = "dev"
	BuildDate = "unknown"
)

// ServiceVersion returns the version for a given component name
func ServiceVersion(name string) string {
	switch name {
	case "scanner":
		return Scanner
	case "binder", "args":
		return Binder
	case "gateway":
		return Gateway
	case "console":
		return Console
	case "catalog":
		return Catalog
	default:
		return Platform
	}
}
