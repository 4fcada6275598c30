package version

import (
	"regexp"
	"testing"
)

// semverRegex validates semantic versioning format
var semverRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

func TestVersionConstants(t *testing.T) {
	tests := []struct {
		name    string
		version string
	}{
		{"Platform", Platform},
		{"Scanner", Scanner},
		{"Binder", Binder},
		{"Gateway", Gateway},
		{"Console", Console},
		{"Catalog", Catalog},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !semverRegex.MatchString(tt.version) {
				t.Errorf("%s version %q does not match semver format (x.y.z)", tt.name, tt.version)
			}
		})
	}
}

func TestServiceVersion(t *testing.T) {
	tests := []struct {
		name     string
		service  string
		expected string
	}{
		{"scanner", "scanner", Scanner},
		{"binder", "binder", Binder},
		{"args alias", "args", Binder},
		{"gateway", "gateway", Gateway},
		{"console", "console", Console},
		{"catalog", "catalog", Catalog},
		{"unknown component", "unknown", Platform},
		{"empty component", "", Platform},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ServiceVersion(tt.service)
			if result != tt.expected {
				t.Errorf("ServiceVersion(%q) = %q, want %q", tt.service, result, tt.expected)
			}
		})
	}
}
