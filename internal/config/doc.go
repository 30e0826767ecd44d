// Package config provides configuration structures and utilities for
// SourceWeaver. It defines the main options for investigations,
// provider credentials and quotas, and report generation preferences.
package config
