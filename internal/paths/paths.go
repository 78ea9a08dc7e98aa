// Copyright The Crosscheck Authors
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// ConfigDirEnv overrides the configuration directory on every platform
const ConfigDirEnv = "CROSSCHECK_CONFIG_DIR"

// appName is the directory name used under the XDG base directories
const appName = "crosscheck"

// GetConfigDir returns the crosscheck configuration directory
// Uses the XDG config home (APPDATA on Windows, ~/Library/Application Support on macOS)
func GetConfigDir() string {
	// Check for explicit override first (works on all platforms)
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}

	return filepath.Join(xdg.ConfigHome, appName)
}

// GetConfigFile returns the path to the main config file
func GetConfigFile() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// NormalizePath cleans a user supplied path and expands a leading "~"
func NormalizePath(path string) string {
	if path == "" {
		return path
	}
	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		path = filepath.Join(xdg.Home, path[1:])
	}
	return filepath.Clean(path)
}

// Extension returns the lower-cased extension of a path including the dot
func Extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
