/*
Copyright © 2026 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the directory name used below the XDG base directories.
const AppName = "cloudbuild-action"

// getConfigHome returns the base config directory following CLI tool conventions.
// Uses $XDG_CONFIG_HOME or ~/.config on Unix-like systems.
func getConfigHome() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return configHome
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config")
	}

	return ""
}

// GetConfigDirs returns all config directories to search (in priority order).
func GetConfigDirs() []string {
	dirs := []string{}

	// Primary: XDG config home (e.g., ~/.config)
	if configHome := getConfigHome(); configHome != "" {
		dirs = append(dirs, filepath.Join(configHome, AppName))
	}

	// Secondary: dot directory in the home directory
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "."+AppName))
	}

	// Tertiary: System-wide config (Linux/BSD)
	if runtime.GOOS == "linux" || runtime.GOOS == "freebsd" || runtime.GOOS == "openbsd" {
		if xdgConfigDirs := os.Getenv("XDG_CONFIG_DIRS"); xdgConfigDirs != "" {
			for _, dir := range filepath.SplitList(xdgConfigDirs) {
				if dir != "" {
					dirs = append(dirs, filepath.Join(dir, AppName))
				}
			}
		} else {
			dirs = append(dirs, filepath.Join("/etc", "xdg", AppName))
		}
	}

	return dirs
}
