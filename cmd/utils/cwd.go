package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// OverrideCwd is set from the --cwd flag.
var OverrideCwd string

// GetEffectiveCWD is the directory config discovery and the file picker start
// from: the absolute --cwd when given, else the process working directory.
func GetEffectiveCWD() string {
	if dir := strings.TrimSpace(OverrideCwd); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return dir
		}
		return abs
	}
	if wd, err := os.Getwd(); err == nil && wd != "" {
		return wd
	}
	return "."
}
