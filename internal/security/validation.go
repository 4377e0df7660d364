// Package security validates paths that come from plugins or the command line
// before scheming writes to or executes them.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidatePluginPath checks that path names an executable regular file.
func ValidatePluginPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty plugin path")
	}

	info, err := os.Stat(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("invalid plugin path: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("plugin %s is not a regular file", path)
	}
	if info.Mode().Perm()&0o111 == 0 {
		return fmt.Errorf("plugin %s is not executable", path)
	}
	return nil
}

// ValidateFilePath checks that a file name chosen by an exporter stays inside
// baseDir once joined to it.
func ValidateFilePath(filePath, baseDir string) error {
	if filePath == "" {
		return fmt.Errorf("empty file path")
	}

	if filepath.IsAbs(filePath) {
		return fmt.Errorf("absolute file path %q not allowed", filePath)
	}

	for _, part := range strings.Split(filepath.ToSlash(filePath), "/") {
		if part == ".." {
			return fmt.Errorf("file path %q contains directory traversal (..)", filePath)
		}
	}

	cleanBase := filepath.Clean(baseDir)
	cleanFinal := filepath.Clean(filepath.Join(baseDir, filePath))
	if cleanFinal == cleanBase {
		return fmt.Errorf("file path %q names the output directory itself", filePath)
	}
	if !strings.HasPrefix(cleanFinal, cleanBase+string(filepath.Separator)) {
		return fmt.Errorf("file path %q would escape %s", filePath, baseDir)
	}
	return nil
}
