package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateFilePath(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out")

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "plain name", path: "scheme.hex"},
		{name: "subdirectory", path: "kitty/scheme.conf"},
		{name: "dots in name", path: "scheme..hex"},
		{name: "empty", path: "", wantErr: true},
		{name: "absolute", path: "/etc/passwd", wantErr: true},
		{name: "parent", path: "../scheme.hex", wantErr: true},
		{name: "nested parent", path: "a/../../scheme.hex", wantErr: true},
		{name: "base itself", path: ".", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.path, base)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePluginPath(t *testing.T) {
	dir := t.TempDir()

	exe := filepath.Join(dir, "exporter")
	if err := os.WriteFile(exe, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	plain := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(plain, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "executable", path: exe},
		{name: "not executable", path: plain, wantErr: true},
		{name: "directory", path: dir, wantErr: true},
		{name: "missing", path: filepath.Join(dir, "missing"), wantErr: true},
		{name: "empty", path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePluginPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePluginPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}
