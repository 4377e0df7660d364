package executor

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/jmylchreest/scheming/internal/plugin/protocol"
	"github.com/jmylchreest/scheming/pkg/plugin"
)

func testScheme() plugin.SchemeData {
	return plugin.SchemeData{
		Colours: []plugin.SchemeColour{
			{Index: 0, Hex: "#ff0000", RGB: plugin.RGBColour{R: 255}},
			{Index: 1, Hex: "#0000ff", RGB: plugin.RGBColour{B: 255}},
		},
	}
}

func infoJSON(t *testing.T, info plugin.PluginInfo) []byte {
	t.Helper()
	b, err := json.Marshal(info)
	if err != nil {
		t.Fatalf("marshal info: %v", err)
	}
	return b
}

// TestNewDetectsProtocol tests protocol detection from --plugin-info.
func TestNewDetectsProtocol(t *testing.T) {
	tests := []struct {
		name     string
		protocol string
		want     plugin.PluginType
		wantErr  bool
	}{
		{"json", "json-stdio", plugin.PluginTypeJSON, false},
		{"empty defaults to json", "", plugin.PluginTypeJSON, false},
		{"go-plugin", "go-plugin", plugin.PluginTypeGoPlugin, false},
		{"unknown", "grpc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := plugin.PluginInfo{Name: "x", ProtocolVersion: plugin.ProtocolVersion, PluginProtocol: tt.protocol}
			runner := NewMockProcessRunner(infoJSON(t, info), nil)

			e, err := New(context.Background(), "/plugins/x", WithRunner(runner))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			defer e.Close()

			if e.Protocol() != tt.want {
				t.Errorf("Protocol() = %s, want %s", e.Protocol(), tt.want)
			}
			if runner.LastPath != "/plugins/x" || len(runner.LastArgs) != 1 || runner.LastArgs[0] != "--plugin-info" {
				t.Errorf("runner called with %s %v", runner.LastPath, runner.LastArgs)
			}
		})
	}
}

func TestNewRejectsIncompatibleVersion(t *testing.T) {
	info := plugin.PluginInfo{Name: "old", ProtocolVersion: "1.0.0", PluginProtocol: "json-stdio"}
	_, err := New(context.Background(), "old", WithRunner(NewMockProcessRunner(infoJSON(t, info), nil)))
	if !errors.Is(err, protocol.ErrIncompatible) {
		t.Errorf("New() error = %v, want ErrIncompatible", err)
	}
}

func TestNewInfoErrors(t *testing.T) {
	t.Run("process fails", func(t *testing.T) {
		_, err := New(context.Background(), "broken", WithRunner(NewErrorMockProcessRunner("segfault")))
		if err == nil || !strings.Contains(err.Error(), "segfault") {
			t.Errorf("New() error = %v, want stderr in message", err)
		}
	})

	t.Run("bad json", func(t *testing.T) {
		_, err := New(context.Background(), "junk", WithRunner(NewMockProcessRunner([]byte("not json"), nil)))
		if err == nil || !strings.Contains(err.Error(), "parse plugin info") {
			t.Errorf("New() error = %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		_, err := New(context.Background(), "slow",
			WithRunner(NewTimeoutMockProcessRunner()),
			WithInfoTimeout(20*time.Millisecond))
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("New() error = %v, want deadline exceeded", err)
		}
	})
}

func TestExportJSONWithMock(t *testing.T) {
	info := plugin.PluginInfo{Name: "lines", PluginProtocol: "json-stdio", Extension: ".conf"}
	runner := NewMockProcessRunner(infoJSON(t, info), []byte("exported\n"))

	e, err := New(context.Background(), "lines", WithRunner(runner))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	files, err := e.Export(context.Background(), testScheme())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if got := string(files["lines.conf"]); got != "exported\n" {
		t.Errorf("files = %v", files)
	}

	var sent plugin.SchemeData
	if err := json.Unmarshal(runner.LastStdin, &sent); err != nil {
		t.Fatalf("stdin was not a scheme: %v", err)
	}
	if len(sent.Colours) != 2 || sent.Colours[1].Hex != "#0000ff" {
		t.Errorf("stdin scheme = %+v", sent)
	}
	if len(runner.LastArgs) != 0 {
		t.Errorf("export args = %v, want none", runner.LastArgs)
	}
}

func TestExportJSONCancelled(t *testing.T) {
	info := plugin.PluginInfo{Name: "hang", PluginProtocol: "json-stdio"}
	runner := NewMockProcessRunner(infoJSON(t, info), nil)
	e, err := New(context.Background(), "hang", WithRunner(runner))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	runner.ShouldTimeout = true
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := e.Export(ctx, testScheme()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Export() error = %v, want deadline exceeded", err)
	}
}

func TestName(t *testing.T) {
	runner := NewMockProcessRunner([]byte(`{}`), nil)
	e, err := New(context.Background(), "/opt/plugins/kitty-theme.sh", WithRunner(runner))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if e.Name() != "kitty-theme" {
		t.Errorf("Name() = %q", e.Name())
	}
	if e.outputName() != "kitty-theme.txt" {
		t.Errorf("outputName() = %q", e.outputName())
	}
	help, err := e.FlagHelp(context.Background())
	if err != nil || help != nil {
		t.Errorf("FlagHelp() = %v, %v for json-stdio plugin", help, err)
	}
}

// TestExportJSONScript runs real shell plugins from testdata.
func TestExportJSONScript(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell plugins need a POSIX shell")
	}

	t.Run("success", func(t *testing.T) {
		e, err := New(context.Background(), copyTestScript(t, "hex-exporter.sh"))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		defer e.Close()

		if e.Info().Name != "hex-exporter" {
			t.Errorf("Info().Name = %q", e.Info().Name)
		}
		files, err := e.Export(context.Background(), testScheme())
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if got := string(files["hex-exporter.hex"]); got != "#ff0000\n#0000ff\n" {
			t.Errorf("export = %q", got)
		}
	})

	t.Run("failure", func(t *testing.T) {
		e, err := New(context.Background(), copyTestScript(t, "failing-exporter.sh"))
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		_, err = e.Export(context.Background(), testScheme())
		if err == nil || !strings.Contains(err.Error(), "no colours for you") {
			t.Errorf("Export() error = %v, want plugin stderr", err)
		}
	})

	t.Run("bad info", func(t *testing.T) {
		if _, err := New(context.Background(), copyTestScript(t, "bad-info.sh")); err == nil {
			t.Error("expected error for non-JSON plugin info")
		}
	})

	t.Run("missing binary", func(t *testing.T) {
		if _, err := New(context.Background(), "/nonexistent/plugin"); err == nil {
			t.Error("expected error for nonexistent plugin")
		}
	})
}

// copyTestScript copies a testdata script to a temp dir and makes it executable.
func copyTestScript(t *testing.T, scriptName string) string {
	t.Helper()

	content, err := os.ReadFile(filepath.Join("testdata", "scripts", scriptName))
	if err != nil {
		t.Fatalf("Failed to read testdata script %s: %v", scriptName, err)
	}

	pluginPath := filepath.Join(t.TempDir(), scriptName)
	if err := os.WriteFile(pluginPath, content, 0o755); err != nil {
		t.Fatalf("Failed to write test script: %v", err)
	}
	return pluginPath
}
