package manager

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/jmylchreest/scheming/internal/colour"
	"github.com/jmylchreest/scheming/internal/export"
	"github.com/jmylchreest/scheming/internal/plugin/executor"
	"github.com/jmylchreest/scheming/pkg/plugin"
)

func testPayload() export.Payload {
	return export.Payload{Colours: []colour.Colour{colour.NewColour(100, 0, 0), colour.NewColour(0, 0, 0)}}
}

func TestBuildRegistersBuiltins(t *testing.T) {
	m, err := NewBuilder().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	got := m.List()
	want := []string{"gnuplot", "hex", "json", "python", "rgb"}
	if !slices.Equal(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}

	e, ok := m.Get("HEX")
	if !ok {
		t.Fatal("Get(HEX) not found")
	}
	files, err := e.Export(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if got := string(files["scheme.txt"]); got != "#ffffff\n#000000\n" {
		t.Errorf("hex export = %q", got)
	}
}

func TestBuildWithConfig(t *testing.T) {
	m, err := NewBuilder().WithConfig(Config{
		Plugins:         map[string]string{"kitty": "/opt/kitty.sh", "alacritty": "/opt/alacritty"},
		DisabledPlugins: []string{"alacritty"},
	}).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if _, ok := m.Get("kitty"); !ok {
		t.Error("kitty should be enabled")
	}
	if _, ok := m.Get("alacritty"); ok {
		t.Error("alacritty should be disabled")
	}
	if slices.Contains(m.List(), "alacritty") {
		t.Error("List() should skip disabled plugins")
	}
}

func TestDisableAllKeepsBuiltins(t *testing.T) {
	m, err := NewBuilder().WithConfig(Config{
		Plugins:         map[string]string{"kitty": "/opt/kitty.sh"},
		DisabledPlugins: []string{"all"},
	}).Build()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Get("kitty"); ok {
		t.Error("kitty should be disabled by all")
	}
	if _, ok := m.Get("json"); !ok {
		t.Error("built-in json must stay enabled")
	}
}

func TestBuildRejectsShadowing(t *testing.T) {
	_, err := NewBuilder().WithConfig(Config{Plugins: map[string]string{"hex": "/bin/true"}}).Build()
	if err == nil || !strings.Contains(err.Error(), "shadows") {
		t.Errorf("Build() error = %v, want shadowing error", err)
	}
}

func TestWithEnvConfig(t *testing.T) {
	t.Setenv("SCHEMING_PLUGINS", "vim=/opt/vim-export, tmux = /opt/tmux.sh")
	t.Setenv("SCHEMING_DISABLED_PLUGINS", "tmux")

	m, err := NewBuilder().WithEnvConfig().Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if e, ok := m.Get("vim"); !ok || e.(*ExternalExporter).Path() != "/opt/vim-export" {
		t.Errorf("vim exporter = %v, %v", e, ok)
	}
	if _, ok := m.Get("tmux"); ok {
		t.Error("tmux should be disabled from env")
	}
}

func TestWithEnvConfigInvalid(t *testing.T) {
	t.Setenv("SCHEMING_PLUGINS", "novalue")
	if _, err := NewBuilder().WithEnvConfig().Build(); err == nil {
		t.Error("expected error for malformed SCHEMING_PLUGINS")
	}
}

func TestParsePluginMap(t *testing.T) {
	tests := []struct {
		in      string
		want    map[string]string
		wantErr bool
	}{
		{"a=/x", map[string]string{"a": "/x"}, false},
		{" a = /x , b=/y ,", map[string]string{"a": "/x", "b": "/y"}, false},
		{"a=", nil, true},
		{"=/x", nil, true},
	}
	for _, tt := range tests {
		got, err := ParsePluginMap(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParsePluginMap(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePluginMap(%q) error = %v", tt.in, err)
			continue
		}
		if len(got) != len(tt.want) {
			t.Errorf("ParsePluginMap(%q) = %v, want %v", tt.in, got, tt.want)
		}
		for k, v := range tt.want {
			if got[k] != v {
				t.Errorf("ParsePluginMap(%q)[%s] = %q, want %q", tt.in, k, got[k], v)
			}
		}
	}
}

func TestRegisterAndExportExternal(t *testing.T) {
	info, _ := json.Marshal(plugin.PluginInfo{Name: "lines", PluginProtocol: "json-stdio", Extension: "lines"})
	runner := executor.NewMockProcessRunner(info, []byte("ok\n"))

	m, err := NewBuilder().WithExecutorOptions(executor.WithRunner(runner)).Build()
	if err != nil {
		t.Fatal(err)
	}

	e, err := m.Register("", "/opt/plugins/lines.sh")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if e.Name() != "lines" {
		t.Errorf("Name() = %q, want lines", e.Name())
	}
	if _, ok := m.Get("lines"); !ok {
		t.Error("registered plugin not found")
	}

	files, err := e.Export(context.Background(), testPayload())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if string(files["lines.lines"]) != "ok\n" {
		t.Errorf("files = %v", files)
	}

	var sent plugin.SchemeData
	if err := json.Unmarshal(runner.LastStdin, &sent); err != nil {
		t.Fatal(err)
	}
	if len(sent.Colours) != 2 || sent.Colours[0].Hex != "#ffffff" {
		t.Errorf("sent = %+v", sent)
	}

	if _, err := m.Register("json", "/opt/json"); err == nil {
		t.Error("Register should refuse to shadow a built-in")
	}
}

func TestExternalFlagHelp(t *testing.T) {
	info, _ := json.Marshal(plugin.PluginInfo{Name: "lines", PluginProtocol: "json-stdio", Extension: "lines"})

	tests := []struct {
		name    string
		runner  *executor.MockProcessRunner
		wantErr bool
	}{
		{name: "json plugin has no flags", runner: executor.NewMockProcessRunner(info, nil)},
		{name: "plugin fails to start", runner: executor.NewErrorMockProcessRunner("boom"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewBuilder().WithExecutorOptions(executor.WithRunner(tt.runner)).Build()
			if err != nil {
				t.Fatal(err)
			}
			e, err := m.Register("lines", "/opt/plugins/lines.sh")
			if err != nil {
				t.Fatal(err)
			}

			help, err := e.(*ExternalExporter).FlagHelp(context.Background())
			if (err != nil) != tt.wantErr {
				t.Fatalf("FlagHelp() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(help) != 0 {
				t.Errorf("FlagHelp() = %v, want none", help)
			}
		})
	}
}
