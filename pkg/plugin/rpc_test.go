package plugin

import (
	"context"
	"errors"
	"net"
	"net/rpc"
	"strings"
	"testing"
)

type mockExporter struct {
	err error
}

func (m *mockExporter) Export(_ context.Context, scheme SchemeData) (map[string][]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	var b strings.Builder
	for _, c := range scheme.Colours {
		b.WriteString(c.Hex)
		b.WriteByte('\n')
	}
	return map[string][]byte{"colours.txt": []byte(b.String())}, nil
}

func (m *mockExporter) GetMetadata() PluginInfo {
	return PluginInfo{
		Name:            "mock",
		Version:         "1.0.0",
		ProtocolVersion: ProtocolVersion,
		Description:     "mock exporter",
		PluginProtocol:  string(PluginTypeGoPlugin),
		Extension:       "txt",
	}
}

func (m *mockExporter) GetFlagHelp() []FlagHelp {
	return []FlagHelp{{Name: "prefix", Type: "string", Default: "", Description: "line prefix"}}
}

func testScheme() SchemeData {
	return SchemeData{
		Colours: []SchemeColour{
			{Index: 0, Hex: "#ff0000", RGB: RGBColour{R: 255}},
			{Index: 1, Hex: "#0000ff", RGB: RGBColour{B: 255}},
		},
		Limits: LimitsData{Hue: [2]float64{0, 360}, Chroma: [2]float64{0, 100}, Light: [2]float64{0, 100}},
	}
}

func TestExporterPluginRPC_Server(t *testing.T) {
	p := &ExporterPluginRPC{Impl: &mockExporter{}}
	server, err := p.Server(nil)
	if err != nil {
		t.Fatalf("Server() error = %v", err)
	}
	if _, ok := server.(*ExporterPluginRPCServer); !ok {
		t.Errorf("Server() returned %T, want *ExporterPluginRPCServer", server)
	}
}

func TestExporterPluginRPC_Client(t *testing.T) {
	p := &ExporterPluginRPC{}
	client, err := p.Client(nil, nil)
	if err != nil {
		t.Fatalf("Client() error = %v", err)
	}
	if _, ok := client.(*ExporterPluginRPCClient); !ok {
		t.Errorf("Client() returned %T, want *ExporterPluginRPCClient", client)
	}
}

func TestExporterPluginRPCServer_Export(t *testing.T) {
	server := &ExporterPluginRPCServer{Impl: &mockExporter{}}

	var resp map[string][]byte
	if err := server.Export(testScheme(), &resp); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	got := string(resp["colours.txt"])
	if got != "#ff0000\n#0000ff\n" {
		t.Errorf("Export() = %q", got)
	}
}

func TestExporterPluginRPCServer_ExportError(t *testing.T) {
	want := errors.New("boom")
	server := &ExporterPluginRPCServer{Impl: &mockExporter{err: want}}

	var resp map[string][]byte
	if err := server.Export(testScheme(), &resp); !errors.Is(err, want) {
		t.Errorf("Export() error = %v, want %v", err, want)
	}
}

func TestExporterPluginRPCServer_Metadata(t *testing.T) {
	server := &ExporterPluginRPCServer{Impl: &mockExporter{}}

	var info PluginInfo
	if err := server.GetMetadata(nil, &info); err != nil {
		t.Fatalf("GetMetadata() error = %v", err)
	}
	if info.Name != "mock" || info.Extension != "txt" {
		t.Errorf("GetMetadata() = %+v", info)
	}

	var help []FlagHelp
	if err := server.GetFlagHelp(nil, &help); err != nil {
		t.Fatalf("GetFlagHelp() error = %v", err)
	}
	if len(help) != 1 || help[0].Name != "prefix" {
		t.Errorf("GetFlagHelp() = %+v", help)
	}
}

// TestExporterRoundTrip drives the client against the server over an
// in-memory net/rpc connection.
func TestExporterRoundTrip(t *testing.T) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("Plugin", &ExporterPluginRPCServer{Impl: &mockExporter{}}); err != nil {
		t.Fatalf("RegisterName() error = %v", err)
	}
	serverConn, clientConn := net.Pipe()
	go srv.ServeConn(serverConn)

	rc := rpc.NewClient(clientConn)
	defer rc.Close()
	client := NewExporterPluginRPCClient(rc)

	files, err := client.Export(context.Background(), testScheme())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if string(files["colours.txt"]) != "#ff0000\n#0000ff\n" {
		t.Errorf("Export() = %q", files["colours.txt"])
	}

	info, err := client.GetMetadata()
	if err != nil {
		t.Fatalf("GetMetadata() error = %v", err)
	}
	if info.Name != "mock" {
		t.Errorf("GetMetadata().Name = %q", info.Name)
	}

	if help := client.GetFlagHelp(); len(help) != 1 {
		t.Errorf("GetFlagHelp() = %+v", help)
	}
}

func TestExporterRoundTripError(t *testing.T) {
	srv := rpc.NewServer()
	impl := &mockExporter{err: errors.New("export failed")}
	if err := srv.RegisterName("Plugin", &ExporterPluginRPCServer{Impl: impl}); err != nil {
		t.Fatalf("RegisterName() error = %v", err)
	}
	serverConn, clientConn := net.Pipe()
	go srv.ServeConn(serverConn)

	rc := rpc.NewClient(clientConn)
	defer rc.Close()

	_, err := NewExporterPluginRPCClient(rc).Export(context.Background(), testScheme())
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("Export() error = %T %v, want *RPCError", err, err)
	}
	if rpcErr.Message != "export failed" {
		t.Errorf("RPCError.Message = %q", rpcErr.Message)
	}
}

func TestPluginMap(t *testing.T) {
	m := PluginMap(&mockExporter{})
	if _, ok := m[ExporterPluginName]; !ok {
		t.Errorf("PluginMap() missing %q", ExporterPluginName)
	}
	if Handshake.MagicCookieKey != "SCHEMING_PLUGIN" {
		t.Errorf("Handshake.MagicCookieKey = %q", Handshake.MagicCookieKey)
	}
}
