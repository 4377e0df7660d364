package plugin

import (
	"context"
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// ExporterPluginRPC implements the go-plugin Plugin interface for exporters.
type ExporterPluginRPC struct {
	plugin.Plugin
	Impl ExporterPlugin
}

// Server returns an RPC server for this plugin.
func (p *ExporterPluginRPC) Server(*plugin.MuxBroker) (any, error) {
	return &ExporterPluginRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *ExporterPluginRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &ExporterPluginRPCClient{client: c}, nil
}

// ExporterPluginRPCServer is the RPC server implementation for exporters.
type ExporterPluginRPCServer struct {
	Impl ExporterPlugin
}

// Export implements the RPC method for scheme export.
func (s *ExporterPluginRPCServer) Export(scheme SchemeData, resp *map[string][]byte) error {
	result, err := s.Impl.Export(context.Background(), scheme)
	if err != nil {
		return err
	}
	*resp = result
	return nil
}

// GetMetadata implements the RPC method for fetching plugin metadata.
func (s *ExporterPluginRPCServer) GetMetadata(_ any, resp *PluginInfo) error {
	*resp = s.Impl.GetMetadata()
	return nil
}

// GetFlagHelp implements the RPC method for fetching flag help.
func (s *ExporterPluginRPCServer) GetFlagHelp(_ any, resp *[]FlagHelp) error {
	*resp = s.Impl.GetFlagHelp()
	return nil
}

// ExporterPluginRPCClient is the RPC client implementation for exporters.
type ExporterPluginRPCClient struct {
	client *rpc.Client
}

// NewExporterPluginRPCClient wraps an existing net/rpc client.
func NewExporterPluginRPCClient(c *rpc.Client) *ExporterPluginRPCClient {
	return &ExporterPluginRPCClient{client: c}
}

// Export calls the remote Export method.
func (c *ExporterPluginRPCClient) Export(_ context.Context, scheme SchemeData) (map[string][]byte, error) {
	var result map[string][]byte
	if err := c.client.Call("Plugin.Export", scheme, &result); err != nil {
		return nil, &RPCError{Message: err.Error()}
	}
	return result, nil
}

// GetMetadata calls the remote GetMetadata method.
func (c *ExporterPluginRPCClient) GetMetadata() (PluginInfo, error) {
	var info PluginInfo
	err := c.client.Call("Plugin.GetMetadata", new(any), &info)
	return info, err
}

// GetFlagHelp calls the remote GetFlagHelp method.
func (c *ExporterPluginRPCClient) GetFlagHelp() []FlagHelp {
	var help []FlagHelp
	err := c.client.Call("Plugin.GetFlagHelp", new(any), &help)
	if err != nil {
		return []FlagHelp{}
	}
	return help
}

// RPCError represents an error returned from an RPC call.
type RPCError struct {
	Message string
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	return e.Message
}
