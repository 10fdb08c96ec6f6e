// Package mcphub composes the native MCP servers with external servers
// spawned from the configuration, and exposes their tools under a single
// flat namespace.
package mcphub

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/tinkertasker/tinkertasker/config"
	"github.com/tinkertasker/tinkertasker/mcphub/filesystem"
	"github.com/tinkertasker/tinkertasker/mcphub/web"
	"github.com/tinkertasker/tinkertasker/types"
)

// callTimeout bounds a single tool call.
const callTimeout = 5 * time.Second

const nativeHeader = "## Native MCP Servers\nThese servers are provided by default by TinkerTasker.\n\n"

type serverConn struct {
	// name is the server's self-reported name, falling back to the
	// configured identifier.
	name   string
	client *client.Client
}

type toolInfo struct {
	conn *serverConn
	// remoteName is the tool's name on its server, before any prefix.
	remoteName string
	schema     types.UnifiedTool
}

// Hub is the composed tool surface handed to the agent. Tool names are
// unique across all servers; external servers may carry a prefix to avoid
// collisions.
type Hub struct {
	logger       *zap.Logger
	conns        []*serverConn
	tools        map[string]*toolInfo
	order        []string
	instructions string
}

// New starts the configured native servers in process and spawns the
// configured external servers over stdio. An external server that fails to
// initialize is skipped with a warning; a duplicate tool name is an error.
func New(ctx context.Context, cfg config.AgentConfig, workDir string, logger *zap.Logger) (*Hub, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		logger: logger,
		tools:  make(map[string]*toolInfo),
	}

	var instructionParts []string
	nativeEnabled := false

	for _, name := range cfg.NativeMCPServers {
		var srv *server.MCPServer
		switch name {
		case "filesystem":
			srv = filesystem.New(workDir)
		case "web":
			srv = web.New()
		default:
			h.Close()
			return nil, fmt.Errorf("unknown native MCP server: %s", name)
		}

		conn, initRes, err := h.startInProcess(ctx, srv)
		if err != nil {
			h.Close()
			return nil, fmt.Errorf("start native MCP server %s: %w", name, err)
		}
		nativeEnabled = true
		if initRes.Instructions != "" {
			instructionParts = append(instructionParts,
				fmt.Sprintf("### %s Server\n%s", conn.name, initRes.Instructions))
		}
		if err := h.registerTools(ctx, conn, ""); err != nil {
			h.Close()
			return nil, err
		}
	}

	for _, ext := range cfg.MCPServers {
		conn, initRes, err := h.startStdio(ctx, ext)
		if err != nil {
			logger.Warn("failed to initialize MCP server, server not being added",
				zap.String("identifier", ext.Identifier),
				zap.Error(err))
			continue
		}
		if initRes.Instructions != "" {
			instructionParts = append(instructionParts,
				fmt.Sprintf("## %s Server\n%s", conn.name, initRes.Instructions))
		}
		if err := h.registerTools(ctx, conn, ext.Prefix); err != nil {
			h.Close()
			return nil, err
		}
	}

	h.instructions = strings.Join(instructionParts, "\n\n")
	if nativeEnabled {
		h.instructions = nativeHeader + h.instructions
	}
	return h, nil
}

func (h *Hub) startInProcess(ctx context.Context, srv *server.MCPServer) (*serverConn, *mcp.InitializeResult, error) {
	cli, err := client.NewInProcessClient(srv)
	if err != nil {
		return nil, nil, err
	}
	if err := cli.Start(ctx); err != nil {
		cli.Close()
		return nil, nil, err
	}
	initRes, err := cli.Initialize(ctx, mcp.InitializeRequest{})
	if err != nil {
		cli.Close()
		return nil, nil, err
	}
	conn := &serverConn{name: initRes.ServerInfo.Name, client: cli}
	h.conns = append(h.conns, conn)
	return conn, initRes, nil
}

func (h *Hub) startStdio(ctx context.Context, ext config.MCPServerConfig) (*serverConn, *mcp.InitializeResult, error) {
	cli, err := client.NewStdioMCPClient(ext.Command, nil, ext.Args...)
	if err != nil {
		return nil, nil, err
	}

	initCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	initRes, err := cli.Initialize(initCtx, mcp.InitializeRequest{})
	if err != nil {
		cli.Close()
		return nil, nil, err
	}

	name := initRes.ServerInfo.Name
	if name == "" {
		name = ext.Identifier
	}
	conn := &serverConn{name: name, client: cli}
	h.conns = append(h.conns, conn)
	return conn, initRes, nil
}

// registerTools lists the server's tools and adds them to the hub under
// prefix, which may be empty.
func (h *Hub) registerTools(ctx context.Context, conn *serverConn, prefix string) error {
	res, err := conn.client.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return fmt.Errorf("list tools of %s: %w", conn.name, err)
	}

	for _, tool := range res.Tools {
		exposed := tool.Name
		if prefix != "" {
			exposed = prefix + "_" + tool.Name
		}
		if prev, ok := h.tools[exposed]; ok {
			return fmt.Errorf("duplicate tool %s: provided by both %s and %s", exposed, prev.conn.name, conn.name)
		}

		schema := map[string]interface{}{
			"type": tool.InputSchema.Type,
		}
		if len(tool.InputSchema.Properties) > 0 {
			schema["properties"] = tool.InputSchema.Properties
		}
		if len(tool.InputSchema.Required) > 0 {
			schema["required"] = tool.InputSchema.Required
		}

		h.tools[exposed] = &toolInfo{
			conn:       conn,
			remoteName: tool.Name,
			schema: types.UnifiedTool{
				Name:        exposed,
				Description: tool.Description,
				InputSchema: schema,
			},
		}
		h.order = append(h.order, exposed)
	}
	return nil
}

// Tools returns the schemas of all exposed tools in registration order.
func (h *Hub) Tools() []types.UnifiedTool {
	out := make([]types.UnifiedTool, 0, len(h.order))
	for _, name := range h.order {
		out = append(out, h.tools[name].schema)
	}
	return out
}

// Instructions returns the combined server instructions for the system
// prompt.
func (h *Hub) Instructions() string {
	return h.instructions
}

// CallTool dispatches a tool call to its server and flattens the result to
// text. Execution failures are returned in ToolResult.Error so the model
// can react to them.
func (h *Hub) CallTool(ctx context.Context, call types.ToolCall) types.ToolResult {
	info, ok := h.tools[call.Name]
	if !ok {
		return types.ToolResult{Error: fmt.Sprintf("Unknown tool: %s", call.Name)}
	}

	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	res, err := info.conn.client.CallTool(callCtx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      info.remoteName,
			Arguments: call.Arguments,
		},
	})
	if err != nil {
		h.logger.Warn("tool call failed",
			zap.String("tool", call.Name),
			zap.String("server", info.conn.name),
			zap.Error(err))
		return types.ToolResult{Error: fmt.Sprintf("execute %s: %v", call.Name, err)}
	}

	content := flattenContent(res)
	if res.IsError {
		return types.ToolResult{Error: content}
	}
	return types.ToolResult{Content: content}
}

func flattenContent(res *mcp.CallToolResult) string {
	var parts []string
	for _, item := range res.Content {
		switch c := item.(type) {
		case mcp.TextContent:
			parts = append(parts, c.Text)
		default:
			parts = append(parts, fmt.Sprintf("[unsupported content type %T]", item))
		}
	}
	if len(parts) == 0 {
		return "Tool executed but returned no result."
	}
	return strings.Join(parts, "\n")
}

// Close shuts down every server connection, terminating spawned external
// processes.
func (h *Hub) Close() {
	for _, conn := range h.conns {
		if err := conn.client.Close(); err != nil {
			h.logger.Warn("closing MCP server", zap.String("server", conn.name), zap.Error(err))
		}
	}
	h.conns = nil
}
