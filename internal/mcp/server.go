package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/ops"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"episode", "session", "save", "tape"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"episode_list": {
		def:     episodeListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEpisodeList },
	},
	"episode_validate": {
		def:     episodeValidateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEpisodeValidate },
	},
	"session_start": {
		def:     sessionStartToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionStart },
	},
	"session_choose": {
		def:     sessionChooseToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionChoose },
	},
	"session_state": {
		def:     sessionStateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionState },
	},
	"session_restart": {
		def:     sessionRestartToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionRestart },
	},
	"session_transcript": {
		def:     sessionTranscriptToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSessionTranscript },
	},
	"save_store": {
		def:     saveStoreToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSaveStore },
	},
	"save_load": {
		def:     saveLoadToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSaveLoad },
	},
	"save_delete": {
		def:     saveDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSaveDelete },
	},
	"save_list": {
		def:     saveListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSaveList },
	},
	"tape_list": {
		def:     tapeListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTapeList },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "session_start" → "session").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with the player tools registered.
// Tools listed in DisabledTools or belonging to DisabledTypes
// are excluded from registration.
func NewServer(env *ops.Env, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"noise-over-silence",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(env)

	// Build set of disabled tools: first expand types, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(env.Config.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range env.Config.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(env *ops.Env, version string) error {
	s := NewServer(env, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
