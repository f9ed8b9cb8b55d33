package mcp

import (
	"context"
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jthurman/gmtrack/internal/config"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"campaign_create": {
		def:     campaignCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCampaignCreate },
	},
	"campaign_list": {
		def:     campaignListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCampaignList },
	},
	"campaign_get": {
		def:     campaignGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCampaignGet },
	},
	"campaign_activate": {
		def:     campaignActivateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCampaignActivate },
	},
	"character_create": {
		def:     characterCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCharacterCreate },
	},
	"character_clone": {
		def:     characterCloneToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCharacterClone },
	},
	"character_update_hp": {
		def:     characterUpdateHPToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCharacterUpdateHP },
	},
	"character_set_initiative": {
		def:     characterSetInitiativeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCharacterSetInitiative },
	},
	"character_update": {
		def:     characterUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCharacterUpdate },
	},
	"character_delete": {
		def:     characterDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCharacterDelete },
	},
	"turn_advance": {
		def:     turnAdvanceToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTurnAdvance },
	},
	"log_append": {
		def:     logAppendToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLogAppend },
	},
	"log_recent": {
		def:     logRecentToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleLogRecent },
	},
	"encounter_save": {
		def:     encounterSaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEncounterSave },
	},
	"encounter_load": {
		def:     encounterLoadToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEncounterLoad },
	},
	"encounter_list": {
		def:     encounterListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEncounterList },
	},
	"backup_create": {
		def:     backupCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBackupCreate },
	},
	"backup_list": {
		def:     backupListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBackupList },
	},
	"backup_restore": {
		def:     backupRestoreToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBackupRestore },
	},
	"backup_delete": {
		def:     backupDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBackupDelete },
	},
	"settings_get": {
		def:     settingsGetToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSettingsGet },
	},
	"settings_update": {
		def:     settingsUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSettingsUpdate },
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

// NewServer creates a new MCP server with gmtrack tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"gmtrack",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, cfg)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
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
func Run(db *sql.DB, cfg *config.Config, version string) error {
	s := NewServer(db, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
