package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var campaignCreateToolDef = mcp.NewTool(
	"campaign_create",
	mcp.WithDescription("Create a campaign. New campaigns start active and include a small starter party unless skip_default_party is set."),
	mcp.WithString("name", mcp.Required(), mcp.Description("Campaign name")),
	mcp.WithBoolean("skip_default_party", mcp.Description("Do not seed the starter characters")),
)

var campaignListToolDef = mcp.NewTool(
	"campaign_list",
	mcp.WithDescription("List all campaigns, newest first."),
)

var campaignGetToolDef = mcp.NewTool(
	"campaign_get",
	mcp.WithDescription("Get a campaign with its characters in turn order, recent log entries, and encounters. Defaults to the active campaign."),
	mcp.WithString("campaign_id", mcp.Description("Campaign ID; blank for the active campaign")),
	mcp.WithNumber("log_limit", mcp.Description("Maximum log entries to return")),
)

var campaignActivateToolDef = mcp.NewTool(
	"campaign_activate",
	mcp.WithDescription("Mark one campaign active and deactivate all others."),
	mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID")),
)

var characterCreateToolDef = mcp.NewTool(
	"character_create",
	mcp.WithDescription("Add a character to a campaign."),
	mcp.WithString("campaign_id", mcp.Description("Campaign ID; blank for the active campaign")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Character name")),
	mcp.WithString("type", mcp.Description("PLAYER or NPC (default PLAYER)")),
	mcp.WithString("race", mcp.Description("Race")),
	mcp.WithString("class", mcp.Description("Class")),
	mcp.WithNumber("level", mcp.Description("Level (default 1)")),
	mcp.WithNumber("hp", mcp.Description("Current hit points (defaults to max_hp)")),
	mcp.WithNumber("max_hp", mcp.Required(), mcp.Description("Maximum hit points")),
	mcp.WithNumber("armor_class", mcp.Description("Armor class (default 10)")),
	mcp.WithNumber("speed", mcp.Description("Speed (default 30)")),
	mcp.WithNumber("initiative", mcp.Description("Static initiative bonus")),
)

var characterCloneToolDef = mcp.NewTool(
	"character_clone",
	mcp.WithDescription("Copy a library character into a campaign. The clone keeps a source link back to the template and starts at full HP."),
	mcp.WithString("source_id", mcp.Required(), mcp.Description("ID of the character to copy")),
	mcp.WithString("campaign_id", mcp.Description("Destination campaign; blank for the active campaign")),
)

var characterUpdateHPToolDef = mcp.NewTool(
	"character_update_hp",
	mcp.WithDescription("Apply a hit point change: positive heals, negative damages."),
	mcp.WithString("character_id", mcp.Required(), mcp.Description("Character ID")),
	mcp.WithNumber("delta", mcp.Required(), mcp.Description("Amount to change HP by")),
)

var characterSetInitiativeToolDef = mcp.NewTool(
	"character_set_initiative",
	mcp.WithDescription("Record a character's initiative roll for the current combat."),
	mcp.WithString("character_id", mcp.Required(), mcp.Description("Character ID")),
	mcp.WithNumber("roll", mcp.Required(), mcp.Description("Initiative roll")),
)

var characterUpdateToolDef = mcp.NewTool(
	"character_update",
	mcp.WithDescription("Patch character fields. Omitted fields are left unchanged."),
	mcp.WithString("character_id", mcp.Required(), mcp.Description("Character ID")),
	mcp.WithString("name", mcp.Description("New name")),
	mcp.WithString("type", mcp.Description("PLAYER or NPC")),
	mcp.WithString("race", mcp.Description("Race")),
	mcp.WithString("class", mcp.Description("Class")),
	mcp.WithNumber("level", mcp.Description("Level")),
	mcp.WithNumber("max_hp", mcp.Description("Maximum hit points")),
	mcp.WithNumber("armor_class", mcp.Description("Armor class")),
	mcp.WithNumber("speed", mcp.Description("Speed")),
	mcp.WithNumber("initiative", mcp.Description("Static initiative bonus")),
	mcp.WithString("image_url", mcp.Description("Avatar image URL")),
)

var characterDeleteToolDef = mcp.NewTool(
	"character_delete",
	mcp.WithDescription("Remove a character."),
	mcp.WithString("character_id", mcp.Required(), mcp.Description("Character ID")),
)

var turnAdvanceToolDef = mcp.NewTool(
	"turn_advance",
	mcp.WithDescription("Advance the turn to the next character in initiative order. Pass expected_active_id with the character you believe holds the turn; if the belief is stale, nothing changes and the actual holder is returned."),
	mcp.WithString("campaign_id", mcp.Required(), mcp.Description("Campaign ID")),
	mcp.WithString("expected_active_id", mcp.Description("ID of the character believed to hold the turn")),
)

var logAppendToolDef = mcp.NewTool(
	"log_append",
	mcp.WithDescription("Append a narrative log entry."),
	mcp.WithString("campaign_id", mcp.Description("Campaign ID; blank for the active campaign")),
	mcp.WithString("content", mcp.Required(), mcp.Description("Entry text (markdown allowed)")),
	mcp.WithString("type", mcp.Description("Story, Combat, or Roll (default Story)")),
)

var logRecentToolDef = mcp.NewTool(
	"log_recent",
	mcp.WithDescription("Return a campaign's newest log entries."),
	mcp.WithString("campaign_id", mcp.Description("Campaign ID; blank for the active campaign")),
	mcp.WithNumber("limit", mcp.Description("Maximum entries to return")),
)

var encounterSaveToolDef = mcp.NewTool(
	"encounter_save",
	mcp.WithDescription("Save the campaign's current initiative order and HP as a named encounter snapshot."),
	mcp.WithString("campaign_id", mcp.Description("Campaign ID; blank for the active campaign")),
	mcp.WithString("name", mcp.Required(), mcp.Description("Encounter name")),
)

var encounterLoadToolDef = mcp.NewTool(
	"encounter_load",
	mcp.WithDescription("Apply a saved encounter to the live characters: initiative rolls and recorded HP are written back and the turn resets."),
	mcp.WithString("encounter_id", mcp.Required(), mcp.Description("Encounter ID")),
)

var encounterListToolDef = mcp.NewTool(
	"encounter_list",
	mcp.WithDescription("List a campaign's saved encounters, newest first."),
	mcp.WithString("campaign_id", mcp.Description("Campaign ID; blank for the active campaign")),
)

var backupCreateToolDef = mcp.NewTool(
	"backup_create",
	mcp.WithDescription("Export all campaigns, characters, logs, and encounters to a timestamped backup file."),
)

var backupListToolDef = mcp.NewTool(
	"backup_list",
	mcp.WithDescription("List backup files, newest first."),
)

var backupRestoreToolDef = mcp.NewTool(
	"backup_restore",
	mcp.WithDescription("Replace the entire store with the contents of a backup file. All current data is overwritten."),
	mcp.WithString("filename", mcp.Required(), mcp.Description("Backup filename from backup_list")),
)

var backupDeleteToolDef = mcp.NewTool(
	"backup_delete",
	mcp.WithDescription("Delete one backup file."),
	mcp.WithString("filename", mcp.Required(), mcp.Description("Backup filename from backup_list")),
)

var settingsGetToolDef = mcp.NewTool(
	"settings_get",
	mcp.WithDescription("Get application settings."),
)

var settingsUpdateToolDef = mcp.NewTool(
	"settings_update",
	mcp.WithDescription("Update application settings. Omitted fields are left unchanged."),
	mcp.WithBoolean("auto_backup", mcp.Description("Enable daily automatic backups")),
	mcp.WithNumber("backup_count", mcp.Description("Number of backups to retain (minimum 1)")),
)
