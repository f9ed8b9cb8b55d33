package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jthurman/gmtrack/internal/config"
	"github.com/jthurman/gmtrack/internal/errors"
	"github.com/jthurman/gmtrack/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, cfg *config.Config) *Handlers {
	return &Handlers{db: db, cfg: cfg}
}

// Request types for each tool

// CampaignCreateRequest represents the arguments for campaign_create.
type CampaignCreateRequest struct {
	Name             string `json:"name"`
	SkipDefaultParty bool   `json:"skip_default_party,omitempty"`
}

// CampaignGetRequest represents the arguments for campaign_get.
type CampaignGetRequest struct {
	CampaignID string `json:"campaign_id,omitempty"`
	LogLimit   int    `json:"log_limit,omitempty"`
}

// CampaignActivateRequest represents the arguments for campaign_activate.
type CampaignActivateRequest struct {
	CampaignID string `json:"campaign_id"`
}

// CharacterCreateRequest represents the arguments for character_create.
type CharacterCreateRequest struct {
	CampaignID string  `json:"campaign_id,omitempty"`
	Name       string  `json:"name"`
	Type       string  `json:"type,omitempty"`
	Race       *string `json:"race,omitempty"`
	Class      *string `json:"class,omitempty"`
	Level      int     `json:"level,omitempty"`
	HP         int     `json:"hp,omitempty"`
	MaxHP      int     `json:"max_hp"`
	ArmorClass int     `json:"armor_class,omitempty"`
	Speed      int     `json:"speed,omitempty"`
	Initiative int     `json:"initiative,omitempty"`
}

// CharacterCloneRequest represents the arguments for character_clone.
type CharacterCloneRequest struct {
	SourceID   string `json:"source_id"`
	CampaignID string `json:"campaign_id,omitempty"`
}

// CharacterUpdateHPRequest represents the arguments for character_update_hp.
type CharacterUpdateHPRequest struct {
	CharacterID string `json:"character_id"`
	Delta       int    `json:"delta"`
}

// CharacterSetInitiativeRequest represents the arguments for character_set_initiative.
type CharacterSetInitiativeRequest struct {
	CharacterID string `json:"character_id"`
	Roll        int    `json:"roll"`
}

// CharacterUpdateRequest represents the arguments for character_update.
type CharacterUpdateRequest struct {
	CharacterID string  `json:"character_id"`
	Name        *string `json:"name,omitempty"`
	Type        *string `json:"type,omitempty"`
	Race        *string `json:"race,omitempty"`
	Class       *string `json:"class,omitempty"`
	Level       *int    `json:"level,omitempty"`
	MaxHP       *int    `json:"max_hp,omitempty"`
	ArmorClass  *int    `json:"armor_class,omitempty"`
	Speed       *int    `json:"speed,omitempty"`
	Initiative  *int    `json:"initiative,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// CharacterDeleteRequest represents the arguments for character_delete.
type CharacterDeleteRequest struct {
	CharacterID string `json:"character_id"`
}

// TurnAdvanceRequest represents the arguments for turn_advance.
type TurnAdvanceRequest struct {
	CampaignID       string  `json:"campaign_id"`
	ExpectedActiveID *string `json:"expected_active_id,omitempty"`
}

// LogAppendRequest represents the arguments for log_append.
type LogAppendRequest struct {
	CampaignID string `json:"campaign_id,omitempty"`
	Content    string `json:"content"`
	Type       string `json:"type,omitempty"`
}

// LogRecentRequest represents the arguments for log_recent.
type LogRecentRequest struct {
	CampaignID string `json:"campaign_id,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// EncounterSaveRequest represents the arguments for encounter_save.
type EncounterSaveRequest struct {
	CampaignID string `json:"campaign_id,omitempty"`
	Name       string `json:"name"`
}

// EncounterLoadRequest represents the arguments for encounter_load.
type EncounterLoadRequest struct {
	EncounterID string `json:"encounter_id"`
}

// EncounterListRequest represents the arguments for encounter_list.
type EncounterListRequest struct {
	CampaignID string `json:"campaign_id,omitempty"`
}

// BackupRestoreRequest represents the arguments for backup_restore.
type BackupRestoreRequest struct {
	Filename string `json:"filename"`
}

// BackupDeleteRequest represents the arguments for backup_delete.
type BackupDeleteRequest struct {
	Filename string `json:"filename"`
}

// SettingsUpdateRequest represents the arguments for settings_update.
type SettingsUpdateRequest struct {
	AutoBackup  *bool `json:"auto_backup,omitempty"`
	BackupCount *int  `json:"backup_count,omitempty"`
}

// Handler implementations

// HandleCampaignCreate handles the campaign_create tool call.
func (h *Handlers) HandleCampaignCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CampaignCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	out, err := ops.CreateCampaign(ctx, h.db, h.cfg, ops.CreateCampaignInput{
		Name:             input.Name,
		SkipDefaultParty: input.SkipDefaultParty,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleCampaignList handles the campaign_list tool call.
func (h *Handlers) HandleCampaignList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := ops.ListCampaigns(ctx, h.db, h.cfg)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleCampaignGet handles the campaign_get tool call.
func (h *Handlers) HandleCampaignGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CampaignGetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	out, err := ops.GetCampaign(ctx, h.db, h.cfg, ops.GetCampaignInput{
		CampaignID: input.CampaignID,
		LogLimit:   input.LogLimit,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleCampaignActivate handles the campaign_activate tool call.
func (h *Handlers) HandleCampaignActivate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CampaignActivateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	out, err := ops.ActivateCampaign(ctx, h.db, h.cfg, ops.ActivateCampaignInput{CampaignID: input.CampaignID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleCharacterCreate handles the character_create tool call.
func (h *Handlers) HandleCharacterCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CharacterCreateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	out, err := ops.CreateCharacter(ctx, h.db, h.cfg, ops.CreateCharacterInput{
		CampaignID: input.CampaignID,
		Name:       input.Name,
		Type:       input.Type,
		Race:       input.Race,
		Class:      input.Class,
		Level:      input.Level,
		HP:         input.HP,
		MaxHP:      input.MaxHP,
		ArmorClass: input.ArmorClass,
		Speed:      input.Speed,
		Initiative: input.Initiative,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleCharacterClone handles the character_clone tool call.
func (h *Handlers) HandleCharacterClone(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CharacterCloneRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	out, err := ops.CloneCharacter(ctx, h.db, h.cfg, ops.CloneCharacterInput{
		SourceID:   input.SourceID,
		CampaignID: input.CampaignID,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleCharacterUpdateHP handles the character_update_hp tool call.
func (h *Handlers) HandleCharacterUpdateHP(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CharacterUpdateHPRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	out, err := ops.UpdateHP(ctx, h.db, h.cfg, ops.UpdateHPInput{
		CharacterID: input.CharacterID,
		Delta:       input.Delta,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleCharacterSetInitiative handles the character_set_initiative tool call.
func (h *Handlers) HandleCharacterSetInitiative(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CharacterSetInitiativeRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	out, err := ops.SetInitiative(ctx, h.db, h.cfg, ops.SetInitiativeInput{
		CharacterID: input.CharacterID,
		Roll:        input.Roll,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleCharacterUpdate handles the character_update tool call.
func (h *Handlers) HandleCharacterUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CharacterUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	out, err := ops.UpdateCharacter(ctx, h.db, h.cfg, ops.UpdateCharacterInput{
		CharacterID: input.CharacterID,
		Name:        input.Name,
		Type:        input.Type,
		Race:        input.Race,
		Class:       input.Class,
		Level:       input.Level,
		MaxHP:       input.MaxHP,
		ArmorClass:  input.ArmorClass,
		Speed:       input.Speed,
		Initiative:  input.Initiative,
		ImageURL:    input.ImageURL,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleCharacterDelete handles the character_delete tool call.
func (h *Handlers) HandleCharacterDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CharacterDeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if err := ops.DeleteCharacter(ctx, h.db, h.cfg, ops.DeleteCharacterInput{CharacterID: input.CharacterID}); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"deleted": true})
}

// HandleTurnAdvance handles the turn_advance tool call.
func (h *Handlers) HandleTurnAdvance(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TurnAdvanceRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	out, err := ops.Advance(ctx, h.db, h.cfg, ops.AdvanceInput{
		CampaignID:       input.CampaignID,
		ExpectedActiveID: input.ExpectedActiveID,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleLogAppend handles the log_append tool call.
func (h *Handlers) HandleLogAppend(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LogAppendRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	out, err := ops.AppendLog(ctx, h.db, h.cfg, ops.AppendLogInput{
		CampaignID: input.CampaignID,
		Content:    input.Content,
		Type:       input.Type,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleLogRecent handles the log_recent tool call.
func (h *Handlers) HandleLogRecent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[LogRecentRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	out, err := ops.RecentLogs(ctx, h.db, h.cfg, ops.RecentLogsInput{
		CampaignID: input.CampaignID,
		Limit:      input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleEncounterSave handles the encounter_save tool call.
func (h *Handlers) HandleEncounterSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EncounterSaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	out, err := ops.SaveEncounter(ctx, h.db, h.cfg, ops.SaveEncounterInput{
		CampaignID: input.CampaignID,
		Name:       input.Name,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleEncounterLoad handles the encounter_load tool call.
func (h *Handlers) HandleEncounterLoad(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EncounterLoadRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	out, err := ops.LoadEncounter(ctx, h.db, h.cfg, ops.LoadEncounterInput{EncounterID: input.EncounterID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleEncounterList handles the encounter_list tool call.
func (h *Handlers) HandleEncounterList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EncounterListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	out, err := ops.ListEncounters(ctx, h.db, h.cfg, ops.ListEncountersInput{CampaignID: input.CampaignID})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleBackupCreate handles the backup_create tool call.
func (h *Handlers) HandleBackupCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := ops.CreateBackup(ctx, h.db, h.cfg)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleBackupList handles the backup_list tool call.
func (h *Handlers) HandleBackupList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := ops.ListBackups(h.cfg)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleBackupRestore handles the backup_restore tool call.
func (h *Handlers) HandleBackupRestore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BackupRestoreRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if err := ops.RestoreBackup(ctx, h.db, h.cfg, input.Filename); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"restored": input.Filename})
}

// HandleBackupDelete handles the backup_delete tool call.
func (h *Handlers) HandleBackupDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BackupDeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if err := ops.DeleteBackup(h.cfg, input.Filename); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"deleted": input.Filename})
}

// HandleSettingsGet handles the settings_get tool call.
func (h *Handlers) HandleSettingsGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := ops.GetSettings(ctx, h.db, h.cfg)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// HandleSettingsUpdate handles the settings_update tool call.
func (h *Handlers) HandleSettingsUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SettingsUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	out, err := ops.UpdateSettings(ctx, h.db, h.cfg, ops.UpdateSettingsInput{
		AutoBackup:  input.AutoBackup,
		BackupCount: input.BackupCount,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(out)
}

// errorResult creates an MCP error result from a structured error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if gmErr, ok := err.(*errors.GMError); ok {
		errorObj := map[string]any{
			"code":    gmErr.Code,
			"message": gmErr.Message,
			"status":  gmErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if gmErr.Code != errors.ErrInternal && gmErr.Details != nil {
			errorObj["details"] = gmErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return mcp.NewToolResultError(string(content))
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
