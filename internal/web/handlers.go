package web

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/jthurman/gmtrack/internal/config"
	"github.com/jthurman/gmtrack/internal/db"
	"github.com/jthurman/gmtrack/internal/errors"
	"github.com/jthurman/gmtrack/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleDM handles GET /dm — the game master console.
func (h *Handlers) HandleDM(w http.ResponseWriter, r *http.Request) {
	campaignID := r.URL.Query().Get("campaign_id")

	detail, err := ops.GetCampaign(r.Context(), h.db, h.cfg, ops.GetCampaignInput{
		CampaignID: campaignID,
		LogLimit:   parseIntParam(r, "log_limit", 20),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	all, err := ops.ListCampaigns(r.Context(), h.db, h.cfg)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	activeID := ""
	for _, c := range detail.Characters {
		if c.ActiveTurn {
			activeID = c.ID
			break
		}
	}

	lastActivity, err := db.LatestLogTimestamp(r.Context(), h.db, detail.Campaign.ID)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "dm", DMPageData{
		PageData: PageData{
			Title:   detail.Campaign.Name,
			Version: h.renderer.version,
			Nav:     "dm",
		},
		Campaign:     detail.Campaign,
		Campaigns:    all.Campaigns,
		Characters:   detail.Characters,
		Logs:         logViews(detail.LogEntries),
		Encounters:   detail.Encounters,
		ActiveID:     activeID,
		LastActivity: lastActivity,
		Notice:       r.URL.Query().Get("notice"),
	})
}

// HandlePublic handles GET /public — the player-facing display. Only player
// characters are shown; the page refreshes itself to pick up turn changes.
func (h *Handlers) HandlePublic(w http.ResponseWriter, r *http.Request) {
	detail, err := ops.PublicCampaign(r.Context(), h.db, h.cfg)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "public", PublicPageData{
		PageData: PageData{
			Title:   detail.Campaign.Name,
			Version: h.renderer.version,
			Nav:     "public",
		},
		Campaign:   detail.Campaign,
		Characters: detail.Characters,
		Logs:       logViews(detail.LogEntries),
	})
}

// HandleBackups handles GET /backups — the backup manager.
func (h *Handlers) HandleBackups(w http.ResponseWriter, r *http.Request) {
	list, err := ops.ListBackups(h.cfg)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	settings, err := ops.GetSettings(r.Context(), h.db, h.cfg)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, "backups", BackupsPageData{
		PageData: PageData{
			Title:   "Backups",
			Version: h.renderer.version,
			Nav:     "backups",
		},
		Filenames: list.Filenames,
		Settings:  settings.Settings,
		Notice:    r.URL.Query().Get("notice"),
	})
}

// HandleAdvance handles POST /advance — move the turn to the next character.
// The form carries the client's view of the current active character so that
// two overlapping requests advance the turn once, not twice.
func (h *Handlers) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	out, err := ops.Advance(r.Context(), h.db, h.cfg, ops.AdvanceInput{
		CampaignID:       r.FormValue("campaign_id"),
		ExpectedActiveID: ptrString(r.FormValue("expected_active_id")),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	redirectDM(w, r, r.FormValue("campaign_id"))
}

// HandleUpdateHP handles POST /hp — apply a hit point delta.
func (h *Handlers) HandleUpdateHP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	delta, err := strconv.Atoi(r.FormValue("delta"))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("delta must be an integer"))
		return
	}

	out, err := ops.UpdateHP(r.Context(), h.db, h.cfg, ops.UpdateHPInput{
		CharacterID: r.FormValue("character_id"),
		Delta:       delta,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	redirectDM(w, r, r.FormValue("campaign_id"))
}

// HandleSetInitiative handles POST /initiative — record an initiative roll.
func (h *Handlers) HandleSetInitiative(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	roll, err := strconv.Atoi(r.FormValue("roll"))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("roll must be an integer"))
		return
	}

	out, err := ops.SetInitiative(r.Context(), h.db, h.cfg, ops.SetInitiativeInput{
		CharacterID: r.FormValue("character_id"),
		Roll:        roll,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	redirectDM(w, r, r.FormValue("campaign_id"))
}

// HandleAppendLog handles POST /log — append a session log entry.
func (h *Handlers) HandleAppendLog(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	out, err := ops.AppendLog(r.Context(), h.db, h.cfg, ops.AppendLogInput{
		CampaignID: r.FormValue("campaign_id"),
		Content:    r.FormValue("content"),
		Type:       r.FormValue("type"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	redirectDM(w, r, r.FormValue("campaign_id"))
}

// HandleActivateCampaign handles POST /campaigns/activate.
func (h *Handlers) HandleActivateCampaign(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	out, err := ops.ActivateCampaign(r.Context(), h.db, h.cfg, ops.ActivateCampaignInput{
		CampaignID: r.FormValue("campaign_id"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	http.Redirect(w, r, "/dm", http.StatusFound)
}

// HandleBackupCreate handles POST /backups/create.
func (h *Handlers) HandleBackupCreate(w http.ResponseWriter, r *http.Request) {
	out, err := ops.CreateBackup(r.Context(), h.db, h.cfg)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	http.Redirect(w, r, "/backups?notice=created+"+out.Filename, http.StatusFound)
}

// HandleBackupRestore handles POST /backups/restore — replace the store with
// a snapshot's contents.
func (h *Handlers) HandleBackupRestore(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	filename := r.FormValue("filename")
	if err := ops.RestoreBackup(r.Context(), h.db, h.cfg, filename); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"restored": filename})
		return
	}
	http.Redirect(w, r, "/backups?notice=restored+"+filename, http.StatusFound)
}

// HandleBackupDelete handles POST /backups/delete.
func (h *Handlers) HandleBackupDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	filename := r.FormValue("filename")
	if err := ops.DeleteBackup(h.cfg, filename); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{"deleted": filename})
		return
	}
	http.Redirect(w, r, "/backups?notice=deleted+"+filename, http.StatusFound)
}

// HandleSettingsUpdate handles POST /settings — toggle auto-backup.
func (h *Handlers) HandleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	input := ops.UpdateSettingsInput{}
	// The form pairs a hidden "false" with the checkbox, so the last value wins
	if vals := r.PostForm["auto_backup"]; len(vals) > 0 {
		v := vals[len(vals)-1]
		b := v == "true" || v == "1" || v == "on"
		input.AutoBackup = &b
	}
	if v := r.FormValue("backup_count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("backup_count must be an integer"))
			return
		}
		input.BackupCount = &n
	}

	out, err := ops.UpdateSettings(r.Context(), h.db, h.cfg, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}
	http.Redirect(w, r, "/backups", http.StatusFound)
}

// redirectDM sends the browser back to the console, keeping the campaign
// selection when one was given.
func redirectDM(w http.ResponseWriter, r *http.Request, campaignID string) {
	target := "/dm"
	if campaignID != "" {
		target += "?campaign_id=" + campaignID
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// wantsJSON reports whether the client asked for a JSON response.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// ptrString returns a pointer to s if non-empty, nil otherwise.
func ptrString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
