package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/jthurman/gmtrack/internal/errors"
	"github.com/jthurman/gmtrack/internal/game"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "dm", "public", "backups"
}

// LogView pairs a log entry with its markdown-rendered content.
type LogView struct {
	Entry    *game.LogEntry
	Rendered template.HTML
}

// DMPageData is the template data for the game master console.
type DMPageData struct {
	PageData
	Campaign   *game.Campaign
	Campaigns  []*game.Campaign
	Characters []*game.Character
	Logs       []LogView
	Encounters []*game.Encounter
	ActiveID   string
	// LastActivity is the newest log timestamp; zero when the campaign has
	// no log entries yet.
	LastActivity game.Time
	Notice       string
}

// PublicPageData is the template data for the player-facing display.
type PublicPageData struct {
	PageData
	Campaign   *game.Campaign
	Characters []*game.Character
	Logs       []LogView
}

// BackupsPageData is the template data for the backup manager.
type BackupsPageData struct {
	PageData
	Filenames []string
	Settings  *game.Settings
	Notice    string
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string) *Renderer {
	funcMap := template.FuncMap{
		"formatTime": formatTime,
		"deref":      derefString,
		"hasValue":   hasString,
		"hpClass":    hpClass,
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"dm":      "dm.html",
		"public":  "public.html",
		"backups": "backups.html",
		"error":   "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
	}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, name string, data any) {
	r.renderPageStatus(w, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		log.Printf("template %q not found", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Printf("template execution error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var gmErr *errors.GMError
	if !stderrors.As(err, &gmErr) {
		gmErr = errors.NewInternal(err)
	}

	status := gmErr.Status
	message := gmErr.Message

	// JSON request
	if strings.Contains(req.Header.Get("Accept"), "application/json") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    string(gmErr.Code),
				"message": message,
				"status":  status,
			},
		})
		return
	}

	// Full error page
	r.renderPageStatus(w, status, "error", ErrorPageData{
		PageData: PageData{
			Title:   fmt.Sprintf("Error %d", status),
			Version: r.version,
		},
		StatusCode: status,
		Message:    message,
	})
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts markdown text to HTML using goldmark.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// logViews renders the markdown content of each log entry.
func logViews(entries []*game.LogEntry) []LogView {
	views := make([]LogView, 0, len(entries))
	for _, e := range entries {
		views = append(views, LogView{Entry: e, Rendered: renderMarkdown(e.Content)})
	}
	return views
}

// formatTime formats a timestamp as "2006-01-02 15:04" UTC.
func formatTime(t game.Time) string {
	return t.UTC().Format("2006-01-02 15:04")
}

// hpClass buckets a hp/max ratio into a CSS class for the hp bar.
func hpClass(hp, maxHP int) string {
	if maxHP <= 0 || hp <= 0 {
		return "hp-down"
	}
	ratio := float64(hp) / float64(maxHP)
	switch {
	case ratio <= 0.25:
		return "hp-critical"
	case ratio <= 0.5:
		return "hp-bloodied"
	default:
		return "hp-healthy"
	}
}

// derefString dereferences a string pointer, returning "" if nil.
func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// hasString checks if a string pointer holds a non-empty value.
func hasString(s *string) bool {
	return s != nil && *s != ""
}
