package game

// Character types. Type is free-form in the schema; these are the values the
// rest of the system treats specially.
const (
	TypePlayer = "PLAYER"
	TypeNPC    = "NPC"
)

// Log entry categories.
const (
	LogStory  = "Story"
	LogCombat = "Combat"
	LogRoll   = "Roll"
)

// Campaign is a game session that owns characters, logs, and encounters.
// At most one campaign is conventionally active at a time; the activation
// operation enforces this, not the schema.
type Campaign struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
	CreatedAt Time   `json:"createdAt"`
}

// Character is a participant in a campaign.
//
// SourceID is a same-table self-reference to the library character this one
// was cloned from. It is deliberately not a foreign key: a character with a
// non-nil SourceID is a clone, one referenced by clones is a template, and
// neither cloning nor template sync cascades.
type Character struct {
	ID             string     `json:"id"`
	CampaignID     string     `json:"campaignId"`
	Name           string     `json:"name"`
	Type           string     `json:"type"`
	Race           *string    `json:"race"`
	Class          *string    `json:"class"`
	Level          int        `json:"level"`
	HP             int        `json:"hp"`
	MaxHP          int        `json:"maxHp"`
	ArmorClass     int        `json:"armorClass"`
	Speed          int        `json:"speed"`
	Initiative     int        `json:"initiative"`     // static bonus
	InitiativeRoll int        `json:"initiativeRoll"` // combat-scoped roll
	ActiveTurn     bool       `json:"activeTurn"`
	Conditions     Conditions `json:"conditions"`
	Inventory      Inventory  `json:"inventory"`
	Attributes     Attributes `json:"attributes"`
	ImageURL       *string    `json:"imageUrl"`
	SourceID       *string    `json:"sourceId"`
	CreatedAt      Time       `json:"createdAt"`
}

// LogEntry is an append-only narrative record. Entries are never updated or
// deleted individually.
type LogEntry struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaignId"`
	Content    string `json:"content"`
	Type       string `json:"type"`
	Timestamp  Time   `json:"timestamp"`
}

// Encounter statuses.
const (
	EncounterPlanned  = "PLANNED"
	EncounterActive   = "ACTIVE"
	EncounterFinished = "FINISHED"
)

// Encounter is a saved initiative snapshot, independent of live character rows.
type Encounter struct {
	ID           string       `json:"id"`
	CampaignID   string       `json:"campaignId"`
	Name         string       `json:"name"`
	Status       string       `json:"status"`
	Participants Participants `json:"participants"`
	CreatedAt    Time         `json:"createdAt"`
}

// Settings is the singleton application settings record.
type Settings struct {
	AutoBackup  bool `json:"autoBackup"`
	BackupCount int  `json:"backupCount"`
}

// DefaultBackupCount is the retention count used when no settings row exists.
const DefaultBackupCount = 5
