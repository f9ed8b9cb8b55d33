package game

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
)

// The encoded columns (conditions, inventory, attributes, encounter
// participants) are stored as JSON text. Scanning is lenient: hand-edited or
// legacy rows with the wrong shape degrade to an empty value or are filtered
// down to the salvageable entries instead of failing the whole row.

// Conditions is an ordered set of condition names, e.g. ["Prone", "Stunned"].
type Conditions []string

// Inventory is an ordered list of item names.
type Inventory []string

// Attributes maps stat names to numeric values, e.g. {"str": 16, "dex": 12}.
type Attributes map[string]float64

// EncounterParticipant is one entry in a saved initiative order.
type EncounterParticipant struct {
	CharacterID string `json:"characterId"`
	Initiative  int    `json:"initiative"`
	CurrentHP   *int   `json:"currentHp,omitempty"`
}

// Participants is the encoded participant list of an encounter.
type Participants []EncounterParticipant

// ParseConditions decodes a conditions column, keeping only string entries.
func ParseConditions(s string) Conditions {
	if s == "" {
		return nil
	}
	var raw []any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		log.Printf("conditions: discarding unparseable value: %v", err)
		return nil
	}
	out := make(Conditions, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseInventory decodes an inventory column, keeping only string entries.
func ParseInventory(s string) Inventory {
	return Inventory(ParseConditions(s))
}

// ParseAttributes decodes an attributes column. Numeric strings are coerced
// to numbers; everything else is dropped.
func ParseAttributes(s string) Attributes {
	if s == "" {
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		log.Printf("attributes: discarding unparseable value: %v", err)
		return nil
	}
	out := make(Attributes, len(raw))
	for k, v := range raw {
		switch n := v.(type) {
		case float64:
			out[k] = n
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				out[k] = f
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ParseParticipants decodes an encounter participants column, keeping only
// entries with a characterId string and a numeric initiative.
func ParseParticipants(s string) Participants {
	if s == "" {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		log.Printf("participants: discarding unparseable value: %v", err)
		return nil
	}
	out := make(Participants, 0, len(raw))
	for _, item := range raw {
		var p EncounterParticipant
		if err := json.Unmarshal(item, &p); err != nil {
			continue
		}
		if p.CharacterID == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// encodeJSON marshals v to a TEXT column value, NULL when empty.
func encodeJSON(v any, empty bool) (driver.Value, error) {
	if empty {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// scanText normalizes a TEXT column into a string ("" for NULL).
func scanText(src any) (string, error) {
	switch v := src.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", fmt.Errorf("cannot scan %T as encoded text", src)
	}
}

// Value implements driver.Valuer.
func (c Conditions) Value() (driver.Value, error) { return encodeJSON(c, len(c) == 0) }

// Scan implements sql.Scanner.
func (c *Conditions) Scan(src any) error {
	s, err := scanText(src)
	if err != nil {
		return err
	}
	*c = ParseConditions(s)
	return nil
}

// Value implements driver.Valuer.
func (i Inventory) Value() (driver.Value, error) { return encodeJSON(i, len(i) == 0) }

// Scan implements sql.Scanner.
func (i *Inventory) Scan(src any) error {
	s, err := scanText(src)
	if err != nil {
		return err
	}
	*i = ParseInventory(s)
	return nil
}

// Value implements driver.Valuer.
func (a Attributes) Value() (driver.Value, error) { return encodeJSON(a, len(a) == 0) }

// Scan implements sql.Scanner.
func (a *Attributes) Scan(src any) error {
	s, err := scanText(src)
	if err != nil {
		return err
	}
	*a = ParseAttributes(s)
	return nil
}

// Value implements driver.Valuer.
func (p Participants) Value() (driver.Value, error) { return encodeJSON(p, len(p) == 0) }

// Scan implements sql.Scanner.
func (p *Participants) Scan(src any) error {
	s, err := scanText(src)
	if err != nil {
		return err
	}
	*p = ParseParticipants(s)
	return nil
}
