package game

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// isoMillis is the wire format for timestamps: ISO-8601 UTC with millisecond
// precision, e.g. "2026-08-29T14:03:07.512Z".
const isoMillis = "2006-01-02T15:04:05.000Z"

// Time is a UTC timestamp with millisecond precision.
//
// It serializes to JSON as an ISO-8601 string and round-trips through the
// database as unix milliseconds, so backup artifacts and table rows agree on
// the exact instant. Unmarshal accepts both fractional and whole-second
// forms.
type Time struct {
	time.Time
}

// Now returns the current time truncated to millisecond precision.
func Now() Time {
	return Time{time.Now().UTC().Truncate(time.Millisecond)}
}

// FromMillis converts a unix-millisecond timestamp.
func FromMillis(ms int64) Time {
	return Time{time.UnixMilli(ms).UTC()}
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(isoMillis))
}

// UnmarshalJSON implements json.Unmarshaler. It recognizes ISO-8601 strings
// with or without fractional seconds and reconstructs the timestamp, which is
// what lets a restore rebuild date fields from their serialized form.
func (t *Time) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed.UTC()
	return nil
}

// Value implements driver.Valuer, storing unix milliseconds.
func (t Time) Value() (driver.Value, error) {
	return t.UnixMilli(), nil
}

// Scan implements sql.Scanner.
func (t *Time) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case int64:
		t.Time = time.UnixMilli(v).UTC()
		return nil
	default:
		return fmt.Errorf("cannot scan %T into game.Time", src)
	}
}
