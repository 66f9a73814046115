package models

import (
	"bytes"
	"encoding/json"
	"time"

	"taskboard-be/internal/entities"
)

// Timestamp binds from JSON (string or Unix milliseconds) and from form values.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	parsed, err := entities.ParseTime(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// UnmarshalParam implements gin's binding.BindUnmarshaler for form bodies.
func (t *Timestamp) UnmarshalParam(param string) error {
	parsed, err := entities.ParseTime(param)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Value returns nil for an absent timestamp.
func (t *Timestamp) Value() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}
