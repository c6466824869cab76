package models

import "encoding/json"

// Classification statuses written by the hard path. Callers may supply their
// own values; these are only the defaults.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Classification is the audit row for one classification attempt. UserID is
// nil for anonymous submissions. Result holds the opaque model output; it is
// stored serialized and rehydrated on read.
type Classification struct {
	ID        string          `json:"id"`
	UserID    *string         `json:"userId"`
	ImagePath *string         `json:"imagePath"`
	Result    json.RawMessage `json:"result"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"createdAt"`
}
