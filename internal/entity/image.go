package entity

import "time"

type Image struct {
	ID string `json:"id"`

	URL        string `json:"url"`
	StorageKey string `json:"storage_key"`

	Approved bool `json:"approved"`

	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`

	CreatedAt time.Time `json:"created_at"`
}

// ModerationState is the approval classification of a stored image.
type ModerationState string

const (
	StatePending  ModerationState = "pending"
	StateApproved ModerationState = "approved"
)

func (i *Image) State() ModerationState {
	if i.Approved {
		return StateApproved
	}
	return StatePending
}
