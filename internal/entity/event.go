package entity

import "fmt"

type EventKind string

const (
	EventSubmitted EventKind = "submitted"
	EventApproved  EventKind = "approved"
	EventDeleted   EventKind = "deleted"
)

// Topic is the name viewers subscribe to on the push channel.
func (k EventKind) Topic() string {
	switch k {
	case EventSubmitted:
		return "imageUploaded"
	case EventApproved:
		return "imageApproved"
	case EventDeleted:
		return "imageDeleted"
	default:
		return string(k)
	}
}

func (k EventKind) Valid() bool {
	switch k {
	case EventSubmitted, EventApproved, EventDeleted:
		return true
	default:
		return false
	}
}

// Event is a state transition of one image.
// Image is nil for deleted events.
type Event struct {
	Kind    EventKind `json:"kind"`
	ImageID string    `json:"image_id"`
	Image   *Image    `json:"image,omitempty"`
}

type DeletedPayload struct {
	ID string `json:"id"`
}

func NewSubmittedEvent(image *Image) Event {
	return Event{Kind: EventSubmitted, ImageID: image.ID, Image: image}
}

func NewApprovedEvent(image *Image) Event {
	return Event{Kind: EventApproved, ImageID: image.ID, Image: image}
}

func NewDeletedEvent(id string) Event {
	return Event{Kind: EventDeleted, ImageID: id}
}

// Data is the payload pushed to viewers: the full record, or {id} for deletions.
func (e Event) Data() any {
	if e.Kind == EventDeleted || e.Image == nil {
		return DeletedPayload{ID: e.ImageID}
	}
	return e.Image
}

func (e Event) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.ImageID == "" {
		return fmt.Errorf("event %s without image id", e.Kind)
	}
	if e.Kind != EventDeleted && e.Image == nil {
		return fmt.Errorf("event %s without image", e.Kind)
	}
	return nil
}
