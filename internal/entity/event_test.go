package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventKind_Topic(t *testing.T) {
	assert.Equal(t, "imageUploaded", EventSubmitted.Topic())
	assert.Equal(t, "imageApproved", EventApproved.Topic())
	assert.Equal(t, "imageDeleted", EventDeleted.Topic())
}

func TestEvent_DataForDeletedIsOnlyID(t *testing.T) {
	b, err := json.Marshal(NewDeletedEvent("abc").Data())
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":"abc"}`, string(b))
}

func TestEvent_DataCarriesRecord(t *testing.T) {
	img := &Image{ID: "abc", URL: "http://media/abc.png", CreatedAt: time.Unix(0, 0).UTC()}

	ev := NewApprovedEvent(img)

	assert.Same(t, img, ev.Data())
	assert.NoError(t, ev.Validate())
}

func TestEvent_Validate(t *testing.T) {
	assert.Error(t, Event{Kind: "renamed", ImageID: "x"}.Validate())
	assert.Error(t, Event{Kind: EventSubmitted, ImageID: "x"}.Validate())
	assert.Error(t, Event{Kind: EventDeleted}.Validate())
	assert.NoError(t, NewDeletedEvent("x").Validate())
}

func TestImage_State(t *testing.T) {
	img := &Image{}
	assert.Equal(t, StatePending, img.State())

	img.Approved = true
	assert.Equal(t, StateApproved, img.State())
}
