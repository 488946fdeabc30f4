package persistent

import (
	"context"
	"testing"
	"time"

	"github.com/andreyxaxa/Image-Moderation/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// The client connects lazily; nothing listens on the port, so any case that
// reached the server would fail with a network error instead of NotFound.
func newOfflineMongoRepo(t *testing.T) *ImageMongoRepo {
	t.Helper()

	client, err := mongo.Connect(options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(100 * time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	return NewImageMongoRepo(client.Database("image_moderation_test"))
}

func TestImageMongoRepo_MalformedIDIsNotFound(t *testing.T) {
	repo := newOfflineMongoRepo(t)
	ctx := context.Background()

	tests := []struct {
		name string
		id   string
	}{
		{name: "empty", id: ""},
		{name: "word", id: "abc"},
		{name: "uuid", id: "3f2504e0-4f89-11d3-9a0c-0305e82c3301"},
		{name: "short hex", id: "65f1c2a9e4b0a1b2c3d4e5f"},
		{name: "not hex", id: "zzzzzzzzzzzzzzzzzzzzzzzz"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := repo.GetByID(ctx, tc.id)
			assert.ErrorIs(t, err, errs.ErrRecordNotFound)

			_, err = repo.SetApproved(ctx, tc.id)
			assert.ErrorIs(t, err, errs.ErrRecordNotFound)

			err = repo.Delete(ctx, tc.id)
			assert.ErrorIs(t, err, errs.ErrRecordNotFound)
		})
	}
}

func TestImageDocument_ToEntity(t *testing.T) {
	oid := bson.NewObjectID()
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	doc := imageDocument{
		ID:          oid,
		URL:         "http://localhost:9000/images/a.png",
		StorageKey:  "carousel-images/a.png",
		ContentType: "image/png",
		Size:        42,
		Width:       3,
		Height:      2,
		CreatedAt:   created,
	}

	image := doc.toEntity()
	assert.Equal(t, oid.Hex(), image.ID)
	assert.Equal(t, "carousel-images/a.png", image.StorageKey)
	assert.False(t, image.Approved)
	assert.Equal(t, int64(42), image.Size)
	assert.Equal(t, created, image.CreatedAt)

	// the hex id round-trips into the filter the repo builds
	parsed, err := bson.ObjectIDFromHex(image.ID)
	require.NoError(t, err)
	assert.Equal(t, oid, parsed)
}
