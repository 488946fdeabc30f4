package kafka

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/andreyxaxa/Image-Moderation/internal/entity"
	"github.com/andreyxaxa/Image-Moderation/pkg/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	msgs chan kafka.Message

	mu        sync.Mutex
	committed []int64
	closed    bool
}

func newFakeReader(values ...[]byte) *fakeReader {
	r := &fakeReader{msgs: make(chan kafka.Message, len(values))}
	for i, v := range values {
		r.msgs <- kafka.Message{Offset: int64(i), Value: v}
	}
	return r
}

func (r *fakeReader) ReadEvent(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case m := <-r.msgs:
		return m, nil
	}
}

func (r *fakeReader) CommitEvent(_ context.Context, m kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.committed = append(r.committed, m.Offset)
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]int64(nil), r.committed...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e entity.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) kinds() []entity.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()

	kinds := make([]entity.EventKind, 0, len(p.events))
	for _, e := range p.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()

	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestKafkaController_RelaysInOrder(t *testing.T) {
	img := &entity.Image{ID: "a1", URL: "http://media/a1.png"}

	reader := newFakeReader(
		mustJSON(t, entity.NewSubmittedEvent(img)),
		[]byte("not json"),
		mustJSON(t, entity.Event{Kind: "bogus", ImageID: "a1"}),
		mustJSON(t, entity.NewApprovedEvent(img)),
		mustJSON(t, entity.NewDeletedEvent("a1")),
	)
	pub := &recordingPublisher{}

	c := New(reader, pub, logger.New("disabled"), time.Second, time.Second)
	require.NoError(t, c.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return len(reader.commits()) == 5
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t,
		[]entity.EventKind{entity.EventSubmitted, entity.EventApproved, entity.EventDeleted},
		pub.kinds())
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, reader.commits())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, c.Shutdown(ctx))
	assert.True(t, reader.closed)
}

func TestDecodeEvent(t *testing.T) {
	event, err := decodeEvent(mustJSON(t, entity.NewDeletedEvent("x")))
	require.NoError(t, err)
	assert.Equal(t, entity.EventDeleted, event.Kind)
	assert.Equal(t, entity.DeletedPayload{ID: "x"}, event.Data())

	_, err = decodeEvent(mustJSON(t, entity.Event{Kind: entity.EventApproved, ImageID: "x"}))
	assert.Error(t, err)
}
