package moderation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/andreyxaxa/Image-Moderation/internal/dto"
	"github.com/andreyxaxa/Image-Moderation/internal/entity"
	"github.com/andreyxaxa/Image-Moderation/pkg/types/errs"
)

var errBackend = errors.New("backend unavailable")

type fakeMedia struct {
	mu        sync.Mutex
	objects   map[string][]byte
	failStore bool
	failDel   bool
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{objects: make(map[string][]byte)}
}

func (m *fakeMedia) Store(_ context.Context, key string, data []byte, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failStore {
		return "", errBackend
	}
	m.objects[key] = data

	return "https://media.test/" + key, nil
}

func (m *fakeMedia) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failDel {
		return errBackend
	}
	delete(m.objects, key)

	return nil
}

func (m *fakeMedia) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.objects[key]
	return ok
}

func (m *fakeMedia) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.objects)
}

type fakeRecords struct {
	mu         sync.Mutex
	seq        int
	images     map[string]entity.Image
	failCreate bool
	failList   bool
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{images: make(map[string]entity.Image)}
}

func (r *fakeRecords) Create(_ context.Context, image *entity.Image) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failCreate {
		return errBackend
	}
	r.seq++
	image.ID = fmt.Sprintf("img-%d", r.seq)
	r.images[image.ID] = *image

	return nil
}

func (r *fakeRecords) GetByID(_ context.Context, id string) (*entity.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	image, ok := r.images[id]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}

	return &image, nil
}

func (r *fakeRecords) SetApproved(_ context.Context, id string) (*entity.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	image, ok := r.images[id]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	image.Approved = true
	r.images[id] = image

	return &image, nil
}

func (r *fakeRecords) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.images[id]; !ok {
		return errs.ErrRecordNotFound
	}
	delete(r.images, id)

	return nil
}

func (r *fakeRecords) ListByApproved(_ context.Context, approved bool) ([]*entity.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failList {
		return nil, errBackend
	}

	images := make([]*entity.Image, 0)
	for _, image := range r.images {
		if image.Approved == approved {
			image := image
			images = append(images, &image)
		}
	}
	sort.Slice(images, func(i, j int) bool {
		return images[i].CreatedAt.After(images[j].CreatedAt)
	})

	return images, nil
}

type fakeInspector struct {
	reject bool
}

func (i fakeInspector) Inspect(_ context.Context, _ []byte) (dto.ImageInfo, error) {
	if i.reject {
		return dto.ImageInfo{}, fmt.Errorf("decode: %w", errs.ErrInvalidInput)
	}

	return dto.ImageInfo{ContentType: "image/png", Extension: ".png", Width: 4, Height: 3}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.Event
	fail   bool

	// set by trackingTransactor while a transaction is open
	inTx        *atomic.Bool
	publishedTx []bool
}

func (p *recordingPublisher) Publish(_ context.Context, event entity.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.fail {
		return errBackend
	}
	p.events = append(p.events, event)
	if p.inTx != nil {
		p.publishedTx = append(p.publishedTx, p.inTx.Load())
	}

	return nil
}

// outboxPublisher records events like the outbox, inside the transaction.
type outboxPublisher struct {
	*recordingPublisher
}

func (outboxPublisher) Transactional() {}

func (p *recordingPublisher) kinds() []entity.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()

	kinds := make([]entity.EventKind, 0, len(p.events))
	for _, e := range p.events {
		kinds = append(kinds, e.Kind)
	}

	return kinds
}

type countingObserver struct {
	mu     sync.Mutex
	failed map[string]int
	ok     map[string]int
}

func newCountingObserver() *countingObserver {
	return &countingObserver{failed: make(map[string]int), ok: make(map[string]int)}
}

func (o *countingObserver) ObserveOperation(op string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		o.failed[op]++
		return
	}
	o.ok[op]++
}
