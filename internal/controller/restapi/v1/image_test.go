package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/andreyxaxa/Image-Moderation/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Image-Moderation/internal/entity"
	"github.com/andreyxaxa/Image-Moderation/pkg/logger"
	"github.com/andreyxaxa/Image-Moderation/pkg/types/errs"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModeration struct {
	mu     sync.Mutex
	seq    int
	images map[string]*entity.Image
	err    error
}

func newFakeModeration() *fakeModeration {
	return &fakeModeration{images: make(map[string]*entity.Image)}
}

func (f *fakeModeration) Submit(_ context.Context, data []byte, mimeType string) (*entity.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if len(data) == 0 || mimeType == "" {
		return nil, errs.ErrInvalidInput
	}
	if bytes.HasPrefix(data, []byte("not an image")) {
		return nil, fmt.Errorf("inspect: %w", errs.ErrInvalidInput)
	}

	f.seq++
	img := &entity.Image{
		ID:          fmt.Sprintf("img-%d", f.seq),
		URL:         fmt.Sprintf("http://media/img-%d", f.seq),
		ContentType: mimeType,
		Size:        int64(len(data)),
		CreatedAt:   time.Unix(int64(f.seq), 0).UTC(),
	}
	f.images[img.ID] = img
	cp := *img
	return &cp, nil
}

func (f *fakeModeration) list(approved bool) ([]*entity.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	var out []*entity.Image
	for _, img := range f.images {
		if img.Approved == approved {
			cp := *img
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeModeration) ListApproved(context.Context) ([]*entity.Image, error) {
	return f.list(true)
}

func (f *fakeModeration) ListPending(context.Context) ([]*entity.Image, error) {
	return f.list(false)
}

func (f *fakeModeration) Approve(_ context.Context, id string) (*entity.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	img, ok := f.images[id]
	if !ok {
		return nil, errs.ErrRecordNotFound
	}
	img.Approved = true
	cp := *img
	return &cp, nil
}

func (f *fakeModeration) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	if _, ok := f.images[id]; !ok {
		return errs.ErrRecordNotFound
	}
	delete(f.images, id)
	return nil
}

func newTestApp(mod *fakeModeration) *fiber.App {
	app := fiber.New(fiber.Config{BodyLimit: 16 * 1024 * 1024})
	l := logger.New("disabled")

	NewImageRoutes(app.Group("/api"), mod, l)
	NewWebRoutes(app, l)

	return app
}

func multipartBody(t *testing.T, field, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="photo.jpg"`, field))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return body, w.FormDataContentType()
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, []byte) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, body
}

func upload(t *testing.T, app *fiber.App, contentType string, data []byte) (int, []byte) {
	t.Helper()

	body, ct := multipartBody(t, "image", contentType, data)
	req := httptest.NewRequest(http.MethodPost, "/api/images/upload", body)
	req.Header.Set(fiber.HeaderContentType, ct)

	return do(t, app, req)
}

func listIDs(t *testing.T, app *fiber.App, path string) []string {
	t.Helper()

	code, body := do(t, app, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusOK, code)

	var images []entity.Image
	require.NoError(t, json.Unmarshal(body, &images))

	ids := make([]string, 0, len(images))
	for _, img := range images {
		ids = append(ids, img.ID)
	}
	return ids
}

func TestImageLifecycle(t *testing.T) {
	app := newTestApp(newFakeModeration())

	// submit
	code, body := upload(t, app, "image/jpeg", bytes.Repeat([]byte{0xff}, 10*1024))
	require.Equal(t, http.StatusCreated, code)

	var created response.Image
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotNil(t, created.Image)
	assert.False(t, created.Image.Approved)
	assert.NotEmpty(t, created.Message)
	id := created.Image.ID

	assert.Equal(t, []string{id}, listIDs(t, app, "/api/images/unapproved"))
	assert.Empty(t, listIDs(t, app, "/api/images/approved"))

	// approve
	code, body = do(t, app, httptest.NewRequest(http.MethodPut, "/api/images/"+id+"/approve", nil))
	require.Equal(t, http.StatusOK, code)

	var approved response.Image
	require.NoError(t, json.Unmarshal(body, &approved))
	assert.True(t, approved.Image.Approved)

	// approving twice succeeds
	code, _ = do(t, app, httptest.NewRequest(http.MethodPut, "/api/images/"+id+"/approve", nil))
	assert.Equal(t, http.StatusOK, code)

	assert.Equal(t, []string{id}, listIDs(t, app, "/api/images/approved"))
	assert.Empty(t, listIDs(t, app, "/api/images/unapproved"))

	// delete
	code, body = do(t, app, httptest.NewRequest(http.MethodDelete, "/api/images/"+id, nil))
	require.Equal(t, http.StatusOK, code)

	var deleted response.Message
	require.NoError(t, json.Unmarshal(body, &deleted))
	assert.NotEmpty(t, deleted.Message)

	assert.Empty(t, listIDs(t, app, "/api/images/approved"))
}

func TestUploadImage_Rejects(t *testing.T) {
	mod := newFakeModeration()
	app := newTestApp(mod)

	t.Run("no file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/images/upload", nil)
		code, body := do(t, app, req)

		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, string(body), `"error"`)
	})

	t.Run("empty file", func(t *testing.T) {
		code, body := upload(t, app, "image/png", nil)

		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, string(body), `"error"`)
	})

	t.Run("wrong field", func(t *testing.T) {
		body, ct := multipartBody(t, "file", "image/png", []byte{1, 2, 3})
		req := httptest.NewRequest(http.MethodPost, "/api/images/upload", body)
		req.Header.Set(fiber.HeaderContentType, ct)

		code, _ := do(t, app, req)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("declared non-image", func(t *testing.T) {
		code, body := upload(t, app, "application/pdf", []byte("%PDF-1.4"))

		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, string(body), `"error"`)
	})

	t.Run("content is not an image", func(t *testing.T) {
		code, body := upload(t, app, "image/png", []byte("not an image at all"))

		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, string(body), `"error"`)
	})

	t.Run("too large", func(t *testing.T) {
		code, _ := upload(t, app, "image/png", make([]byte, 10*1024*1024+1))

		assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	})

	assert.Empty(t, listIDs(t, app, "/api/images/unapproved"))
}

func TestUnknownID(t *testing.T) {
	app := newTestApp(newFakeModeration())

	code, body := do(t, app, httptest.NewRequest(http.MethodPut, "/api/images/missing/approve", nil))
	assert.Equal(t, http.StatusNotFound, code)
	assert.JSONEq(t, `{"error":"image not found"}`, string(body))

	code, _ = do(t, app, httptest.NewRequest(http.MethodDelete, "/api/images/missing", nil))
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFailuresAre500(t *testing.T) {
	mod := newFakeModeration()
	app := newTestApp(mod)

	code, _ := upload(t, app, "image/png", []byte{1})
	require.Equal(t, http.StatusCreated, code)

	mod.err = fmt.Errorf("%w: s3 down", errs.ErrStorageFailure)
	code, _ = upload(t, app, "image/png", []byte{1})
	assert.Equal(t, http.StatusInternalServerError, code)

	code, _ = do(t, app, httptest.NewRequest(http.MethodDelete, "/api/images/img-1", nil))
	assert.Equal(t, http.StatusInternalServerError, code)

	mod.err = fmt.Errorf("%w: pg down", errs.ErrPersistenceFailure)
	code, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/images/approved", nil))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, string(body), `"error"`)

	code, _ = do(t, app, httptest.NewRequest(http.MethodPut, "/api/images/img-1/approve", nil))
	assert.Equal(t, http.StatusInternalServerError, code)
}

func TestListEmptyIsArray(t *testing.T) {
	app := newTestApp(newFakeModeration())

	code, body := do(t, app, httptest.NewRequest(http.MethodGet, "/api/images/approved", nil))
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "[]", string(body))
}

func TestWebPages(t *testing.T) {
	app := newTestApp(newFakeModeration())

	for _, path := range []string{"/", "/display", "/admin"} {
		code, body := do(t, app, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equal(t, http.StatusOK, code, path)
		assert.Contains(t, string(body), "<html", path)
	}
}
