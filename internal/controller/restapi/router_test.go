package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andreyxaxa/Image-Moderation/config"
	"github.com/andreyxaxa/Image-Moderation/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Image-Moderation/internal/entity"
	"github.com/andreyxaxa/Image-Moderation/internal/infrastructure/push"
	"github.com/andreyxaxa/Image-Moderation/internal/metrics"
	"github.com/andreyxaxa/Image-Moderation/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const _testBodyLimit = 1024

type emptyModeration struct{}

func (emptyModeration) Submit(context.Context, []byte, string) (*entity.Image, error) {
	return nil, nil
}

func (emptyModeration) ListApproved(context.Context) ([]*entity.Image, error) { return nil, nil }
func (emptyModeration) ListPending(context.Context) ([]*entity.Image, error)  { return nil, nil }

func (emptyModeration) Approve(context.Context, string) (*entity.Image, error) {
	return nil, nil
}

func (emptyModeration) Delete(context.Context, string) error { return nil }

func newTestRouter(t *testing.T) (*fiber.App, *push.Hub, *metrics.Metrics) {
	t.Helper()

	l := logger.New("disabled")
	m := metrics.New()

	ctx, cancel := context.WithCancel(context.Background())
	hub := push.New(l, push.WithObserver(m))
	go hub.Run(ctx)
	t.Cleanup(cancel)

	cfg := &config.Config{}
	cfg.Metrics.Enabled = true

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             _testBodyLimit,
		ErrorHandler:          ErrorHandler(l),
	})
	NewRouter(app, cfg, emptyModeration{}, hub, m, l)

	return app, hub, m
}

func TestRouter_ServiceEndpoints(t *testing.T) {
	app, _, m := newTestRouter(t)
	m.ObserveOperation("submit", nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "image_moderation_operations_total")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestRouter_ErrorsAreJSON(t *testing.T) {
	app, _, _ := newTestRouter(t)

	tests := []struct {
		name string
		req  *http.Request
		code int
	}{
		{
			name: "body over server limit",
			req: httptest.NewRequest(http.MethodPost, "/api/v1/images/upload",
				bytes.NewReader(make([]byte, 4*_testBodyLimit))),
			code: http.StatusRequestEntityTooLarge,
		},
		{
			name: "unknown route",
			req:  httptest.NewRequest(http.MethodGet, "/api/v1/nothing", nil),
			code: http.StatusNotFound,
		},
		{
			name: "websocket without upgrade",
			req:  httptest.NewRequest(http.MethodGet, "/ws", nil),
			code: http.StatusUpgradeRequired,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := app.Test(tc.req)
			require.NoError(t, err)
			assert.Equal(t, tc.code, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

			var body response.Error
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func listen(t *testing.T, app *fiber.App) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "ws://" + ln.Addr().String() + "/ws"
}

func TestRouter_WebsocketReceivesEvents(t *testing.T) {
	app, hub, _ := newTestRouter(t)
	url := listen(t, app)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.Viewers() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), entity.NewDeletedEvent("abc")))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, "imageDeleted", msg.Type)
	assert.JSONEq(t, `{"id":"abc"}`, string(msg.Data))
}

// Pooled fiber connections are reused by later viewers; a viewer that left
// must not leave writes behind on them.
func TestRouter_WebsocketReconnectCycles(t *testing.T) {
	app, hub, _ := newTestRouter(t)
	url := listen(t, app)

	for i := 0; i < 200; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		require.Eventually(t, func() bool { return hub.Viewers() == 1 }, 2*time.Second, time.Millisecond)

		require.NoError(t, hub.Publish(context.Background(), entity.NewDeletedEvent("cycle")))
		require.NoError(t, conn.Close())

		require.Eventually(t, func() bool { return hub.Viewers() == 0 }, 2*time.Second, time.Millisecond)
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.Eventually(t, func() bool { return hub.Viewers() == 1 }, 2*time.Second, time.Millisecond)

	require.NoError(t, hub.Publish(context.Background(), entity.NewDeletedEvent("last")))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"imageDeleted","data":{"id":"last"}}`, string(raw))
}
