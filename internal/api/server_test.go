package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LandynMoreno/zolo/internal/api"
	"github.com/LandynMoreno/zolo/internal/led"
	"github.com/LandynMoreno/zolo/internal/led/ledtest"
	"github.com/LandynMoreno/zolo/internal/neopixel"
	"github.com/LandynMoreno/zolo/internal/surface"
)

type rig struct {
	ring    *neopixel.Ring
	rec     *ledtest.Recorder
	hub     *api.Hub
	handler http.Handler
}

func newRig(t *testing.T) *rig {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := ledtest.NewRecorder(12)
	ring, err := neopixel.New(neopixel.Options{
		Pin:        18,
		Count:      12,
		Brightness: 1,
		Backends:   []led.Backend{&ledtest.Backend{Rec: rec}},
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = ring.Cleanup() })

	hub := api.NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	srv := api.NewServer(ring, hub, "auto", zerolog.Nop())
	return &rig{ring: ring, rec: rec, hub: hub, handler: srv.Handler()}
}

func (r *rig) do(t *testing.T, method, path string, body any) (int, api.ApiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.handler.ServeHTTP(w, req)

	var resp api.ApiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func TestStatus_BeforeInit(t *testing.T) {
	r := newRig(t)
	code, resp := r.do(t, http.MethodGet, "/led/status", nil)
	assert.Equal(t, http.StatusOK, code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, false, data["initialized"])
	assert.Equal(t, "idle", data["state"])
}

func TestControl_SetLEDInitializesLazily(t *testing.T) {
	r := newRig(t)
	code, resp := r.do(t, http.MethodPost, "/led/control", map[string]any{
		"action": "set_led", "led_index": 3, "color": "#FF0000",
	})
	require.Equal(t, http.StatusOK, code, resp.Error)
	assert.Equal(t, "success", resp.Status)
	assert.True(t, r.ring.Initialized())
	assert.Equal(t, neopixel.Red, r.ring.Frame()[3])

	code, resp = r.do(t, http.MethodPost, "/led/control", map[string]any{
		"action": "set_led", "led_index": 15, "color": "#00FF00",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, neopixel.Red, r.ring.Frame()[3])
}

func TestControl_Validation(t *testing.T) {
	r := newRig(t)
	cases := []map[string]any{
		{"action": "explode"},
		{"action": "set_led", "color": "#FF0000"},
		{"action": "set_led", "led_index": 1, "color": "not-a-color"},
		{"action": "set_all"},
		{"action": "set_brightness"},
		{"action": "set_brightness", "brightness": 150},
	}
	for _, body := range cases {
		code, _ := r.do(t, http.MethodPost, "/led/control", body)
		assert.Equal(t, http.StatusBadRequest, code, "%v", body)
	}
}

func TestControl_BrightnessAndClear(t *testing.T) {
	r := newRig(t)
	code, _ := r.do(t, http.MethodPost, "/led/control", map[string]any{"action": "set_all", "color": "white"})
	require.Equal(t, http.StatusOK, code)

	code, _ = r.do(t, http.MethodPost, "/led/control", map[string]any{"action": "set_brightness", "brightness": 50})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0.5, r.ring.Status().Brightness)
	assert.Equal(t, byte(128), r.rec.Last()[0])

	code, _ = r.do(t, http.MethodPost, "/led/control", map[string]any{"action": "clear_all"})
	require.Equal(t, http.StatusOK, code)
	for _, c := range r.ring.Frame() {
		assert.Equal(t, surface.Black, c)
	}
}

func TestControl_HardwareFailure(t *testing.T) {
	r := newRig(t)
	_, err := r.ring.Initialize()
	require.NoError(t, err)
	r.rec.FailAlways(true)

	code, resp := r.do(t, http.MethodPost, "/led/control", map[string]any{"action": "set_all", "color": "red"})
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Contains(t, resp.Error, "injected")
}

func TestPattern_StartAndStop(t *testing.T) {
	r := newRig(t)
	code, resp := r.do(t, http.MethodPost, "/led/pattern", map[string]any{
		"action": "start", "pattern": "spinning_dot", "color": "blue", "speed": 0.01,
	})
	require.Equal(t, http.StatusOK, code, resp.Error)
	st := r.ring.Status()
	assert.Equal(t, "spinning", string(st.CurrentPattern))
	assert.InDelta(t, 0.01, st.Speed, 1e-9)

	code, _ = r.do(t, http.MethodPost, "/led/pattern", map[string]any{"action": "start", "pattern": "disco"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = r.do(t, http.MethodPost, "/led/pattern", map[string]any{"action": "stop"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "idle", string(r.ring.Status().State))
	for _, c := range r.ring.Frame() {
		assert.Equal(t, surface.Black, c)
	}
}

func TestPattern_TestAndPreset(t *testing.T) {
	r := newRig(t)
	code, resp := r.do(t, http.MethodPost, "/led/pattern", map[string]any{"action": "test"})
	require.Equal(t, http.StatusOK, code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "rainbow_cycle", data["pattern_name"])
	assert.EqualValues(t, 3000, data["duration"])

	code, _ = r.do(t, http.MethodPost, "/led/pattern", map[string]any{"action": "preset"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = r.do(t, http.MethodPost, "/led/pattern", map[string]any{
		"action": "preset", "pattern_name": "sunset_fade", "brightness": 80,
	})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "idle", string(r.ring.Status().State), "preset replaces the animation")
	assert.Equal(t, surface.RGB{R: 0xFF, G: 0x6B, B: 0x35}, r.ring.Frame()[0])
	assert.InDelta(t, 0.8, r.ring.Status().Brightness, 1e-9)
}

func TestShowStatusRoute(t *testing.T) {
	r := newRig(t)
	code, _ := r.do(t, http.MethodPost, "/led/status/warning", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, neopixel.Orange, r.ring.Frame()[0])
}

func TestHealth(t *testing.T) {
	r := newRig(t)
	code, resp := r.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, code)
	data := resp.Data.(map[string]any)
	assert.Contains(t, data, "uptime_s")
	assert.Contains(t, data, "estimated_amps")
}

func TestFrameStream(t *testing.T) {
	r := newRig(t)
	ts := httptest.NewServer(r.handler)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return r.hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	_, err = r.ring.Initialize()
	require.NoError(t, err)
	require.NoError(t, r.ring.SetAll(neopixel.Green))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg struct {
		FrameID uint64 `json:"frame_id"`
		RGB     []byte `json:"rgb"`
	}
	require.NoError(t, json.Unmarshal(b, &msg))
	assert.EqualValues(t, 1, msg.FrameID)
	require.Len(t, msg.RGB, 36)
	assert.Equal(t, []byte{0, 255, 0}, msg.RGB[:3])
}
