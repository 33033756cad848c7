package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/commonapply/internal/activity"
	"github.com/matthewbaird/commonapply/internal/event"
	"github.com/matthewbaird/commonapply/internal/eventbus"
	"github.com/matthewbaird/commonapply/internal/session"
	"github.com/matthewbaird/commonapply/internal/store"
	"github.com/matthewbaird/commonapply/internal/wire"
)

func newTestServer(t *testing.T) (*httptest.Server, *wire.Hub) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	forms := store.NewMemoryStore()
	acts := activity.NewMemoryStore()
	hub := wire.NewHub()

	bus := eventbus.New(16)
	bus.Subscribe("hub", hub)
	bus.Start(ctx)
	t.Cleanup(bus.Stop)

	rec := event.NewActivityRecorder(acts)
	rec.SetPublisher(bus)

	srv := httptest.NewServer(NewRouter(Config{
		Forms:    forms,
		Activity: acts,
		Recorder: rec,
		Sessions: session.NewManager(time.Hour, time.Hour),
		Hub:      hub,
	}))
	t.Cleanup(srv.Close)
	return srv, hub
}

func post(t *testing.T, url, body string) map[string]any {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Less(t, resp.StatusCode, 300)
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRESTEditReachesLiveSession(t *testing.T) {
	srv, hub := newTestServer(t)
	form := post(t, srv.URL+"/v1/forms", `{"name": "Admissions"}`)
	formID := form["id"].(string)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/forms/" + formID + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	var msg struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	for _, want := range []string{"session", "schema", "canvas"} {
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		require.Equal(t, want, msg.Type)
	}
	require.Eventually(t, func() bool { return hub.Clients(formID) == 1 }, time.Second, 10*time.Millisecond)

	post(t, srv.URL+"/v1/forms/"+formID+"/fields", `{"type": "email"}`)

	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, "saved", msg.Type)
	var saved wire.SavedData
	require.NoError(t, json.Unmarshal(msg.Data, &saved))
	assert.Equal(t, formID, saved.FormID)
	assert.Equal(t, 2, saved.Version)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Config{
			Port:            0,
			ShutdownTimeout: time.Second,
			JanitorInterval: 10 * time.Millisecond,
			Forms:           store.NewMemoryStore(),
			Activity:        activity.NewMemoryStore(),
			Sessions:        session.NewManager(time.Hour, time.Hour),
			Hub:             wire.NewHub(),
		})
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
