package wire

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/commonapply/internal/activity"
	"github.com/matthewbaird/commonapply/internal/editor"
	"github.com/matthewbaird/commonapply/internal/event"
	"github.com/matthewbaird/commonapply/internal/render"
	"github.com/matthewbaird/commonapply/internal/session"
	"github.com/matthewbaird/commonapply/internal/store"
	"github.com/matthewbaird/commonapply/internal/types"
)

type inbound struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

type harness struct {
	srv      *httptest.Server
	forms    *store.MemoryStore
	activity *activity.MemoryStore
	hub      *Hub
	formID   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	forms := store.NewMemoryStore()
	doc, err := forms.Create(context.Background(), store.FormDocument{Name: "Application", Schema: types.Schema{
		Fields: []types.Field{
			{ID: "program", Type: types.FieldSelect, Label: "Program", Options: []string{"BSc", "MSc"}},
			{ID: "thesis", Type: types.FieldText, Label: "Thesis", ConditionalLogic: []types.Rule{{
				Action: types.ActionShow, Logic: types.LogicAnd,
				Conditions: []types.Condition{{Field: "program", Operator: types.OpEquals, Value: "MSc"}},
			}}},
		},
	}})
	require.NoError(t, err)

	acts := activity.NewMemoryStore()
	hub := NewHub()
	rec := event.NewActivityRecorder(acts)
	rec.SetPublisher(publisherFunc(func(ctx context.Context, evt event.DomainEvent) {
		_ = hub.HandleEvent(ctx, evt)
	}))

	h := NewHandler(session.NewManager(time.Hour, time.Hour), forms, rec, hub)
	r := chi.NewRouter()
	r.Get("/forms/{id}/ws", h.ServeHTTP)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &harness{srv: srv, forms: forms, activity: acts, hub: hub, formID: doc.ID}
}

type publisherFunc func(context.Context, event.DomainEvent)

func (f publisherFunc) Publish(ctx context.Context, evt event.DomainEvent) { f(ctx, evt) }

func (h *harness) dial(t *testing.T, ctx context.Context, formID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/forms/" + formID + "/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func read(t *testing.T, ctx context.Context, conn *websocket.Conn) inbound {
	t.Helper()
	var msg inbound
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	return msg
}

func expect(t *testing.T, ctx context.Context, conn *websocket.Conn, typ string) inbound {
	t.Helper()
	msg := read(t, ctx, conn)
	require.Equal(t, typ, msg.Type, "data: %s", msg.Data)
	return msg
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, typ, id string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(ctx, conn, ClientMessage{Type: typ, ID: id, Data: raw}))
}

// open dials and consumes the greeting.
func (h *harness) open(t *testing.T, ctx context.Context) (*websocket.Conn, SessionData) {
	conn := h.dial(t, ctx, h.formID)
	var sd SessionData
	require.NoError(t, json.Unmarshal(expect(t, ctx, conn, TypeSession).Data, &sd))
	expect(t, ctx, conn, TypeSchema)
	expect(t, ctx, conn, TypeCanvas)
	return conn, sd
}

func TestGreeting(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, sd := h.open(t, ctx)
	assert.Equal(t, h.formID, sd.FormID)
	assert.Equal(t, 1, sd.Version)
	assert.Equal(t, "design", sd.Mode)
	assert.NotEmpty(t, sd.SessionID)

	send(t, ctx, conn, TypePing, "p1", nil)
	pong := expect(t, ctx, conn, TypePong)
	assert.Equal(t, "p1", pong.RequestID)
}

func TestUnknownForm(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/forms/nope/ws"
	_, resp, err := websocket.Dial(ctx, url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestEditSelectAndSave(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _ := h.open(t, ctx)

	send(t, ctx, conn, TypeEdit, "e1", editor.Command{Op: editor.OpAddField, FieldType: types.FieldEmail})
	var sd SchemaData
	require.NoError(t, json.Unmarshal(expect(t, ctx, conn, TypeSchema).Data, &sd))
	assert.True(t, sd.Dirty)
	require.Len(t, sd.Schema.Fields, 3)
	require.NotNil(t, sd.Outcome)
	assert.True(t, sd.Outcome.Changed)
	added := sd.Outcome.Field.ID
	canvasMsg := expect(t, ctx, conn, TypeCanvas)
	assert.Equal(t, "e1", canvasMsg.RequestID)

	send(t, ctx, conn, TypeSelect, "s1", SelectData{FieldID: added, Tab: editor.TabAdvanced})
	var cv render.CanvasView
	require.NoError(t, json.Unmarshal(expect(t, ctx, conn, TypeCanvas).Data, &cv))
	require.NotNil(t, cv.Settings)
	assert.Equal(t, added, cv.Settings.FieldID)
	assert.Equal(t, editor.TabAdvanced, cv.Settings.Tab)

	send(t, ctx, conn, TypeSelect, "s2", SelectData{FieldID: "ghost"})
	var ed ErrorData
	require.NoError(t, json.Unmarshal(expect(t, ctx, conn, TypeError).Data, &ed))
	assert.Equal(t, "unknown_field", ed.Code)

	send(t, ctx, conn, TypeSave, "v1", SaveData{Name: "Renamed"})
	var saved SavedData
	require.NoError(t, json.Unmarshal(expect(t, ctx, conn, TypeSaved).Data, &saved))
	assert.Equal(t, 2, saved.Version)

	doc, err := h.forms.Get(ctx, h.formID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", doc.Name)
	assert.Len(t, doc.Schema.Fields, 3)

	entries, _, _, err := h.activity.QueryByForm(ctx, h.formID, activity.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, event.FormSaved, entries[0].EventType)
}

func TestPreviewFollowsAnswers(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _ := h.open(t, ctx)

	send(t, ctx, conn, TypeMode, "m1", ModeData{Mode: "preview"})
	var pv render.PreviewView
	require.NoError(t, json.Unmarshal(expect(t, ctx, conn, TypePreview).Data, &pv))
	assert.False(t, pv.Results["thesis"].Visible)

	send(t, ctx, conn, TypeAnswers, "a1", AnswersData{Answers: map[string]any{"program": "MSc"}})
	require.NoError(t, json.Unmarshal(expect(t, ctx, conn, TypePreview).Data, &pv))
	assert.True(t, pv.Results["thesis"].Visible)

	send(t, ctx, conn, TypeMode, "m2", ModeData{Mode: "sideways"})
	expect(t, ctx, conn, TypeError)
}

func TestBadMessages(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _ := h.open(t, ctx)

	send(t, ctx, conn, "dance", "x1", nil)
	var ed ErrorData
	require.NoError(t, json.Unmarshal(expect(t, ctx, conn, TypeError).Data, &ed))
	assert.Equal(t, "unknown_type", ed.Code)

	send(t, ctx, conn, TypeEdit, "x2", editor.Command{Op: "explode"})
	require.NoError(t, json.Unmarshal(expect(t, ctx, conn, TypeError).Data, &ed))
	assert.Equal(t, "invalid_command", ed.Code)
}

func TestConcurrentSaveConflictsAndBroadcasts(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	first, _ := h.open(t, ctx)
	second, _ := h.open(t, ctx)
	require.Eventually(t, func() bool { return h.hub.Clients(h.formID) == 2 }, time.Second, 10*time.Millisecond)

	send(t, ctx, first, TypeSave, "v1", nil)
	expect(t, ctx, first, TypeSaved)

	var notice SavedData
	require.NoError(t, json.Unmarshal(expect(t, ctx, second, TypeSaved).Data, &notice))
	assert.Equal(t, 2, notice.Version)

	send(t, ctx, second, TypeSave, "v2", nil)
	var ed ErrorData
	require.NoError(t, json.Unmarshal(expect(t, ctx, second, TypeError).Data, &ed))
	assert.Equal(t, "conflict", ed.Code)
}

func TestResumeKeepsUnsavedEdits(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, sd := h.open(t, ctx)
	assert.Equal(t, 1, sd.Sessions)
	send(t, ctx, conn, TypeEdit, "e1", editor.Command{Op: editor.OpAddField, FieldType: types.FieldPhone})
	expect(t, ctx, conn, TypeSchema)
	expect(t, ctx, conn, TypeCanvas)
	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	require.Eventually(t, func() bool { return h.hub.Clients(h.formID) == 0 }, time.Second, 10*time.Millisecond)

	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/forms/" + h.formID + "/ws?session=" + sd.SessionID
	again, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer again.CloseNow()

	var resumed SessionData
	require.NoError(t, json.Unmarshal(expect(t, ctx, again, TypeSession).Data, &resumed))
	assert.True(t, resumed.Resumed)
	assert.Equal(t, sd.SessionID, resumed.SessionID)
	var schema SchemaData
	require.NoError(t, json.Unmarshal(expect(t, ctx, again, TypeSchema).Data, &schema))
	assert.True(t, schema.Dirty)
	assert.Len(t, schema.Schema.Fields, 3)

	// A second connection cannot take over a held session.
	third, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer third.CloseNow()
	var fresh SessionData
	require.NoError(t, json.Unmarshal(expect(t, ctx, third, TypeSession).Data, &fresh))
	assert.False(t, fresh.Resumed)
	assert.NotEqual(t, sd.SessionID, fresh.SessionID)
	assert.Equal(t, 2, fresh.Sessions)
}

func TestCleanSessionEndsWithConnection(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, sd := h.open(t, ctx)
	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	require.Eventually(t, func() bool { return h.hub.Clients(h.formID) == 0 }, time.Second, 10*time.Millisecond)

	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/forms/" + h.formID + "/ws?session=" + sd.SessionID
	again, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer again.CloseNow()
	var next SessionData
	require.NoError(t, json.Unmarshal(expect(t, ctx, again, TypeSession).Data, &next))
	assert.False(t, next.Resumed)
	assert.NotEqual(t, sd.SessionID, next.SessionID)
}
