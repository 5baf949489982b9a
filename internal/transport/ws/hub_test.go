package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"campusinterview/internal/catalog"
	"campusinterview/internal/config"
	"campusinterview/internal/logger"
	"campusinterview/internal/model"
	"campusinterview/internal/repository"
	"campusinterview/internal/service"
)

func receive(t *testing.T, ch <-chan []byte) *Message {
	t.Helper()
	select {
	case data, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatal(err)
		}
		return &msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return nil
}

func TestHubRoutesBySession(t *testing.T) {
	hub := NewHub(logger.Nop())
	defer hub.Close()

	a := &Connection{SessionID: "a", Send: make(chan []byte, 4), Hub: hub}
	b := &Connection{SessionID: "b", Send: make(chan []byte, 4), Hub: hub}
	hub.Register(a)
	hub.Register(b)

	hub.BroadcastToSession("a", service.EventAnswerRecorded, model.SessionEvent{SessionID: "a", Message: "hello"})

	msg := receive(t, a.Send)
	if msg.Type != service.EventAnswerRecorded {
		t.Fatalf("type = %q", msg.Type)
	}
	var ev model.SessionEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Message != "hello" {
		t.Fatalf("payload = %+v", ev)
	}

	hub.DisconnectSession("b")
	select {
	case _, ok := <-b.Send:
		if ok {
			t.Fatal("session b received a message meant for a")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect did not close the observer")
	}
}

func TestHubUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub(logger.Nop())
	defer hub.Close()

	c := &Connection{SessionID: "s", Send: make(chan []byte, 1), Hub: hub}
	hub.Register(c)
	hub.DisconnectSession("s")
	// the read pump still unregisters after the hub closed the channel
	hub.Unregister(c)
	hub.BroadcastToSession("s", service.EventSessionRestarted, model.SessionEvent{})
}

func TestSessionWS(t *testing.T) {
	log := logger.Nop()
	cfg := config.DefaultInterviewConfig()
	svc := service.NewInterviewService(repository.NewMemorySessionRepo(), catalog.Builtin(), cfg,
		service.NewFollowupGenerator(cfg, nil, log), service.NewMemoryUndoStack(cfg.UndoCapacity), log)
	hub := NewHub(log)
	defer hub.Close()
	svc.SetBroadcaster(hub)

	r := mux.NewRouter()
	r.HandleFunc("/v1/ws/sessions/{id}", NewHandler(hub, svc, log).SessionWS)
	srv := httptest.NewServer(r)
	defer srv.Close()
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/ws/sessions/"

	ctx := context.Background()
	session, err := svc.StartSession(ctx, "li", nil)
	if err != nil {
		t.Fatal(err)
	}

	_, resp, err := websocket.DefaultDialer.Dial(base+"missing", nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("dial unknown session: err=%v resp=%v", err, resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(base+session.ID, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello Message
	if err := conn.ReadJSON(&hello); err != nil {
		t.Fatal(err)
	}
	if hello.Type != MsgConnected {
		t.Fatalf("first message = %q", hello.Type)
	}
	var ev model.SessionEvent
	json.Unmarshal(hello.Payload, &ev)
	if ev.State != model.StateCorePending || !strings.HasPrefix(ev.Message, "[Question 1/6]") {
		t.Fatalf("connected payload = %+v", ev)
	}

	if _, err := svc.ProcessAnswer(ctx, session.ID, "ok"); err != nil {
		t.Fatal(err)
	}

	var got []MessageType
	for len(got) < 2 {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatal(err)
		}
		got = append(got, msg.Type)
	}
	if got[0] != service.EventAnswerRecorded || got[1] != service.EventFollowupIssued {
		t.Fatalf("events = %v", got)
	}

	if err := svc.DeleteSession(ctx, session.ID); err != nil {
		t.Fatal(err)
	}
	var msg Message
	if err := conn.ReadJSON(&msg); err == nil {
		t.Fatalf("expected close after delete, got %q", msg.Type)
	}
}
