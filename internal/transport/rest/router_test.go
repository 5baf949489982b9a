package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"campusinterview/internal/catalog"
	"campusinterview/internal/config"
	"campusinterview/internal/logger"
	"campusinterview/internal/model"
	"campusinterview/internal/repository"
	"campusinterview/internal/service"
	"campusinterview/internal/transport/ws"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.DefaultInterviewConfig()
	log := logger.Nop()
	gen := service.NewFollowupGenerator(cfg, nil, log)
	svc := service.NewInterviewService(repository.NewMemorySessionRepo(), catalog.Builtin(), cfg, gen,
		service.NewMemoryUndoStack(cfg.UndoCapacity), log)
	hub := ws.NewHub(log)
	svc.SetBroadcaster(hub)

	srv := httptest.NewServer(NewRouter(&Container{
		InterviewService: svc,
		WSHub:            hub,
		Logger:           log,
	}))
	t.Cleanup(func() {
		srv.Close()
		hub.Close()
	})
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

type sessionBody struct {
	Session   model.Session `json:"session"`
	Prompt    string        `json:"prompt"`
	UndoDepth int           `json:"undoDepth"`
}

type transcriptBody struct {
	SessionID string          `json:"sessionId"`
	Status    string          `json:"status"`
	Messages  []model.Message `json:"messages"`
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	var out map[string]string
	if code := do(t, srv, "GET", "/health", nil, &out); code != http.StatusOK || out["status"] != "ok" {
		t.Fatalf("health = %d %v", code, out)
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	var created sessionBody
	if code := do(t, srv, "POST", "/v1/sessions", model.StartSessionRequest{UserName: "li"}, &created); code != http.StatusCreated {
		t.Fatalf("create = %d", code)
	}
	id := created.Session.ID
	if id == "" || created.Session.UserName != "li" {
		t.Fatalf("unexpected session %+v", created.Session)
	}
	if len(created.Session.SelectedTopics) != 6 {
		t.Fatalf("selected %d topics, want 6", len(created.Session.SelectedTopics))
	}
	if !strings.HasPrefix(created.Prompt, "[Question 1/6] ") {
		t.Fatalf("prompt = %q", created.Prompt)
	}

	// a short answer triggers a preset follow-up
	var result model.InterviewResult
	if code := do(t, srv, "POST", "/v1/sessions/"+id+"/messages", model.AnswerRequest{Text: "yes"}, &result); code != http.StatusOK {
		t.Fatalf("answer = %d", code)
	}
	if !result.NeedFollowup || result.IsAIGenerated || result.QuestionIndex != 0 {
		t.Fatalf("unexpected result %+v", result)
	}

	var transcript transcriptBody
	if code := do(t, srv, "GET", "/v1/sessions/"+id+"/messages", nil, &transcript); code != http.StatusOK {
		t.Fatalf("messages = %d", code)
	}
	if len(transcript.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(transcript.Messages))
	}
	if transcript.Messages[1].Role != model.RoleUser || transcript.Messages[1].Content != "yes" {
		t.Fatalf("unexpected user message %+v", transcript.Messages[1])
	}
	if transcript.Messages[2].Content != result.AssistantMessage {
		t.Fatalf("pending prompt %q, want %q", transcript.Messages[2].Content, result.AssistantMessage)
	}

	if code := do(t, srv, "POST", "/v1/sessions/"+id+"/skip", nil, &result); code != http.StatusOK {
		t.Fatalf("skip = %d", code)
	}
	if result.QuestionIndex != 1 || result.NeedFollowup {
		t.Fatalf("after skip %+v", result)
	}

	if code := do(t, srv, "POST", "/v1/sessions/"+id+"/undo", nil, &transcript); code != http.StatusOK {
		t.Fatalf("undo = %d", code)
	}
	if len(transcript.Messages) != 3 {
		t.Fatalf("after undo got %d messages, want 3", len(transcript.Messages))
	}

	var restarted sessionBody
	if code := do(t, srv, "POST", "/v1/sessions/"+id+"/restart", nil, &restarted); code != http.StatusOK {
		t.Fatalf("restart = %d", code)
	}
	if restarted.Session.CurrentQuestionIdx != 0 || restarted.Session.IsFollowup {
		t.Fatalf("after restart %+v", restarted.Session)
	}

	var e errorBody
	if code := do(t, srv, "POST", "/v1/sessions/"+id+"/undo", nil, &e); code != http.StatusConflict || e.Code != "nothing_to_undo" {
		t.Fatalf("undo after restart = %d %+v", code, e)
	}

	if code := do(t, srv, "DELETE", "/v1/sessions/"+id, nil, nil); code != http.StatusNoContent {
		t.Fatalf("delete = %d", code)
	}
	if code := do(t, srv, "GET", "/v1/sessions/"+id, nil, &e); code != http.StatusNotFound || e.Code != "session_not_found" {
		t.Fatalf("get after delete = %d %+v", code, e)
	}
}

func TestCompletedSessionRejectsAnswers(t *testing.T) {
	srv := newTestServer(t)

	var created sessionBody
	do(t, srv, "POST", "/v1/sessions", "", &created)
	id := created.Session.ID
	if created.Session.UserName != config.DefaultInterviewConfig().DefaultUserName {
		t.Fatalf("user name = %q", created.Session.UserName)
	}

	var result model.InterviewResult
	for i := 0; i < 6; i++ {
		if code := do(t, srv, "POST", "/v1/sessions/"+id+"/skip", nil, &result); code != http.StatusOK {
			t.Fatalf("skip %d = %d", i, code)
		}
	}
	if !result.IsFinished || result.AssistantMessage != service.FinishedMessage {
		t.Fatalf("after skipping everything %+v", result)
	}

	var e errorBody
	if code := do(t, srv, "POST", "/v1/sessions/"+id+"/messages", model.AnswerRequest{Text: "late"}, &e); code != http.StatusConflict || e.Code != "session_completed" {
		t.Fatalf("answer on completed = %d %+v", code, e)
	}

	var transcript transcriptBody
	do(t, srv, "GET", "/v1/sessions/"+id+"/messages", nil, &transcript)
	if transcript.Status != string(model.SessionCompleted) || len(transcript.Messages) != 12 {
		t.Fatalf("transcript status %q with %d messages", transcript.Status, len(transcript.Messages))
	}
}

func TestBadRequests(t *testing.T) {
	srv := newTestServer(t)

	var created sessionBody
	do(t, srv, "POST", "/v1/sessions", nil, &created)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"malformed start", "POST", "/v1/sessions", "{", http.StatusBadRequest, "invalid_body"},
		{"malformed answer", "POST", "/v1/sessions/" + created.Session.ID + "/messages", "not json", http.StatusBadRequest, "invalid_body"},
		{"unknown session answer", "POST", "/v1/sessions/missing/messages", model.AnswerRequest{Text: "hi"}, http.StatusNotFound, "session_not_found"},
		{"unknown session skip", "POST", "/v1/sessions/missing/skip", nil, http.StatusNotFound, "session_not_found"},
		{"unknown session delete", "DELETE", "/v1/sessions/missing", nil, http.StatusNotFound, "session_not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e errorBody
			if code := do(t, srv, tt.method, tt.path, tt.body, &e); code != tt.status || e.Code != tt.code {
				t.Fatalf("got %d %+v, want %d %s", code, e, tt.status, tt.code)
			}
		})
	}
}

func TestTopicsFilter(t *testing.T) {
	srv := newTestServer(t)

	var out struct {
		Topics []model.Topic `json:"topics"`
		Count  int           `json:"count"`
	}
	do(t, srv, "GET", "/v1/topics", nil, &out)
	if out.Count != 15 {
		t.Fatalf("catalog has %d topics, want 15", out.Count)
	}

	do(t, srv, "GET", "/v1/topics?scene=school", nil, &out)
	if out.Count != 5 {
		t.Fatalf("school has %d topics, want 5", out.Count)
	}
	for _, tp := range out.Topics {
		if tp.Scene != model.SceneSchool {
			t.Fatalf("filter leaked %s", tp.Name)
		}
	}

	do(t, srv, "GET", "/v1/topics?scene=home&eduType=labor", nil, &out)
	if out.Count != 1 || out.Topics[0].EduType != model.EduLabor {
		t.Fatalf("home/labor = %+v", out.Topics)
	}
}

func TestStartWithNamedTopics(t *testing.T) {
	srv := newTestServer(t)

	name := model.TopicName(model.SceneCommunity, model.EduAesthetic)
	var created sessionBody
	do(t, srv, "POST", "/v1/sessions", model.StartSessionRequest{Topics: []string{name, "no-such-topic"}}, &created)
	if got := created.Session.SelectedTopics[0].Name; got != name {
		t.Fatalf("first topic = %q, want %q", got, name)
	}
	if len(created.Session.SelectedTopics) != 6 {
		t.Fatalf("selected %d topics, want 6", len(created.Session.SelectedTopics))
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest("OPTIONS", srv.URL+"/v1/sessions", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight = %d origin %q", resp.StatusCode, resp.Header.Get("Access-Control-Allow-Origin"))
	}
}

func TestExportSession(t *testing.T) {
	srv := newTestServer(t)

	var created sessionBody
	do(t, srv, "POST", "/v1/sessions", model.StartSessionRequest{UserName: "li"}, &created)
	id := created.Session.ID

	var e errorBody
	if code := do(t, srv, "GET", "/v1/sessions/"+id+"/export", nil, &e); code != http.StatusConflict || e.Code != "empty_session" {
		t.Fatalf("export of empty session = %d %+v", code, e)
	}

	var result model.InterviewResult
	do(t, srv, "POST", "/v1/sessions/"+id+"/messages", model.AnswerRequest{Text: "yes"}, &result)
	do(t, srv, "POST", "/v1/sessions/"+id+"/skip", nil, &result)

	var got sessionBody
	do(t, srv, "GET", "/v1/sessions/"+id, nil, &got)
	if got.UndoDepth != 2 {
		t.Errorf("undoDepth = %d, want 2", got.UndoDepth)
	}

	var exp model.SessionExport
	if code := do(t, srv, "GET", "/v1/sessions/"+id+"/export", nil, &exp); code != http.StatusOK {
		t.Fatalf("export = %d", code)
	}
	if exp.SessionID != id || exp.UserName != "li" || len(exp.Log) != 2 {
		t.Fatalf("export = %+v", exp)
	}
	first := created.Session.SelectedTopics[0]
	if exp.Statistics.Scenes[first.Scene] != 2 || exp.Statistics.Followups.Preset != 1 {
		t.Errorf("statistics = %+v", exp.Statistics)
	}
}
