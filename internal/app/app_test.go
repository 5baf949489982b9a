package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"campusinterview/internal/catalog"
	"campusinterview/internal/config"
	"campusinterview/internal/logger"
	"campusinterview/internal/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Store:           config.StoreMemory,
		TopicSource:     config.TopicsBuiltin,
		SQLitePath:      filepath.Join(t.TempDir(), "interview.db"),
		SessionCacheTTL: time.Minute,
		Interview:       config.DefaultInterviewConfig(),
		AI:              &config.AIConfig{},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

// playThrough answers, undoes and skips once so every store path is touched
func playThrough(t *testing.T, a *App) *model.Session {
	t.Helper()
	ctx := context.Background()
	s, err := a.Interview.StartSession(ctx, "li", nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Interview.ProcessAnswer(ctx, s.ID, "short"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Interview.UndoLast(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Interview.SkipQuestion(ctx, s.ID); err != nil {
		t.Fatal(err)
	}
	got, err := a.Interview.GetSession(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func TestNewStores(t *testing.T) {
	for _, store := range []string{config.StoreMemory, config.StoreSQLite} {
		t.Run(store, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Store = store
			a := newTestApp(t, cfg)

			s := playThrough(t, a)
			if s.CurrentQuestionIdx != 1 || s.IsFollowup {
				t.Fatalf("unexpected session state %+v", s)
			}
		})
	}
}

func TestNewWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.RedisAddr = mr.Addr()
	a := newTestApp(t, cfg)
	if a.SessionCache == nil {
		t.Fatal("session cache not wired")
	}

	s := playThrough(t, a)
	// the skip pushed one snapshot into the shared undo list
	if n, err := mr.List("interview:session:" + s.ID + ":undo"); err != nil || len(n) != 1 {
		t.Fatalf("undo list = %v, %v", n, err)
	}
	if !mr.Exists("interview:session:" + s.ID) {
		t.Fatal("session was not cached")
	}
}

func TestNewYAMLTopics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.yaml")
	topics := catalog.Builtin()[:4]
	if err := catalog.Write(path, topics); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(t)
	cfg.TopicSource = config.TopicsYAML
	cfg.TopicsFile = path
	a := newTestApp(t, cfg)
	if len(a.Topics) != 4 {
		t.Fatalf("loaded %d topics, want 4", len(a.Topics))
	}

	s, err := a.Interview.StartSession(context.Background(), "", nil)
	if err != nil {
		t.Fatal(err)
	}
	// a catalog smaller than total_questions yields every topic once
	if len(s.SelectedTopics) != 4 {
		t.Fatalf("selected %d topics, want 4", len(s.SelectedTopics))
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name  string
		apply func(*config.Config)
	}{
		{"unknown store", func(c *config.Config) { c.Store = "postgres" }},
		{"unknown topic source", func(c *config.Config) { c.TopicSource = "http" }},
		{"missing topic file", func(c *config.Config) {
			c.TopicSource = config.TopicsYAML
			c.TopicsFile = filepath.Join(t.TempDir(), "absent.yaml")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.apply(cfg)
			if _, err := New(context.Background(), cfg, logger.Nop()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRouterServesHealth(t *testing.T) {
	a := newTestApp(t, testConfig(t))
	srv := httptest.NewServer(a.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health = %d", resp.StatusCode)
	}
}
