package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"campusinterview/internal/model"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestSessionCache(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestRedis(t)
	c := NewSessionCache(client, time.Minute)

	got, err := c.Get(ctx, "s1")
	if err != nil || got != nil {
		t.Fatalf("Get on miss = %v, %v", got, err)
	}

	s := &model.Session{ID: "s1", UserName: "alice", Status: model.SessionActive, CurrentQuestionIdx: 2,
		SelectedTopics: []model.Topic{{Name: "home-labor", Questions: []string{"Q"}}}}
	if err := c.Set(ctx, s); err != nil {
		t.Fatal(err)
	}
	got, err = c.Get(ctx, "s1")
	if err != nil || got == nil || got.CurrentQuestionIdx != 2 || got.SelectedTopics[0].Name != "home-labor" {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	mr.FastForward(2 * time.Minute)
	if got, _ := c.Get(ctx, "s1"); got != nil {
		t.Error("entry outlived its TTL")
	}

	_ = c.Set(ctx, s)
	if err := c.Delete(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if got, _ := c.Get(ctx, "s1"); got != nil {
		t.Error("entry survived Delete")
	}
}

func TestUndoCache(t *testing.T) {
	ctx := context.Background()
	_, client := newTestRedis(t)
	u := NewUndoCache(client, 3)

	if snap, err := u.Peek(ctx, "s1"); snap != nil || err != nil {
		t.Fatalf("Peek on empty = %v, %v", snap, err)
	}
	if err := u.Pop(ctx, "s1"); err != nil {
		t.Fatalf("Pop on empty: %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := u.Push(ctx, "s1", &model.Snapshot{EntryCount: i, Status: model.SessionActive}); err != nil {
			t.Fatal(err)
		}
	}
	if n, _ := u.Len(ctx, "s1"); n != 3 {
		t.Fatalf("Len = %d, want 3", n)
	}
	for _, want := range []int{4, 3, 2} {
		snap, err := u.Peek(ctx, "s1")
		if err != nil || snap == nil || snap.EntryCount != want {
			t.Fatalf("Peek = %+v, %v, want %d", snap, err, want)
		}
		if err := u.Pop(ctx, "s1"); err != nil {
			t.Fatal(err)
		}
	}
	if snap, _ := u.Peek(ctx, "s1"); snap != nil {
		t.Errorf("oldest snapshots not evicted: %+v", snap)
	}

	_ = u.Push(ctx, "s1", &model.Snapshot{})
	if err := u.Clear(ctx, "s1"); err != nil {
		t.Fatal(err)
	}
	if n, _ := u.Len(ctx, "s1"); n != 0 {
		t.Errorf("Len after Clear = %d", n)
	}
}
