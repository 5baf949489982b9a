package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusinterview/internal/catalog"
	"campusinterview/internal/model"
)

// newTestMongoDB connects to MONGO_URI (a replica set, for transactions) and
// returns a throwaway database.
func newTestMongoDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("ping: %v", err)
	}
	db := client.Database("interview_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return db
}

func TestIntegrationMongoSessionRepo(t *testing.T) {
	db := newTestMongoDB(t)
	if err := EnsureSessionIndexes(context.Background(), db); err != nil {
		t.Fatalf("EnsureSessionIndexes: %v", err)
	}
	exerciseRepository(t, NewMongoSessionRepo(db))
}

func TestIntegrationTopicRepo(t *testing.T) {
	db := newTestMongoDB(t)
	ctx := context.Background()
	repo := NewTopicRepo(db)

	for _, tp := range catalog.Builtin() {
		tp := tp
		if err := repo.Upsert(ctx, &tp); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}
	// second seed replaces rather than duplicates
	first := catalog.Builtin()[0]
	if err := repo.Upsert(ctx, &first); err != nil {
		t.Fatal(err)
	}

	all, err := repo.GetAll(ctx)
	if err != nil || len(all) != 15 {
		t.Fatalf("GetAll = %d, %v", len(all), err)
	}
	school, _ := repo.GetByScene(ctx, model.SceneSchool)
	if len(school) != 5 {
		t.Errorf("GetByScene = %d", len(school))
	}
	labor, _ := repo.GetByEduType(ctx, model.EduLabor)
	if len(labor) != 3 {
		t.Errorf("GetByEduType = %d", len(labor))
	}
	got, err := repo.GetByName(ctx, "home-labor")
	if err != nil || got == nil || got.EduType != model.EduLabor {
		t.Errorf("GetByName = %+v, %v", got, err)
	}
	if missing, err := repo.GetByName(ctx, "nope"); missing != nil || err != nil {
		t.Errorf("GetByName(missing) = %v, %v", missing, err)
	}
}
