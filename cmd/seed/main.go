package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusinterview/internal/catalog"
	"campusinterview/internal/config"
	"campusinterview/internal/logger"
	"campusinterview/internal/model"
	"campusinterview/internal/repository"
)

// seed loads a topic catalog into MongoDB for TOPIC_SOURCE=mongo
func main() {
	file := flag.String("file", "", "YAML topic catalog (defaults to the built-in catalog)")
	replace := flag.Bool("replace", false, "delete existing topics before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	var topics []model.Topic
	if *file != "" {
		topics, err = catalog.LoadFile(*file)
		if err != nil {
			log.Fatal("failed to load topics", "file", *file, "error", err)
		}
	} else {
		topics = catalog.Builtin()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("failed to connect to MongoDB", "error", err)
	}
	defer client.Disconnect(context.Background())

	db := client.Database(cfg.MongoDB)
	repo := repository.NewTopicRepo(db)

	if *replace {
		if err := repo.DeleteAll(ctx); err != nil {
			log.Fatal("failed to clear topics", "error", err)
		}
	}
	for i := range topics {
		if err := repo.Upsert(ctx, &topics[i]); err != nil {
			log.Fatal("failed to upsert topic", "topic", topics[i].Name, "error", err)
		}
	}
	if err := repository.EnsureSessionIndexes(ctx, db); err != nil {
		log.Fatal("failed to create session indexes", "error", err)
	}

	log.Info("seeded topic catalog", "db", cfg.MongoDB, "topics", len(topics))
}
