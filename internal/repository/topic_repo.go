package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusinterview/internal/model"
)

type TopicRepo interface {
	Upsert(ctx context.Context, topic *model.Topic) error
	GetByName(ctx context.Context, name string) (*model.Topic, error)
	GetByScene(ctx context.Context, scene model.Scene) ([]model.Topic, error)
	GetByEduType(ctx context.Context, edu model.EduType) ([]model.Topic, error)
	GetAll(ctx context.Context) ([]model.Topic, error)
	DeleteAll(ctx context.Context) error
}

type topicRepo struct {
	collection *mongo.Collection
}

func NewTopicRepo(db *mongo.Database) TopicRepo {
	return &topicRepo{
		collection: db.Collection("topics"),
	}
}

// Upsert inserts the topic or replaces the one with the same name
func (r *topicRepo) Upsert(ctx context.Context, topic *model.Topic) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"name": topic.Name}, topic, options.Replace().SetUpsert(true))
	return err
}

func (r *topicRepo) GetByName(ctx context.Context, name string) (*model.Topic, error) {
	var topic model.Topic
	err := r.collection.FindOne(ctx, bson.M{"name": name}).Decode(&topic)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Topic not found
		}
		return nil, err
	}
	return &topic, nil
}

func (r *topicRepo) GetByScene(ctx context.Context, scene model.Scene) ([]model.Topic, error) {
	return r.find(ctx, bson.M{"scene": scene})
}

func (r *topicRepo) GetByEduType(ctx context.Context, edu model.EduType) ([]model.Topic, error) {
	return r.find(ctx, bson.M{"eduType": edu})
}

func (r *topicRepo) GetAll(ctx context.Context) ([]model.Topic, error) {
	return r.find(ctx, bson.M{})
}

func (r *topicRepo) DeleteAll(ctx context.Context) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{})
	return err
}

func (r *topicRepo) find(ctx context.Context, filter bson.M) ([]model.Topic, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var topics []model.Topic
	if err = cursor.All(ctx, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}
