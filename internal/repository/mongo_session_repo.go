package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"campusinterview/internal/model"
)

// entryDocument is a conversation entry as stored in MongoDB
type entryDocument struct {
	SessionID               string `bson:"sessionId"`
	Seq                     int    `bson:"seq"`
	model.ConversationEntry `bson:",inline"`
}

type mongoSessionRepo struct {
	client   *mongo.Client
	sessions *mongo.Collection
	entries  *mongo.Collection
}

// NewMongoSessionRepo stores sessions in "sessions" and the log in
// "conversation_entries". Rollback needs a replica set for transactions.
func NewMongoSessionRepo(db *mongo.Database) SessionRepository {
	return &mongoSessionRepo{
		client:   db.Client(),
		sessions: db.Collection("sessions"),
		entries:  db.Collection("conversation_entries"),
	}
}

// EnsureSessionIndexes creates the (sessionId, seq) index the log relies on
func EnsureSessionIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("conversation_entries").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "sessionId", Value: 1}, {Key: "seq", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *mongoSessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *mongoSessionRepo) Save(ctx context.Context, session *model.Session) error {
	_, err := r.sessions.ReplaceOne(ctx, bson.M{"_id": session.ID}, session, options.Replace().SetUpsert(true))
	return err
}

func (r *mongoSessionRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.entries.DeleteMany(ctx, bson.M{"sessionId": id}); err != nil {
		return err
	}
	_, err := r.sessions.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *mongoSessionRepo) ListEntries(ctx context.Context, sessionID string) ([]model.ConversationEntry, error) {
	cursor, err := r.entries.Find(ctx, bson.M{"sessionId": sessionID}, options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []entryDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	entries := make([]model.ConversationEntry, len(docs))
	for i, d := range docs {
		entries[i] = d.ConversationEntry
	}
	return entries, nil
}

func (r *mongoSessionRepo) lastEntry(ctx context.Context, sessionID string) (*entryDocument, error) {
	var doc entryDocument
	err := r.entries.FindOne(ctx, bson.M{"sessionId": sessionID},
		options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}})).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (r *mongoSessionRepo) AppendEntry(ctx context.Context, sessionID string, entry model.ConversationEntry) error {
	last, err := r.lastEntry(ctx, sessionID)
	if err != nil {
		return err
	}
	seq := 1
	if last != nil {
		seq = last.Seq + 1
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	_, err = r.entries.InsertOne(ctx, entryDocument{SessionID: sessionID, Seq: seq, ConversationEntry: entry})
	return err
}

func (r *mongoSessionRepo) DeleteLastEntry(ctx context.Context, sessionID string) (*model.ConversationEntry, error) {
	var doc entryDocument
	err := r.entries.FindOneAndDelete(ctx, bson.M{"sessionId": sessionID},
		options.FindOneAndDelete().SetSort(bson.D{{Key: "seq", Value: -1}})).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &doc.ConversationEntry, nil
}

func (r *mongoSessionRepo) Rollback(ctx context.Context, session *model.Session, keepEntries int) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		filter := bson.M{"sessionId": session.ID}
		current, err := r.entries.CountDocuments(sc, filter)
		if err != nil {
			return nil, err
		}
		if keepEntries < 0 || int64(keepEntries) > current {
			return nil, &ErrInvalidRollback{Keep: keepEntries, Current: int(current)}
		}

		if keepEntries == 0 {
			if _, err := r.entries.DeleteMany(sc, filter); err != nil {
				return nil, err
			}
		} else {
			var cutoff entryDocument
			err := r.entries.FindOne(sc, filter, options.FindOne().
				SetSort(bson.D{{Key: "seq", Value: 1}}).
				SetSkip(int64(keepEntries-1))).Decode(&cutoff)
			if err != nil {
				return nil, err
			}
			if _, err := r.entries.DeleteMany(sc, bson.M{"sessionId": session.ID, "seq": bson.M{"$gt": cutoff.Seq}}); err != nil {
				return nil, err
			}
		}

		if _, err := r.sessions.ReplaceOne(sc, bson.M{"_id": session.ID}, session, options.Replace().SetUpsert(true)); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return err
}
