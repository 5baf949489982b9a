package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"campusinterview/internal/model"
)

// SQLiteSessionRepo stores sessions and their logs in a single SQLite file
type SQLiteSessionRepo struct {
	db *sql.DB
}

var _ SessionRepository = (*SQLiteSessionRepo)(nil)

// NewSQLiteSessionRepo opens (or creates) the database at path and runs migrations
func NewSQLiteSessionRepo(path string) (*SQLiteSessionRepo, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	r := &SQLiteSessionRepo{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLiteSessionRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteSessionRepo) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		current_question_idx INTEGER NOT NULL DEFAULT 0,
		selected_topics TEXT NOT NULL DEFAULT '[]',
		is_followup INTEGER NOT NULL DEFAULT 0,
		followup_count INTEGER NOT NULL DEFAULT 0,
		followup_question TEXT NOT NULL DEFAULT '',
		followup_is_ai INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		ended_at DATETIME
	);

	CREATE TABLE IF NOT EXISTS conversation_entries (
		session_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		timestamp DATETIME NOT NULL,
		topic TEXT NOT NULL DEFAULT '',
		question_type TEXT NOT NULL,
		question TEXT NOT NULL DEFAULT '',
		answer TEXT NOT NULL DEFAULT '',
		depth_score INTEGER NOT NULL DEFAULT 0,
		is_ai_generated INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (session_id, seq)
	);
	`
	_, err := r.db.Exec(schema)
	return err
}

func (r *SQLiteSessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	var (
		s       model.Session
		topics  string
		endedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_name, status, current_question_idx, selected_topics, is_followup,
		        followup_count, followup_question, followup_is_ai, created_at, updated_at, ended_at
		 FROM sessions WHERE id = ?`, id,
	).Scan(&s.ID, &s.UserName, &s.Status, &s.CurrentQuestionIdx, &topics, &s.IsFollowup,
		&s.CurrentFollowupCount, &s.CurrentFollowupQuestion, &s.CurrentFollowupIsAI,
		&s.CreatedAt, &s.UpdatedAt, &endedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(topics), &s.SelectedTopics); err != nil {
		return nil, fmt.Errorf("decode selected topics: %w", err)
	}
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}
	return &s, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *SQLiteSessionRepo) Save(ctx context.Context, session *model.Session) error {
	return saveSession(ctx, r.db, session)
}

func saveSession(ctx context.Context, db execer, s *model.Session) error {
	topics, err := json.Marshal(s.SelectedTopics)
	if err != nil {
		return err
	}
	var endedAt sql.NullTime
	if s.EndedAt != nil {
		endedAt = sql.NullTime{Time: *s.EndedAt, Valid: true}
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_name, status, current_question_idx, selected_topics, is_followup,
		                       followup_count, followup_question, followup_is_ai, created_at, updated_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   user_name = excluded.user_name,
		   status = excluded.status,
		   current_question_idx = excluded.current_question_idx,
		   selected_topics = excluded.selected_topics,
		   is_followup = excluded.is_followup,
		   followup_count = excluded.followup_count,
		   followup_question = excluded.followup_question,
		   followup_is_ai = excluded.followup_is_ai,
		   updated_at = excluded.updated_at,
		   ended_at = excluded.ended_at`,
		s.ID, s.UserName, s.Status, s.CurrentQuestionIdx, string(topics), s.IsFollowup,
		s.CurrentFollowupCount, s.CurrentFollowupQuestion, s.CurrentFollowupIsAI,
		s.CreatedAt, s.UpdatedAt, endedAt)
	return err
}

func (r *SQLiteSessionRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM conversation_entries WHERE session_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *SQLiteSessionRepo) ListEntries(ctx context.Context, sessionID string) ([]model.ConversationEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT timestamp, topic, question_type, question, answer, depth_score, is_ai_generated
		 FROM conversation_entries WHERE session_id = ? ORDER BY seq ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.ConversationEntry
	for rows.Next() {
		var e model.ConversationEntry
		if err := rows.Scan(&e.Timestamp, &e.Topic, &e.QuestionType, &e.Question, &e.Answer, &e.DepthScore, &e.IsAIGenerated); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteSessionRepo) AppendEntry(ctx context.Context, sessionID string, e model.ConversationEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO conversation_entries (session_id, seq, timestamp, topic, question_type, question, answer, depth_score, is_ai_generated)
		 SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ?, ?, ?, ?, ?, ?
		 FROM conversation_entries WHERE session_id = ?`,
		sessionID, e.Timestamp, e.Topic, e.QuestionType, e.Question, e.Answer, e.DepthScore, e.IsAIGenerated,
		sessionID)
	return err
}

func (r *SQLiteSessionRepo) DeleteLastEntry(ctx context.Context, sessionID string) (*model.ConversationEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		seq int64
		e   model.ConversationEntry
	)
	err = tx.QueryRowContext(ctx,
		`SELECT seq, timestamp, topic, question_type, question, answer, depth_score, is_ai_generated
		 FROM conversation_entries WHERE session_id = ? ORDER BY seq DESC LIMIT 1`, sessionID,
	).Scan(&seq, &e.Timestamp, &e.Topic, &e.QuestionType, &e.Question, &e.Answer, &e.DepthScore, &e.IsAIGenerated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM conversation_entries WHERE session_id = ? AND seq = ?`, sessionID, seq); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *SQLiteSessionRepo) Rollback(ctx context.Context, session *model.Session, keepEntries int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM conversation_entries WHERE session_id = ?`, session.ID,
	).Scan(&current); err != nil {
		return err
	}
	if keepEntries < 0 || keepEntries > current {
		return &ErrInvalidRollback{Keep: keepEntries, Current: current}
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM conversation_entries WHERE session_id = ? AND seq NOT IN (
		   SELECT seq FROM conversation_entries WHERE session_id = ? ORDER BY seq ASC LIMIT ?
		 )`, session.ID, session.ID, keepEntries); err != nil {
		return fmt.Errorf("trim log: %w", err)
	}
	if err := saveSession(ctx, tx, session); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	return tx.Commit()
}
