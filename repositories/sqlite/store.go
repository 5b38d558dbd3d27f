// Package sqlite provides a SQLite-backed implementation of the session store.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"session-lab/contract"
	"session-lab/domain"
	"session-lab/errors"
	"session-lab/repositories/sqlite/migrations"
)

var _ contract.Store = (*Store)(nil)

// Store persists session state in SQLite.
type Store struct {
	sqlDB *sql.DB
	log   *slog.Logger
}

func toNanos(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixNano()
}

func fromNanos(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.Unix(0, value).UTC()
}

// Open opens a SQLite store and applies embedded migrations.
func Open(ctx context.Context, path string, log *slog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Debug("sqlite store ready", "path", path)
	return &Store{sqlDB: sqlDB, log: log}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveSession upserts the session. Questions passed along are written in the same transaction.
func (s *Store) SaveSession(ctx context.Context, session domain.Session, questions ...domain.Question) error {
	modules, err := cbor.Marshal(session.UnlockedModules)
	if err != nil {
		return fmt.Errorf("marshal modules: %w", err)
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (
		   id, code, owner_id, module_id, unlocked_modules, state,
		   current_submodule, current_question, version, max_participants,
		   created_at, started_at, ended_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   unlocked_modules = excluded.unlocked_modules,
		   state = excluded.state,
		   current_submodule = excluded.current_submodule,
		   current_question = excluded.current_question,
		   version = excluded.version,
		   max_participants = excluded.max_participants,
		   started_at = excluded.started_at,
		   ended_at = excluded.ended_at`,
		session.ID, session.Code, session.OwnerID, session.ModuleID, modules, session.State,
		session.CurrentSubmodule, session.CurrentQuestion, session.Version, session.MaxParticipants,
		toNanos(session.CreatedAt), toNanos(session.StartedAt), toNanos(session.EndedAt),
	)
	if isUniqueViolation(err) {
		return errors.New(errors.CodeCodeInUse, "code %s is already in use", session.Code)
	}
	if err != nil {
		return err
	}
	if err := upsertQuestions(ctx, tx, questions); err != nil {
		return err
	}
	return tx.Commit()
}

const sessionColumns = `id, code, owner_id, module_id, unlocked_modules, state,
	current_submodule, current_question, version, max_participants,
	created_at, started_at, ended_at`

func (s *Store) GetSession(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	row := s.sqlDB.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, errors.New(errors.CodeSessionNotFound, "session %s not found", id)
	}
	return session, err
}

func (s *Store) FindSessionByCode(ctx context.Context, code string) (domain.Session, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE code = ? AND state <> ?", code, domain.StateEnded)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Session{}, errors.New(errors.CodeSessionNotFound, "no session with code %s", code)
	}
	return session, err
}

func (s *Store) ListOpenSessions(ctx context.Context) ([]domain.Session, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE state <> ? ORDER BY created_at", domain.StateEnded)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (s *Store) SaveParticipant(ctx context.Context, p domain.Participant) error {
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO participants (session_id, id, display_name, last_seen, joined_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (session_id, id) DO UPDATE SET
		   display_name = excluded.display_name,
		   last_seen = excluded.last_seen`,
		p.SessionID, p.ID, p.DisplayName, toNanos(p.LastSeen), toNanos(p.JoinedAt),
	)
	return err
}

func (s *Store) ListParticipants(ctx context.Context, sessionID domain.SessionID) ([]domain.Participant, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, display_name, last_seen, joined_at FROM participants
		 WHERE session_id = ? ORDER BY joined_at, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var participants []domain.Participant
	for rows.Next() {
		var p domain.Participant
		var lastSeen, joinedAt int64
		if err := rows.Scan(&p.ID, &p.DisplayName, &lastSeen, &joinedAt); err != nil {
			return nil, err
		}
		p.SessionID = sessionID
		p.LastSeen = fromNanos(lastSeen)
		p.JoinedAt = fromNanos(joinedAt)
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (s *Store) SaveQuestions(ctx context.Context, questions []domain.Question) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := upsertQuestions(ctx, tx, questions); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertQuestions(ctx context.Context, tx *sql.Tx, questions []domain.Question) error {
	for _, q := range questions {
		config, err := cbor.Marshal(q.Config)
		if err != nil {
			return fmt.Errorf("marshal question %s: %w", q.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO questions (session_id, id, submodule_id, ordinal, type, config, closed, visibility, tally_version)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (session_id, id) DO UPDATE SET
			   config = excluded.config,
			   closed = excluded.closed,
			   visibility = excluded.visibility,
			   tally_version = excluded.tally_version`,
			q.SessionID, q.ID, q.SubmoduleID, q.Ordinal, q.Type, config, q.Closed, q.Visibility, q.TallyVersion,
		); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) ListQuestions(ctx context.Context, sessionID domain.SessionID) ([]domain.Question, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, submodule_id, ordinal, type, config, closed, visibility, tally_version FROM questions
		 WHERE session_id = ? ORDER BY ordinal, id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		var config []byte
		if err := rows.Scan(&q.ID, &q.SubmoduleID, &q.Ordinal, &q.Type, &config, &q.Closed, &q.Visibility, &q.TallyVersion); err != nil {
			return nil, err
		}
		if err := cbor.Unmarshal(config, &q.Config); err != nil {
			return nil, fmt.Errorf("decode question %s: %w", q.ID, err)
		}
		q.SessionID = sessionID
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) SaveResponse(ctx context.Context, rec domain.ResponseRecord) error {
	record := domain.ToRecord(rec.Payload)
	payload, err := cbor.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO responses (
		   session_id, question_id, participant_id, ordinal, id, question_type, payload, lang, submitted_at, tally_version
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (session_id, question_id, participant_id, ordinal) DO UPDATE SET
		   id = excluded.id,
		   payload = excluded.payload,
		   lang = excluded.lang,
		   submitted_at = excluded.submitted_at,
		   tally_version = excluded.tally_version`,
		rec.SessionID, rec.QuestionID, rec.ParticipantID, rec.Ordinal, rec.ID, record.Type, payload, rec.Lang,
		toNanos(rec.SubmittedAt), rec.TallyVersion,
	)
	return err
}

func (s *Store) ListResponses(ctx context.Context, sessionID domain.SessionID) ([]domain.ResponseRecord, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT question_id, participant_id, ordinal, id, question_type, payload, lang, submitted_at, tally_version
		 FROM responses WHERE session_id = ? ORDER BY submitted_at, participant_id, ordinal`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []domain.ResponseRecord
	for rows.Next() {
		var rec domain.ResponseRecord
		var questionType domain.QuestionType
		var payload []byte
		var submittedAt int64
		if err := rows.Scan(&rec.QuestionID, &rec.ParticipantID, &rec.Ordinal, &rec.ID, &questionType, &payload, &rec.Lang, &submittedAt, &rec.TallyVersion); err != nil {
			return nil, err
		}
		var record domain.PayloadRecord
		if err := cbor.Unmarshal(payload, &record); err != nil {
			return nil, fmt.Errorf("decode response %s: %w", rec.ID, err)
		}
		if rec.Payload, err = record.Decode(questionType); err != nil {
			return nil, err
		}
		rec.SessionID = sessionID
		rec.SubmittedAt = fromNanos(submittedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (domain.Session, error) {
	var s domain.Session
	var modules []byte
	var createdAt, startedAt, endedAt int64
	if err := row.Scan(&s.ID, &s.Code, &s.OwnerID, &s.ModuleID, &modules, &s.State,
		&s.CurrentSubmodule, &s.CurrentQuestion, &s.Version, &s.MaxParticipants,
		&createdAt, &startedAt, &endedAt); err != nil {
		return domain.Session{}, err
	}
	if len(modules) > 0 {
		if err := cbor.Unmarshal(modules, &s.UnlockedModules); err != nil {
			return domain.Session{}, fmt.Errorf("decode modules: %w", err)
		}
	}
	s.CreatedAt = fromNanos(createdAt)
	s.StartedAt = fromNanos(startedAt)
	s.EndedAt = fromNanos(endedAt)
	return s, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
