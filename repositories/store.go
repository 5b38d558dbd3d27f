package repositories

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"session-lab/contract"
	"session-lab/domain"
	"session-lab/errors"
)

const (
	sessionPrefix     = "session:"
	codePrefix        = "code:"
	participantPrefix = "participant:"
	questionPrefix    = "question:"
	responsePrefix    = "response:"
)

var _ contract.Store = (*BadgerStore)(nil)

// BadgerStore persists sessions, participants, questions and responses in one badger DB.
//
//	session:{sid}                          -> DiskSession
//	code:{code}                            -> sid, only while the session is not ended
//	participant:{sid}:{pid}                -> DiskParticipant
//	question:{sid}:{qid}                   -> DiskQuestion
//	response:{sid}:{qid}:{pid}:{ordinal}   -> DiskResponse
type BadgerStore struct {
	db  *badger.DB
	log *slog.Logger
}

func NewBadgerStore(db *badger.DB, log *slog.Logger) *BadgerStore {
	return &BadgerStore{db: db, log: log}
}

// OpenBadgerStore opens (or creates) the database at path.
func OpenBadgerStore(path string, log *slog.Logger) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, err
	}
	return NewBadgerStore(db, log), nil
}

func (s *BadgerStore) DB() *badger.DB { return s.db }

func (s *BadgerStore) Close() error { return s.db.Close() }

func sessionKey(id domain.SessionID) []byte { return []byte(sessionPrefix + string(id)) }

func codeKey(code string) []byte { return []byte(codePrefix + code) }

func participantKey(sid domain.SessionID, pid domain.ParticipantID) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", participantPrefix, sid, pid))
}

func questionKey(sid domain.SessionID, qid domain.QuestionID) []byte {
	return []byte(fmt.Sprintf("%s%s:%s", questionPrefix, sid, qid))
}

// responseKey pads the ordinal so appended word-cloud entries list in order.
func responseKey(r domain.ResponseRecord) []byte {
	return []byte(fmt.Sprintf("%s%s:%s:%s:%06d", responsePrefix, r.SessionID, r.QuestionID, r.ParticipantID, r.Ordinal))
}

// SaveSession writes the session and keeps the code index in step:
// the code is reserved while the session lives and released once it ends.
// Reserving a code already held by another live session fails with CodeInUse.
// Questions passed along are written in the same transaction.
func (s *BadgerStore) SaveSession(ctx context.Context, session domain.Session, questions ...domain.Question) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(FromSession(session))
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		ck := codeKey(session.Code)
		if session.State == domain.StateEnded {
			if owner, err := readString(txn, ck); err == nil && owner == string(session.ID) {
				if err := txn.Delete(ck); err != nil {
					return err
				}
			}
		} else {
			owner, err := readString(txn, ck)
			switch {
			case err == nil && owner != string(session.ID):
				return errors.New(errors.CodeCodeInUse, "code %s is already in use", session.Code)
			case err != nil && !errors.Is(err, badger.ErrKeyNotFound):
				return err
			case err != nil:
				if err := txn.Set(ck, []byte(session.ID)); err != nil {
					return err
				}
			}
		}
		if err := setQuestions(txn, questions); err != nil {
			return err
		}
		return txn.Set(sessionKey(session.ID), data)
	})
}

func (s *BadgerStore) GetSession(ctx context.Context, id domain.SessionID) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}
	var session domain.Session
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		session, err = getSession(txn, id)
		return err
	})
	return session, err
}

func (s *BadgerStore) FindSessionByCode(ctx context.Context, code string) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}
	var session domain.Session
	err := s.db.View(func(txn *badger.Txn) error {
		owner, err := readString(txn, codeKey(code))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errors.New(errors.CodeSessionNotFound, "no session with code %s", code)
		}
		if err != nil {
			return err
		}
		session, err = getSession(txn, domain.SessionID(owner))
		return err
	})
	return session, err
}

// ListOpenSessions returns every session that has not ended.
func (s *BadgerStore) ListOpenSessions(ctx context.Context) ([]domain.Session, error) {
	var sessions []domain.Session
	err := s.scan(ctx, []byte(sessionPrefix), func(value []byte) error {
		disk, err := decode[DiskSession](value)
		if err != nil {
			return err
		}
		if domain.State(disk.State) != domain.StateEnded {
			sessions = append(sessions, disk.ToSession())
		}
		return nil
	})
	return sessions, err
}

func (s *BadgerStore) SaveParticipant(ctx context.Context, p domain.Participant) error {
	return s.put(ctx, participantKey(p.SessionID, p.ID), FromParticipant(p))
}

func (s *BadgerStore) ListParticipants(ctx context.Context, sessionID domain.SessionID) ([]domain.Participant, error) {
	var participants []domain.Participant
	prefix := []byte(fmt.Sprintf("%s%s:", participantPrefix, sessionID))
	err := s.scan(ctx, prefix, func(value []byte) error {
		disk, err := decode[DiskParticipant](value)
		if err != nil {
			return err
		}
		participants = append(participants, disk.ToParticipant())
		return nil
	})
	return participants, err
}

// SaveQuestions writes every question in one transaction.
func (s *BadgerStore) SaveQuestions(ctx context.Context, questions []domain.Question) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return setQuestions(txn, questions)
	})
}

func setQuestions(txn *badger.Txn, questions []domain.Question) error {
	for _, q := range questions {
		data, err := encode(FromQuestion(q))
		if err != nil {
			return fmt.Errorf("marshal question %s: %w", q.ID, err)
		}
		if err := txn.Set(questionKey(q.SessionID, q.ID), data); err != nil {
			return err
		}
	}
	return nil
}

func (s *BadgerStore) ListQuestions(ctx context.Context, sessionID domain.SessionID) ([]domain.Question, error) {
	var questions []domain.Question
	prefix := []byte(fmt.Sprintf("%s%s:", questionPrefix, sessionID))
	err := s.scan(ctx, prefix, func(value []byte) error {
		disk, err := decode[DiskQuestion](value)
		if err != nil {
			return err
		}
		questions = append(questions, disk.ToQuestion())
		return nil
	})
	return questions, err
}

// SaveResponse upserts by (session, question, participant, ordinal).
func (s *BadgerStore) SaveResponse(ctx context.Context, rec domain.ResponseRecord) error {
	return s.put(ctx, responseKey(rec), FromResponse(rec))
}

func (s *BadgerStore) ListResponses(ctx context.Context, sessionID domain.SessionID) ([]domain.ResponseRecord, error) {
	var records []domain.ResponseRecord
	prefix := []byte(fmt.Sprintf("%s%s:", responsePrefix, sessionID))
	err := s.scan(ctx, prefix, func(value []byte) error {
		disk, err := decode[DiskResponse](value)
		if err != nil {
			return err
		}
		rec, err := disk.ToResponse()
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	return records, err
}

func (s *BadgerStore) put(ctx context.Context, key []byte, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// scan walks every value under prefix in key order.
func (s *BadgerStore) scan(ctx context.Context, prefix []byte, fn func(value []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}

func getSession(txn *badger.Txn, id domain.SessionID) (domain.Session, error) {
	item, err := txn.Get(sessionKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return domain.Session{}, errors.New(errors.CodeSessionNotFound, "session %s not found", id)
	}
	if err != nil {
		return domain.Session{}, err
	}
	var disk DiskSession
	err = item.Value(func(value []byte) error {
		disk, err = decode[DiskSession](value)
		return err
	})
	return disk.ToSession(), err
}

func readString(txn *badger.Txn, key []byte) (string, error) {
	item, err := txn.Get(key)
	if err != nil {
		return "", err
	}
	value, err := item.ValueCopy(nil)
	return string(value), err
}
