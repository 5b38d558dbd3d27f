package domain

import (
	"slices"
	"time"
)

// ResponseRecord is one accepted answer.
// Ordinal is zero unless the question allows duplicate word-cloud entries.
type ResponseRecord struct {
	ID            string
	SessionID     SessionID
	QuestionID    QuestionID
	ParticipantID ParticipantID
	Ordinal       int
	Payload       Payload
	Lang          string
	SubmittedAt   time.Time

	// TallyVersion is the version of the question tally once this record was applied.
	TallyVersion uint64
}

// ResponseKey is the upsert identity of a record.
type ResponseKey struct {
	Question    QuestionID
	Participant ParticipantID
	Ordinal     int
}

func (r ResponseRecord) Key() ResponseKey {
	return ResponseKey{Question: r.QuestionID, Participant: r.ParticipantID, Ordinal: r.Ordinal}
}

// Respondents is an immutable set of participants that answered a question.
// A new set is built whenever a first-time respondent arrives, so readers may share it freely.
type Respondents map[ParticipantID]struct{}

func (r Respondents) Has(id ParticipantID) bool {
	_, ok := r[id]
	return ok
}

// with returns r itself when id is already present, otherwise a copy including id.
func (r Respondents) with(id ParticipantID) Respondents {
	if r.Has(id) {
		return r
	}
	next := make(Respondents, len(r)+1)
	for k := range r {
		next[k] = struct{}{}
	}
	next[id] = struct{}{}
	return next
}

// ResponseIndex is the in-memory side of the Response Store for one session.
// It is owned by the session actor and is not safe for concurrent use.
type ResponseIndex struct {
	records     map[QuestionID]map[ResponseKey]ResponseRecord
	ordinals    map[QuestionID]map[ParticipantID]int
	respondents map[QuestionID]Respondents
}

func NewResponseIndex() *ResponseIndex {
	return &ResponseIndex{
		records:     make(map[QuestionID]map[ResponseKey]ResponseRecord),
		ordinals:    make(map[QuestionID]map[ParticipantID]int),
		respondents: make(map[QuestionID]Respondents),
	}
}

// Put stores rec under its key and returns the record it replaced, if any.
func (x *ResponseIndex) Put(rec ResponseRecord) (ResponseRecord, bool) {
	byKey, ok := x.records[rec.QuestionID]
	if !ok {
		byKey = make(map[ResponseKey]ResponseRecord)
		x.records[rec.QuestionID] = byKey
	}
	prev, replaced := byKey[rec.Key()]
	byKey[rec.Key()] = rec

	ords, ok := x.ordinals[rec.QuestionID]
	if !ok {
		ords = make(map[ParticipantID]int)
		x.ordinals[rec.QuestionID] = ords
	}
	if rec.Ordinal >= ords[rec.ParticipantID] {
		ords[rec.ParticipantID] = rec.Ordinal + 1
	}
	x.respondents[rec.QuestionID] = x.respondents[rec.QuestionID].with(rec.ParticipantID)
	return prev, replaced
}

// Existing returns the record currently stored under key.
func (x *ResponseIndex) Existing(key ResponseKey) (ResponseRecord, bool) {
	rec, ok := x.records[key.Question][key]
	return rec, ok
}

// NextOrdinal returns the ordinal an appended duplicate entry should use.
func (x *ResponseIndex) NextOrdinal(q QuestionID, p ParticipantID) int {
	return x.ordinals[q][p]
}

func (x *ResponseIndex) Responded(q QuestionID, p ParticipantID) bool {
	return x.respondents[q].Has(p)
}

// Respondents returns the shared immutable respondent set of q.
func (x *ResponseIndex) Respondents(q QuestionID) Respondents {
	return x.respondents[q]
}

// Records returns the records of q ordered by submission time.
func (x *ResponseIndex) Records(q QuestionID) []ResponseRecord {
	byKey := x.records[q]
	res := make([]ResponseRecord, 0, len(byKey))
	for _, rec := range byKey {
		res = append(res, rec)
	}
	slices.SortFunc(res, func(a, b ResponseRecord) int {
		if c := a.SubmittedAt.Compare(b.SubmittedAt); c != 0 {
			return c
		}
		if a.ParticipantID != b.ParticipantID {
			if a.ParticipantID < b.ParticipantID {
				return -1
			}
			return 1
		}
		return a.Ordinal - b.Ordinal
	})
	return res
}

// Count returns the number of records stored for q.
func (x *ResponseIndex) Count(q QuestionID) int {
	return len(x.records[q])
}
