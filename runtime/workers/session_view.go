package workers

import (
	"session-lab/aggregation"
	"session-lab/domain"
)

// View is an immutable picture of a session published by its actor after every change.
// Readers load it without going through the actor queue.
type View struct {
	Session      domain.Session
	Agenda       []domain.Question
	Participants map[domain.ParticipantID]domain.Participant
	Online       []domain.Participant
	Respondents  map[domain.QuestionID]domain.Respondents
	Alerts       []domain.Alert
	tallies      map[domain.QuestionID]*aggregation.QuestionTally
}

func (v *View) Question(id domain.QuestionID) (domain.Question, bool) {
	for _, q := range v.Agenda {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Question{}, false
}

// Tally reads the latest published snapshot of a question.
func (v *View) Tally(id domain.QuestionID) (aggregation.Snapshot, bool) {
	t, ok := v.tallies[id]
	if !ok {
		return aggregation.Snapshot{}, false
	}
	return t.Snapshot(), true
}

func (v *View) Responded(q domain.QuestionID, p domain.ParticipantID) bool {
	return v.Respondents[q].Has(p)
}

func (v *View) Participant(id domain.ParticipantID) (domain.Participant, bool) {
	p, ok := v.Participants[id]
	return p, ok
}
