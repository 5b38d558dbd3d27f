package projection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"session-lab/aggregation"
	"session-lab/domain"
	"session-lab/domain/event"
)

func TestAlertLog_KeepsMostRecent(t *testing.T) {
	req := require.New(t)
	log := NewAlertLog(3)

	for i, name := range []string{"Ana", "Ben", "Cid", "Dee"} {
		log.Consume(event.AlertRaised{Alert: domain.Alert{DisplayName: name, RaisedAt: time.Unix(int64(i), 0)}})
	}

	recent := log.Recent()
	req.Len(recent, 3)
	req.Equal("Ben", recent[0].DisplayName)
	req.Equal("Dee", recent[2].DisplayName)
}

func TestAlertLog_DefaultSize(t *testing.T) {
	req := require.New(t)
	log := NewAlertLog(0)
	for range 7 {
		log.Add(domain.Alert{Type: domain.AlertOverwhelmed})
	}
	req.Equal(DefaultAlertHistory, log.Len())
}

func TestBoard_DetectsVersionGap(t *testing.T) {
	req := require.New(t)
	board := NewBoard()
	tally := func(v uint64) event.TallyUpdated {
		return event.TallyUpdated{Tally: aggregation.Snapshot{QuestionID: "q1", Version: v}}
	}

	req.False(board.Consume(tally(1)))
	req.False(board.Consume(tally(2)))

	// Given a duplicate delivery, Then it is ignored
	req.False(board.Consume(tally(2)))

	// Given a lost message, Then the board asks for a resync
	req.True(board.Consume(tally(4)))
	req.True(board.Stale("q1"))
	snap, _ := board.Tally("q1")
	req.Equal(uint64(2), snap.Version)

	// When the resync answer arrives, Then the board is consistent again
	board.Reset(aggregation.Snapshot{QuestionID: "q1", Version: 4})
	req.False(board.Stale("q1"))
	req.False(board.Consume(tally(5)))
}

func TestBoard_Presence(t *testing.T) {
	req := require.New(t)
	board := NewBoard()

	board.Consume(event.PresenceChanged{ParticipantID: "p1", DisplayName: "Mara", Online: true, Version: 1})
	board.Consume(event.PresenceChanged{ParticipantID: "p1", Online: false, Version: 2})
	// Late join event must not resurrect Mara
	board.Consume(event.PresenceChanged{ParticipantID: "p1", DisplayName: "Mara", Online: true, Version: 1})

	req.Empty(board.Online)
}
