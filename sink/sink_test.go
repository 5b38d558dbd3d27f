package sink_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"session-lab/aggregation"
	"session-lab/domain"
	"session-lab/domain/event"
	"session-lab/sink"
)

func TestChannelSubscriber_Deliver(t *testing.T) {
	req := require.New(t)
	sub := sink.NewChannelSubscriber("c1", domain.RoleParticipant, "p1", 1)

	// Given a buffer of one event
	req.True(sub.Deliver(event.PresenceChanged{SessionID: "s1", Version: 1}))

	// When the client does not read
	ok := sub.Deliver(event.PresenceChanged{SessionID: "s1", Version: 2})

	// Then the second event is refused instead of blocking
	req.False(ok)
	evt := <-sub.Events()
	req.Equal(uint64(1), evt.EventVersion())
}

func TestChannelSubscriber_CloseIsIdempotent(t *testing.T) {
	req := require.New(t)
	sub := sink.NewChannelSubscriber("c1", domain.RoleAdmin, "", 4)

	sub.Close()
	sub.Close()

	<-sub.Done()
	req.False(sub.Deliver(event.PresenceChanged{SessionID: "s1"}))
}

func TestStatsSink_Consume(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Flush triggered by size limit", func(t *testing.T) {
		req := require.New(t)
		s := sink.NewStatsSink(logger, 2, time.Hour)

		req.NoError(s.Consume(ctx, event.Wrap(event.SessionStateChanged{SessionID: "s1", State: domain.StateActive}, at)))
		req.Zero(s.Snapshot().Flushes)

		req.NoError(s.Consume(ctx, event.Wrap(event.TallyUpdated{
			SessionID: "s1",
			Tally:     aggregation.Snapshot{QuestionID: "q1", Responses: 3, Version: 4},
		}, at.Add(time.Second))))

		stats := s.Snapshot()
		req.Equal(uint64(1), stats.Flushes)
		req.Equal(domain.StateActive, stats.States["s1"])
		req.Equal(3, stats.Responses["s1/q1"])
		req.Equal(at.Add(time.Second), stats.LastSeen["s1"])
		req.Equal(uint64(1), stats.Events[event.TallyUpdatedType])
	})

	t.Run("Flush triggered by timeout (asynchronous)", func(t *testing.T) {
		req := require.New(t)
		s := sink.NewStatsSink(logger, 100, 20*time.Millisecond)

		// Only one event, so the size-based flush won't trigger
		req.NoError(s.Consume(ctx, event.Event{Type: event.ProcessStatsType, CreatedAt: at}))

		req.Eventually(func() bool { return s.Snapshot().Flushes == 1 }, time.Second, 5*time.Millisecond)
		req.Equal(uint64(1), s.Snapshot().Events[event.ProcessStatsType])
	})
}

func TestLogSink_IgnoresUnknownPayloads(t *testing.T) {
	req := require.New(t)
	s := sink.NewLogSink(slog.New(slog.NewTextHandler(io.Discard, nil)))

	req.NoError(s.Consume(context.Background(), event.Event{Type: "UNKNOWN"}))
	req.NoError(s.Consume(context.Background(), event.Wrap(event.AlertRaised{Alert: domain.Alert{SessionID: "s1"}}, time.Now())))
}
