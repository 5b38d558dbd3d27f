package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"session-lab/domain/event"
	"session-lab/mocks"
)

func TestEventFanout_Fanout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	logSink := mocks.NewMockEventSink(ctrl)
	statsSink := mocks.NewMockEventSink(ctrl)
	fanout := NewEventFanout(log, nil, nil, time.Second, logSink, statsSink)

	done := make(chan struct{}, 2)
	evt := event.Event{Type: event.PresenceChangedType, CreatedAt: time.Now(), Payload: event.PresenceChanged{SessionID: "s1"}}
	// Given both sinks consume the same event
	for _, sink := range []*mocks.MockEventSink{logSink, statsSink} {
		sink.EXPECT().Consume(gomock.Any(), evt).DoAndReturn(
			func(ctx context.Context, e event.Event) error {
				done <- struct{}{}
				return nil
			}).Times(1)
	}

	// When the event is fanned out
	fanout.Fanout(context.Background(), evt)

	// Then every sink got it
	for range 2 {
		select {
		case <-done:
		case <-time.After(time.Second):
			req.Fail("Sink was not consumed in time")
		}
	}
}

func TestEventFanout_SinkTimeout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	slowSink := mocks.NewMockEventSink(ctrl)
	fanout := NewEventFanout(log, nil, nil, 20*time.Millisecond, slowSink)

	cancelled := make(chan error, 1)
	// Given a sink that never answers on its own
	slowSink.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, e event.Event) error {
			<-ctx.Done()
			cancelled <- ctx.Err()
			return ctx.Err()
		}).Times(1)

	// When an event is fanned out
	fanout.Fanout(context.Background(), event.Event{Type: event.AlertRaisedType})

	// Then the sink is cut off by its timeout
	select {
	case err := <-cancelled:
		req.ErrorIs(err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		req.Fail("Sink timeout did not trigger")
	}
}

func TestEventFanout_RunStopsWithContext(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := mocks.NewMockEventSink(ctrl)
	events := make(chan event.Event, 1)
	fanout := NewEventFanout(slog.Default(), events, nil, time.Second, sink)

	consumed := make(chan struct{})
	sink.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, e event.Event) error {
			close(consumed)
			return nil
		}).Times(1)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- fanout.Run(ctx) }()

	events <- event.Event{Type: event.SessionStateChangedType}
	<-consumed
	cancel()

	select {
	case err := <-stopped:
		req.NoError(err)
	case <-time.After(time.Second):
		req.Fail("Fanout did not stop")
	}
}
