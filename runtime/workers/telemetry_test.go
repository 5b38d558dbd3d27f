package workers

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"session-lab/domain/event"
)

func TestTelemetryWorker_DispatchesToHandlers(t *testing.T) {
	req := require.New(t)
	log := slog.Default()
	telemetry := make(chan event.Event, 10)
	counter := event.NewCounter()
	accepted := event.NewResponseAcceptedHandler(log, counter)
	worker := NewTelemetryWorker(log, telemetry, accepted)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- worker.Run(ctx) }()

	// When two responses are reported
	for range 2 {
		telemetry <- event.Event{Type: event.ResponseAcceptedType, CreatedAt: time.Now(), Payload: event.ResponseAccepted{SessionID: "s1", QuestionID: "q1"}}
	}

	// Then the handler counted both and the worker stops with its context
	req.Eventually(func() bool { return counter.Get(event.ResponseAcceptedType) == 2 }, time.Second, 10*time.Millisecond)
	cancel()
	req.NoError(<-stopped)
}

func TestChannelCapacityWorker_SamplesCurrentChannels(t *testing.T) {
	req := require.New(t)
	telemetry := make(chan event.Event, 10)
	inbox := make(chan int, 4)
	inbox <- 1
	worker := NewChannelCapacityWorker(slog.Default(), func() []NamedChannel {
		return []NamedChannel{{Name: "session-s1", Channel: inbox}, {Name: "broken", Channel: 42}}
	}, telemetry, time.Hour)

	// When a sample is taken
	worker.sample(context.Background())

	// Then only the real channel is reported
	req.Len(telemetry, 1)
	evt := <-telemetry
	req.Equal(event.ChannelCapacity{ChannelName: "session-s1", Capacity: 4, Length: 1}, evt.Payload)
}
