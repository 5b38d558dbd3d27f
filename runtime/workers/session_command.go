package workers

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/cenkalti/backoff/v5"

	"session-lab/aggregation"
	"session-lab/domain"
	"session-lab/errors"
)

var errQueueFull = stderrors.New("session queue is full")

type envelope struct {
	cmd   domain.Command
	reply chan result
}

type result struct {
	value any
	err   error
}

type JoinResult struct {
	Participant     domain.Participant
	Session         domain.Session
	Rejoined        bool
	CapacityWarning bool
	OnlineCount     int
}

type SubmitResult struct {
	Record   domain.ResponseRecord
	Replaced bool
	Tally    aggregation.Snapshot
}

type AlertResult struct {
	Alert     domain.Alert
	Delivered bool
}

// Ask queues cmd on the actor and waits for its answer. A full queue is retried
// with exponential backoff; the whole exchange is bounded by maxWait and
// surfaces as Timeout when exceeded.
func Ask[T any](ctx context.Context, w *SessionWorker, cmd domain.Command, maxWait time.Duration) (T, error) {
	var zero T
	ctx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	env := envelope{cmd: cmd, reply: make(chan result, 1)}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 100 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		select {
		case <-w.done:
			return struct{}{}, backoff.Permanent(EndedError(cmd))
		case w.inbox <- env:
			return struct{}{}, nil
		default:
			return struct{}{}, errQueueFull
		}
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(maxWait))
	if err != nil {
		if errors.CodeOf(err) != "" {
			return zero, err
		}
		return zero, errors.Wrap(errors.CodeTimeout, "session is overloaded", err)
	}

	select {
	case r := <-env.reply:
		return unwrap[T](r)
	case <-w.done:
		// The actor may have answered right before stopping.
		select {
		case r := <-env.reply:
			return unwrap[T](r)
		default:
			return zero, EndedError(cmd)
		}
	case <-ctx.Done():
		return zero, errors.Wrap(errors.CodeTimeout, "session did not answer in time", ctx.Err())
	}
}

// EndedError is the answer to any command reaching a session after its end.
// Lifecycle moves are illegal transitions; everything else is refused as SessionEnded.
func EndedError(cmd domain.Command) error {
	switch cmd.(type) {
	case domain.StartCommand, domain.PauseCommand, domain.ResumeCommand, domain.EndCommand,
		domain.AdvanceCommand, domain.UnlockModuleCommand:
		return errors.New(errors.CodeInvalidTransition, "session %s has ended", cmd.Session())
	}
	return errors.ErrSessionEnded
}

func unwrap[T any](r result) (T, error) {
	var zero T
	if r.err != nil {
		return zero, r.err
	}
	v, ok := r.value.(T)
	if !ok {
		return zero, errors.New(errors.CodeInvalidArgument, "unexpected answer %T", r.value)
	}
	return v, nil
}
