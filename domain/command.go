package domain

import (
	"time"

	"github.com/go-playground/validator/v10"

	"session-lab/errors"
)

var validate = validator.New()

// Command is anything queued on a session actor.
type Command interface {
	Session() SessionID
}

// AdminCommand identifies the session and the admin driving it.
type AdminCommand struct {
	SessionID SessionID `validate:"required"`
	AdminID   string    `validate:"required"`
}

func (c AdminCommand) Session() SessionID { return c.SessionID }

type StartCommand struct{ AdminCommand }

type PauseCommand struct{ AdminCommand }

type ResumeCommand struct{ AdminCommand }

type EndCommand struct{ AdminCommand }

type AdvanceCommand struct {
	AdminCommand
	Submodule SubmoduleID `validate:"required"`
}

type CloseQuestionCommand struct {
	AdminCommand
	QuestionID QuestionID `validate:"required"`
}

type UnlockModuleCommand struct {
	AdminCommand
	ModuleID ModuleID `validate:"required"`
}

// RecomputeCommand rebuilds a tally from its ResponseRecords.
// AdminID is empty when the engine itself requests the repair.
// The rebuilt version ends above Floor.
type RecomputeCommand struct {
	SessionID  SessionID
	AdminID    string
	QuestionID QuestionID
	Floor      uint64
}

func (c RecomputeCommand) Session() SessionID { return c.SessionID }

// CreateSessionCommand is handled by the orchestrator before any actor exists.
type CreateSessionCommand struct {
	AdminID         string     `validate:"required"`
	ModuleID        ModuleID   `validate:"required"`
	Code            string     `validate:"omitempty,numeric,len=6"`
	MaxParticipants int        `validate:"gte=0"`
	Questions       []Question `validate:"dive"`
}

// JoinCommand carries the human-entry code; the orchestrator resolves it to SessionID.
type JoinCommand struct {
	SessionID     SessionID
	Code          string        `validate:"required,numeric,len=6"`
	DisplayName   string        `validate:"required,min=1,max=40"`
	ParticipantID ParticipantID `validate:"omitempty,max=64"`
}

func (c JoinCommand) Session() SessionID { return c.SessionID }

// PresenceCommand marks a participant online (heartbeat) or offline (leave).
type PresenceCommand struct {
	SessionID     SessionID     `validate:"required"`
	ParticipantID ParticipantID `validate:"required"`
	Online        bool
}

func (c PresenceCommand) Session() SessionID { return c.SessionID }

type SubmitCommand struct {
	SessionID     SessionID     `validate:"required"`
	QuestionID    QuestionID    `validate:"required"`
	ParticipantID ParticipantID `validate:"required"`
	Payload       PayloadRecord
	SubmittedAt   time.Time
}

func (c SubmitCommand) Session() SessionID { return c.SessionID }

type RaiseAlertCommand struct {
	SessionID     SessionID     `validate:"required"`
	ParticipantID ParticipantID `validate:"required"`
	Type          AlertType     `validate:"required,oneof=pause-request overwhelmed"`
}

func (c RaiseAlertCommand) Session() SessionID { return c.SessionID }

// SweepCommand is queued by the actor's own ticker.
type SweepCommand struct {
	SessionID SessionID
	Now       time.Time
}

func (c SweepCommand) Session() SessionID { return c.SessionID }

// Validate runs the struct tags of any command.
func Validate(cmd any) error {
	if err := validate.Struct(cmd); err != nil {
		return errors.Wrap(errors.CodeInvalidArgument, "invalid command", err)
	}
	return nil
}
