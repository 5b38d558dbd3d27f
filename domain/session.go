// Package domain contains core concepts of the training session engine.
// Types here hold state and enforce invariants; they never perform I/O.
package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"slices"
	"time"

	"session-lab/errors"
)

type (
	SessionID     string
	ParticipantID string
	QuestionID    string
	SubmoduleID   string
	ModuleID      string
)

type State string

const (
	StateCreated State = "created"
	StateActive  State = "active"
	StatePaused  State = "paused"
	StateEnded   State = "ended"
)

// transitions lists the legal lifecycle moves. Ended is terminal.
var transitions = map[State][]State{
	StateCreated: {StateActive, StateEnded},
	StateActive:  {StatePaused, StateEnded},
	StatePaused:  {StateActive, StateEnded},
}

func (s State) CanTransitionTo(next State) bool {
	return slices.Contains(transitions[s], next)
}

// Open reports whether the session still accepts participant activity.
func (s State) Open() bool {
	return s == StateActive || s == StatePaused
}

type Session struct {
	ID               SessionID
	Code             string
	OwnerID          string
	ModuleID         ModuleID
	UnlockedModules  []ModuleID
	State            State
	CurrentSubmodule SubmoduleID
	CurrentQuestion  QuestionID
	Version          uint64
	MaxParticipants  int
	CreatedAt        time.Time
	StartedAt        time.Time
	EndedAt          time.Time
}

// Start moves a created session to active and positions the pointer on its first submodule.
func (s *Session) Start(first SubmoduleID, firstQuestion QuestionID, now time.Time) error {
	if err := s.move(StateActive); err != nil {
		return err
	}
	s.CurrentSubmodule = first
	s.CurrentQuestion = firstQuestion
	s.StartedAt = now
	return nil
}

func (s *Session) Pause() error {
	if s.State != StateActive {
		return errors.New(errors.CodeInvalidTransition, "cannot pause a %s session", s.State)
	}
	return s.move(StatePaused)
}

func (s *Session) Resume() error {
	if s.State != StatePaused {
		return errors.New(errors.CodeInvalidTransition, "cannot resume a %s session", s.State)
	}
	return s.move(StateActive)
}

// AdvanceTo moves the pointer. Only active or paused sessions can advance.
func (s *Session) AdvanceTo(submodule SubmoduleID, question QuestionID) error {
	if !s.State.Open() {
		return errors.New(errors.CodeInvalidTransition, "cannot advance a %s session", s.State)
	}
	s.CurrentSubmodule = submodule
	s.CurrentQuestion = question
	s.Version++
	return nil
}

func (s *Session) End(now time.Time) error {
	if err := s.move(StateEnded); err != nil {
		return err
	}
	s.EndedAt = now
	return nil
}

// UnlockModule records a module as reachable. Unlocking twice is a no-op but still bumps the version.
func (s *Session) UnlockModule(module ModuleID) error {
	if s.State == StateEnded {
		return errors.New(errors.CodeInvalidTransition, "cannot unlock a module on an ended session")
	}
	if !slices.Contains(s.UnlockedModules, module) {
		s.UnlockedModules = append(s.UnlockedModules, module)
	}
	s.Version++
	return nil
}

// Touch bumps the version for changes that do not move the lifecycle (e.g. a question closing).
func (s *Session) Touch() { s.Version++ }

func (s *Session) move(next State) error {
	if !s.State.CanTransitionTo(next) {
		return errors.New(errors.CodeInvalidTransition, "cannot move session from %s to %s", s.State, next)
	}
	s.State = next
	s.Version++
	return nil
}

// Clone returns a copy that shares no slices with the receiver.
func (s Session) Clone() Session {
	s.UnlockedModules = slices.Clone(s.UnlockedModules)
	return s
}

const codeSpace = 1_000_000

// GenerateCode draws a random 6-digit join code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ValidCode reports whether code is exactly six ASCII digits.
func ValidCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
