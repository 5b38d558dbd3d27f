package e2e

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"session-lab/domain"
	"session-lab/errors"
	"session-lab/grpc/api"
	"session-lab/grpc/client"
	"session-lab/projection"
)

type testTrainingSessionSuite struct {
	BaseGrpcSuite
}

func TestTrainingSessionSuite(t *testing.T) {
	suite.Run(t, &testTrainingSessionSuite{})
}

type attendee struct {
	client  *client.SessionClient
	joined  *api.JoinResponse
	board   *projection.Board
	stopped chan error
}

func (s *testTrainingSessionSuite) TestLiveSessionFlow() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	admin := s.NewClient("Admin")
	var session api.Session

	// --- STEP 0: ADMIN OPENS A SESSION ---
	s.Run("Step 0: Login, create and start a session", func() {
		s.Require().NoError(admin.Login(ctx, s.Config.AdminID, s.Config.AdminPassword))

		created, err := admin.API.CreateSession(admin.Auth(ctx), &api.CreateSessionRequest{
			ModuleID: "onboarding",
			Questions: []domain.Question{
				{
					ID: "mood", SubmoduleID: "warmup", Type: domain.SingleChoice,
					Config:     domain.QuestionConfig{Options: []string{"good", "tired"}},
					Visibility: domain.VisibilityLive,
				},
				{
					ID: "takeaway", SubmoduleID: "wrapup", Type: domain.WordCloud,
					Config:     domain.QuestionConfig{MaxLength: 30},
					Visibility: domain.VisibilityLive,
				},
			},
		})
		s.Require().NoError(err)
		s.Require().Len(created.Session.Code, 6)

		started, err := admin.API.Start(admin.Auth(ctx), &api.SessionRequest{SessionID: created.Session.ID})
		s.Require().NoError(err)
		s.Require().Equal(domain.StateActive, started.Session.State)
		s.Require().Equal(domain.QuestionID("mood"), started.Session.CurrentQuestion)
		session = started.Session
	})

	// --- STEP 1: PARTICIPANTS JOIN AND FOLLOW ---
	attendees := make([]*attendee, s.Config.Participants)
	s.Run("Step 1: Participants join by code and subscribe", func() {
		for i := range attendees {
			c := s.NewClient(fmt.Sprintf("Participant %d", i))
			joined, err := c.Join(ctx, session.Code, fmt.Sprintf("attendee-%d", i))
			s.Require().NoError(err)
			s.Require().False(joined.Rejoined)

			a := &attendee{client: c, joined: joined, board: projection.NewBoard(), stopped: make(chan error, 1)}
			go func() { a.stopped <- c.Follow(ctx, session.ID, a.board, nil) }()
			attendees[i] = a
		}

		online, err := admin.API.ListOnline(admin.Auth(ctx), &api.SessionRequest{SessionID: session.ID})
		s.Require().NoError(err)
		s.Require().Len(online.Participants, len(attendees))
	})

	// --- STEP 2: SUBMISSIONS CONVERGE ON EVERY BOARD ---
	s.Run("Step 2: Every board converges to the final tally", func() {
		var wg sync.WaitGroup
		for i, a := range attendees {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := a.client.Submit(ctx, "mood", domain.SingleChoiceAnswer{Option: i % 2})
				s.NoError(err)
			}()
		}
		wg.Wait()

		for _, a := range attendees {
			s.Eventually(func() bool {
				tally, ok := a.board.Tally("mood")
				return ok && tally.Responses == len(attendees)
			}, 5*time.Second, 20*time.Millisecond)
		}

		// A changed answer replaces the previous one
		res, err := attendees[0].client.Submit(ctx, "mood", domain.SingleChoiceAnswer{Option: 1})
		s.Require().NoError(err)
		s.Require().True(res.Replaced)
		s.Require().Equal(len(attendees), res.Tally.Responses)
	})

	// --- STEP 3: RECONNECTION KEEPS THE IDENTITY ---
	s.Run("Step 3: Rejoin restores the participant and its answer", func() {
		a := attendees[0]
		rejoined, err := a.client.Rejoin(ctx)
		s.Require().NoError(err)
		s.Require().True(rejoined.Rejoined)
		s.Require().Equal(a.joined.Participant.ID, rejoined.Participant.ID)

		snapshot, err := a.client.Resync(ctx, session.ID, "mood", 0)
		s.Require().NoError(err)
		s.Require().True(snapshot.HasExistingResponse)
		s.Require().NotNil(snapshot.Tally)
	})

	// --- STEP 4: ALERTS REACH THE ADMIN ---
	s.Run("Step 4: A pause request is relayed to the admin", func() {
		raised, err := attendees[1].client.API.RaiseAlert(attendees[1].client.Auth(ctx), &api.RaiseAlertRequest{Type: domain.AlertPauseRequest})
		s.Require().NoError(err)
		s.Require().False(raised.Delivered, "no admin stream is open")

		alerts, err := admin.API.RecentAlerts(admin.Auth(ctx), &api.SessionRequest{SessionID: session.ID})
		s.Require().NoError(err)
		s.Require().Len(alerts.Alerts, 1)
		s.Require().Equal(domain.AlertPauseRequest, alerts.Alerts[0].Type)
	})

	// --- STEP 5: END OF SESSION ---
	s.Run("Step 5: Ending the session closes every stream cleanly", func() {
		ended, err := admin.API.End(admin.Auth(ctx), &api.SessionRequest{SessionID: session.ID})
		s.Require().NoError(err)
		s.Require().Equal(domain.StateEnded, ended.Session.State)

		for _, a := range attendees {
			select {
			case err := <-a.stopped:
				s.Require().NoError(err)
			case <-time.After(5 * time.Second):
				s.FailNow("stream still open after the end of the session")
			}
			s.Require().Equal(domain.StateEnded, a.board.State.State)
		}

		_, err = attendees[2].client.Submit(ctx, "mood", domain.SingleChoiceAnswer{Option: 0})
		s.Require().Equal(codes.FailedPrecondition, status.Code(err))
		s.Require().Equal(errors.CodeSessionEnded, errors.FromGRPCError(err))
	})
}
