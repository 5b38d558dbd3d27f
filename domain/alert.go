package domain

import "time"

type AlertType string

const (
	AlertPauseRequest AlertType = "pause-request"
	AlertOverwhelmed  AlertType = "overwhelmed"
)

func (t AlertType) Valid() bool {
	return t == AlertPauseRequest || t == AlertOverwhelmed
}

// Alert is an ephemeral participant-to-admin signal. It is never persisted.
type Alert struct {
	SessionID     SessionID     `json:"sessionId"`
	ParticipantID ParticipantID `json:"participantId"`
	DisplayName   string        `json:"displayName"`
	Type          AlertType     `json:"type"`
	RaisedAt      time.Time     `json:"raisedAt"`
}
