package event

import "session-lab/domain"

const (
	RestartedAfterPanicType Type = "WORKER_RESTARTED_AFTER_PANIC"
	ChannelCapacityType     Type = "CHANNEL_CAPACITY"
	ProcessStatsType        Type = "PROCESS_STATS"
	ResponseAcceptedType    Type = "RESPONSE_ACCEPTED"
	ProfanityRejectedType   Type = "PROFANITY_REJECTED"
	SubscriberDroppedType   Type = "SUBSCRIBER_DROPPED"
)

type WorkerRestartedAfterPanic struct {
	WorkerName string
}

type ChannelCapacity struct {
	ChannelName string
	Capacity    int
	Length      int
}

type ProcessStats struct {
	PID        int32
	CPUPercent float64
	RSS        uint64
	Sessions   int
}

type ResponseAccepted struct {
	SessionID  domain.SessionID
	QuestionID domain.QuestionID
	Replaced   bool
}

type ProfanityRejected struct {
	SessionID domain.SessionID
	Words     []string
}

type SubscriberDropped struct {
	SessionID    domain.SessionID
	SubscriberID string
}
