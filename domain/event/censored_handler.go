package event

import (
	"log/slog"
	"sync"

	"session-lab/errors"
)

// CensoredHandler counts word-cloud entries refused by the profanity screen.
type CensoredHandler struct {
	mu      sync.Mutex
	log     *slog.Logger
	counter uint64
	hit     map[string]uint64
}

func NewCensoredHandler(log *slog.Logger) *CensoredHandler {
	return &CensoredHandler{
		log: log,
		hit: make(map[string]uint64),
	}
}

func (h *CensoredHandler) Handle(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch event.Type {
	case ProfanityRejectedType:
		payload, ok := event.Payload.(ProfanityRejected)
		if !ok {
			h.log.Error(errors.ErrInvalidPayload.Error())
			return
		}
		h.counter++
		for _, w := range payload.Words {
			h.hit[w]++
		}
		h.log.Debug("word cloud entry rejected", "session_id", payload.SessionID, "total", h.counter)
	}
}

// Hits returns how many times word was refused.
func (h *CensoredHandler) Hits(word string) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hit[word]
}
