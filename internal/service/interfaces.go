package service

import (
	"context"
	"time"

	"github.com/mwhite7112/woodpantry-pickle/internal/clients"
	"github.com/mwhite7112/woodpantry-pickle/internal/events"
)

// Completer answers a pickling prompt. Implemented by clients.OpenAIClient.
type Completer interface {
	Complete(ctx context.Context, req clients.CompletionRequest) (string, error)
}

// EventPublisher abstracts the pickle.checked publisher for testing.
type EventPublisher interface {
	PublishPickleChecked(ctx context.Context, event events.PickleChecked) error
}

// CheckRecorder receives one observation per finished check.
type CheckRecorder interface {
	ObserveCheck(outcome string, d time.Duration)
}
