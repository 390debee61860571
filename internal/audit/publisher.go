package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"issuer-gateway/pkg/requestcontext"
)

// Publisher hands audit events to a buffered channel drained by the Worker,
// so emitting never blocks the request path. A full buffer drops the event
// with a warning rather than stalling issuance.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 1024
	}
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Emit enqueues an event, filling in ID, request ID and timestamp. A nil
// publisher is a no-op so components can treat audit as optional.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"event_type", event.Type,
			"issuer_did", event.IssuerDid,
		)
	}
}

// Inbox exposes the receive side for the Worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}
