// Package audit delivers the domain events that lifecycle operations
// return. Services hand back events as values and never dispatch them
// themselves; the HTTP layer passes them to a Recorder, the single place
// deciding where they land.
package audit

import (
	"context"
	"log/slog"

	"github.com/crewdesk/memberd/internal/member/domain"
	"github.com/crewdesk/memberd/pkg/slogx"
)

type Recorder interface {
	Record(ctx context.Context, events ...domain.Event)
}

// SlogRecorder writes events to the structured log. Counters or an event
// bus can replace it without touching the services.
type SlogRecorder struct{}

func (SlogRecorder) Record(ctx context.Context, events ...domain.Event) {
	log := slogx.FromContext(ctx)
	for _, ev := range events {
		attrs := []any{
			slog.String("event", ev.Name),
			slog.String("tenant_id", ev.TenantID),
			slog.String("subject_id", ev.SubjectID),
			slog.Time("occurred_at", ev.OccurredAt),
		}
		if ev.ActorID != "" {
			attrs = append(attrs, slog.String("actor_id", ev.ActorID))
		}
		for k, v := range ev.Meta {
			attrs = append(attrs, slog.String("meta."+k, v))
		}
		log.Info("audit", attrs...)
	}
}
