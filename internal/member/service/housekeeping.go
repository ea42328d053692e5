package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/crewdesk/memberd/pkg/slogx"
)

// Housekeeping runs the expiry sweep on a fixed interval in the
// background. Stop blocks until the loop has exited.
type Housekeeping struct {
	invitations *InvitationService
	interval    time.Duration
	stop        chan struct{}
	done        chan struct{}
}

func NewHousekeeping(invitations *InvitationService, interval time.Duration) *Housekeeping {
	return &Housekeeping{
		invitations: invitations,
		interval:    interval,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

func (h *Housekeeping) Start(ctx context.Context) {
	go h.run(ctx)
}

func (h *Housekeeping) run(ctx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	log := slogx.FromContext(ctx)
	log.Info("housekeeping started", slog.Duration("interval", h.interval))

	for {
		select {
		case <-ticker.C:
			if count := h.invitations.SweepExpired(ctx); count > 0 {
				log.Info("expired invitations swept", slog.Int64("count", count))
			}
		case <-h.stop:
			log.Info("housekeeping stopped")
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Housekeeping) Stop() {
	close(h.stop)
	<-h.done
}
