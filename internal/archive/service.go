package archive

import (
	"context"
	"log/slog"
	"time"

	"voicewatch/internal/monitor"
)

// Archiver persists completed calls as they leave the live registry.
type Archiver struct {
	store Store
	log   *slog.Logger
	clock func() time.Time

	// timeout bounds each Save so a slow database cannot stall the
	// notification conduit's delivery goroutine chain.
	timeout time.Duration
}

func NewArchiver(store Store, log *slog.Logger) *Archiver {
	return &Archiver{
		store:   store,
		log:     log,
		clock:   time.Now,
		timeout: 5 * time.Second,
	}
}

// Attach subscribes the archiver to the monitor's removal notifications and
// returns the unsubscribe function.
func (a *Archiver) Attach(m *monitor.Monitor) func() {
	return m.Subscribe(monitor.TopicCallRemoved, a.handle)
}

func (a *Archiver) handle(ntf monitor.Notification) {
	if ntf.Record == nil || ntf.Record.Status != monitor.StatusCompleted {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	call := FromRecord(*ntf.Record, a.clock().UTC())
	if err := a.store.Save(ctx, call); err != nil {
		a.log.Error("failed to archive call", "call_id", call.CallID, "error", err)
		return
	}
	a.log.Info("call archived", "call_id", call.CallID, "duration_seconds", call.DurationSeconds)
}
