package history

import (
	"context"
	"sync"
	"time"

	"github.com/Iron-Ham/cargodeck/internal/event"
	"github.com/Iron-Ham/cargodeck/internal/logging"
)

// recordTimeout bounds a single insert from a bus handler.
const recordTimeout = 2 * time.Second

// Recorder writes every finished command published on a bus to a Store.
type Recorder struct {
	store  *Store
	logger *logging.Logger

	mu   sync.Mutex
	dirs map[string]string // session ID -> working directory
	subs []string
	bus  *event.Bus
}

// NewRecorder creates a Recorder. A nil logger discards write failures.
func NewRecorder(store *Store, logger *logging.Logger) *Recorder {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Recorder{
		store:  store,
		logger: logger,
		dirs:   make(map[string]string),
	}
}

// Attach subscribes the recorder to bus. Call Detach to stop recording.
func (r *Recorder) Attach(bus *event.Bus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bus = bus
	r.subs = append(r.subs,
		bus.Subscribe(event.TypeCommandStarted, r.handleStarted),
		bus.Subscribe(event.TypeCommandFinished, r.handleFinished),
	)
}

// Detach removes the recorder's subscriptions.
func (r *Recorder) Detach() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bus == nil {
		return
	}
	for _, id := range r.subs {
		r.bus.Unsubscribe(id)
	}
	r.subs = nil
	r.bus = nil
}

func (r *Recorder) handleStarted(e event.Event) {
	started, ok := e.(event.CommandStartedEvent)
	if !ok {
		return
	}
	r.mu.Lock()
	r.dirs[started.SessionID] = started.Dir
	r.mu.Unlock()
}

func (r *Recorder) handleFinished(e event.Event) {
	finished, ok := e.(event.CommandFinishedEvent)
	if !ok {
		return
	}

	r.mu.Lock()
	dir := r.dirs[finished.SessionID]
	delete(r.dirs, finished.SessionID)
	r.mu.Unlock()

	entry := Entry{
		SessionID:  finished.SessionID,
		Command:    finished.Command,
		Project:    dir,
		ExitCode:   finished.ExitCode,
		Elapsed:    finished.Elapsed,
		Stopped:    finished.Stopped,
		FinishedAt: finished.Timestamp(),
	}
	if finished.Err != nil {
		entry.Error = finished.Err.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if _, err := r.store.Record(ctx, entry); err != nil {
		r.logger.Warn("failed to record command history",
			"session_id", finished.SessionID,
			"error", err.Error(),
		)
	}
}
