// Package journal records wizard events in the run journal. The journal is
// write-only from the wizard's point of view: nothing is ever restored from it.
package journal

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/reward/internal/store"
	"github.com/abhisek/reward/internal/wizard"
)

// appendTimeout bounds one journal write.
const appendTimeout = 2 * time.Second

// DefaultQueueSize is the number of events buffered ahead of the writer.
const DefaultQueueSize = 256

// Writer appends wizard events to the run journal on its own goroutine, in
// the order they were published. Listener callbacks never touch the database.
type Writer struct {
	repo  store.RunEventRepo
	log   *zap.Logger
	queue chan store.RunEventData
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewWriter starts a writer over repo buffering up to size events. A full
// queue drops the event with a warning.
func NewWriter(repo store.RunEventRepo, log *zap.Logger, size int) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	if size <= 0 {
		size = DefaultQueueSize
	}
	w := &Writer{
		repo:  repo,
		log:   log.Named("journal"),
		queue: make(chan store.RunEventData, size),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

// Listener returns a wizard.Listener that queues each meaningful event.
func (w *Writer) Listener() wizard.Listener {
	return func(e wizard.Event) {
		data, ok := Record(e)
		if !ok {
			return
		}
		w.enqueue(data)
	}
}

func (w *Writer) enqueue(data store.RunEventData) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.queue <- data:
	default:
		w.log.Warn("journal queue full, dropping run event",
			zap.String("kind", data.Kind),
			zap.String("session", data.SessionID),
		)
	}
}

// Close stops accepting events and waits until the queued ones are written.
func (w *Writer) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)
	for data := range w.queue {
		w.append(data)
	}
}

func (w *Writer) append(data store.RunEventData) {
	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()
	if err := w.repo.AppendRunEvent(ctx, data); err != nil {
		w.log.Warn("failed to journal run event",
			zap.String("kind", data.Kind),
			zap.String("session", data.SessionID),
			zap.Error(err),
		)
	}
}

// Record maps an event to its journal row. Focus requests carry no state
// change and are skipped.
func Record(e wizard.Event) (store.RunEventData, bool) {
	if e.Kind == wizard.EventFocusIdentity {
		return store.RunEventData{}, false
	}

	s := e.State
	data := store.RunEventData{
		SessionID:    s.Session.Token.ID,
		Token:        s.Session.Token.Label,
		Kind:         string(e.Kind),
		Step:         s.Step.String(),
		AttemptCount: s.Session.AttemptCount,
		Gate:         s.Gate.String(),
		Reveal:       s.Reveal.String(),
		Identity:     s.Session.IdentityLabel,
	}

	switch {
	case e.Kind == wizard.EventAttemptCompleted:
		data.Detail = e.Outcome.String()
	case e.Err != nil:
		var verr *wizard.ValidationError
		if errors.As(e.Err, &verr) {
			data.Detail = verr.Message
		} else {
			data.Detail = e.Err.Error()
		}
	}
	return data, true
}
