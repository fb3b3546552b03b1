package watcher

import (
	"context"
	"slices"
	"time"

	"github.com/ritzau/dotedit/pkg/logging"
)

// Debouncer batches rapid file system events so a burst of writes causes a
// single reload.
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer. A batch is released once no
// event arrived for quietPeriod, or maxWait after its first event.
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

// run owns both timers, so flushing never races with accumulation.
func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		pending      *ChangeEvent
		eventCount   int
		quietTimer   *time.Timer
		maxWaitTimer *time.Timer
		quiet        <-chan time.Time
		deadline     <-chan time.Time
	)

	flush := func() {
		if pending == nil {
			return
		}
		logging.Debug("flushing accumulated events", "count", eventCount, "type", pending.Type)
		select {
		case d.output <- *pending:
		case <-ctx.Done():
		}
		pending = nil
		eventCount = 0
		quietTimer.Stop()
		maxWaitTimer.Stop()
		quiet, deadline = nil, nil
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}

			// The latest event decides what the batch means: a remove
			// followed by a create is a save.
			if pending == nil {
				pending = &ChangeEvent{}
			}
			pending.Type = event.Type
			pending.Timestamp = event.Timestamp
			for _, p := range event.Paths {
				if !slices.Contains(pending.Paths, p) {
					pending.Paths = append(pending.Paths, p)
				}
			}
			eventCount++

			// Reset quiet period timer
			if quietTimer == nil {
				quietTimer = time.NewTimer(d.quietPeriod)
			} else {
				quietTimer.Reset(d.quietPeriod)
			}
			quiet = quietTimer.C

			// Start max wait timer on first event of a batch
			if deadline == nil {
				if maxWaitTimer == nil {
					maxWaitTimer = time.NewTimer(d.maxWait)
				} else {
					maxWaitTimer.Reset(d.maxWait)
				}
				deadline = maxWaitTimer.C
			}

		case <-quiet:
			flush()

		case <-deadline:
			flush()
		}
	}
}

// Output returns the channel of debounced events
func (d *Debouncer) Output() <-chan ChangeEvent {
	return d.output
}
