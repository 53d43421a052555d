package scheduler

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"fmn/internal/notify"
	"fmn/internal/task"
)

// ErrUnavailable is returned by AddTask and CancelTask after the coordinating
// loop has terminated (explicit Close or an internal panic). Once returned it
// is permanent.
var ErrUnavailable = errors.New("scheduler is no longer running")

// commandBuffer bounds the facade-to-loop channel. A full buffer blocks the
// caller until the loop drains a slot (backpressure, not drop).
const commandBuffer = 8

type commandKind int

const (
	cmdAdd commandKind = iota
	cmdCancel
)

type command struct {
	kind commandKind
	task task.Task
	id   task.ID
}

// Config carries the collaborators of a Scheduler.
type Config struct {
	// Location is the timezone used for daily clocks. Captured once here;
	// the scheduler never re-resolves it. Defaults to time.Local.
	Location *time.Location

	// OnTaskDone, when set, is invoked from the coordinating loop after a
	// task leaves the registry on its own (a fired Once clock, a recurring
	// clock stopped by a delivery failure). Explicit cancellation does not
	// trigger it. Must not block.
	OnTaskDone func(id task.ID)
}

// Scheduler accepts add/cancel commands from arbitrary goroutines and
// forwards them to the coordinating loop. Safe for concurrent use.
type Scheduler struct {
	notifier notify.Notifier
	log      zerolog.Logger
	cfg      Config

	cmds chan command
	quit chan struct{}
	done chan struct{}

	closeOnce sync.Once
}

// New starts the coordinating loop on its own goroutine and returns the
// facade. The loop runs until Close is called.
//
// Clocks passed to AddTask must already be validated (non-zero period, hour
// and minute in range); the scheduler does not re-check them.
func New(cfg Config, notifier notify.Notifier, log zerolog.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	s := &Scheduler{
		notifier: notifier,
		log:      log,
		cfg:      cfg,
		cmds:     make(chan command, commandBuffer),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go s.run()
	return s
}

// AddTask schedules t. It returns once the command is buffered, not once the
// loop has processed it.
func (s *Scheduler) AddTask(t task.Task) error {
	return s.send(command{kind: cmdAdd, task: t})
}

// CancelTask requests cancellation of the task with the given id. The request
// is idempotent: ids that are unknown or already finished are ignored.
func (s *Scheduler) CancelTask(id task.ID) error {
	return s.send(command{kind: cmdCancel, id: id})
}

// Close stops the coordinating loop and cancels every live task. It blocks
// until the loop has exited. Subsequent AddTask/CancelTask calls fail with
// ErrUnavailable.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
	<-s.done
}

func (s *Scheduler) send(c command) error {
	select {
	case <-s.done:
		return ErrUnavailable
	case <-s.quit:
		return ErrUnavailable
	default:
	}
	select {
	case s.cmds <- c:
		return nil
	case <-s.done:
		return ErrUnavailable
	case <-s.quit:
		return ErrUnavailable
	}
}
