package scheduler

import (
	"runtime/debug"

	"fmn/internal/task"
)

// run is the coordinating loop. It is the only goroutine that touches the
// registry, so the map needs no locking. It exits when quit closes; a panic
// anywhere in the loop also closes done so that facade calls fail
// deterministically instead of hanging.
func (s *Scheduler) run() {
	defer close(s.done)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("scheduler loop panicked")
		}
	}()

	registry := make(map[task.ID]chan struct{})
	// Clocks report natural completion here so their registry entries do not
	// pile up over a long daemon uptime.
	finished := make(chan task.ID, commandBuffer)

	for {
		select {
		case c := <-s.cmds:
			switch c.kind {
			case cmdAdd:
				s.add(registry, finished, c.task)
			case cmdCancel:
				s.cancel(registry, c.id)
			}
		case id := <-finished:
			if _, ok := registry[id]; ok {
				delete(registry, id)
				if s.cfg.OnTaskDone != nil {
					s.cfg.OnTaskDone(id)
				}
			}
		case <-s.quit:
			for id, stop := range registry {
				close(stop)
				delete(registry, id)
			}
			return
		}
	}
}

func (s *Scheduler) add(registry map[task.ID]chan struct{}, finished chan task.ID, t task.Task) {
	if _, ok := registry[t.ID]; ok {
		// IDs are never reused; a duplicate means a caller bug.
		s.log.Warn().Str("task_id", t.ID).Msg("duplicate task id, ignoring add")
		return
	}
	s.log.Info().Str("task_id", t.ID).Stringer("clock", t.Clock).Msg("task scheduled")

	stop := make(chan struct{})
	registry[t.ID] = stop

	c := &clock{
		task:     t,
		stop:     stop,
		notifier: s.notifier,
		loc:      s.cfg.Location,
		log:      s.log.With().Str("task_id", t.ID).Logger(),
	}
	go func() {
		c.run()
		select {
		case finished <- t.ID:
		case <-s.done:
		}
	}()
}

func (s *Scheduler) cancel(registry map[task.ID]chan struct{}, id task.ID) {
	stop, ok := registry[id]
	if !ok {
		s.log.Warn().Str("task_id", id).Msg("cancel for unknown task, ignoring")
		return
	}
	close(stop)
	delete(registry, id)
	s.log.Info().Str("task_id", id).Msg("task cancelled")
}
