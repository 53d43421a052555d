package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"fmn/internal/notify"
	"fmn/internal/task"
)

// notifySummary is the title line of every reminder notification.
const notifySummary = "forget-me-not"

// notifyTimeout bounds a single Notifier call so a stuck delivery backend
// cannot wedge a clock goroutine forever.
const notifyTimeout = 30 * time.Second

// clock is one live task's timing behavior. It runs on its own goroutine and
// suspends only at its race point: stop channel vs timer.
type clock struct {
	task     task.Task
	stop     <-chan struct{}
	notifier notify.Notifier
	loc      *time.Location
	log      zerolog.Logger
}

func (c *clock) run() {
	switch c.task.Clock.Kind {
	case task.ClockOnce:
		c.runOnce()
	case task.ClockPeriod:
		c.runPeriod()
	case task.ClockOncePerDay:
		c.runDaily()
	default:
		c.log.Error().Int("kind", int(c.task.Clock.Kind)).Msg("unknown clock kind, dropping task")
	}
}

// sleep is the shared race primitive: it waits until either the duration
// elapses (returns true) or the stop channel closes (returns false).
func (c *clock) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-c.stop:
		return false
	case <-t.C:
		return true
	}
}

func (c *clock) fire() error {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	return c.notifier.Notify(ctx, notify.Notification{
		Summary: notifySummary,
		Body:    c.task.Description,
		Image:   c.task.Image,
		Sound:   c.task.Sound,
	})
}

func (c *clock) runOnce() {
	delay := time.Until(c.task.Clock.At)
	if delay <= 0 {
		// A rule already in the past never fires. Deliberate no-op.
		c.log.Warn().Time("at", c.task.Clock.At).Msg("fire time already passed, dropping task")
		return
	}
	if !c.sleep(delay) {
		c.log.Info().Msg("once clock cancelled")
		return
	}
	c.log.Info().Msg("once clock fired")
	if err := c.fire(); err != nil {
		c.log.Error().Err(err).Msg("notification failed")
	}
}

func (c *clock) runPeriod() {
	every := c.task.Clock.Every
	for {
		if !c.sleep(every) {
			c.log.Info().Dur("every", every).Msg("periodic clock cancelled")
			return
		}
		c.log.Info().Dur("every", every).Msg("periodic clock fired")
		if err := c.fire(); err != nil {
			// One delivery failure permanently ends the schedule. No retry.
			c.log.Error().Err(err).Msg("notification failed, stopping periodic clock")
			return
		}
	}
}

func (c *clock) runDaily() {
	sched, err := dailySchedule(c.task.Clock.Hour, c.task.Clock.Minute)
	if err != nil {
		c.log.Error().Err(err).Msg("invalid daily clock, dropping task")
		return
	}
	for {
		now := time.Now().In(c.loc)
		next := sched.Next(now)
		if !c.sleep(next.Sub(now)) {
			c.log.Info().Msg("daily clock cancelled")
			return
		}
		c.log.Info().Time("at", next).Msg("daily clock fired")
		if err := c.fire(); err != nil {
			c.log.Error().Err(err).Msg("notification failed, stopping daily clock")
			return
		}
		// Re-arm: Next is strictly after the fire we just did, so a matching
		// minute can never fire twice.
	}
}

// dailySchedule builds the once-per-day schedule for hour:minute. The cron
// parser owns the calendar math (month ends, DST), which keeps wraparound
// bugs out of this package.
func dailySchedule(hour, minute int) (cron.Schedule, error) {
	return cron.ParseStandard(fmt.Sprintf("%d %d * * *", minute, hour))
}
