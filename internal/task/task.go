package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ID uniquely identifies a task for its whole life. IDs are assigned once at
// creation and never reused.
type ID = string

type ClockKind int

const (
	// ClockOnce fires exactly once at an absolute point in time.
	ClockOnce ClockKind = iota
	// ClockPeriod fires once per elapsed interval until cancelled.
	ClockPeriod
	// ClockOncePerDay fires once per calendar day at the given local
	// hour and minute until cancelled.
	ClockOncePerDay
)

// Clock is the firing rule of a task. Exactly the fields for its Kind are
// meaningful; the rest stay zero.
type Clock struct {
	Kind   ClockKind     `json:"kind"`
	At     time.Time     `json:"at,omitempty"`
	Every  time.Duration `json:"every,omitempty"`
	Hour   int           `json:"hour,omitempty"`
	Minute int           `json:"minute,omitempty"`
}

func Once(at time.Time) Clock          { return Clock{Kind: ClockOnce, At: at} }
func Period(every time.Duration) Clock { return Clock{Kind: ClockPeriod, Every: every} }
func OncePerDay(hour, minute int) Clock {
	return Clock{Kind: ClockOncePerDay, Hour: hour, Minute: minute}
}

func (c Clock) String() string {
	switch c.Kind {
	case ClockOnce:
		return "at " + c.At.Format("2006-01-02 15:04")
	case ClockPeriod:
		return fmt.Sprintf("every %s", c.Every)
	case ClockOncePerDay:
		return fmt.Sprintf("daily at %02d:%02d", c.Hour, c.Minute)
	default:
		return fmt.Sprintf("unknown clock kind %d", int(c.Kind))
	}
}

// Task is an immutable reminder definition. CreatedAt is metadata only and
// plays no part in scheduling.
type Task struct {
	ID          ID        `json:"id"`
	Description string    `json:"description"`
	Clock       Clock     `json:"clock"`
	Image       string    `json:"image,omitempty"`
	Sound       string    `json:"sound,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// New builds a task with a fresh unique ID.
func New(description string, clock Clock, image, sound string) Task {
	return Task{
		ID:          uuid.NewString(),
		Description: description,
		Clock:       clock,
		Image:       image,
		Sound:       sound,
		CreatedAt:   time.Now(),
	}
}
