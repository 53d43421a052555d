// Package notify renders reminder notifications. The scheduler only sees the
// Notifier interface; backends and decorators live here.
package notify

import (
	"context"
	"errors"
)

// Notification is one rendered reminder. Image and Sound are optional file
// references interpreted by the backend.
type Notification struct {
	Summary string
	Body    string
	Image   string
	Sound   string
}

// Notifier delivers a notification. An error return means the delivery
// failed; recurring schedules stop permanently on the first failure.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, n Notification) error

func (f Func) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }

// Multi fans one notification out to every backend and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, b := range m {
		if err := b.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
