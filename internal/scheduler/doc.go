// Package scheduler is the timing core of fmn.
//
// A Scheduler is a thin facade over a single coordinating goroutine. Callers
// hand it tasks over a bounded command channel; the loop owns the map of live
// tasks and their stop channels, and spawns one clock goroutine per task.
// Each clock races its timer against its stop channel and invokes the
// Notifier when the timer wins.
//
// Cancellation is cooperative and best-effort: a clock observes its closed
// stop channel at its next race point. Cancelling an unknown or already
// finished task is a logged no-op, never an error.
package scheduler
