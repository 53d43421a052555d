package notify

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Limited drops notifications beyond a per-minute budget so a short-period
// task cannot flood the desktop. A dropped notification is not a delivery
// failure: returning an error here would tear down recurring schedules, which
// is exactly the wrong response to a burst.
type Limited struct {
	inner   Notifier
	limiter *rate.Limiter
	log     zerolog.Logger
}

func Limit(inner Notifier, perMinute int, log zerolog.Logger) *Limited {
	return &Limited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute),
		log:     log,
	}
}

func (l *Limited) Notify(ctx context.Context, n Notification) error {
	if !l.limiter.Allow() {
		l.log.Warn().Str("summary", n.Summary).Msg("notification dropped by rate limit")
		return nil
	}
	return l.inner.Notify(ctx, n)
}
