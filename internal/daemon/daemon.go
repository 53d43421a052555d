// Package daemon assembles the fmnd process: config, task registry, notifier
// stack, scheduler and the TCP request loop.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"fmn/internal/config"
	"fmn/internal/notify"
	"fmn/internal/scheduler"
	"fmn/internal/store"
	"fmn/internal/task"
	"fmn/pkg/logx"
)

type Daemon struct {
	log    zerolog.Logger
	listen string

	store *store.Store
	sched *scheduler.Scheduler

	// defaults is the reloadable part of the notify config.
	defaults atomic.Pointer[notifyDefaults]

	wg sync.WaitGroup
}

type notifyDefaults struct {
	image string
	sound string
}

func New(cfg *config.Config, log zerolog.Logger) (*Daemon, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DBPath(), log.With().Str("component", "store").Logger())
	if err != nil {
		return nil, err
	}

	notifier, err := buildNotifier(cfg, log)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	d := &Daemon{
		log:    log,
		listen: cfg.Listen,
		store:  st,
	}
	d.defaults.Store(&notifyDefaults{image: cfg.Notify.DefaultImage, sound: cfg.Notify.DefaultSound})

	d.sched = scheduler.New(scheduler.Config{
		Location: loc,
		OnTaskDone: func(id task.ID) {
			// Keep the registry listing honest once a task finishes on its
			// own. Off the loop goroutine: Remove does IO.
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if _, err := st.Remove(ctx, id); err != nil {
					log.Warn().Err(err).Str("task_id", id).Msg("prune finished task failed")
				}
			}()
		},
	}, notifier, log.With().Str("component", "scheduler").Logger())

	return d, nil
}

func buildNotifier(cfg *config.Config, log zerolog.Logger) (notify.Notifier, error) {
	var backends notify.Multi
	if cfg.Notify.DesktopEnabled() {
		desktop, err := notify.NewDesktop(log.With().Str("notify", "desktop").Logger())
		if err != nil {
			return nil, fmt.Errorf("desktop notifier: %w", err)
		}
		backends = append(backends, desktop)
	}
	if cfg.Notify.Telegram.Token != "" {
		tg, err := notify.NewTelegram(cfg.Notify.Telegram.Token, cfg.Notify.Telegram.ChatID,
			log.With().Str("notify", "telegram").Logger())
		if err != nil {
			return nil, fmt.Errorf("telegram notifier: %w", err)
		}
		backends = append(backends, tg)
	}

	var n notify.Notifier
	switch len(backends) {
	case 0:
		log.Warn().Msg("no notification backend configured, reminders go to the log only")
		n = notify.Func(func(_ context.Context, nt notify.Notification) error {
			log.Info().Str("summary", nt.Summary).Str("body", nt.Body).Msg("reminder")
			return nil
		})
	case 1:
		n = backends[0]
	default:
		n = backends
	}

	if cfg.Notify.RatePerMinute > 0 {
		n = notify.Limit(n, cfg.Notify.RatePerMinute, log.With().Str("notify", "limit").Logger())
	}
	return n, nil
}

// Apply hot-reloads the reloadable subset of the config: log level and
// default notification attachments. Listen address, timezone and backends
// need a restart.
func (d *Daemon) Apply(cfg *config.Config) {
	logx.SetLevel(cfg.Log.Level)
	d.defaults.Store(&notifyDefaults{image: cfg.Notify.DefaultImage, sound: cfg.Notify.DefaultSound})
}

// Run serves the client protocol until ctx is cancelled, then shuts down the
// scheduler and the registry.
func (d *Daemon) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", d.listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", d.listen, err)
	}
	d.log.Info().Str("addr", d.listen).Msg("daemon listening")

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, net.ErrClosed) {
				break
			}
			d.log.Warn().Err(err).Msg("accept failed")
			continue
		}
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.handle(conn)
		}()
	}

	d.wg.Wait()
	d.sched.Close()
	err = d.store.Close()
	d.log.Info().Msg("daemon stopped")
	return err
}
