package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sd "github.com/coreos/go-systemd/v22/daemon"
	"github.com/rs/zerolog"

	"fmn/internal/config"
	"fmn/internal/daemon"
	"fmn/pkg/logx"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", defaultConfigPath(), "path to config yaml")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
	log := logx.New(logx.Config{Level: cfg.Log.Level, Console: cfg.Log.Console})

	d, err := daemon.New(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		os.Exit(1)
	}

	// Hot reload of log level and notify defaults. Only when the config file
	// actually exists; a defaults-only daemon has nothing to watch.
	if _, statErr := os.Stat(cfgPath); statErr == nil {
		go func() {
			if err := config.Watch(ctx, cfgPath, log, d.Apply); err != nil {
				log.Warn().Err(err).Msg("config watch unavailable")
			}
		}()
	}

	notifySystemd(ctx, log)

	if err := d.Run(ctx); err != nil {
		log.Error().Err(err).Msg("daemon failed")
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir + "/fmn/config.yaml"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return home + "/.config/fmn/config.yaml"
}

// notifySystemd reports readiness and keeps the watchdog fed when fmnd runs
// as a systemd service. A no-op outside systemd.
func notifySystemd(ctx context.Context, log zerolog.Logger) {
	if ok, err := sd.SdNotify(false, sd.SdNotifyReady); err != nil {
		log.Warn().Err(err).Msg("sd_notify failed")
	} else if ok {
		log.Debug().Msg("systemd notified ready")
	}

	interval, err := sd.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}
	go func() {
		t := time.NewTicker(interval / 2)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				_, _ = sd.SdNotify(false, sd.SdNotifyStopping)
				return
			case <-t.C:
				_, _ = sd.SdNotify(false, sd.SdNotifyWatchdog)
			}
		}
	}()
}
