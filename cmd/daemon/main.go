package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gofrs/flock"
	lanbeacon "github.com/lanbeacon/go-lanbeacon"
	"github.com/lanbeacon/go-lanbeacon/refresher"
	"github.com/lanbeacon/go-lanbeacon/zeroconf"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// responderInitTimeout bounds the startup retries when the responder is
// not yet available (e.g. avahi-daemon still starting at boot).
const responderInitTimeout = 30 * time.Second

func main() {
	configPath := pflag.StringP("config", "c", "config.json", "path to the configuration file")
	pflag.String("log_level", "", "log level (overrides the config file)")
	showVersion := pflag.Bool("version", false, "print version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Println(lanbeacon.VersionString())
		return
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	logger := LogrusAdapter{log.NewEntry(log.StandardLogger())}

	cfg := lanbeacon.LoadConfig(logger, *configPath, pflag.CommandLine)

	if level, err := log.ParseLevel(cfg.LogLevel); err != nil {
		log.WithError(err).Warnf("invalid log level %q, using info", cfg.LogLevel)
		log.SetLevel(log.InfoLevel)
	} else {
		log.SetLevel(level)
	}

	log.Infof("%s starting", lanbeacon.SystemInfoString())

	// one daemon per config file, otherwise two instances would fight
	// over the same service record
	lock := flock.New(*configPath + ".lock")
	if locked, err := lock.TryLock(); err != nil {
		log.WithError(err).Fatalf("failed acquiring instance lock")
	} else if !locked {
		log.Fatalf("another instance is already running (lock held on %s)", lock.Path())
	}
	defer func() { _ = lock.Unlock() }()

	hostname, err := os.Hostname()
	if err != nil {
		log.WithError(err).Fatalf("failed resolving hostname")
	}

	desc := lanbeacon.NewServiceDescriptor(cfg, hostname)

	responder, err := acquireResponder(logger, cfg)
	if err != nil {
		log.WithError(err).Fatalf("failed initializing zeroconf responder")
	}

	r := refresher.New(logger, responder, desc, cfg.Interval())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof("received %s, shutting down", sig)
		r.Stop()
		cancel()
	}()

	_ = r.Run(ctx)

	// covers the non-signal exit paths; a no-op if Stop already ran
	r.Stop()
}

// acquireResponder creates the configured responder backend, retrying
// with exponential backoff so the daemon survives starting before the
// system responder does. An unknown backend name fails immediately.
func acquireResponder(logger lanbeacon.Logger, cfg *lanbeacon.Config) (zeroconf.Responder, error) {
	var responder zeroconf.Responder

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = responderInitTimeout

	err := backoff.Retry(func() error {
		var err error
		responder, err = zeroconf.NewResponder(logger, cfg.Backend, cfg.Interface)
		if errors.Is(err, zeroconf.ErrUnknownBackend) {
			return backoff.Permanent(err)
		} else if err != nil {
			logger.WithError(err).Warnf("zeroconf responder not available, retrying")
			return err
		}
		return nil
	}, bo)
	if err != nil {
		return nil, err
	}

	return responder, nil
}
