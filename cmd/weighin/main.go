package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/weighin/weighin-go/api"
	"github.com/weighin/weighin-go/internal/config"
	"github.com/weighin/weighin-go/session"
)

func main() {
	if err := run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			debug.PrintStack()
			returnError = errors.Errorf("panic recovered: %v", r)
		}
	}()

	cfg := config.New()
	logger := newLogger(cfg)

	store, err := newSessionStore(cfg, logger)
	if err != nil {
		return err
	}
	client, err := api.New(cfg, store, api.WithClientLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Restore any session from a previous run; a missing or corrupt
	// entry just means we start logged out.
	if _, err := store.Load(ctx); err != nil {
		return err
	}

	if cfg.GetEnv() == "DEV" {
		displayAppName()
	}

	return newApp(client).RunContext(ctx, args)
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func newSessionStore(cfg config.Config, logger zerolog.Logger) (*session.Store, error) {
	var storage session.Storage
	if addr := cfg.GetRedisAddr(); addr != "" {
		storage = session.NewRedisStorage(redis.NewClient(&redis.Options{Addr: addr}))
	} else {
		storage = session.NewFileStorage(cfg.GetSessionFile())
	}
	return session.NewStore(storage, session.WithLogger(logger))
}

func displayAppName() {
	myFigure := figure.NewFigure("Weigh-In", "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
