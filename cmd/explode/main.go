package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/explode/internal/cli"
	"github.com/JonMunkholm/explode/internal/config"
	"github.com/JonMunkholm/explode/internal/logging"
)

func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := run(os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitFailure)
	}
}

// run holds the program so it can return errors instead of exiting.
// Exploded rows go to the output file or stdout; errW gets everything else.
func run(errW io.Writer, args []string) error {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return &cli.ExitError{Code: cli.ExitUsage, Message: err.Error(), Err: err}
	}

	opts, shouldExit, err := cli.Parse(args, errW, cfg)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	logging.Setup(errW, opts.LogLevel, opts.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err = cli.Run(ctx, opts, errW)
	return err
}
