package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/signals-client/app"
	"github.com/jrsteele09/signals-client/internal/config"
)

type rootOptions struct {
	configFile string
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "signals",
		Short:         "Session, deep link and filter tooling for the signals client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configureLogging(opts.debug)
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		statusCmd(opts),
		loginCmd(opts),
		logoutCmd(opts),
		refreshCmd(opts),
		openCmd(opts),
		filtersCmd(opts),
		magicLinkCmd(opts),
		oauthURLCmd(opts),
		initKeyCmd(opts),
	)
	return rootCmd
}

func configureLogging(debugEnabled bool) {
	level := zerolog.InfoLevel
	if debugEnabled {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// withApp builds and starts the app, runs fn and closes the app again.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app.App) error) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := app.New(ctx, cfg, app.WithLogger(log.Logger))
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil && returnError == nil {
			returnError = err
		}
	}()

	a.Start(ctx)
	return fn(ctx, a)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
