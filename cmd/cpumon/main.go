package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/cpumon/internal/config"
	"codeberg.org/mutker/cpumon/internal/errors"
	"codeberg.org/mutker/cpumon/internal/logger"
	"github.com/spf13/pflag"
)

const usage = `Usage: cpumon <command> [flags]

Commands:
  record    Record JSON-lines samples from stdin into daily logs
  render    Plot a daily log in the terminal
  import    Import every daily log into the SQLite archive
  history   Plot archived samples for a time range

Run "cpumon <command> --help" for command flags.
`

type command func(ctx context.Context, cfg *config.Config, fs *pflag.FlagSet) error

// subcommand wires a subcommand's own flags ahead of the shared ones.
type subcommand struct {
	flags func(fs *pflag.FlagSet)
	run   command
}

var commands = map[string]subcommand{
	"record":  {flags: recordFlags, run: runRecord},
	"render":  {flags: renderFlags, run: runRender},
	"import":  {flags: func(*pflag.FlagSet) {}, run: runImport},
	"history": {flags: historyFlags, run: runHistory},
}

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		var coded errors.Error
		if errors.As(err, &coded) {
			logger.ErrorWithCode(coded).Msg("cpumon failed")
		} else {
			logger.Error().Err(err).Msg("cpumon failed")
		}
		fmt.Fprintf(os.Stderr, "cpumon: %v\n", err)
		os.Exit(1)
	}
}

func run(name string, args []string) error {
	errFactory := errors.New()

	sub, ok := commands[name]
	if !ok {
		return errFactory.WithData(errors.ErrUnknownAction, name)
	}

	fs := pflag.NewFlagSet("cpumon "+name, pflag.ContinueOnError)
	sub.flags(fs)

	cfg, err := config.Load(config.WithFlagSet(fs), config.WithArgs(args))
	if err != nil {
		return err
	}

	logger.Init(cfg.LogLevel, logger.IsService())
	logger.Debug().
		Str("command", name).
		Str("log_dir", cfg.LogDir).
		Msg("Config loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return sub.run(ctx, cfg, fs)
}
