// ABOUTME: CLI entry point for the medsupport chat backend
// ABOUTME: Parses the subcommand, loads settings and logging, then dispatches to serve/ask/ingest/seed/history

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/mauromedda/medsupport-go/internal/config"
	pilog "github.com/mauromedda/medsupport-go/internal/log"
	"github.com/mauromedda/medsupport-go/internal/mode/print"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var timeNow = time.Now

func main() {
	args, err := parseFlags(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if args.command == "version" {
		fmt.Printf("medsupport %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run loads settings, configures logging and dispatches to the selected command.
func run(ctx context.Context, args cliArgs) error {
	cfg, err := loadSettings(args.config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyLogSettings(cfg.Log)
	if args.verbose {
		pilog.SetLevel(pilog.LevelDebug)
	}

	out := print.New(os.Stdout, outputFormat(args.format))

	switch args.command {
	case "serve":
		return runServe(ctx, cfg, args.config)
	case "ask":
		return runAsk(ctx, cfg, args, out)
	case "ingest":
		return runIngest(ctx, cfg, args, out)
	case "seed":
		return runSeed(ctx, cfg, out)
	case "history":
		return runHistory(ctx, cfg, args, out)
	}
	return fmt.Errorf("unknown command %q (try serve, ask, ingest, seed, history, version)", args.command)
}

func loadSettings(path string) (*config.Settings, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return config.Load(cwd)
}

func applyLogSettings(l config.LogSettings) {
	pilog.SetLevel(pilog.ParseLevel(l.Level))
	pilog.SetFormat(pilog.Format(strings.ToLower(l.Format)))
}

// outputFormat honours an explicit -format, else prints text to a terminal and
// JSON when stdout is piped.
func outputFormat(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return print.FormatText
	}
	return print.FormatJSON
}
