// ABOUTME: One-shot commands: ask a question, ingest documents, seed demo data, show history
// ABOUTME: Each builds the app, does its work and closes everything before returning

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mauromedda/medsupport-go/internal/config"
	"github.com/mauromedda/medsupport-go/internal/mode/print"
)

func runAsk(ctx context.Context, cfg *config.Settings, args cliArgs, out *print.Printer) error {
	message := strings.TrimSpace(strings.Join(args.rest, " "))
	if message == "" {
		return fmt.Errorf("ask needs a message")
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	reply, err := a.chat.Ask(ctx, args.user, message)
	if err != nil {
		return err
	}
	return out.Reply(reply)
}

func runIngest(ctx context.Context, cfg *config.Settings, args cliArgs, out *print.Printer) error {
	dir := cfg.RAG.DocsDir
	if len(args.rest) > 0 {
		dir = args.rest[0]
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	st, err := a.ingester().IngestDir(ctx, dir)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", dir, err)
	}
	return out.Ingest(dir, st)
}

func runSeed(ctx context.Context, cfg *config.Settings, out *print.Printer) error {
	db, err := openStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}
	defer db.Close()

	seeded, err := seedIfEmpty(ctx, db)
	if err != nil {
		return err
	}
	if !seeded {
		return out.Message("demo data already present")
	}
	return out.Message("loaded demo dataset into %s store", cfg.Store.Driver)
}

func runHistory(ctx context.Context, cfg *config.Settings, args cliArgs, out *print.Printer) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	if args.search != "" {
		logs, err := a.chat.SearchHistory(ctx, args.user, args.search)
		if err != nil {
			return err
		}
		if args.limit > 0 && len(logs) > args.limit {
			logs = logs[:args.limit]
		}
		return out.History(logs)
	}

	logs, err := a.chat.History(ctx, args.user, args.limit)
	if err != nil {
		return err
	}
	return out.History(logs)
}
