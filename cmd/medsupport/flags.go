// ABOUTME: CLI flag parsing using stdlib flag package, one FlagSet per subcommand
// ABOUTME: Shared flags: -config, -user, -format, -verbose; ingest and history add their own

package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/mauromedda/medsupport-go/internal/store"
)

type cliArgs struct {
	command string
	config  string
	user    int64
	format  string
	verbose bool
	limit   int
	search  string
	rest    []string
}

const usage = `usage: medsupport <command> [flags] [args]

commands:
  serve              run the HTTP API
  ask <message>      answer one message and exit
  ingest [dir]       index documents (default: rag.docs_dir)
  seed               load the demo dataset
  history            show recent conversations
  version            print version information

flags:
`

func parseFlags(argv []string, stderr io.Writer) (cliArgs, error) {
	if len(argv) == 0 {
		fmt.Fprint(stderr, usage)
		return cliArgs{}, fmt.Errorf("no command given")
	}
	args := cliArgs{command: argv[0]}

	fs := flag.NewFlagSet("medsupport "+args.command, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&args.config, "config", "", "Settings file (default: ~/.medsupport/config.yaml + ./medsupport.yaml)")
	fs.Int64Var(&args.user, "user", store.DemoUserID, "User id to ask as")
	fs.StringVar(&args.format, "format", "", "Output format: text or json (default: text on a terminal, json otherwise)")
	fs.BoolVar(&args.verbose, "verbose", false, "Debug logging")
	if args.command == "history" {
		fs.IntVar(&args.limit, "limit", 20, "Number of entries")
		fs.StringVar(&args.search, "search", "", "Fuzzy filter over past messages")
	}

	if err := fs.Parse(argv[1:]); err != nil {
		return cliArgs{}, err
	}
	args.rest = fs.Args()
	return args, nil
}
