// Command dayclick drives a day tracker calendar from the terminal. It loads
// the calendar page, clicks through it like a browser would and prints the
// cells the tracker re-rendered.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
	"daytracker.xdoubleu.com/internal/config"
	"github.com/xdoubleu/essentia/v2/pkg/logging"
	"github.com/xdoubleu/essentia/v2/pkg/sentrytools"
)

const usage = `usage: dayclick [-server url] [-session-file path] <command>

commands:
  category <work|holiday|other>     select a category and show the selection
  toggle [-category c] <yyyy-mm-dd> toggle a day, work unless -category is given
  reset [-yes]                      clear every tracked day after confirming
  summary                           list the tracked days on the calendar
  watch                             print the totals after every change
`

var (
	errUsage          = errors.New("invalid usage")
	errUnknownCommand = errors.New("unknown command")
)

func main() {
	cfg := config.New(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	logger := slog.New(sentrytools.NewLogHandler(cfg.Env,
		slog.NewTextHandler(os.Stderr, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, logger, cfg, os.Args[1:], os.Stdin, os.Stdout)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		logger.Error("dayclick failed", logging.ErrAttr(err))
		if errors.Is(err, errUsage) || errors.Is(err, errUnknownCommand) {
			fmt.Fprint(os.Stderr, usage)
		}
		os.Exit(1)
	}
}

func run(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.Config,
	args []string,
	stdin io.Reader,
	stdout io.Writer,
) error {
	flags := flag.NewFlagSet("dayclick", flag.ContinueOnError)
	flags.SetOutput(stdout)
	flags.Usage = func() { fmt.Fprint(stdout, usage) }

	server := flags.String("server", cfg.WebURL, "base url of the tracker")
	sessionFile := flags.String(
		"session-file",
		defaultSessionFile(),
		"file remembering the tracker session",
	)

	if err := flags.Parse(args); err != nil {
		return err
	}

	if flags.NArg() == 0 {
		return fmt.Errorf("%w: no command given", errUsage)
	}

	session, err := loadSession(*sessionFile)
	if err != nil {
		return err
	}

	client, err := tracker.New(*server, session)
	if err != nil {
		return err
	}

	cli := &cli{
		logger: logger,
		client: &recordingClient{Client: client},
		stdin:  stdin,
		stdout: stdout,
	}

	name, commandArgs := flags.Arg(0), flags.Args()[1:]
	switch name {
	case "category":
		err = cli.category(ctx, commandArgs)
	case "toggle":
		err = cli.toggle(ctx, commandArgs)
	case "reset":
		err = cli.reset(ctx, commandArgs)
	case "watch":
		err = cli.watch(ctx, commandArgs)
	case "summary":
		session, err = cli.summary(*server, client.Session())
	default:
		err = fmt.Errorf("%w: %q", errUnknownCommand, name)
	}
	if err != nil {
		return err
	}

	if name != "summary" {
		session = client.Session()
	}

	return saveSession(*sessionFile, session)
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "dayclick", "session")
}
