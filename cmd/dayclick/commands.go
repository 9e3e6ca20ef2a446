package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"daytracker.xdoubleu.com/apps/daytracker/pkg/calendarview"
	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
	"github.com/PuerkitoBio/goquery"
)

var errNotShown = errors.New("not shown on the calendar")

type cli struct {
	logger *slog.Logger
	client *recordingClient
	stdin  io.Reader
	stdout io.Writer
}

// recordingClient remembers the last failure of the requests it forwards, so
// a click whose request failed can be reported after the controller settles.
type recordingClient struct {
	tracker.Client

	mu  sync.Mutex
	err error
}

func (client *recordingClient) ToggleDay(
	ctx context.Context,
	date string,
	category tracker.Category,
) (tracker.CalendarData, error) {
	data, err := client.Client.ToggleDay(ctx, date, category)
	client.record(err)
	return data, err
}

func (client *recordingClient) ResetDays(ctx context.Context) (tracker.CalendarData, error) {
	data, err := client.Client.ResetDays(ctx)
	client.record(err)
	return data, err
}

func (client *recordingClient) record(err error) {
	client.mu.Lock()
	defer client.mu.Unlock()
	client.err = err
}

func (client *recordingClient) Err() error {
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.err
}

// drive loads the calendar page, runs a controller on it, hands it to fn and
// returns once every click fn made has been applied.
func (cli *cli) drive(
	ctx context.Context,
	confirmer calendarview.Confirmer,
	fn func(ctrl *calendarview.Controller) error,
) error {
	page, err := cli.client.GetCalendarPage(ctx)
	if err != nil {
		return fmt.Errorf("failed to load calendar: %w", err)
	}

	ctrl, err := calendarview.NewFromHTML(cli.logger, cli.client, confirmer, page)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- ctrl.Run(runCtx)
	}()

	err = fn(ctrl)
	if err == nil {
		ctrl.Wait()
		err = cli.client.Err()
	}

	cancel()
	return errors.Join(err, <-done)
}

func (cli *cli) category(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: category takes one argument", errUsage)
	}

	category := tracker.Category(strings.ToLower(args[0]))
	if !category.IsTracked() {
		return fmt.Errorf("%w: unknown category %q", errUsage, args[0])
	}

	return cli.drive(ctx, nil, func(ctrl *calendarview.Controller) error {
		ctrl.ClickCategory(category)
		ctrl.Wait()

		fmt.Fprintf(cli.stdout, "selected %s\n", ctrl.SelectedCategory())
		return nil
	})
}

func (cli *cli) toggle(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("toggle", flag.ContinueOnError)
	flags.SetOutput(cli.stdout)
	rawCategory := flags.String("category", "", "category to track the day as")

	if err := flags.Parse(args); err != nil {
		return err
	}

	if flags.NArg() != 1 {
		return fmt.Errorf("%w: toggle takes one date", errUsage)
	}
	date := flags.Arg(0)

	category := tracker.Category(strings.ToLower(*rawCategory))
	if category != "" && !category.IsTracked() {
		return fmt.Errorf("%w: unknown category %q", errUsage, *rawCategory)
	}

	return cli.drive(ctx, nil, func(ctrl *calendarview.Controller) error {
		if !cellShown(ctrl, date) {
			return fmt.Errorf("%s: %w", date, errNotShown)
		}

		if category != "" {
			ctrl.ClickCategory(category)
		}
		ctrl.ClickCell(date)
		ctrl.Wait()

		cli.printCell(ctrl, date)
		return nil
	})
}

func (cli *cli) reset(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("reset", flag.ContinueOnError)
	flags.SetOutput(cli.stdout)
	yes := flags.Bool("yes", false, "skip the confirmation prompt")

	if err := flags.Parse(args); err != nil {
		return err
	}

	var confirmer calendarview.Confirmer = calendarview.ConfirmFunc(cli.prompt)
	if *yes {
		confirmer = calendarview.ConfirmFunc(func(string) bool { return true })
	}

	return cli.drive(ctx, confirmer, func(ctrl *calendarview.Controller) error {
		ctrl.ClickReset()
		ctrl.Wait()

		cli.printTotals(ctrl)
		return nil
	})
}

// watch prints the totals of the calendar every time the tracker pushes a
// change, until ctx is done.
func (cli *cli) watch(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: watch takes no arguments", errUsage)
	}

	return cli.drive(ctx, nil, func(ctrl *calendarview.Controller) error {
		updates, err := cli.client.Updates(ctx)
		if err != nil {
			return err
		}

		cli.printTotals(ctrl)

		for data := range updates {
			if !ctrl.Apply(data) {
				break
			}
			ctrl.Wait()

			cli.printTotals(ctrl)
		}

		return nil
	})
}

func (cli *cli) prompt(message string) bool {
	fmt.Fprintf(cli.stdout, "%s [y/N] ", message)

	answer, err := bufio.NewReader(cli.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (cli *cli) printTotals(ctrl *calendarview.Controller) {
	tracked := 0
	ctrl.Inspect(func(doc *goquery.Document) {
		tracked = doc.Find(`.calendar-table td[data-in-denmark="true"]`).Length()
	})
	fmt.Fprintf(cli.stdout, "%d days tracked\n", tracked)
}

func cellShown(ctrl *calendarview.Controller, date string) bool {
	shown := false
	ctrl.Inspect(func(doc *goquery.Document) {
		shown = doc.Find(`.calendar-table td[data-date="` + date + `"]`).Length() > 0
	})
	return shown
}

func (cli *cli) printCell(ctrl *calendarview.Controller, date string) {
	ctrl.Inspect(func(doc *goquery.Document) {
		cell := doc.Find(`.calendar-table td[data-date="` + date + `"]`).First()

		category, _ := cell.Attr("data-category")
		accumulated, _ := cell.Attr("data-accumulated")
		class, _ := cell.Attr("class")

		fmt.Fprintf(
			cli.stdout,
			"%s category=%s accumulated=%s warning=%t\n",
			date,
			category,
			accumulated,
			cell.HasClass("border-danger"),
		)
		cli.logger.Debug("cell rendered", "date", date, "class", class)
	})
}
