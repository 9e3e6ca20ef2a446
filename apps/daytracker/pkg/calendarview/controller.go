// Package calendarview drives a rendered tracker calendar page: it binds the
// page's category buttons, day cells and reset control, sends the resulting
// requests to the tracker and patches the page with the calendar data the
// tracker answers with.
//
// All page access happens on the goroutine executing Run. Requests run on
// their own goroutines and hand their result back to that loop, so responses
// apply in the order they resolve.
package calendarview

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
	"github.com/PuerkitoBio/goquery"
	"github.com/xdoubleu/essentia/v2/pkg/logging"
	"golang.org/x/net/html"
)

const (
	categoryButtonSelector = ".btn-group [data-category]"
	cellSelector           = ".calendar-table td[data-date]"
	resetButtonSelector    = "#resetDaysButton"
	activeClass            = "active"

	DefaultCategory   = tracker.Work
	ResetConfirmation = "Are you sure you want to reset all days? This action cannot be undone."
)

type Confirmer interface {
	Confirm(message string) bool
}

type ConfirmFunc func(message string) bool

func (f ConfirmFunc) Confirm(message string) bool {
	return f(message)
}

type command func(ctx context.Context)

type listener func(ctx context.Context, target *goquery.Selection)

type Controller struct {
	logger    *slog.Logger
	client    tracker.Client
	confirmer Confirmer
	doc       *goquery.Document

	// mu guards queue and closed.
	mu      sync.Mutex
	queue   []command
	closed  bool
	wake    chan struct{}
	stopped chan struct{}
	pending sync.WaitGroup

	// owned by the Run goroutine
	selected        tracker.Category
	listeners       map[*html.Node]listener
	categoryButtons *goquery.Selection
}

// New returns a controller for doc. A nil confirmer declines every reset.
func New(
	logger *slog.Logger,
	client tracker.Client,
	confirmer Confirmer,
	doc *goquery.Document,
) *Controller {
	if confirmer == nil {
		confirmer = ConfirmFunc(func(string) bool { return false })
	}

	return &Controller{
		logger:          logger,
		client:          client,
		confirmer:       confirmer,
		doc:             doc,
		mu:              sync.Mutex{},
		queue:           nil,
		closed:          false,
		wake:            make(chan struct{}, 1),
		stopped:         make(chan struct{}),
		pending:         sync.WaitGroup{},
		selected:        DefaultCategory,
		listeners:       make(map[*html.Node]listener),
		categoryButtons: nil,
	}
}

func NewFromHTML(
	logger *slog.Logger,
	client tracker.Client,
	confirmer Confirmer,
	page []byte,
) (*Controller, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar page: %w", err)
	}

	return New(logger, client, confirmer, doc), nil
}

// Run binds the page and executes clicks and renders until ctx is done.
func (c *Controller) Run(ctx context.Context) error {
	defer c.stop()

	c.bind()

	for {
		cmd, ok := c.next()
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-c.wake:
			}
			continue
		}

		if ctx.Err() != nil {
			c.pending.Done()
			return nil
		}

		cmd(ctx)
	}
}

func (c *Controller) next() (command, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return nil, false
	}

	cmd := c.queue[0]
	c.queue[0] = nil
	c.queue = c.queue[1:]
	return cmd, true
}

// stop rejects further commands and releases the ones never executed.
func (c *Controller) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.stopped)

	for range c.queue {
		c.pending.Done()
	}
	c.queue = nil
}

// Wait blocks until every click posted so far and every request it started
// has been applied. It must be called while Run is active.
func (c *Controller) Wait() {
	c.pending.Wait()
}

func (c *Controller) post(cmd command) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	c.pending.Add(1)
	c.queue = append(c.queue, func(ctx context.Context) {
		defer c.pending.Done()
		cmd(ctx)
	})

	select {
	case c.wake <- struct{}{}:
	default:
	}

	return true
}

// Inspect runs fn on the loop with the current page and waits for it.
func (c *Controller) Inspect(fn func(doc *goquery.Document)) {
	done := make(chan struct{})

	ok := c.post(func(context.Context) {
		defer close(done)
		fn(c.doc)
	})
	if !ok {
		return
	}

	select {
	case <-done:
	case <-c.stopped:
	}
}

func (c *Controller) SelectedCategory() tracker.Category {
	var selected tracker.Category
	c.Inspect(func(*goquery.Document) {
		selected = c.selected
	})
	return selected
}

func (c *Controller) HTML() (string, error) {
	var (
		page string
		err  error
	)
	c.Inspect(func(doc *goquery.Document) {
		page, err = doc.Html()
	})
	return page, err
}

// Click dispatches a click on node. Nodes without a bound listener are ignored.
func (c *Controller) Click(node *html.Node) {
	c.post(func(ctx context.Context) {
		c.dispatch(ctx, c.doc.FindNodes(node))
	})
}

func (c *Controller) ClickCategory(category tracker.Category) {
	c.post(func(ctx context.Context) {
		button := c.categoryButtons.FilterFunction(
			func(_ int, s *goquery.Selection) bool {
				value, _ := s.Attr("data-category")
				return value == string(category)
			},
		)
		c.dispatch(ctx, button)
	})
}

func (c *Controller) ClickCell(date string) {
	c.post(func(ctx context.Context) {
		cell := findCell(c.doc.Find(cellSelector), date)
		if cell == nil {
			c.logger.Debug("no calendar cell for date", "date", date)
			return
		}
		c.dispatch(ctx, cell)
	})
}

func (c *Controller) ClickReset() {
	c.post(func(ctx context.Context) {
		c.dispatch(ctx, c.doc.Find(resetButtonSelector))
	})
}

// Apply renders data pushed by the tracker outside of a click, such as a
// change made from another page. It reports false once the controller has
// stopped.
func (c *Controller) Apply(data tracker.CalendarData) bool {
	return c.post(func(context.Context) {
		if err := data.Validate(); err != nil {
			c.logger.Error("error applying update", logging.ErrAttr(err))
			return
		}

		updated := UpdateCalendar(c.doc, data)
		c.logger.Debug("applied update", "cells", updated)
	})
}

func (c *Controller) bind() {
	c.categoryButtons = c.doc.Find(categoryButtonSelector)
	c.categoryButtons.Each(func(_ int, button *goquery.Selection) {
		c.listen(button, c.selectCategory)
	})

	c.doc.Find(cellSelector).Each(func(_ int, cell *goquery.Selection) {
		c.listen(cell, c.toggleDay)
	})

	if resetButton := c.doc.Find(resetButtonSelector).First(); resetButton.Length() > 0 {
		c.listen(resetButton, c.resetAllDays)
	}

	c.logger.Debug(
		"bound calendar page",
		"categoryButtons", c.categoryButtons.Length(),
		"listeners", len(c.listeners),
	)
}

func (c *Controller) listen(target *goquery.Selection, fn listener) {
	c.listeners[target.Get(0)] = fn
}

func (c *Controller) dispatch(ctx context.Context, target *goquery.Selection) {
	if target.Length() == 0 {
		return
	}

	target = target.First()
	fn, ok := c.listeners[target.Get(0)]
	if !ok {
		return
	}

	fn(ctx, target)
}

func (c *Controller) selectCategory(_ context.Context, button *goquery.Selection) {
	c.categoryButtons.RemoveClass(activeClass)
	button.AddClass(activeClass)

	category, _ := button.Attr("data-category")
	c.selected = tracker.Category(category)
}

func (c *Controller) toggleDay(ctx context.Context, cell *goquery.Selection) {
	date, _ := cell.Attr("data-date")
	category := c.selected

	c.request(
		ctx,
		"error toggling day",
		func(ctx context.Context) (tracker.CalendarData, error) {
			return c.client.ToggleDay(ctx, date, category)
		},
		"date", date,
		"category", category,
	)
}

func (c *Controller) resetAllDays(ctx context.Context, _ *goquery.Selection) {
	if !c.confirmer.Confirm(ResetConfirmation) {
		return
	}

	c.request(ctx, "error resetting days", c.client.ResetDays)
}

func (c *Controller) request(
	ctx context.Context,
	failureMsg string,
	send func(ctx context.Context) (tracker.CalendarData, error),
	attrs ...any,
) {
	c.pending.Add(1)

	go func() {
		defer c.pending.Done()

		data, err := send(ctx)
		if err == nil {
			err = data.Validate()
		}

		c.post(func(context.Context) {
			if err != nil {
				c.logger.Error(failureMsg, append(attrs, logging.ErrAttr(err))...)
				return
			}

			updated := UpdateCalendar(c.doc, data)
			c.logger.Debug("updated calendar", append(attrs, "cells", updated)...)
		})
	}()
}
