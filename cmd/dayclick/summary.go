package main

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"

	"daytracker.xdoubleu.com/apps/daytracker/pkg/tracker"
	"github.com/gocolly/colly/v2"
)

type summaryDay struct {
	date        string
	category    string
	accumulated int
	warning     bool
}

// summary scrapes the calendar page for tracked days and prints them. It
// returns the session the tracker used, which differs from session when the
// tracker had to start a new one.
func (cli *cli) summary(server string, session string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return "", err
	}
	if session != "" {
		//nolint:exhaustruct //other fields are optional
		jar.SetCookies(u, []*http.Cookie{{
			Name:  tracker.SessionCookieName,
			Value: session,
			Path:  "/",
		}})
	}

	c := colly.NewCollector(colly.UserAgent("dayclick"))
	c.SetCookieJar(jar)

	days := []summaryDay{}
	c.OnHTML(`.calendar-table td[data-in-denmark="true"]`, func(h *colly.HTMLElement) {
		accumulated, errConv := strconv.Atoi(h.Attr("data-accumulated"))
		if errConv != nil {
			cli.logger.Warn("unreadable day count", "date", h.Attr("data-date"))
			return
		}

		days = append(days, summaryDay{
			date:        h.Attr("data-date"),
			category:    h.Attr("data-category"),
			accumulated: accumulated,
			warning:     h.DOM.HasClass("border-danger"),
		})
	})

	if err = c.Visit(u.String()); err != nil {
		return "", fmt.Errorf("failed to load calendar: %w", err)
	}

	highest, warnings := 0, 0
	for _, day := range days {
		fmt.Fprintf(cli.stdout, "%s %-8s %d\n", day.date, day.category, day.accumulated)

		highest = max(highest, day.accumulated)
		if day.warning {
			warnings++
		}
	}
	fmt.Fprintf(
		cli.stdout,
		"%d days tracked, highest count %d, %d over the limit\n",
		len(days),
		highest,
		warnings,
	)

	for _, cookie := range jar.Cookies(u) {
		if cookie.Name == tracker.SessionCookieName {
			session = cookie.Value
		}
	}

	return session, nil
}
