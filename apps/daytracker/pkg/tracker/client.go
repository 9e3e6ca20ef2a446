package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/xdoubleu/essentia/v2/pkg/communication/httptools"
)

const SessionCookieName = "session"

var (
	ErrUnsuccessful        = errors.New("server reported failure")
	ErrMissingCalendarData = errors.New("response carries no calendar data")
)

type StatusError struct {
	StatusCode int
}

func (err StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", err.StatusCode)
}

type client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// New returns a Client talking to the tracker at baseURL. A non-empty session
// resumes that session's tracked days, otherwise the server assigns one.
func New(baseURL string, session string) (Client, error) {
	//nolint:exhaustruct //other fields are optional
	httpClient := &http.Client{
		//nolint:mnd //no magic number
		Timeout: 30 * time.Second,
	}

	return NewWithHTTPClient(baseURL, session, httpClient)
}

func NewWithHTTPClient(
	baseURL string,
	session string,
	httpClient *http.Client,
) (Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid tracker url: %w", err)
	}

	if httpClient.Jar == nil {
		httpClient.Jar, err = cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
	}

	if session != "" {
		//nolint:exhaustruct //other fields are optional
		httpClient.Jar.SetCookies(u, []*http.Cookie{{
			Name:  SessionCookieName,
			Value: session,
			Path:  "/",
		}})
	}

	return client{
		baseURL:    u,
		httpClient: httpClient,
	}, nil
}

func (client client) Session() string {
	for _, cookie := range client.httpClient.Jar.Cookies(client.baseURL) {
		if cookie.Name == SessionCookieName {
			return cookie.Value
		}
	}
	return ""
}

func (client client) GetCalendarPage(ctx context.Context) ([]byte, error) {
	res, err := client.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	return io.ReadAll(res.Body)
}

func (client client) ToggleDay(
	ctx context.Context,
	date string,
	category Category,
) (CalendarData, error) {
	return client.sendCalendarRequest(ctx, "/toggle_day", ToggleDayRequest{
		Date:     date,
		Category: category,
	})
}

func (client client) ResetDays(ctx context.Context) (CalendarData, error) {
	return client.sendCalendarRequest(ctx, "/reset_days", nil)
}

func (client client) sendCalendarRequest(
	ctx context.Context,
	endpoint string,
	body any,
) (CalendarData, error) {
	res, err := client.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var response CalendarResponse
	err = httptools.ReadJSON(res.Body, &response)
	if err != nil {
		return nil, fmt.Errorf("malformed response from %s: %w", endpoint, err)
	}

	if !response.Success {
		return nil, ErrUnsuccessful
	}

	if response.CalendarData == nil {
		return nil, ErrMissingCalendarData
	}

	if err = response.CalendarData.Validate(); err != nil {
		return nil, err
	}

	return response.CalendarData, nil
}

func (client client) do(
	ctx context.Context,
	method string,
	endpoint string,
	body any,
) (*http.Response, error) {
	u := client.baseURL.JoinPath(endpoint)

	var reader io.Reader = http.NoBody
	if body != nil {
		marshalled, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(marshalled)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}

	if method == http.MethodPost {
		req.Header.Add("Content-Type", "application/json")
	}

	res, err := client.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		res.Body.Close()
		return nil, StatusError{StatusCode: res.StatusCode}
	}

	return res, nil
}
