package tracker

import (
	"context"
	"fmt"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const maxUpdateSize = 8 << 20

// Updates streams the calendar data the tracker pushes after every change to
// the session's days. The channel closes when ctx is done or the connection
// drops. Pushes that do not validate are skipped.
func (client client) Updates(ctx context.Context) (<-chan CalendarData, error) {
	wsClient := *client.httpClient
	wsClient.Timeout = 0

	conn, _, err := websocket.Dial(
		ctx,
		client.baseURL.JoinPath("/updates").String(),
		//nolint:exhaustruct //other fields are optional
		&websocket.DialOptions{HTTPClient: &wsClient},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to updates: %w", err)
	}
	conn.SetReadLimit(maxUpdateSize)

	updates := make(chan CalendarData)

	go func() {
		defer close(updates)
		defer conn.Close(websocket.StatusNormalClosure, "closing connection")

		for {
			var response CalendarResponse
			if errRead := wsjson.Read(ctx, conn, &response); errRead != nil {
				return
			}

			if !response.Success || response.CalendarData == nil ||
				response.CalendarData.Validate() != nil {
				continue
			}

			select {
			case updates <- response.CalendarData:
			case <-ctx.Done():
				return
			}
		}
	}()

	return updates, nil
}
