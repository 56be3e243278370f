package events

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Subscriber is a one-way feed of change events. The web tier consumes
// this interface so tests can feed events from a plain channel.
type Subscriber interface {
	Events() <-chan Message
	Close()
}

const reconnectDelay = 3 * time.Second

// StreamSubscriber keeps a long-lived connection to the API's /events
// SSE endpoint. Connection loss reconnects after a fixed delay; errors
// are logged at debug and never surfaced, matching the transport
// semantics of a browser EventSource.
type StreamSubscriber struct {
	url    string
	logger *logrus.Logger
	client *http.Client

	events chan Message
	cancel context.CancelFunc
}

func NewStreamSubscriber(apiBaseURL string, logger *logrus.Logger) *StreamSubscriber {
	ctx, cancel := context.WithCancel(context.Background())

	s := &StreamSubscriber{
		url:    strings.TrimSuffix(apiBaseURL, "/") + "/events",
		logger: logger,
		client: &http.Client{},
		events: make(chan Message, subscriberBuffer),
		cancel: cancel,
	}

	go s.run(ctx)

	return s
}

func (s *StreamSubscriber) Events() <-chan Message {
	return s.events
}

func (s *StreamSubscriber) Close() {
	s.cancel()
}

func (s *StreamSubscriber) run(ctx context.Context) {
	defer close(s.events)

	for {
		if err := s.stream(ctx); err != nil && ctx.Err() == nil {
			s.logger.WithError(err).Debug("event stream disconnected")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *StreamSubscriber) stream(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var event, data string
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			s.deliver(ctx, event, data)
			event, data = "", ""
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
		// comment lines (": connected") fall through untouched
	}

	return scanner.Err()
}

func (s *StreamSubscriber) deliver(ctx context.Context, event, data string) {
	if event != "update" || data == "" {
		return
	}

	var msg Message
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		s.logger.WithError(err).Debug("discarding malformed event payload")
		return
	}

	select {
	case s.events <- msg:
	case <-ctx.Done():
	}
}
