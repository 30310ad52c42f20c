package opencode

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/calumba-holding/spacebot/internal/sse"
)

// nopHandler is a slog.Handler that discards all output.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }

// nopLogger is a shared no-op logger instance.
var nopLogger = slog.New(nopHandler{})

// Session consumes an OpenCode server's push-event stream and delivers
// decoded domain events on a channel. The stream is server-wide: events for
// every session on the server arrive interleaved, scoped by their session
// identifiers.
type Session struct {
	events    chan Event
	body      io.ReadCloser
	config    SessionConfig
	serverURL string
	done      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
	started   bool
	stopped   bool
}

// NewSession creates a stream session for the server at serverURL
// (e.g. "http://127.0.0.1:4096").
func NewSession(serverURL string, opts ...SessionOption) *Session {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &Session{
		serverURL: strings.TrimRight(serverURL, "/"),
		config:    config,
		events:    make(chan Event, config.EventBufferSize),
		done:      make(chan struct{}),
	}
}

// Start opens the event stream and begins decoding frames. Connection
// failures are returned synchronously; later stream errors surface as
// ErrorEvent values on the events channel.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrSessionClosed
	}
	if s.started {
		return ErrAlreadyStarted
	}

	body, err := s.connect(ctx)
	if err != nil {
		return err
	}
	s.body = body
	s.started = true

	go s.readLoop(ctx, body)
	return nil
}

// Events returns a read-only channel for receiving events. The channel
// closes when the stream ends and reconnecting is off or exhausted, or
// after Stop.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Stop tears down the stream. Safe to call more than once.
func (s *Session) Stop() error {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	body := s.body
	s.mu.Unlock()

	close(s.done)
	if body != nil {
		body.Close()
	}
	return nil
}

// connect opens the stream endpoint and hands back the response body.
func (s *Session) connect(ctx context.Context) (io.ReadCloser, error) {
	url := s.serverURL + s.config.EventPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &ConnectError{Cause: err, URL: url}
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.config.HTTPClient.Do(req)
	if err != nil {
		return nil, &ConnectError{Cause: err, URL: url}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &ConnectError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

// readLoop decodes stream frames and dispatches events until the stream
// ends. With reconnecting enabled, dropped connections are reopened with a
// fixed delay between attempts.
func (s *Session) readLoop(ctx context.Context, body io.ReadCloser) {
	defer s.finish()

	reader := sse.NewReader(body)
	attempts := 0

	for {
		payload, err := reader.Next()
		if err == nil {
			attempts = 0
			s.handleFrame(payload)
			continue
		}

		body.Close()
		if s.isStopped() || ctx.Err() != nil {
			return
		}
		if !errors.Is(err, io.EOF) {
			s.emit(ErrorEvent{Error: err})
		}
		if !s.config.Reconnect {
			return
		}

		newBody, ok := s.reconnect(ctx, &attempts)
		if !ok {
			return
		}
		body = newBody
		s.setBody(newBody)
		reader = sse.NewReader(newBody)
	}
}

// reconnect reopens the stream, sleeping between attempts. It reports false
// when the session stopped, the context ended, or attempts ran out.
func (s *Session) reconnect(ctx context.Context, attempts *int) (io.ReadCloser, bool) {
	for {
		*attempts++
		if s.config.MaxReconnects > 0 && *attempts > s.config.MaxReconnects {
			s.config.Logger.Warn("giving up on event stream", "attempts", *attempts-1, "url", s.serverURL)
			return nil, false
		}

		s.config.Logger.Info("event stream dropped, reconnecting",
			"attempt", *attempts, "delay", s.config.ReconnectDelay, "url", s.serverURL)

		select {
		case <-s.done:
			return nil, false
		case <-ctx.Done():
			return nil, false
		case <-time.After(s.config.ReconnectDelay):
		}

		body, err := s.connect(ctx)
		if err != nil {
			s.config.Logger.Warn("reconnect failed", "attempt", *attempts, "error", err)
			continue
		}
		return body, true
	}
}

// handleFrame decodes a single frame payload into an event.
func (s *Session) handleFrame(payload []byte) {
	event, err := ParseEvent(payload)
	if err != nil {
		s.emit(ErrorEvent{Error: err})
		return
	}

	if unknown, ok := event.(UnknownEvent); ok {
		s.config.Logger.Debug("unmodeled event kind", "type", unknown.Tag)
	}
	s.emit(event)
}

// emit sends an event to the events channel.
func (s *Session) emit(event Event) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.events <- event:
	case <-s.done:
	default:
		// Channel full, drop event
		s.config.Logger.Debug("event buffer full, dropping event", "type", event.Type())
	}
}

// finish closes the events channel exactly once.
func (s *Session) finish() {
	s.closeOnce.Do(func() {
		close(s.events)
	})
}

func (s *Session) setBody(body io.ReadCloser) {
	s.mu.Lock()
	s.body = body
	s.mu.Unlock()
}

// isStopped returns whether the session has been stopped.
func (s *Session) isStopped() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stopped
}
