package opencode

import "context"

// Tail follows the server's event stream, invoking fn for each event. fn
// returns false to stop tailing. Tail returns when fn stops it, the stream
// ends, or ctx is done.
func Tail(ctx context.Context, serverURL string, fn func(Event) bool, opts ...SessionOption) error {
	session := NewSession(serverURL, opts...)
	if err := session.Start(ctx); err != nil {
		return err
	}
	defer session.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-session.Events():
			if !ok {
				return nil
			}
			if !fn(event) {
				return nil
			}
		}
	}
}

// TailStream follows the server's event stream and returns an event channel.
// The caller should range over the channel until it closes; the stream shuts
// down when ctx is done.
func TailStream(ctx context.Context, serverURL string, opts ...SessionOption) (<-chan Event, error) {
	session := NewSession(serverURL, opts...)
	if err := session.Start(ctx); err != nil {
		return nil, err
	}

	out := make(chan Event, session.config.EventBufferSize)
	go func() {
		defer close(out)
		defer session.Stop()
		for event := range session.Events() {
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
