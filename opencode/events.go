package opencode

import "encoding/json"

// EventType discriminates between event kinds.
type EventType int

const (
	// EventTypeMessageUpdated fires when message metadata is created or revised.
	EventTypeMessageUpdated EventType = iota
	// EventTypeMessagePartUpdated fires for every part snapshot (text, tools, step markers).
	EventTypeMessagePartUpdated
	// EventTypeSessionStatus fires on session status transitions.
	EventTypeSessionStatus
	// EventTypeSessionIdle fires when a session has no more work in flight.
	EventTypeSessionIdle
	// EventTypeSessionError fires when the server reports a session failure.
	EventTypeSessionError
	// EventTypeUnknown fires for event kinds this package does not model.
	EventTypeUnknown
	// EventTypeError fires when a stream frame cannot be decoded.
	EventTypeError
)

// Event is the interface for all opencode events.
type Event interface {
	Type() EventType
}

// MessageUpdatedEvent carries new or revised message metadata. Info is nil
// when the server omits it, which is not an error.
type MessageUpdatedEvent struct {
	Info *MessageInfo
}

func (e MessageUpdatedEvent) Type() EventType { return EventTypeMessageUpdated }

// MessagePartUpdatedEvent carries one part snapshot. For text parts the
// server may attach the incremental delta since the previous snapshot;
// Delta is nil when it does not.
type MessagePartUpdatedEvent struct {
	Part  Part
	Delta *string
}

func (e MessagePartUpdatedEvent) Type() EventType { return EventTypeMessagePartUpdated }

// SessionStatus is the session status discriminant. Values outside the
// known constants pass through verbatim so upstream additions surface
// instead of failing.
type SessionStatus string

const (
	SessionStatusBusy SessionStatus = "busy"
	SessionStatusIdle SessionStatus = "idle"
)

// SessionStatusEvent carries a session status transition.
type SessionStatusEvent struct {
	SessionID string
	Status    SessionStatus
}

func (e SessionStatusEvent) Type() EventType { return EventTypeSessionStatus }

// SessionIdleEvent fires when the session has finished its in-flight work.
type SessionIdleEvent struct {
	SessionID string
}

func (e SessionIdleEvent) Type() EventType { return EventTypeSessionIdle }

// SessionErrorEvent carries a server-reported session failure. Err holds
// the vendor error object verbatim; its schema is not stable enough to
// model, so callers query it as raw JSON. Either field may be absent.
type SessionErrorEvent struct {
	SessionID string
	Err       json.RawMessage
}

func (e SessionErrorEvent) Type() EventType { return EventTypeSessionError }

// UnknownEvent carries the verbatim type tag of an event kind this package
// does not model. Callers can log or count it; there is nothing to act on.
type UnknownEvent struct {
	Tag string
}

func (e UnknownEvent) Type() EventType { return EventTypeUnknown }

// ErrorEvent reports a stream frame that could not be decoded. The stream
// keeps going; skip-or-abort is the consumer's call.
type ErrorEvent struct {
	Error error
}

func (e ErrorEvent) Type() EventType { return EventTypeError }
