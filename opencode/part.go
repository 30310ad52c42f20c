package opencode

import "encoding/json"

// PartType discriminates message part kinds on the wire.
type PartType string

const (
	PartTypeText       PartType = "text"
	PartTypeTool       PartType = "tool"
	PartTypeStepStart  PartType = "step-start"
	PartTypeStepFinish PartType = "step-finish"
	// PartTypeOther stands in for part kinds this package does not model,
	// reasoning parts included.
	PartTypeOther PartType = "other"
)

// Part is one fragment of a message: a text span, a tool invocation, or a
// step marker.
type Part interface {
	PartType() PartType
}

// TextPart is a span of message text.
type TextPart struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionID,omitempty"`
	MessageID string    `json:"messageID,omitempty"`
	Text      string    `json:"text"`
	Time      *PartTime `json:"time,omitempty"`
}

// PartType returns the part type.
func (p TextPart) PartType() PartType { return PartTypeText }

// ToolPart is a tool invocation. State is nil until the server has reported
// a lifecycle snapshot. Metadata is the part-level vendor bag, a sibling of
// State on the wire and kept separate from anything nested inside it.
type ToolPart struct {
	ID        string          `json:"id"`
	SessionID string          `json:"sessionID"`
	MessageID string          `json:"messageID"`
	CallID    string          `json:"callID"`
	Tool      string          `json:"tool,omitempty"`
	State     ToolState       `json:"-"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

// PartType returns the part type.
func (p ToolPart) PartType() PartType { return PartTypeTool }

// StepStartPart marks the start of an agent step.
type StepStartPart struct {
	ID        string `json:"id"`
	SessionID string `json:"sessionID,omitempty"`
	MessageID string `json:"messageID,omitempty"`
}

// PartType returns the part type.
func (p StepStartPart) PartType() PartType { return PartTypeStepStart }

// StepFinishPart closes an agent step with its cost accounting.
type StepFinishPart struct {
	Reason string      `json:"reason,omitempty"`
	Cost   *float64    `json:"cost,omitempty"`
	Tokens *TokenUsage `json:"tokens,omitempty"`
}

// PartType returns the part type.
func (p StepFinishPart) PartType() PartType { return PartTypeStepFinish }

// OtherPart acknowledges a part kind this package does not model. No
// payload is retained.
type OtherPart struct{}

// PartType returns the part type.
func (p OtherPart) PartType() PartType { return PartTypeOther }

// PartTime holds part timestamps in Unix milliseconds. End is nil while the
// part is still being produced.
type PartTime struct {
	Start int64  `json:"start"`
	End   *int64 `json:"end,omitempty"`
}

// ToolStatus discriminates tool lifecycle states on the wire.
type ToolStatus string

const (
	ToolStatusPending   ToolStatus = "pending"
	ToolStatusRunning   ToolStatus = "running"
	ToolStatusCompleted ToolStatus = "completed"
	ToolStatusError     ToolStatus = "error"
)

// ToolState is one snapshot of a tool call lifecycle. The server drives the
// transitions; a snapshot only classifies, it carries no history, and
// consumers that care about ordering must apply snapshots in arrival order.
type ToolState interface {
	Status() ToolStatus
}

// ToolStatePending is a tool call waiting to start. Input may still be
// empty while the server assembles arguments; Raw holds the partial
// argument text when present.
type ToolStatePending struct {
	Input json.RawMessage `json:"input,omitempty"`
	Raw   string          `json:"raw,omitempty"`
}

// Status returns the lifecycle status.
func (s ToolStatePending) Status() ToolStatus { return ToolStatusPending }

// ToolStateRunning is a tool call in flight.
type ToolStateRunning struct {
	Input json.RawMessage `json:"input,omitempty"`
	Time  ToolTime        `json:"time"`
}

// Status returns the lifecycle status.
func (s ToolStateRunning) Status() ToolStatus { return ToolStatusRunning }

// ToolStateCompleted is a finished tool call. Metadata is the state-level
// vendor bag (exit codes and the like).
type ToolStateCompleted struct {
	Output   string          `json:"output,omitempty"`
	Title    string          `json:"title,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
	Time     ToolTime        `json:"time"`
}

// Status returns the lifecycle status.
func (s ToolStateCompleted) Status() ToolStatus { return ToolStatusCompleted }

// ToolStateError is a failed tool call.
type ToolStateError struct {
	Error string   `json:"error,omitempty"`
	Time  ToolTime `json:"time"`
}

// Status returns the lifecycle status.
func (s ToolStateError) Status() ToolStatus { return ToolStatusError }

// ToolTime holds tool lifecycle timestamps in Unix milliseconds. End is nil
// until the call reaches a terminal state.
type ToolTime struct {
	Start int64  `json:"start"`
	End   *int64 `json:"end,omitempty"`
}

// IsRunning reports whether a state snapshot is an in-flight tool call.
// A nil state (no snapshot yet) is not running.
func IsRunning(s ToolState) bool {
	return s != nil && s.Status() == ToolStatusRunning
}
