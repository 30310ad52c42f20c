package opencode

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope is the outer shape of every push-event frame: a type tag plus an
// open property bag. Properties is kept raw so fields this package does not
// understand survive decoding untouched.
// Example: {"type":"message.part.updated","properties":{"part":{...},"delta":"Hi"}}
type Envelope struct {
	Type       string          `json:"type"`
	Properties json.RawMessage `json:"properties"`
}

// DecodeEnvelope decodes one frame payload into its envelope. It fails with
// a *ParseError when the payload is not valid JSON or the type tag is
// missing or not a string; extra fields never fail.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &ParseError{Cause: err, Message: "invalid event payload", Payload: string(data)}
	}
	if env.Type == "" {
		return nil, &ParseError{Message: "missing event type", Payload: string(data)}
	}
	return &env, nil
}

// ParseEvent decodes one frame payload into a domain event. Event kinds
// outside the modeled set decode to UnknownEvent rather than failing;
// *ParseError is reserved for malformed payloads and missing required
// fields within a recognized kind.
func ParseEvent(data []byte) (Event, error) {
	env, err := DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	return MapEvent(env)
}

// MapEvent dispatches a decoded envelope to its domain event.
func MapEvent(env *Envelope) (Event, error) {
	switch env.Type {
	case "message.updated":
		return mapMessageUpdated(env.Properties)
	case "message.part.updated":
		return mapMessagePartUpdated(env.Properties)
	case "session.status":
		return mapSessionStatus(env.Properties)
	case "session.idle":
		return mapSessionIdle(env.Properties)
	case "session.error":
		return mapSessionError(env.Properties)
	default:
		return UnknownEvent{Tag: env.Type}, nil
	}
}

// mapMessageUpdated extracts the optional "info" object.
// Example properties: {"info":{"id":"msg_123","sessionID":"ses_456","role":"user","time":{"created":1770927523031},...}}
func mapMessageUpdated(props json.RawMessage) (Event, error) {
	var wire struct {
		Info json.RawMessage `json:"info"`
	}
	if err := unmarshalProps(props, &wire); err != nil {
		return nil, err
	}
	if isNull(wire.Info) {
		return MessageUpdatedEvent{}, nil
	}
	info, err := parseMessageInfo(wire.Info)
	if err != nil {
		return nil, err
	}
	return MessageUpdatedEvent{Info: info}, nil
}

// mapMessagePartUpdated extracts the required "part" object and the
// optional "delta" sibling.
func mapMessagePartUpdated(props json.RawMessage) (Event, error) {
	var wire struct {
		Part  json.RawMessage `json:"part"`
		Delta *string         `json:"delta"`
	}
	if err := unmarshalProps(props, &wire); err != nil {
		return nil, err
	}
	if isNull(wire.Part) {
		return nil, &ParseError{Message: "message.part.updated missing part", Payload: string(props)}
	}
	part, err := parsePart(wire.Part)
	if err != nil {
		return nil, err
	}
	return MessagePartUpdatedEvent{Part: part, Delta: wire.Delta}, nil
}

// mapSessionStatus extracts the required session id and nested status type.
// Example properties: {"sessionID":"ses_456","status":{"type":"busy"}}
func mapSessionStatus(props json.RawMessage) (Event, error) {
	var wire struct {
		SessionID string `json:"sessionID"`
		Status    *struct {
			Type string `json:"type"`
		} `json:"status"`
	}
	if err := unmarshalProps(props, &wire); err != nil {
		return nil, err
	}
	if wire.SessionID == "" {
		return nil, &ParseError{Message: "session.status missing sessionID", Payload: string(props)}
	}
	if wire.Status == nil || wire.Status.Type == "" {
		return nil, &ParseError{Message: "session.status missing status type", Payload: string(props)}
	}
	return SessionStatusEvent{SessionID: wire.SessionID, Status: SessionStatus(wire.Status.Type)}, nil
}

func mapSessionIdle(props json.RawMessage) (Event, error) {
	var wire struct {
		SessionID string `json:"sessionID"`
	}
	if err := unmarshalProps(props, &wire); err != nil {
		return nil, err
	}
	if wire.SessionID == "" {
		return nil, &ParseError{Message: "session.idle missing sessionID", Payload: string(props)}
	}
	return SessionIdleEvent{SessionID: wire.SessionID}, nil
}

// mapSessionError passes the vendor error object through untouched. Both
// fields are optional.
// Example properties: {"sessionID":"ses_456","error":{"message":"something broke"}}
func mapSessionError(props json.RawMessage) (Event, error) {
	var wire struct {
		SessionID string          `json:"sessionID"`
		Error     json.RawMessage `json:"error"`
	}
	if err := unmarshalProps(props, &wire); err != nil {
		return nil, err
	}
	ev := SessionErrorEvent{SessionID: wire.SessionID}
	if !isNull(wire.Error) {
		ev.Err = wire.Error
	}
	return ev, nil
}

// parseMessageInfo maps the wire "info" object onto MessageInfo. The flat
// assistant shape unmarshals directly; the nested user-message "model"
// object is merged into ModelID/ProviderID afterwards.
func parseMessageInfo(raw json.RawMessage) (*MessageInfo, error) {
	var info MessageInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, &ParseError{Cause: err, Message: "invalid message info", Payload: string(raw)}
	}

	var aux struct {
		Model *ModelRef    `json:"model"`
		Time  *MessageTime `json:"time"`
	}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return nil, &ParseError{Cause: err, Message: "invalid message info", Payload: string(raw)}
	}

	if info.ID == "" {
		return nil, &ParseError{Message: "message info missing id", Payload: string(raw)}
	}
	if info.Role == "" {
		return nil, &ParseError{Message: "message info missing role", Payload: string(raw)}
	}
	if aux.Time == nil {
		return nil, &ParseError{Message: "message info missing time", Payload: string(raw)}
	}

	if aux.Model != nil {
		if info.ModelID == "" {
			info.ModelID = aux.Model.ModelID
		}
		if info.ProviderID == "" {
			info.ProviderID = aux.Model.ProviderID
		}
	}
	return &info, nil
}

// parsePart dispatches the wire "part" object on its type tag. Unmodeled
// types decode to OtherPart; a missing tag is structural and fails.
func parsePart(raw json.RawMessage) (Part, error) {
	var base struct {
		Type PartType `json:"type"`
	}
	if err := json.Unmarshal(raw, &base); err != nil {
		return nil, &ParseError{Cause: err, Message: "invalid part", Payload: string(raw)}
	}
	if base.Type == "" {
		return nil, &ParseError{Message: "part missing type", Payload: string(raw)}
	}

	switch base.Type {
	case PartTypeText:
		return parseTextPart(raw)
	case PartTypeTool:
		return parseToolPart(raw)
	case PartTypeStepStart:
		var p StepStartPart
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, &ParseError{Cause: err, Message: "invalid step-start part", Payload: string(raw)}
		}
		return p, nil
	case PartTypeStepFinish:
		var p StepFinishPart
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, &ParseError{Cause: err, Message: "invalid step-finish part", Payload: string(raw)}
		}
		return p, nil
	default:
		return OtherPart{}, nil
	}
}

func parseTextPart(raw json.RawMessage) (Part, error) {
	var p TextPart
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &ParseError{Cause: err, Message: "invalid text part", Payload: string(raw)}
	}
	// Distinguish an absent text field from a present empty string.
	var aux struct {
		Text *string `json:"text"`
	}
	if err := json.Unmarshal(raw, &aux); err != nil || aux.Text == nil {
		return nil, &ParseError{Cause: err, Message: "text part missing text", Payload: string(raw)}
	}
	return p, nil
}

// parseToolPart validates the identifier set and hands the lifecycle
// snapshot to the tool-state decoder. The part-level metadata bag is a
// sibling of state and stays separate from state-level metadata.
// Example: {"id":"prt_1","sessionID":"ses_1","messageID":"msg_1","type":"tool","callID":"call_1","tool":"bash","state":{...},"metadata":{...}}
func parseToolPart(raw json.RawMessage) (Part, error) {
	var wire struct {
		ID        string          `json:"id"`
		SessionID string          `json:"sessionID"`
		MessageID string          `json:"messageID"`
		CallID    string          `json:"callID"`
		Tool      string          `json:"tool"`
		State     json.RawMessage `json:"state"`
		Metadata  json.RawMessage `json:"metadata"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &ParseError{Cause: err, Message: "invalid tool part", Payload: string(raw)}
	}
	required := []struct{ field, value string }{
		{"id", wire.ID},
		{"sessionID", wire.SessionID},
		{"messageID", wire.MessageID},
		{"callID", wire.CallID},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, &ParseError{Message: fmt.Sprintf("tool part missing %s", r.field), Payload: string(raw)}
		}
	}

	p := ToolPart{
		ID:        wire.ID,
		SessionID: wire.SessionID,
		MessageID: wire.MessageID,
		CallID:    wire.CallID,
		Tool:      wire.Tool,
	}
	if !isNull(wire.Metadata) {
		p.Metadata = wire.Metadata
	}
	if !isNull(wire.State) {
		state, err := parseToolState(wire.State)
		if err != nil {
			return nil, err
		}
		p.State = state
	}
	return p, nil
}

// parseToolState dispatches the "state" object on its status tag. The state
// machine is closed: a status outside the four lifecycle values fails
// rather than degrading, since an unclassifiable snapshot is not the same
// as an absent one.
func parseToolState(raw json.RawMessage) (ToolState, error) {
	var base struct {
		Status ToolStatus `json:"status"`
	}
	if err := json.Unmarshal(raw, &base); err != nil {
		return nil, &ParseError{Cause: err, Message: "invalid tool state", Payload: string(raw)}
	}
	if base.Status == "" {
		return nil, &ParseError{Message: "tool state missing status", Payload: string(raw)}
	}

	switch base.Status {
	case ToolStatusPending:
		var s ToolStatePending
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &ParseError{Cause: err, Message: "invalid pending tool state", Payload: string(raw)}
		}
		return s, nil
	case ToolStatusRunning:
		var s ToolStateRunning
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &ParseError{Cause: err, Message: "invalid running tool state", Payload: string(raw)}
		}
		if err := requireToolStart(raw, base.Status); err != nil {
			return nil, err
		}
		return s, nil
	case ToolStatusCompleted:
		var s ToolStateCompleted
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &ParseError{Cause: err, Message: "invalid completed tool state", Payload: string(raw)}
		}
		if err := requireToolStart(raw, base.Status); err != nil {
			return nil, err
		}
		return s, nil
	case ToolStatusError:
		var s ToolStateError
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, &ParseError{Cause: err, Message: "invalid error tool state", Payload: string(raw)}
		}
		if err := requireToolStart(raw, base.Status); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, &ParseError{Message: fmt.Sprintf("unrecognized tool status %q", base.Status), Payload: string(raw)}
	}
}

// requireToolStart enforces the time.start timestamp carried by every state
// past pending.
func requireToolStart(raw json.RawMessage, status ToolStatus) error {
	var aux struct {
		Time *struct {
			Start *int64 `json:"start"`
		} `json:"time"`
	}
	if err := json.Unmarshal(raw, &aux); err == nil && aux.Time != nil && aux.Time.Start != nil {
		return nil
	}
	return &ParseError{Message: fmt.Sprintf("%s tool state missing time.start", status), Payload: string(raw)}
}

// unmarshalProps decodes an envelope property bag into a wire struct. An
// absent bag behaves like an empty one.
func unmarshalProps(props json.RawMessage, v any) error {
	if isNull(props) {
		return nil
	}
	if err := json.Unmarshal(props, v); err != nil {
		return &ParseError{Cause: err, Message: "invalid event properties", Payload: string(props)}
	}
	return nil
}

// isNull reports whether a raw value is absent or JSON null.
func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
