package opencode

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageInfo describes one conversation message. User and assistant
// messages share the envelope but not the field set; everything beyond ID,
// Role and Time is optional. User messages attribute the model through a
// nested "model" object, assistant messages through flat modelID/providerID
// fields; both shapes populate ModelID and ProviderID here.
type MessageInfo struct {
	ID         string      `json:"id"`
	SessionID  string      `json:"sessionID,omitempty"`
	Role       Role        `json:"role"`
	Time       MessageTime `json:"time"`
	ParentID   string      `json:"parentID,omitempty"`
	ModelID    string      `json:"modelID,omitempty"`
	ProviderID string      `json:"providerID,omitempty"`
	Agent      string      `json:"agent,omitempty"`
	Mode       string      `json:"mode,omitempty"`
	Path       *Path       `json:"path,omitempty"`
	Cost       *float64    `json:"cost,omitempty"`
	Tokens     *TokenUsage `json:"tokens,omitempty"`
}

// MessageTime holds message timestamps in Unix milliseconds.
type MessageTime struct {
	Created   int64  `json:"created"`
	Completed *int64 `json:"completed,omitempty"`
}

// Path is the working directory pair an assistant message ran under.
type Path struct {
	Cwd  string `json:"cwd"`
	Root string `json:"root"`
}

// ModelRef attributes a message to a model, as nested under "model" in user
// messages.
type ModelRef struct {
	ProviderID string `json:"providerID"`
	ModelID    string `json:"modelID"`
}

// TokenUsage is the token breakdown reported for assistant messages and
// step-finish parts.
type TokenUsage struct {
	Input     int64      `json:"input"`
	Output    int64      `json:"output"`
	Reasoning int64      `json:"reasoning"`
	Cache     CacheUsage `json:"cache"`
}

// CacheUsage counts prompt-cache reads and writes.
type CacheUsage struct {
	Read  int64 `json:"read"`
	Write int64 `json:"write"`
}
