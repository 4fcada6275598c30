package gateway

import "encoding/json"

// Frame types
const (
	TypeMessage = "message" // client -> server
	TypePing    = "ping"    // client -> server
	TypeReply   = "reply"   // server -> client
	TypeIgnored = "ignored" // server -> client
	TypeError   = "error"   // server -> client
	TypePong    = "pong"    // server -> client
)

// Error codes that do not come from the dispatcher
const (
	CodeInvalidFrame   = "NIC_INVALID_FRAME"
	CodeInvalidPayload = "NIC_INVALID_PAYLOAD"
	CodeUnknownType    = "NIC_UNKNOWN_FRAME_TYPE"
)

// Frame is an inbound WebSocket frame
type Frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is an outbound WebSocket frame
type Response struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// MessagePayload carries a chat message
type MessagePayload struct {
	ID      string `json:"id,omitempty"` // Echoed in the response
	Content string `json:"content"`
	Author  string `json:"author,omitempty"`
	Channel string `json:"channel,omitempty"`
}

// ReplyPayload carries the outputs of a dispatched message
type ReplyPayload struct {
	ID      string   `json:"id,omitempty"`
	Outputs []Output `json:"outputs"`
}

// Output is the result of one invocation in a chain
type Output struct {
	InvocationID string `json:"invocation_id"`
	Command      string `json:"command"`
	Output       string `json:"output"`
	DurationMS   int64  `json:"duration_ms"`
}

// IgnoredPayload tells the client the message was not a command
type IgnoredPayload struct {
	ID   string `json:"id,omitempty"`
	Code string `json:"code"`
}

// ErrorPayload reports a failed message
type ErrorPayload struct {
	ID      string `json:"id,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
