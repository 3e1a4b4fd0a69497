// ABOUTME: Wire event types for the realtime data channel protocol.
// ABOUTME: Client events are sent as JSON text; server events are decoded into one envelope.

package realtime

import "encoding/json"

// Server event types the session reacts to.
const (
	eventSessionCreated   = "session.created"
	eventFunctionCallDone = "response.function_call_arguments.done"
	eventResponseDone     = "response.done"
	eventError            = "error"
)

// serverEvent is the decoded envelope for everything arriving on the data
// channel. Only the fields the session acts on are mapped.
type serverEvent struct {
	Type    string `json:"type"`
	EventID string `json:"event_id"`

	// Function call fields, set on response.function_call_arguments.done.
	CallID    string `json:"call_id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`

	Error *serverError `json:"error"`
}

type serverError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// sessionUpdateEvent configures the session right after the data channel opens.
type sessionUpdateEvent struct {
	Type    string         `json:"type"`
	Session sessionOptions `json:"session"`
}

type sessionOptions struct {
	Modalities   []string   `json:"modalities"`
	Instructions string     `json:"instructions"`
	Voice        string     `json:"voice"`
	Temperature  float64    `json:"temperature"`
	Tools        []toolSpec `json:"tools"`
	ToolChoice   string     `json:"tool_choice"`
}

// toolSpec is the function declaration shape the realtime API expects.
type toolSpec struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// functionOutputEvent hands a tool result back to the conversation.
type functionOutputEvent struct {
	Type string             `json:"type"`
	Item functionOutputItem `json:"item"`
}

type functionOutputItem struct {
	Type   string `json:"type"`
	CallID string `json:"call_id"`
	Output string `json:"output"`
}

// responseCreateEvent asks the model to produce a response, optionally with
// one-off instructions.
type responseCreateEvent struct {
	Type     string          `json:"type"`
	Response *responseParams `json:"response,omitempty"`
}

type responseParams struct {
	Instructions string `json:"instructions,omitempty"`
}
