// ABOUTME: RPC request/response types for editor integrations
// ABOUTME: JSON-serializable envelopes for requests, responses, and notifications

package rpc

import "encoding/json"

// Request represents an RPC request from an external client.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response represents an RPC response to an external client.
type Response struct {
	ID     string `json:"id"`
	Result any    `json:"result,omitempty"`
	Error  *Error `json:"error,omitempty"`
}

// Notification is a server-initiated message. It carries no id and expects
// no reply.
type Notification struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// Error represents an RPC error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Methods
const (
	MethodRecordChange = "record_change"
	MethodCursorMove   = "cursor_move"
	MethodUndoRedo     = "undo_redo"
	MethodGetIntent    = "get_intent"
	MethodGetMetrics   = "get_metrics"
	MethodGetStatus    = "get_status"
	MethodTick         = "tick"
	MethodStart        = "start"
	MethodStop         = "stop"

	// NotifyIntentChanged is pushed on every intent transition.
	NotifyIntentChanged = "intent_changed"
)
