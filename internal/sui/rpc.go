package sui

import "encoding/json"

// JSON-RPC 2.0 envelope.

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string { return e.Message }

// ConfirmationResult is the outcome of a submitted transaction: the
// content-derived digest, the object-state changes and the emitted events.
// Exactly one ConfirmationResult corresponds to one submitted intent.
type ConfirmationResult struct {
	Digest        string         `json:"digest"`
	Effects       *Effects       `json:"effects"`
	ObjectChanges []ObjectChange `json:"objectChanges"`
	Events        []Event        `json:"events"`
}

// Effects carries the node's execution status for a transaction.
type Effects struct {
	Status ExecutionStatus `json:"status"`
}

// ExecutionStatus is "success" or "failure" plus the node's reason on failure.
type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ObjectChange describes one object affected by a transaction.
type ObjectChange struct {
	// Type is the change kind: "created", "mutated", "deleted".
	Type       string `json:"type"`
	ObjectType string `json:"objectType"`
	ObjectID   string `json:"objectId"`
}

// Event is one entry of the append-only event log. Events never mutate after
// confirmation.
type Event struct {
	ID          EventID         `json:"id"`
	Type        string          `json:"type"`
	ParsedJSON  json.RawMessage `json:"parsedJson"`
	TimestampMs string          `json:"timestampMs"`
}

// EventID locates an event within the log and doubles as a pagination cursor.
type EventID struct {
	TxDigest string `json:"txDigest"`
	EventSeq string `json:"eventSeq"`
}

// ObjectSnapshot is the materialized state of a single ledger object at the
// moment of the read. No staleness guarantee beyond "at least as fresh as the
// read".
type ObjectSnapshot struct {
	ID      string
	Type    string
	Version string
	Fields  json.RawMessage
}

// getObject wire shapes.

type objectReadResult struct {
	Data  *objectData      `json:"data"`
	Error *objectReadError `json:"error"`
}

type objectData struct {
	ObjectID string         `json:"objectId"`
	Version  string         `json:"version"`
	Content  *objectContent `json:"content"`
}

type objectContent struct {
	DataType string          `json:"dataType"`
	Type     string          `json:"type"`
	Fields   json.RawMessage `json:"fields"`
}

type objectReadError struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id,omitempty"`
}

// queryEvents wire shapes.

type eventPage struct {
	Data        []Event  `json:"data"`
	NextCursor  *EventID `json:"nextCursor"`
	HasNextPage bool     `json:"hasNextPage"`
}
