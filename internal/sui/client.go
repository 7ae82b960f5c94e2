package sui

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"dojoledger/internal/platform/config"
	dErrors "dojoledger/pkg/domain-errors"
)

const (
	methodExecuteTransaction = "sui_executeTransactionBlock"
	methodGetObject          = "sui_getObject"
	methodQueryEvents        = "suix_queryEvents"

	// eventPageLimit bounds one page of an event query; the client follows
	// cursors until the log is exhausted.
	eventPageLimit = 50
)

// Client talks JSON-RPC to the remote ledger node. It is safe for concurrent
// use; every method carries an explicit timeout and classifies failures into
// the shared error taxonomy. ExecuteTransaction is the only method that
// mutates remote state.
type Client struct {
	rpcURL        string
	http          *http.Client
	logger        *slog.Logger
	tracer        trace.Tracer
	submitTimeout time.Duration
	readTimeout   time.Duration
	nextID        atomic.Int64
}

func NewClient(cfg config.LedgerConfig, logger *slog.Logger) *Client {
	return &Client{
		rpcURL:        cfg.RPCURL,
		http:          &http.Client{},
		logger:        logger,
		tracer:        otel.Tracer("dojoledger/sui"),
		submitTimeout: cfg.SubmitTimeout,
		readTimeout:   cfg.ReadTimeout,
	}
}

// ExecuteTransaction signs the intent with the credential and performs the
// single submit-and-confirm round trip, requesting full effect, object-change
// and event detail.
//
// Failure classes:
//   - unavailable: transport failed; safe to resubmit the same intent if it
//     was never confirmed (the ledger, not this layer, deduplicates)
//   - timeout: no confirmation within the deadline; outcome unknown, the
//     caller must re-resolve state before treating the write as failed
//   - rejected: the node refused the transaction; not retryable unchanged
//   - protocol_violation: result shape breaks the node's documented contract
func (c *Client) ExecuteTransaction(ctx context.Context, intent Intent, cred *Credential) (*ConfirmationResult, error) {
	ctx, span := c.tracer.Start(ctx, "sui.executeTransactionBlock")
	defer span.End()

	msg, err := intent.SigningBytes()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "serialize intent")
	}
	signature := cred.Sign(msg)

	ctx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()

	params := []any{
		base64.StdEncoding.EncodeToString(msg),
		[]string{signature},
		map[string]bool{
			"showEffects":       true,
			"showObjectChanges": true,
			"showEvents":        true,
		},
		"WaitForLocalExecution",
	}

	var result ConfirmationResult
	if err := c.call(ctx, methodExecuteTransaction, params, &result); err != nil {
		var rpcErr *rpcError
		if errors.As(err, &rpcErr) {
			// The node executed validation and refused.
			span.RecordError(err)
			return nil, dErrors.Newf(dErrors.CodeRejected, "transaction rejected: %s", rpcErr.Message)
		}
		span.RecordError(err)
		return nil, c.classifyTransport(err, true)
	}

	if result.Digest == "" || result.Effects == nil {
		return nil, dErrors.New(dErrors.CodeProtocolViolation,
			"node returned a confirmation without digest or effects")
	}
	if result.Effects.Status.Status != "success" {
		reason := result.Effects.Status.Error
		if reason == "" {
			reason = "unspecified execution failure"
		}
		return nil, dErrors.Newf(dErrors.CodeRejected, "transaction failed on ledger: %s", reason)
	}

	c.logger.DebugContext(ctx, "transaction confirmed",
		"digest", result.Digest,
		"operation", string(intent.Operation),
	)
	return &result, nil
}

// GetObject fetches the current materialized state of one ledger object.
// Read-only, idempotent, safe to call unboundedly and concurrently.
func (c *Client) GetObject(ctx context.Context, id string) (*ObjectSnapshot, error) {
	ctx, span := c.tracer.Start(ctx, "sui.getObject")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	params := []any{id, map[string]bool{"showContent": true}}

	var result objectReadResult
	if err := c.call(ctx, methodGetObject, params, &result); err != nil {
		span.RecordError(err)
		var rpcErr *rpcError
		if errors.As(err, &rpcErr) {
			return nil, dErrors.Newf(dErrors.CodeUnavailable, "object read failed: %s", rpcErr.Message)
		}
		return nil, c.classifyTransport(err, false)
	}

	if result.Error != nil {
		switch result.Error.Code {
		case "notExists", "deleted":
			return nil, dErrors.Newf(dErrors.CodeNotFound, "no live object at %s", id)
		default:
			return nil, dErrors.Newf(dErrors.CodeProtocolViolation,
				"unexpected object read error code %q", result.Error.Code)
		}
	}
	if result.Data == nil || result.Data.Content == nil {
		return nil, dErrors.New(dErrors.CodeProtocolViolation, "object read returned no content")
	}

	return &ObjectSnapshot{
		ID:      result.Data.ObjectID,
		Type:    result.Data.Content.Type,
		Version: result.Data.Version,
		Fields:  result.Data.Content.Fields,
	}, nil
}

// QueryEvents returns all events of the given Move event type in ledger
// emission order, oldest first unless descending is set. The client follows
// pagination cursors until the log is exhausted. No deduplication happens
// here.
func (c *Client) QueryEvents(ctx context.Context, eventType string, descending bool) ([]Event, error) {
	ctx, span := c.tracer.Start(ctx, "sui.queryEvents")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, c.readTimeout)
	defer cancel()

	filter := map[string]string{"MoveEventType": eventType}

	var all []Event
	var cursor *EventID
	for {
		params := []any{filter, cursor, eventPageLimit, descending}

		var page eventPage
		if err := c.call(ctx, methodQueryEvents, params, &page); err != nil {
			span.RecordError(err)
			var rpcErr *rpcError
			if errors.As(err, &rpcErr) {
				return nil, dErrors.Newf(dErrors.CodeUnavailable, "event query failed: %s", rpcErr.Message)
			}
			return nil, c.classifyTransport(err, false)
		}

		all = append(all, page.Data...)
		if !page.HasNextPage || page.NextCursor == nil {
			return all, nil
		}
		cursor = page.NextCursor
	}
}

// call performs one JSON-RPC round trip. RPC-level failures come back as
// *rpcError for the caller to classify per method.
func (c *Client) call(ctx context.Context, method string, params []any, result any) error {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: node returned HTTP %d", method, resp.StatusCode)
	}

	var envelope rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return dErrors.Wrap(err, dErrors.CodeProtocolViolation, "malformed JSON-RPC response")
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if envelope.Result == nil {
		return dErrors.New(dErrors.CodeProtocolViolation, "JSON-RPC response carries neither result nor error")
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return dErrors.Wrap(err, dErrors.CodeProtocolViolation, "malformed result payload")
	}
	return nil
}

// classifyTransport maps transport failures. A deadline hit during submission
// means the outcome is unknown (timeout); everything else, and all read-path
// failures, are plain unavailability.
func (c *Client) classifyTransport(err error, isSubmit bool) error {
	if code := dErrors.CodeOf(err); code != "" {
		return err
	}
	if isSubmit {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return dErrors.Wrap(err, dErrors.CodeTimeout,
				"no confirmation within deadline, outcome unknown")
		}
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "ledger node unreachable")
}
