package sui

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dojoledger/internal/platform/config"
	dErrors "dojoledger/pkg/domain-errors"
)

func testCredential() *Credential {
	seed := make([]byte, seedSize)
	seed[0] = 0x42
	return newCredential(seed)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(url string) *Client {
	return NewClient(config.LedgerConfig{
		RPCURL:        url,
		SubmitTimeout: 2 * time.Second,
		ReadTimeout:   2 * time.Second,
	}, testLogger())
}

// fakeNode is an httptest JSON-RPC server scripted per method.
func fakeNode(t *testing.T, handle func(method string, params []json.RawMessage) (any, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int64             `json:"id"`
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, rpcErr := handle(req.Method, req.Params)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func confirmedExecution(digest string) map[string]any {
	return map[string]any{
		"digest":  digest,
		"effects": map[string]any{"status": map[string]any{"status": "success"}},
		"objectChanges": []map[string]any{
			{"type": "created", "objectType": "0xpkg::academy::Student", "objectId": "0xstudent1"},
		},
		"events": []map[string]any{},
	}
}

func TestExecuteTransaction_Success(t *testing.T) {
	cred := testCredential()
	var gotTxBytes string
	var gotSignatures []string

	node := fakeNode(t, func(method string, params []json.RawMessage) (any, *rpcError) {
		require.Equal(t, methodExecuteTransaction, method)
		require.Len(t, params, 4)
		require.NoError(t, json.Unmarshal(params[0], &gotTxBytes))
		require.NoError(t, json.Unmarshal(params[1], &gotSignatures))

		var opts map[string]bool
		require.NoError(t, json.Unmarshal(params[2], &opts))
		assert.True(t, opts["showEffects"] && opts["showObjectChanges"] && opts["showEvents"])

		return confirmedExecution("DigestAbc"), nil
	})
	defer node.Close()

	intent, err := newTestBuilder().Enroll(EnrollArgs{
		ExternalID: "g-1", Name: "Ana", Rank: "white", SignerAddress: cred.Address(),
	})
	require.NoError(t, err)

	result, err := newTestClient(node.URL).ExecuteTransaction(t.Context(), intent, cred)
	require.NoError(t, err)
	assert.Equal(t, "DigestAbc", result.Digest)
	require.Len(t, result.ObjectChanges, 1)
	assert.Equal(t, "created", result.ObjectChanges[0].Type)

	// The submitted bytes are the intent's signing bytes and the signature
	// verifies against the credential that produced it.
	msg, err := base64.StdEncoding.DecodeString(gotTxBytes)
	require.NoError(t, err)
	want, err := intent.SigningBytes()
	require.NoError(t, err)
	assert.Equal(t, want, msg)

	require.Len(t, gotSignatures, 1)
	serialized, err := base64.StdEncoding.DecodeString(gotSignatures[0])
	require.NoError(t, err)
	sig := serialized[1 : 1+ed25519.SignatureSize]
	pub := serialized[1+ed25519.SignatureSize:]
	assert.True(t, ed25519.Verify(pub, msg, sig))
}

func TestExecuteTransaction_RejectedByRPCError(t *testing.T) {
	node := fakeNode(t, func(string, []json.RawMessage) (any, *rpcError) {
		return nil, &rpcError{Code: -32002, Message: "missing required capability"}
	})
	defer node.Close()

	intent, _ := newTestBuilder().RecordAttendance(AttendanceArgs{StudentID: "0xs", PhotoRef: "p"})
	_, err := newTestClient(node.URL).ExecuteTransaction(t.Context(), intent, testCredential())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRejected), "got %v", err)
	assert.Contains(t, err.Error(), "missing required capability")
}

func TestExecuteTransaction_RejectedByExecutionFailure(t *testing.T) {
	node := fakeNode(t, func(string, []json.RawMessage) (any, *rpcError) {
		return map[string]any{
			"digest": "DigestFail",
			"effects": map[string]any{"status": map[string]any{
				"status": "failure",
				"error":  "MoveAbort(academy, 3): stale object version",
			}},
		}, nil
	})
	defer node.Close()

	intent, _ := newTestBuilder().RecordAttendance(AttendanceArgs{StudentID: "0xs", PhotoRef: "p"})
	_, err := newTestClient(node.URL).ExecuteTransaction(t.Context(), intent, testCredential())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeRejected))
	assert.Contains(t, err.Error(), "stale object version")
}

func TestExecuteTransaction_ProtocolViolationOnMissingEffects(t *testing.T) {
	node := fakeNode(t, func(string, []json.RawMessage) (any, *rpcError) {
		return map[string]any{"digest": "DigestNoEffects"}, nil
	})
	defer node.Close()

	intent, _ := newTestBuilder().RecordAttendance(AttendanceArgs{StudentID: "0xs", PhotoRef: "p"})
	_, err := newTestClient(node.URL).ExecuteTransaction(t.Context(), intent, testCredential())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeProtocolViolation))
}

func TestExecuteTransaction_TimeoutIsIndeterminate(t *testing.T) {
	node := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer node.Close()

	client := NewClient(config.LedgerConfig{
		RPCURL:        node.URL,
		SubmitTimeout: 50 * time.Millisecond,
		ReadTimeout:   50 * time.Millisecond,
	}, testLogger())

	intent, _ := newTestBuilder().RecordAttendance(AttendanceArgs{StudentID: "0xs", PhotoRef: "p"})
	_, err := client.ExecuteTransaction(t.Context(), intent, testCredential())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout), "got %v", err)
}

func TestExecuteTransaction_UnavailableOnTransportFailure(t *testing.T) {
	node := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	node.Close() // refuse connections

	intent, _ := newTestBuilder().RecordAttendance(AttendanceArgs{StudentID: "0xs", PhotoRef: "p"})
	_, err := newTestClient(node.URL).ExecuteTransaction(t.Context(), intent, testCredential())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable), "got %v", err)
}

func TestGetObject_Success(t *testing.T) {
	node := fakeNode(t, func(method string, params []json.RawMessage) (any, *rpcError) {
		require.Equal(t, methodGetObject, method)
		var id string
		require.NoError(t, json.Unmarshal(params[0], &id))
		assert.Equal(t, "0xstudent1", id)

		return map[string]any{
			"data": map[string]any{
				"objectId": "0xstudent1",
				"version":  "12",
				"content": map[string]any{
					"dataType": "moveObject",
					"type":     "0xpkg::academy::Student",
					"fields": map[string]any{
						"name": "Ana",
						"rank": "white",
					},
				},
			},
		}, nil
	})
	defer node.Close()

	snap, err := newTestClient(node.URL).GetObject(t.Context(), "0xstudent1")
	require.NoError(t, err)
	assert.Equal(t, "0xstudent1", snap.ID)
	assert.Equal(t, "0xpkg::academy::Student", snap.Type)
	assert.Equal(t, "12", snap.Version)

	var fields map[string]string
	require.NoError(t, json.Unmarshal(snap.Fields, &fields))
	assert.Equal(t, "Ana", fields["name"])
}

func TestGetObject_NotFound(t *testing.T) {
	for _, code := range []string{"notExists", "deleted"} {
		node := fakeNode(t, func(string, []json.RawMessage) (any, *rpcError) {
			return map[string]any{"error": map[string]any{"code": code}}, nil
		})

		_, err := newTestClient(node.URL).GetObject(t.Context(), "0xgone")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound), "code %s: got %v", code, err)
		node.Close()
	}
}

func TestGetObject_ReadTimeoutIsUnavailable(t *testing.T) {
	node := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer node.Close()

	client := NewClient(config.LedgerConfig{
		RPCURL:        node.URL,
		SubmitTimeout: 50 * time.Millisecond,
		ReadTimeout:   50 * time.Millisecond,
	}, testLogger())

	_, err := client.GetObject(t.Context(), "0xslow")
	require.Error(t, err)
	// Reads are idempotent: a deadline on the read path is plain
	// unavailability, not an indeterminate-outcome timeout.
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable), "got %v", err)
}

func TestQueryEvents_FollowsPagination(t *testing.T) {
	page := 0
	node := fakeNode(t, func(method string, params []json.RawMessage) (any, *rpcError) {
		require.Equal(t, methodQueryEvents, method)

		var filter map[string]string
		require.NoError(t, json.Unmarshal(params[0], &filter))
		assert.Equal(t, "0xpkg::academy::StudentEnrolled", filter["MoveEventType"])

		page++
		if page == 1 {
			return map[string]any{
				"data": []map[string]any{
					{"id": map[string]string{"txDigest": "D1", "eventSeq": "0"}, "type": filter["MoveEventType"], "timestampMs": "1000"},
					{"id": map[string]string{"txDigest": "D2", "eventSeq": "0"}, "type": filter["MoveEventType"], "timestampMs": "2000"},
				},
				"nextCursor":  map[string]string{"txDigest": "D2", "eventSeq": "0"},
				"hasNextPage": true,
			}, nil
		}

		// The second request must carry the cursor from the first page.
		var cursor EventID
		require.NoError(t, json.Unmarshal(params[1], &cursor))
		assert.Equal(t, "D2", cursor.TxDigest)

		return map[string]any{
			"data": []map[string]any{
				{"id": map[string]string{"txDigest": "D3", "eventSeq": "0"}, "type": filter["MoveEventType"], "timestampMs": "3000"},
			},
			"hasNextPage": false,
		}, nil
	})
	defer node.Close()

	events, err := newTestClient(node.URL).QueryEvents(t.Context(), "0xpkg::academy::StudentEnrolled", false)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "D1", events[0].ID.TxDigest)
	assert.Equal(t, "D3", events[2].ID.TxDigest)
}

func TestQueryEvents_UnavailableOnTransportFailure(t *testing.T) {
	node := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	node.Close()

	_, err := newTestClient(node.URL).QueryEvents(t.Context(), "0xpkg::academy::StudentEnrolled", false)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
}
