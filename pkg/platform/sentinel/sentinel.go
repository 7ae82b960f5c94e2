package sentinel

import "errors"

// Sentinel errors for infrastructure facts. The snapshot cache returns these
// (optionally wrapped) so services can distinguish a miss from a failure.
//
// These represent factual states about stored resources, not validation
// failures. For validation errors use pkg/domain-errors directly.
var (
	// ErrNotFound: no entry exists for the requested identifier.
	ErrNotFound = errors.New("not found")
)
