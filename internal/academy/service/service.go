// Package service composes the ledger core into the academy operations
// exposed to the HTTP boundary: enroll, record attendance, update fee status,
// and get/list students. Writes build an intent, sign, submit, and extract
// from the confirmation; reads go through the resolver or the event
// projection.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"dojoledger/internal/academy/metrics"
	"dojoledger/internal/academy/models"
	"dojoledger/internal/sui"
	dErrors "dojoledger/pkg/domain-errors"
	"dojoledger/pkg/platform/sentinel"
)

// LedgerClient is the surface of the ledger core the service depends on.
// Satisfied by *sui.Client; tests substitute a stub node.
type LedgerClient interface {
	ExecuteTransaction(ctx context.Context, intent sui.Intent, cred *sui.Credential) (*sui.ConfirmationResult, error)
	GetObject(ctx context.Context, id string) (*sui.ObjectSnapshot, error)
	QueryEvents(ctx context.Context, eventType string, descending bool) ([]sui.Event, error)
}

// SnapshotCache caches resolved student snapshots. Implementations return
// sentinel.ErrNotFound on a miss. A nil cache disables caching.
type SnapshotCache interface {
	Get(ctx context.Context, id string) (*models.Student, error)
	Set(ctx context.Context, student models.Student) error
	Invalidate(ctx context.Context, id string) error
}

// Service is the domain facade. The credential is immutable after load and
// shared read-only across concurrent requests; there is no other shared
// in-process state.
type Service struct {
	ledger       LedgerClient
	builder      *sui.Builder
	cred         *sui.Credential
	cache        SnapshotCache
	metrics      *metrics.Metrics
	logger       *slog.Logger
	resolveLimit int
}

type serviceConfig struct {
	cache        SnapshotCache
	metrics      *metrics.Metrics
	logger       *slog.Logger
	resolveLimit int
}

// Option configures optional service dependencies.
type Option func(*serviceConfig)

// WithCache attaches a snapshot cache.
func WithCache(c SnapshotCache) Option {
	return func(cfg *serviceConfig) { cfg.cache = c }
}

// WithMetrics attaches module metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(cfg *serviceConfig) { cfg.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *serviceConfig) { cfg.logger = l }
}

// WithResolveLimit bounds the concurrent re-resolution fan-out during
// listing.
func WithResolveLimit(n int) Option {
	return func(cfg *serviceConfig) { cfg.resolveLimit = n }
}

func New(ledger LedgerClient, builder *sui.Builder, cred *sui.Credential, opts ...Option) *Service {
	cfg := &serviceConfig{resolveLimit: 8}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Service{
		ledger:       ledger,
		builder:      builder,
		cred:         cred,
		cache:        cfg.cache,
		metrics:      cfg.metrics,
		logger:       cfg.logger,
		resolveLimit: cfg.resolveLimit,
	}
}

// Enroll creates a new student record on the ledger and returns the
// ledger-assigned identifier extracted from the confirmation's object-change
// list.
func (s *Service) Enroll(ctx context.Context, req models.EnrollRequest) (models.EnrollResult, error) {
	intent, err := s.builder.Enroll(sui.EnrollArgs{
		ExternalID:    req.ExternalID,
		Name:          req.DisplayName,
		Rank:          req.Rank,
		SignerAddress: s.cred.Address(),
	})
	if err != nil {
		return models.EnrollResult{}, err
	}

	result, err := s.submit(ctx, intent)
	if err != nil {
		return models.EnrollResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "enroll student")
	}

	studentID, err := extractCreatedStudentID(result)
	if err != nil {
		return models.EnrollResult{}, err
	}

	s.metrics.IncrementEnrolled()
	s.logger.InfoContext(ctx, "student enrolled",
		"student_id", studentID,
		"digest", result.Digest,
	)
	return models.EnrollResult{StudentID: studentID, Digest: result.Digest}, nil
}

// RecordAttendance appends an attendance event for the student. Attendance
// events are immutable once confirmed.
//
// On a confirmation timeout the outcome is unknown: the transaction may still
// finalize. The service re-resolves the student before reporting, so the
// caller gets the timeout with reconciliation context instead of a false
// "not recorded".
func (s *Service) RecordAttendance(ctx context.Context, req models.AttendanceRequest) (models.AttendanceResult, error) {
	intent, err := s.builder.RecordAttendance(sui.AttendanceArgs{
		StudentID: req.StudentID,
		PhotoRef:  req.PhotoRef,
	})
	if err != nil {
		return models.AttendanceResult{}, err
	}

	result, err := s.submit(ctx, intent)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeTimeout) {
			return models.AttendanceResult{}, s.reconcileTimeout(ctx, req.StudentID, err)
		}
		return models.AttendanceResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "record attendance")
	}

	s.invalidateSnapshot(ctx, req.StudentID)
	return models.AttendanceResult{Digest: result.Digest}, nil
}

// UpdateFeeStatus marks the student's fees as paid for the given validity
// period. The admin capability reference is attached by the builder; callers
// cannot supply or omit it.
func (s *Service) UpdateFeeStatus(ctx context.Context, req models.FeeStatusRequest) (models.FeeStatusResult, error) {
	intent, err := s.builder.UpdateFeeStatus(sui.FeeStatusArgs{
		StudentID:        req.StudentID,
		AmountMinorUnits: req.AmountMinorUnits,
		ValidityDays:     req.ValidityDays,
	})
	if err != nil {
		return models.FeeStatusResult{}, err
	}

	result, err := s.submit(ctx, intent)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeTimeout) {
			return models.FeeStatusResult{}, s.reconcileTimeout(ctx, req.StudentID, err)
		}
		return models.FeeStatusResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "update fee status")
	}

	s.invalidateSnapshot(ctx, req.StudentID)
	s.logger.InfoContext(ctx, "fee status updated",
		"student_id", req.StudentID,
		"digest", result.Digest,
	)
	return models.FeeStatusResult{Digest: result.Digest}, nil
}

// GetStudent resolves the current materialized state of one student. The
// snapshot is at least as fresh as the read; a cache hit may be up to the
// cache TTL older.
func (s *Service) GetStudent(ctx context.Context, id string) (models.Student, error) {
	if id == "" {
		return models.Student{}, dErrors.New(dErrors.CodeInvalidArgument, "student id is required")
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err == nil {
			return *cached, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.DebugContext(ctx, "snapshot cache read failed", "error", err)
		}
	}

	student, err := s.resolveStudent(ctx, id)
	if err != nil {
		return models.Student{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, student); err != nil {
			s.logger.DebugContext(ctx, "snapshot cache write failed", "error", err)
		}
	}
	return student, nil
}

// ListStudents reconstructs the listing view from the append-only enrollment
// event log, since the ledger has no list-all-records primitive. The
// projection is eventually consistent: identifiers come from enrollment
// events in ledger emission order, oldest first, and each one is re-resolved
// so rank and fee status are current.
func (s *Service) ListStudents(ctx context.Context) ([]models.Student, error) {
	start := time.Now()
	events, err := s.ledger.QueryEvents(ctx, s.builder.EnrolledEventType(), false)
	s.metrics.ObserveResolve(start)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "query enrollment events")
	}

	ids := make([]string, 0, len(events))
	for _, evt := range events {
		id, err := studentIDFromEnrollmentEvent(evt)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	students := make([]*models.Student, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.resolveLimit)
	for i, id := range ids {
		g.Go(func() error {
			student, err := s.resolveStudent(gctx, id)
			if err != nil {
				// A projected identifier can race object pruning; the
				// listing simply omits what no longer resolves.
				if dErrors.HasCode(err, dErrors.CodeNotFound) {
					return nil
				}
				return err
			}
			students[i] = &student
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "resolve listed students")
	}

	out := make([]models.Student, 0, len(students))
	for _, st := range students {
		if st != nil {
			out = append(out, *st)
		}
	}
	return out, nil
}

// submit performs the single signed round trip and records its outcome.
func (s *Service) submit(ctx context.Context, intent sui.Intent) (*sui.ConfirmationResult, error) {
	start := time.Now()
	result, err := s.ledger.ExecuteTransaction(ctx, intent, s.cred)
	s.metrics.ObserveSubmit(start)
	s.metrics.RecordSubmission(string(intent.Operation), err)
	return result, err
}

func (s *Service) resolveStudent(ctx context.Context, id string) (models.Student, error) {
	start := time.Now()
	snap, err := s.ledger.GetObject(ctx, id)
	s.metrics.ObserveResolve(start)
	if err != nil {
		return models.Student{}, dErrors.Wrap(err, dErrors.CodeInternal, "resolve student "+id)
	}
	return studentFromSnapshot(snap)
}

// reconcileTimeout re-resolves the write target after an indeterminate
// confirmation. The timeout classification is preserved so the caller still
// knows the write may have landed.
func (s *Service) reconcileTimeout(ctx context.Context, studentID string, timeoutErr error) error {
	_, resolveErr := s.ledger.GetObject(ctx, studentID)
	switch {
	case resolveErr == nil:
		s.invalidateSnapshot(ctx, studentID)
		s.logger.WarnContext(ctx, "confirmation timed out; target still live, write may have finalized",
			"student_id", studentID,
		)
		return dErrors.Wrap(timeoutErr, dErrors.CodeTimeout,
			"outcome unknown: verify ledger state before retrying")
	case dErrors.HasCode(resolveErr, dErrors.CodeNotFound):
		return dErrors.Wrap(timeoutErr, dErrors.CodeTimeout, "target record not found after timeout")
	default:
		s.logger.WarnContext(ctx, "reconciliation read failed after timeout",
			"student_id", studentID,
			"error", resolveErr,
		)
		return dErrors.Wrap(timeoutErr, dErrors.CodeTimeout,
			"outcome unknown and reconciliation read failed")
	}
}

func (s *Service) invalidateSnapshot(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.DebugContext(ctx, "snapshot cache invalidation failed", "error", err)
	}
}

// extractCreatedStudentID finds the single created student object in a
// confirmation. Zero or more than one is an invariant break in the ledger's
// behavior and is surfaced as a protocol violation, never ignored.
func extractCreatedStudentID(result *sui.ConfirmationResult) (string, error) {
	var ids []string
	for _, change := range result.ObjectChanges {
		if change.Type == "created" && strings.Contains(change.ObjectType, sui.StudentTypeTag) {
			ids = append(ids, change.ObjectID)
		}
	}
	if len(ids) != 1 {
		return "", dErrors.Newf(dErrors.CodeProtocolViolation,
			"expected exactly one created student object, ledger reported %d", len(ids))
	}
	return ids[0], nil
}
