package service

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"dojoledger/internal/academy/models"
	"dojoledger/internal/sui"
	dErrors "dojoledger/pkg/domain-errors"
)

// studentFields is the Move object's field layout. Timestamps arrive as
// decimal-string u64 epoch milliseconds, the node's encoding for u64.
type studentFields struct {
	ExternalID    string `json:"external_id"`
	Name          string `json:"name"`
	Rank          string `json:"rank"`
	FeePaid       bool   `json:"fee_paid"`
	FeeValidUntil string `json:"fee_valid_until_ms"`
	EnrolledAt    string `json:"enrolled_at_ms"`
}

// enrolledEventFields is the payload of the enrollment event.
type enrolledEventFields struct {
	StudentID string `json:"student_id"`
}

// studentFromSnapshot materializes a domain student from a raw object read.
// A snapshot whose type or field layout does not match the expected record
// shape is a protocol violation: the node answered, but not with a student.
func studentFromSnapshot(snap *sui.ObjectSnapshot) (models.Student, error) {
	if !strings.Contains(snap.Type, sui.StudentTypeTag) {
		return models.Student{}, dErrors.Newf(dErrors.CodeNotFound,
			"object %s is not a student record", snap.ID)
	}

	var fields studentFields
	if err := json.Unmarshal(snap.Fields, &fields); err != nil {
		return models.Student{}, dErrors.Wrap(err, dErrors.CodeProtocolViolation,
			"malformed student fields for object "+snap.ID)
	}

	rank, err := models.ParseRank(fields.Rank)
	if err != nil {
		return models.Student{}, dErrors.Newf(dErrors.CodeProtocolViolation,
			"ledger reported unknown rank %q for object %s", fields.Rank, snap.ID)
	}

	feeValidUntil, err := parseEpochMs(fields.FeeValidUntil)
	if err != nil {
		return models.Student{}, dErrors.Wrap(err, dErrors.CodeProtocolViolation,
			"malformed fee validity timestamp for object "+snap.ID)
	}
	enrolledAt, err := parseEpochMs(fields.EnrolledAt)
	if err != nil {
		return models.Student{}, dErrors.Wrap(err, dErrors.CodeProtocolViolation,
			"malformed enrollment timestamp for object "+snap.ID)
	}

	return models.Student{
		ID:            snap.ID,
		ExternalID:    fields.ExternalID,
		Name:          fields.Name,
		Rank:          rank,
		FeePaid:       fields.FeePaid,
		FeeValidUntil: feeValidUntil,
		EnrolledAt:    enrolledAt,
	}, nil
}

// studentIDFromEnrollmentEvent extracts the created record's identifier from
// one enrollment event.
func studentIDFromEnrollmentEvent(evt sui.Event) (string, error) {
	var fields enrolledEventFields
	if err := json.Unmarshal(evt.ParsedJSON, &fields); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeProtocolViolation,
			"malformed enrollment event "+evt.ID.TxDigest)
	}
	if fields.StudentID == "" {
		return "", dErrors.Newf(dErrors.CodeProtocolViolation,
			"enrollment event %s carries no student id", evt.ID.TxDigest)
	}
	return fields.StudentID, nil
}

// parseEpochMs converts a decimal-string millisecond timestamp. Empty and
// zero both mean unset.
func parseEpochMs(s string) (time.Time, error) {
	if s == "" || s == "0" {
		return time.Time{}, nil
	}
	ms, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(int64(ms)).UTC(), nil
}
