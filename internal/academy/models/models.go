// Package models holds the academy domain types. Students are owned by the
// ledger; everything here is a fetched projection, never authoritative state.
package models

import (
	"strings"
	"time"

	dErrors "dojoledger/pkg/domain-errors"
)

// Rank is a belt in the academy's fixed progression.
type Rank string

const (
	RankWhite  Rank = "white"
	RankBlue   Rank = "blue"
	RankPurple Rank = "purple"
	RankBrown  Rank = "brown"
	RankBlack  Rank = "black"
)

// Ranks lists every valid belt in progression order.
func Ranks() []Rank {
	return []Rank{RankWhite, RankBlue, RankPurple, RankBrown, RankBlack}
}

// ParseRank canonicalizes a caller-supplied rank, matching
// case-insensitively.
func ParseRank(s string) (Rank, error) {
	canonical := Rank(strings.ToLower(strings.TrimSpace(s)))
	for _, r := range Ranks() {
		if canonical == r {
			return r, nil
		}
	}
	return "", dErrors.Newf(dErrors.CodeInvalidArgument, "invalid rank %q", s)
}

// Student is a membership record as read from the ledger. The ID is assigned
// by the ledger at creation and never chosen locally.
type Student struct {
	ID            string    `json:"id"`
	ExternalID    string    `json:"external_id"`
	Name          string    `json:"name"`
	Rank          Rank      `json:"rank"`
	FeePaid       bool      `json:"fee_paid"`
	FeeValidUntil time.Time `json:"fee_valid_until,omitzero"`
	EnrolledAt    time.Time `json:"enrolled_at,omitzero"`
}

// EnrollRequest carries the validated enrollment payload from the HTTP
// boundary. Argument contracts are enforced by the transaction builder.
type EnrollRequest struct {
	ExternalID  string `json:"external_id"`
	DisplayName string `json:"display_name"`
	Rank        string `json:"rank"`
}

// EnrollResult reports a confirmed enrollment: the ledger-assigned student ID
// and the transaction digest.
type EnrollResult struct {
	StudentID string `json:"student_id"`
	Digest    string `json:"digest"`
}

// AttendanceRequest records a class attendance with a photo reference (a URI,
// never binary content).
type AttendanceRequest struct {
	StudentID string `json:"-"`
	PhotoRef  string `json:"photo_ref"`
}

// AttendanceResult reports a confirmed attendance event.
type AttendanceResult struct {
	Digest string `json:"digest"`
}

// FeeStatusRequest updates a student's fee standing. The amount is in integer
// minor currency units (e.g. 15000 = R$150,00).
type FeeStatusRequest struct {
	StudentID        string `json:"-"`
	AmountMinorUnits uint64 `json:"fee_amount_minor_units"`
	ValidityDays     uint64 `json:"validity_days"`
}

// FeeStatusResult reports a confirmed fee-status update.
type FeeStatusResult struct {
	Digest string `json:"digest"`
}
