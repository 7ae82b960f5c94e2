package sui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "dojoledger/pkg/domain-errors"
)

const (
	testPackageID = "0xpkg"
	testAdminCap  = "0xadmincap"
	testClockID   = "0x6"
	testSigner    = "0x7ef135b499a13ecc6a77107049d9334979180f6e5ae1f7f4a7aaebdc905f9def"
)

func newTestBuilder() *Builder {
	return NewBuilder(testPackageID, testAdminCap, testClockID)
}

func TestEnroll_BuildsTypedIntent(t *testing.T) {
	intent, err := newTestBuilder().Enroll(EnrollArgs{
		ExternalID:    "google-123",
		Name:          "Ana",
		Rank:          "White",
		SignerAddress: testSigner,
	})
	require.NoError(t, err)

	assert.Equal(t, "0xpkg::academy::enroll_student", intent.Target)
	assert.Equal(t, OpEnrollStudent, intent.Operation)
	require.Len(t, intent.Args, 5)

	assert.Equal(t, CallArg{Kind: ArgPureString, Value: "google-123"}, intent.Args[0])
	assert.Equal(t, CallArg{Kind: ArgPureString, Value: "Ana"}, intent.Args[1])
	// Rank is canonicalized to lowercase before serialization.
	assert.Equal(t, CallArg{Kind: ArgPureString, Value: "white"}, intent.Args[2])
	assert.Equal(t, CallArg{Kind: ArgPureAddress, Value: testSigner}, intent.Args[3])
	assert.Equal(t, CallArg{Kind: ArgObject, Value: testClockID}, intent.Args[4])
}

func TestEnroll_RejectsInvalidInput(t *testing.T) {
	valid := EnrollArgs{
		ExternalID:    "google-123",
		Name:          "Ana",
		Rank:          "white",
		SignerAddress: testSigner,
	}

	tests := []struct {
		name   string
		mutate func(*EnrollArgs)
	}{
		{"empty external identity", func(a *EnrollArgs) { a.ExternalID = "  " }},
		{"empty name", func(a *EnrollArgs) { a.Name = "" }},
		{"unknown rank", func(a *EnrollArgs) { a.Rank = "yellow" }},
		{"rank not in set despite casing", func(a *EnrollArgs) { a.Rank = "BLACKBELT" }},
		{"empty signer", func(a *EnrollArgs) { a.SignerAddress = "" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args := valid
			tc.mutate(&args)
			_, err := newTestBuilder().Enroll(args)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidArgument),
				"expected invalid_argument, got %v", err)
		})
	}
}

func TestEnroll_AcceptsAllBeltsCaseInsensitively(t *testing.T) {
	for _, rank := range []string{"white", "Blue", "PURPLE", "Brown", "blAck"} {
		_, err := newTestBuilder().Enroll(EnrollArgs{
			ExternalID:    "id",
			Name:          "n",
			Rank:          rank,
			SignerAddress: testSigner,
		})
		require.NoError(t, err, "rank %q should be accepted", rank)
	}
}

func TestRecordAttendance_BuildsIntent(t *testing.T) {
	intent, err := newTestBuilder().RecordAttendance(AttendanceArgs{
		StudentID: "0xstudent",
		PhotoRef:  "https://cdn.example.com/photos/1.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, "0xpkg::academy::record_attendance", intent.Target)
	require.Len(t, intent.Args, 3)
	assert.Equal(t, CallArg{Kind: ArgObject, Value: "0xstudent"}, intent.Args[0])
	assert.Equal(t, CallArg{Kind: ArgPureString, Value: "https://cdn.example.com/photos/1.jpg"}, intent.Args[1])
	assert.Equal(t, CallArg{Kind: ArgObject, Value: testClockID}, intent.Args[2])
}

func TestRecordAttendance_RejectsMissingInput(t *testing.T) {
	b := newTestBuilder()

	_, err := b.RecordAttendance(AttendanceArgs{StudentID: "", PhotoRef: "x"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidArgument))

	_, err = b.RecordAttendance(AttendanceArgs{StudentID: "0xstudent", PhotoRef: " "})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidArgument))
}

func TestUpdateFeeStatus_AlwaysAttachesAdminCapAndClock(t *testing.T) {
	intent, err := newTestBuilder().UpdateFeeStatus(FeeStatusArgs{
		StudentID:        "0xstudent",
		AmountMinorUnits: 15000,
		ValidityDays:     30,
	})
	require.NoError(t, err)

	require.Len(t, intent.Args, 5)
	// The capability reference comes from the builder, not the caller, and is
	// always first.
	assert.Equal(t, CallArg{Kind: ArgObject, Value: testAdminCap}, intent.Args[0])
	assert.Equal(t, CallArg{Kind: ArgObject, Value: "0xstudent"}, intent.Args[1])
	assert.Equal(t, CallArg{Kind: ArgPureU64, U64: 15000}, intent.Args[2])
	assert.Equal(t, CallArg{Kind: ArgPureU64, U64: 30}, intent.Args[3])
	assert.Equal(t, CallArg{Kind: ArgObject, Value: testClockID}, intent.Args[4])
}

func TestUpdateFeeStatus_RejectsInvalidInput(t *testing.T) {
	b := newTestBuilder()

	_, err := b.UpdateFeeStatus(FeeStatusArgs{StudentID: "", ValidityDays: 30})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidArgument))

	_, err = b.UpdateFeeStatus(FeeStatusArgs{StudentID: "0xstudent", ValidityDays: 0})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidArgument))
}

func TestSigningBytes_Deterministic(t *testing.T) {
	intent, err := newTestBuilder().Enroll(EnrollArgs{
		ExternalID:    "google-123",
		Name:          "Ana",
		Rank:          "white",
		SignerAddress: testSigner,
	})
	require.NoError(t, err)

	a, err := intent.SigningBytes()
	require.NoError(t, err)
	b, err := intent.SigningBytes()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEnrolledEventType(t *testing.T) {
	assert.Equal(t, "0xpkg::academy::StudentEnrolled", newTestBuilder().EnrolledEventType())
}
