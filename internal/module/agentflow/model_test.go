package agentflow_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendenpay/portal/internal/module/agentflow"
)

func startedFlow(t *testing.T, kind string) *agentflow.Flow {
	t.Helper()
	f := agentflow.New("agent-1")
	require.NoError(t, f.ChooseKind(kind))
	return f
}

func TestFlow_HappyPathWithDetails(t *testing.T) {
	f := startedFlow(t, "deposit")
	assert.Equal(t, agentflow.StateSelectingMethod, f.State)

	require.NoError(t, f.ChooseMethod("m-1"))
	assert.Equal(t, agentflow.StateSelectingType, f.State)

	require.NoError(t, f.ChooseType("t-1", 3))
	assert.Equal(t, agentflow.StateSelectingDetail, f.State)
	assert.True(t, f.Deadline.IsZero(), "deadline must not arm before submission state")

	require.NoError(t, f.ChooseDetail("d-1"))
	assert.Equal(t, agentflow.StateSubmitting, f.State)
	assert.False(t, f.Deadline.IsZero())
}

func TestFlow_ZeroDetailsSkipsDetailSelection(t *testing.T) {
	f := startedFlow(t, "withdraw")
	require.NoError(t, f.ChooseMethod("m-1"))

	require.NoError(t, f.ChooseType("t-1", 0))
	assert.Equal(t, agentflow.StateSubmitting, f.State)
	assert.Empty(t, f.DetailID)
	assert.False(t, f.Deadline.IsZero())
}

func TestFlow_ChooseKind(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		wantErr error
	}{
		{name: "deposit", kind: "deposit"},
		{name: "withdraw", kind: "withdraw"},
		{name: "unknown kind", kind: "transfer", wantErr: agentflow.ErrUnknownKind},
		{name: "empty kind", kind: "", wantErr: agentflow.ErrUnknownKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := agentflow.New("agent-1")
			err := f.ChooseKind(tt.kind)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, agentflow.StateSelectingTransactionType, f.State)
			} else {
				require.NoError(t, err)
				assert.Equal(t, agentflow.StateSelectingMethod, f.State)
			}
		})
	}
}

func TestFlow_OutOfOrderTransitionsRejected(t *testing.T) {
	f := agentflow.New("agent-1")

	assert.ErrorIs(t, f.ChooseMethod("m-1"), agentflow.ErrInvalidTransition)
	assert.ErrorIs(t, f.ChooseType("t-1", 1), agentflow.ErrInvalidTransition)
	assert.ErrorIs(t, f.ChooseDetail("d-1"), agentflow.ErrInvalidTransition)

	require.NoError(t, f.ChooseKind("deposit"))
	assert.ErrorIs(t, f.ChooseKind("withdraw"), agentflow.ErrInvalidTransition)
	assert.ErrorIs(t, f.ChooseDetail("d-1"), agentflow.ErrInvalidTransition)
}

func TestFlow_DeadlineWindow(t *testing.T) {
	f := startedFlow(t, "deposit")
	require.NoError(t, f.ChooseMethod("m-1"))
	require.NoError(t, f.ChooseType("t-1", 0))

	now := time.Now().UTC()
	remaining := f.Remaining(now)
	assert.Greater(t, remaining, 599*time.Second)
	assert.LessOrEqual(t, remaining, 600*time.Second)

	assert.False(t, f.Expired(now))
	assert.True(t, f.Expired(f.Deadline.Add(time.Second)))
	assert.Equal(t, time.Duration(0), f.Remaining(f.Deadline.Add(time.Minute)))
}

func TestFlow_ValidateSubmissionOrder(t *testing.T) {
	submitting := func(t *testing.T) *agentflow.Flow {
		f := startedFlow(t, "deposit")
		require.NoError(t, f.ChooseMethod("m-1"))
		require.NoError(t, f.ChooseType("t-1", 0))
		return f
	}

	valid := agentflow.Submission{
		Amount:          decimal.NewFromInt(500),
		ReferenceNumber: "TRX-001",
		AttachmentURL:   "https://cdn.lendenpay.com/r.png",
		SourceType:      "MOBILE_BANKING",
		SourceID:        "017xxxxxxxx",
	}

	now := time.Now().UTC()

	tests := []struct {
		name    string
		mutate  func(*agentflow.Submission)
		wantErr error
	}{
		{name: "valid", mutate: func(s *agentflow.Submission) {}},
		{name: "zero amount checked first", mutate: func(s *agentflow.Submission) {
			s.Amount = decimal.Zero
			s.ReferenceNumber = ""
		}, wantErr: agentflow.ErrAmountRequired},
		{name: "missing reference number", mutate: func(s *agentflow.Submission) {
			s.ReferenceNumber = ""
		}, wantErr: agentflow.ErrReferenceRequired},
		{name: "missing attachment", mutate: func(s *agentflow.Submission) {
			s.AttachmentURL = ""
		}, wantErr: agentflow.ErrAttachmentRequired},
		{name: "missing source id", mutate: func(s *agentflow.Submission) {
			s.SourceID = ""
		}, wantErr: agentflow.ErrSourceRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := submitting(t)
			sub := valid
			tt.mutate(&sub)

			err := f.ValidateSubmission(sub, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFlow_ValidateSubmissionExpired(t *testing.T) {
	f := startedFlow(t, "deposit")
	require.NoError(t, f.ChooseMethod("m-1"))
	require.NoError(t, f.ChooseType("t-1", 0))

	sub := agentflow.Submission{
		Amount:          decimal.NewFromInt(100),
		ReferenceNumber: "TRX-001",
		AttachmentURL:   "https://cdn.lendenpay.com/r.png",
		SourceType:      "BANK",
		SourceID:        "acc-1",
	}

	err := f.ValidateSubmission(sub, f.Deadline.Add(time.Second))
	assert.ErrorIs(t, err, agentflow.ErrFlowExpired)
}

func TestFlow_ValidateSubmissionBeforeSubmittingState(t *testing.T) {
	f := startedFlow(t, "deposit")
	err := f.ValidateSubmission(agentflow.Submission{}, time.Now())
	assert.ErrorIs(t, err, agentflow.ErrNotReady)
}
