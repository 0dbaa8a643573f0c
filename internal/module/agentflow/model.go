// Package agentflow models the public agent payment flow as an explicit
// state machine. An end customer walks a flow from transaction-kind
// selection through method, type and detail selection to submission; the
// routing layer is a projection of this state, never its source of truth.
package agentflow

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendenpay/portal/internal/gateway/lendenpay"
)

// State identifies where a flow is in its progression
type State string

const (
	StateSelectingTransactionType State = "selecting_transaction_type"
	StateSelectingMethod          State = "selecting_method"
	StateSelectingType            State = "selecting_type"
	StateSelectingDetail          State = "selecting_detail"
	StateSubmitting               State = "submitting"
)

// SubmitWindow is how long a flow may sit in StateSubmitting before it
// expires. Expiry is a hard deadline: an expired flow rejects every
// operation and the customer starts over.
const SubmitWindow = 600 * time.Second

// Flow is one customer's progression through the agent payment flow
type Flow struct {
	ID       uuid.UUID `json:"id"`
	AgentID  string    `json:"agentId"`
	Kind     string    `json:"kind"` // deposit or withdraw
	State    State     `json:"state"`
	MethodID string    `json:"methodId,omitempty"`
	TypeID   string    `json:"typeId,omitempty"`
	DetailID string    `json:"detailId,omitempty"`

	StartedAt time.Time `json:"startedAt"`
	// Deadline is zero until the flow reaches StateSubmitting.
	Deadline time.Time `json:"deadline,omitempty"`
}

// New starts a flow for an agent at the transaction-kind selector
func New(agentID string) *Flow {
	return &Flow{
		ID:        uuid.New(),
		AgentID:   agentID,
		State:     StateSelectingTransactionType,
		StartedAt: time.Now().UTC(),
	}
}

// ChooseKind records the transaction kind and moves to method selection
func (f *Flow) ChooseKind(kind string) error {
	if f.State != StateSelectingTransactionType {
		return ErrInvalidTransition
	}
	if kind != lendenpay.TxTypeDeposit && kind != lendenpay.TxTypeWithdraw {
		return ErrUnknownKind
	}
	f.Kind = kind
	f.State = StateSelectingMethod
	return nil
}

// ChooseMethod records the payment method and moves to type selection
func (f *Flow) ChooseMethod(methodID string) error {
	if f.State != StateSelectingMethod {
		return ErrInvalidTransition
	}
	if methodID == "" {
		return ErrMethodRequired
	}
	f.MethodID = methodID
	f.State = StateSelectingType
	return nil
}

// ChooseType records the payment type. A type with zero detail rows has no
// detail grid to show, so the flow skips straight to submission and the
// deadline is armed.
func (f *Flow) ChooseType(typeID string, detailCount int) error {
	if f.State != StateSelectingType {
		return ErrInvalidTransition
	}
	if typeID == "" {
		return ErrTypeRequired
	}
	f.TypeID = typeID
	if detailCount == 0 {
		f.enterSubmitting()
		return nil
	}
	f.State = StateSelectingDetail
	return nil
}

// ChooseDetail records the payment detail and moves to submission
func (f *Flow) ChooseDetail(detailID string) error {
	if f.State != StateSelectingDetail {
		return ErrInvalidTransition
	}
	if detailID == "" {
		return ErrDetailRequired
	}
	f.DetailID = detailID
	f.enterSubmitting()
	return nil
}

func (f *Flow) enterSubmitting() {
	f.State = StateSubmitting
	f.Deadline = time.Now().UTC().Add(SubmitWindow)
}

// Expired reports whether the submission deadline passed
func (f *Flow) Expired(now time.Time) bool {
	return !f.Deadline.IsZero() && now.After(f.Deadline)
}

// Remaining returns the time left before the deadline, clamped at zero
func (f *Flow) Remaining(now time.Time) time.Duration {
	if f.Deadline.IsZero() {
		return 0
	}
	if remaining := f.Deadline.Sub(now); remaining > 0 {
		return remaining
	}
	return 0
}

// Submission carries everything a payment submission needs
type Submission struct {
	Amount          decimal.Decimal
	ReferenceNumber string
	AttachmentURL   string
	SourceType      string
	SourceID        string
}

// ValidateSubmission checks a submission against the flow. Checks run in a
// fixed order and the first failure is reported; the flow itself is left
// untouched so the customer can correct and retry.
func (f *Flow) ValidateSubmission(sub Submission, now time.Time) error {
	if f.State != StateSubmitting {
		return ErrNotReady
	}
	if f.Expired(now) {
		return ErrFlowExpired
	}
	if sub.Amount.Sign() <= 0 {
		return ErrAmountRequired
	}
	if sub.ReferenceNumber == "" {
		return ErrReferenceRequired
	}
	if sub.AttachmentURL == "" {
		return ErrAttachmentRequired
	}
	if sub.SourceType == "" || sub.SourceID == "" {
		return ErrSourceRequired
	}
	return nil
}
