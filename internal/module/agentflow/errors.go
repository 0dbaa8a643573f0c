package agentflow

import "errors"

var (
	ErrInvalidTransition = errors.New("operation not allowed in current flow state")
	ErrUnknownKind       = errors.New("transaction type must be deposit or withdraw")
	ErrMethodRequired    = errors.New("payment method is required")
	ErrTypeRequired      = errors.New("payment type is required")
	ErrDetailRequired    = errors.New("payment detail is required")
	ErrFlowNotFound      = errors.New("payment flow not found")
	ErrFlowExpired       = errors.New("payment window has expired")

	// Submission validation errors, in check order.
	ErrNotReady           = errors.New("payment flow is not ready for submission")
	ErrAmountRequired     = errors.New("please enter a valid amount")
	ErrReferenceRequired  = errors.New("please enter transaction number")
	ErrAttachmentRequired = errors.New("please upload the payment receipt")
	ErrSourceRequired     = errors.New("source type and source id are required")
)
