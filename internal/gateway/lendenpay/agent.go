package lendenpay

import (
	"context"
	"fmt"
)

// GetAgentInfo fetches the public profile for an agent. No token: the agent
// portal is reachable by end customers without a session.
func (c *Client) GetAgentInfo(ctx context.Context, agentID string) (*AgentInfo, error) {
	var result struct {
		Agent AgentInfo `json:"agent"`
	}
	if err := c.get(ctx, "/public/agents/"+agentID, "", nil, &result); err != nil {
		return nil, fmt.Errorf("get agent info failed: %w", err)
	}
	return &result.Agent, nil
}

// AgentPaymentMethods fetches the active payment methods linked to an agent
func (c *Client) AgentPaymentMethods(ctx context.Context, agentID string) ([]PaymentMethod, error) {
	var result struct {
		PaymentMethods []PaymentMethod `json:"paymentMethods"`
	}
	if err := c.get(ctx, "/public/agents/"+agentID+"/methods", "", nil, &result); err != nil {
		return nil, fmt.Errorf("get agent payment methods failed: %w", err)
	}
	return result.PaymentMethods, nil
}

// AgentPaymentTypes fetches an agent's payment types under a method
func (c *Client) AgentPaymentTypes(ctx context.Context, agentID, methodID string) ([]PaymentType, error) {
	params := paramsFor("paymentMethodId", methodID)

	var result struct {
		PaymentTypes []PaymentType `json:"paymentTypes"`
	}
	if err := c.get(ctx, "/public/agents/"+agentID+"/types", "", params, &result); err != nil {
		return nil, fmt.Errorf("get agent payment types failed: %w", err)
	}
	return result.PaymentTypes, nil
}

// AgentPaymentDetails fetches the detail rows of a payment type for the
// public flow. An empty slice is a valid answer: the flow then skips the
// detail selection step entirely.
func (c *Client) AgentPaymentDetails(ctx context.Context, agentID, typeID string) ([]PaymentTypeDetail, error) {
	var result struct {
		PaymentDetails []PaymentTypeDetail `json:"paymentDetails"`
	}
	if err := c.get(ctx, "/public/agents/"+agentID+"/details/"+typeID, "", nil, &result); err != nil {
		return nil, fmt.Errorf("get agent payment details failed: %w", err)
	}
	return result.PaymentDetails, nil
}

// SubmitPaymentRequest is the payload for an end customer payment submission
type SubmitPaymentRequest struct {
	AgentID         string `json:"agentId"`
	Type            string `json:"type"` // deposit or withdraw
	PaymentMethodID string `json:"paymentMethodId"`
	PaymentTypeID   string `json:"paymentTypeId"`
	PaymentDetailID string `json:"paymentDetailId,omitempty"`
	Amount          string `json:"amount"`
	ReferenceNumber string `json:"referenceNumber"`
	Attachment      string `json:"attachment"`
	SourceType      string `json:"sourceType"`
	SourceID        string `json:"sourceId"`
}

// SubmitPayment posts an end customer deposit/withdraw request
func (c *Client) SubmitPayment(ctx context.Context, req SubmitPaymentRequest) (*Transaction, error) {
	var result struct {
		Transaction Transaction `json:"transaction"`
	}
	if err := c.post(ctx, "/public/payments", "", req, &result); err != nil {
		return nil, fmt.Errorf("submit payment failed: %w", err)
	}
	return &result.Transaction, nil
}
