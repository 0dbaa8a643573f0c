package lendenpay

import (
	"context"
	"fmt"
	"net/url"
)

// paramsFor builds a single-pair query when the value is non-empty.
func paramsFor(key, value string) url.Values {
	if value == "" {
		return nil
	}
	params := url.Values{}
	params.Set(key, value)
	return params
}

// PaymentMethodRequest is the payload for creating or updating a payment method
type PaymentMethodRequest struct {
	Name   string `json:"name"`
	Image  string `json:"image,omitempty"`
	Status string `json:"status"`
}

// ListPaymentMethods fetches all configured payment methods
func (c *Client) ListPaymentMethods(ctx context.Context, token string) ([]PaymentMethod, error) {
	var result struct {
		PaymentMethods []PaymentMethod `json:"paymentMethods"`
	}
	if err := c.get(ctx, "/payment/methods", token, nil, &result); err != nil {
		return nil, fmt.Errorf("list payment methods failed: %w", err)
	}
	return result.PaymentMethods, nil
}

// GetPaymentMethod fetches a single payment method
func (c *Client) GetPaymentMethod(ctx context.Context, token, id string) (*PaymentMethod, error) {
	var result struct {
		PaymentMethod PaymentMethod `json:"paymentMethod"`
	}
	if err := c.get(ctx, "/payment/methods/"+id, token, nil, &result); err != nil {
		return nil, fmt.Errorf("get payment method failed: %w", err)
	}
	return &result.PaymentMethod, nil
}

// CreatePaymentMethod creates a payment method
func (c *Client) CreatePaymentMethod(ctx context.Context, token string, req PaymentMethodRequest) (*PaymentMethod, error) {
	var result struct {
		PaymentMethod PaymentMethod `json:"paymentMethod"`
	}
	if err := c.post(ctx, "/payment/methods", token, req, &result); err != nil {
		return nil, fmt.Errorf("create payment method failed: %w", err)
	}
	return &result.PaymentMethod, nil
}

// UpdatePaymentMethod updates a payment method
func (c *Client) UpdatePaymentMethod(ctx context.Context, token, id string, req PaymentMethodRequest) (*PaymentMethod, error) {
	var result struct {
		PaymentMethod PaymentMethod `json:"paymentMethod"`
	}
	if err := c.post(ctx, "/payment/methods/"+id, token, req, &result); err != nil {
		return nil, fmt.Errorf("update payment method failed: %w", err)
	}
	return &result.PaymentMethod, nil
}

// PaymentTypeRequest is the payload for creating or updating a payment type
type PaymentTypeRequest struct {
	PaymentMethodID string `json:"paymentMethodId"`
	Name            string `json:"name"`
	Image           string `json:"image,omitempty"`
	Status          string `json:"status"`
}

// ListPaymentTypes fetches payment types, optionally filtered by method
func (c *Client) ListPaymentTypes(ctx context.Context, token, methodID string) ([]PaymentType, error) {
	params := paramsFor("paymentMethodId", methodID)

	var result struct {
		PaymentTypes []PaymentType `json:"paymentTypes"`
	}
	if err := c.get(ctx, "/payment/types", token, params, &result); err != nil {
		return nil, fmt.Errorf("list payment types failed: %w", err)
	}
	return result.PaymentTypes, nil
}

// GetPaymentType fetches a single payment type with its detail rows
func (c *Client) GetPaymentType(ctx context.Context, token, id string) (*PaymentType, error) {
	var result struct {
		PaymentType PaymentType `json:"paymentType"`
	}
	if err := c.get(ctx, "/payment/types/"+id, token, nil, &result); err != nil {
		return nil, fmt.Errorf("get payment type failed: %w", err)
	}
	return &result.PaymentType, nil
}

// CreatePaymentType creates a payment type
func (c *Client) CreatePaymentType(ctx context.Context, token string, req PaymentTypeRequest) (*PaymentType, error) {
	var result struct {
		PaymentType PaymentType `json:"paymentType"`
	}
	if err := c.post(ctx, "/payment/types", token, req, &result); err != nil {
		return nil, fmt.Errorf("create payment type failed: %w", err)
	}
	return &result.PaymentType, nil
}

// UpdatePaymentType updates a payment type
func (c *Client) UpdatePaymentType(ctx context.Context, token, id string, req PaymentTypeRequest) (*PaymentType, error) {
	var result struct {
		PaymentType PaymentType `json:"paymentType"`
	}
	if err := c.post(ctx, "/payment/types/"+id, token, req, &result); err != nil {
		return nil, fmt.Errorf("update payment type failed: %w", err)
	}
	return &result.PaymentType, nil
}

// DeletePaymentType deletes a payment type. The upstream models deletion as
// a POST to a dedicated path rather than an HTTP DELETE.
func (c *Client) DeletePaymentType(ctx context.Context, token, id string) error {
	if err := c.post(ctx, "/payment/types/delete/"+id, token, nil, nil); err != nil {
		return fmt.Errorf("delete payment type failed: %w", err)
	}
	return nil
}

// PaymentDetails fetches the detail rows for a payment type
func (c *Client) PaymentDetails(ctx context.Context, token, typeID string) ([]PaymentTypeDetail, error) {
	var result struct {
		PaymentDetails []PaymentTypeDetail `json:"paymentDetails"`
	}
	if err := c.get(ctx, "/payment/details/"+typeID, token, nil, &result); err != nil {
		return nil, fmt.Errorf("get payment details failed: %w", err)
	}
	return result.PaymentDetails, nil
}

// PaymentAccountRequest is the payload for creating or updating a payment account
type PaymentAccountRequest struct {
	PaymentDetailID string `json:"paymentDetailId"`
	AccountNumber   string `json:"accountNumber"`
	BranchName      string `json:"branchName,omitempty"`
	RoutingNumber   string `json:"routingNumber,omitempty"`
	MaxLimit        string `json:"maxLimit,omitempty"`
	Status          string `json:"status"`
}

// CreatePaymentAccount creates a linked account under a payment detail
func (c *Client) CreatePaymentAccount(ctx context.Context, token string, req PaymentAccountRequest) (*PaymentAccount, error) {
	var result struct {
		PaymentAccount PaymentAccount `json:"paymentAccount"`
	}
	if err := c.post(ctx, "/payment/account/create", token, req, &result); err != nil {
		return nil, fmt.Errorf("create payment account failed: %w", err)
	}
	return &result.PaymentAccount, nil
}

// UpdatePaymentAccount updates a linked account
func (c *Client) UpdatePaymentAccount(ctx context.Context, token, id string, req PaymentAccountRequest) (*PaymentAccount, error) {
	var result struct {
		PaymentAccount PaymentAccount `json:"paymentAccount"`
	}
	if err := c.post(ctx, "/payment/account/update/"+id, token, req, &result); err != nil {
		return nil, fmt.Errorf("update payment account failed: %w", err)
	}
	return &result.PaymentAccount, nil
}
