package lendenpay

import (
	"context"
	"fmt"
)

// UserUpdateRequest is the payload for updating a user record
type UserUpdateRequest struct {
	FullName       string `json:"fullName,omitempty"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
	AccountType    string `json:"accountType,omitempty"`
	AccountStatus  string `json:"accountStatus,omitempty"`
	Commission     string `json:"commission,omitempty"`
	CommissionType string `json:"commissionType,omitempty"`
}

// ListUsers fetches a filtered, paginated user listing
func (c *Client) ListUsers(ctx context.Context, token string, filters UserFilters) (*UserList, error) {
	var result UserList
	if err := c.get(ctx, "/users", token, filters.Values(), &result); err != nil {
		return nil, fmt.Errorf("list users failed: %w", err)
	}
	return &result, nil
}

// UpdateUser updates a user record
func (c *Client) UpdateUser(ctx context.Context, token, id string, req UserUpdateRequest) (*User, error) {
	var result struct {
		User User `json:"user"`
	}
	if err := c.post(ctx, "/users/update/"+id, token, req, &result); err != nil {
		return nil, fmt.Errorf("update user failed: %w", err)
	}
	return &result.User, nil
}
