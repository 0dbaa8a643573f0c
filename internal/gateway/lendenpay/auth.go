package lendenpay

import (
	"context"
	"fmt"
	"net/url"
)

// LoginResult is the upstream response to a successful login
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// RegisterRequest is the payload for account registration
type RegisterRequest struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

// Login exchanges credentials for an upstream bearer token
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	req := map[string]string{"email": email, "password": password}

	var result LoginResult
	if err := c.post(ctx, "/login", "", req, &result); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	return &result, nil
}

// Register creates a new upstream account
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var result struct {
		User User `json:"user"`
	}
	if err := c.post(ctx, "/register", "", req, &result); err != nil {
		return nil, fmt.Errorf("register failed: %w", err)
	}

	return &result.User, nil
}

// ForgotPassword asks the upstream to send a password reset email
func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	req := map[string]string{"email": email}
	if err := c.post(ctx, "/forgot-password", "", req, nil); err != nil {
		return fmt.Errorf("forgot password failed: %w", err)
	}
	return nil
}

// ResetPassword sets a new password using an emailed reset token
func (c *Client) ResetPassword(ctx context.Context, resetToken, password string) error {
	req := map[string]string{"token": resetToken, "password": password}
	if err := c.post(ctx, "/reset-password", "", req, nil); err != nil {
		return fmt.Errorf("reset password failed: %w", err)
	}
	return nil
}

// ProfileByEmail fetches the current profile for the given email
func (c *Client) ProfileByEmail(ctx context.Context, token, email string) (*User, error) {
	params := url.Values{}
	params.Set("email", email)

	var result struct {
		User User `json:"user"`
	}
	if err := c.get(ctx, "/users/profile", token, params, &result); err != nil {
		return nil, fmt.Errorf("profile fetch failed: %w", err)
	}

	return &result.User, nil
}
