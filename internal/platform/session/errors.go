package session

import "errors"

var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrPasswordRequired = errors.New("password is required")
	ErrSessionNotFound  = errors.New("session not found")
)
