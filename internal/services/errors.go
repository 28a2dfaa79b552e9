package services

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidPreferences = errors.New("invalid preferences")
	ErrInvalidType        = errors.New("invalid notification type")
)
