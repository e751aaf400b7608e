package domain

import "errors"

// ErrSessionNotFound is returned when a user has no stored session.
var ErrSessionNotFound = errors.New("session not found")
