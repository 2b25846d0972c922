package services

import "errors"

// ErrInvalidInput is returned when a required field is missing or a value
// is out of range.
var ErrInvalidInput = errors.New("invalid input")

// ErrInvalidCredentials is returned for both an unknown email and a wrong
// password, so a caller cannot probe which accounts exist.
var ErrInvalidCredentials = errors.New("invalid credentials")
