package errors

import "errors"

// Capture errors
var (
	ErrRecognizerUnavailable = errors.New("speech recognizer not available")
)
