package errors

import (
	"fmt"
	"net/http"
	"time"
)

// ErrorCode identifies an application error category.
type ErrorCode string

const (
	ErrorCode_INTERNAL             ErrorCode = "INTERNAL"
	ErrorCode_INVALID_ARGUMENT     ErrorCode = "INVALID_ARGUMENT"
	ErrorCode_INVALID_PAYLOAD      ErrorCode = "INVALID_PAYLOAD"
	ErrorCode_NOT_FOUND            ErrorCode = "NOT_FOUND"
	ErrorCode_KEY_NOT_CONFIGURED   ErrorCode = "KEY_NOT_CONFIGURED"
	ErrorCode_UNAUTHORIZED_KEY     ErrorCode = "UNAUTHORIZED_KEY"
	ErrorCode_INVALID_PHONE_NUMBER ErrorCode = "INVALID_PHONE_NUMBER"
	ErrorCode_NO_PHONE_NUMBERS     ErrorCode = "NO_PHONE_NUMBERS"
	ErrorCode_SESSION_ACTIVE       ErrorCode = "SESSION_ACTIVE"
	ErrorCode_SESSION_NOT_LIVE     ErrorCode = "SESSION_NOT_LIVE"
	ErrorCode_CALL_START_FAILED    ErrorCode = "CALL_START_FAILED"
	ErrorCode_OUTBOUND_CALL_FAILED ErrorCode = "OUTBOUND_CALL_FAILED"
	ErrorCode_EXTERNAL_API_FAILED  ErrorCode = "EXTERNAL_API_FAILED"
	ErrorCode_CALENDAR_FAILED      ErrorCode = "CALENDAR_FAILED"
	ErrorCode_SETTINGS_FAILED      ErrorCode = "SETTINGS_FAILED"
)

// String returns the string form of the error code.
func (c ErrorCode) String() string {
	return string(c)
}

// AppError is the application error type carried across layer boundaries.
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  fmt.Sprintf("%s not found", resource),
	}
}

// Voice platform errors

// ErrKeyNotConfigured is returned when the platform private key is missing or
// still a placeholder. The operation aborts before any request is made.
func ErrKeyNotConfigured() AppError {
	return AppError{
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_KEY_NOT_CONFIGURED,
		Message:  "Voice platform private key not configured",
	}
}

// ErrUnauthorizedKey maps a remote 401 to a key-configuration problem.
func ErrUnauthorizedKey() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHORIZED_KEY,
		Message:  "Voice platform rejected the API key",
	}
}

func ErrExternalAPIFailed(service string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_EXTERNAL_API_FAILED,
		Message:  fmt.Sprintf("External API call failed: %s", service),
	}
}

// Call session errors

func ErrInvalidPhoneNumber(input string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PHONE_NUMBER,
		Message:  "Invalid phone number. Please enter a 10 digit number or include +1/+91 country code.",
	}.WithDetail("input", input)
}

func ErrNoPhoneNumbers() AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_NO_PHONE_NUMBERS,
		Message:  "No phone numbers available for outbound calls",
	}
}

func ErrSessionActive() AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_SESSION_ACTIVE,
		Message:  "A call session is already live",
	}
}

func ErrSessionNotLive(action string) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_SESSION_NOT_LIVE,
		Message:  fmt.Sprintf("Cannot %s: no live call session", action),
	}
}

func ErrCallStartFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_CALL_START_FAILED,
		Message:  "Failed to start call",
	}
}

func ErrOutboundCallFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_OUTBOUND_CALL_FAILED,
		Message:  "Failed to start outbound call",
	}
}

// Calendar and settings errors

func ErrCalendarFetchFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_CALENDAR_FAILED,
		Message:  "Failed to fetch calendar events",
	}
}

func ErrSettingsFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_SETTINGS_FAILED,
		Message:  fmt.Sprintf("Settings operation failed: %s", operation),
	}
}
