package nutrition

import "fmt"

type ErrorCode string

const (
	ErrorInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorConfiguration  ErrorCode = "CONFIGURATION_ERROR"
	ErrorExternal       ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// Error is the gateway's typed failure. All codes map to the same HTTP
// status at the handler boundary; they differ only in message text.
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("nutrition: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("nutrition: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func NewError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
