package errors

import "net/http"

// CodeInvalidParameter marks a request parameter that could not be decoded
// or is out of range.
const CodeInvalidParameter = "INVALID_PARAMETER"

// APIError is a request error with a fixed HTTP status. ErrorHandler renders
// it as problem details carrying ErrorCode and Details as extensions.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// ValidationError names one rejected request parameter.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InvalidParameter rejects one query or path parameter with a 400.
func InvalidParameter(field, message string) *APIError {
	return &APIError{
		StatusCode: http.StatusBadRequest,
		ErrorCode:  CodeInvalidParameter,
		Message:    message,
		Details:    []ValidationError{{Field: field, Message: message}},
	}
}
