package routes

import (
	"errors"
	"net/http"

	"premises-access-control/internal/access"
	"premises-access-control/internal/credential"
	"premises-access-control/internal/person"
	"premises-access-control/internal/report"
)

// HTTPError carries an explicit status, user-facing message and stop codes
// alongside the underlying error.
type HTTPError struct {
	Err        error
	StatusCode int
	Message    string
	StopCodes  []string
}

// ErrorInfo is the user-facing view of an error.
type ErrorInfo struct {
	Message   string
	StopCodes []string
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func NewHTTPError(statusCode int, err error, message string, stopCodes ...string) *HTTPError {
	return &HTTPError{
		Err:        err,
		StatusCode: statusCode,
		Message:    message,
		StopCodes:  stopCodes,
	}
}

// Request-level errors that belong to no domain package.
var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrMissingParameter = errors.New("missing required parameter")
	ErrInvalidParameter = errors.New("invalid parameter")

	ErrInternalServer = errors.New("internal server error")
	ErrDatabaseError  = errors.New("database error")
)

// errorStatusMap maps sentinel errors to HTTP status codes
var errorStatusMap = map[error]int{
	// 400 Bad Request
	ErrInvalidRequest:           http.StatusBadRequest,
	ErrMissingParameter:         http.StatusBadRequest,
	ErrInvalidParameter:         http.StatusBadRequest,
	credential.ErrInactive:      http.StatusBadRequest,
	credential.ErrExpired:       http.StatusBadRequest,
	access.ErrInvalidAccessType: http.StatusBadRequest,
	access.ErrNoCredentialData:  http.StatusBadRequest,
	person.ErrUnknownPersonKind: http.StatusBadRequest,

	// 404 Not Found
	credential.ErrNotFound:   http.StatusNotFound,
	person.ErrPersonNotFound: http.StatusNotFound,

	// 500 Internal Server Error
	ErrInternalServer:           http.StatusInternalServerError,
	ErrDatabaseError:            http.StatusInternalServerError,
	credential.ErrDuplicateCode: http.StatusInternalServerError,
	report.ErrNoRecipients:      http.StatusInternalServerError,
}

// errorInfoMap maps errors to user-friendly messages and optional stop codes
var errorInfoMap = map[error]ErrorInfo{
	// Credential lifecycle
	credential.ErrNotFound: {
		Message:   "Credential not found",
		StopCodes: []string{"CREDENTIAL_NOT_FOUND"},
	},
	credential.ErrInactive: {
		Message:   "Credential has been deactivated",
		StopCodes: []string{"CREDENTIAL_INACTIVE"},
	},
	credential.ErrExpired: {
		Message:   "Credential has expired",
		StopCodes: []string{"CREDENTIAL_EXPIRED"},
	},
	person.ErrPersonNotFound: {
		Message:   "Person not found",
		StopCodes: []string{"PERSON_NOT_FOUND"},
	},
	person.ErrUnknownPersonKind: {
		Message:   "Unknown person type",
		StopCodes: []string{"UNKNOWN_PERSON_TYPE"},
	},

	// Scanning
	access.ErrInvalidAccessType: {
		Message:   "Access type must be 'entry' or 'exit'",
		StopCodes: []string{"INVALID_ACCESS_TYPE"},
	},
	access.ErrNoCredentialData: {
		Message:   "No credential data found in upload",
		StopCodes: []string{"NO_CREDENTIAL_DATA"},
	},

	// Validation
	ErrInvalidRequest: {
		Message:   "Invalid request format",
		StopCodes: []string{"INVALID_REQUEST"},
	},
	ErrMissingParameter: {
		Message:   "Required parameter is missing",
		StopCodes: []string{"MISSING_PARAMETER"},
	},
	ErrInvalidParameter: {
		Message:   "Invalid parameter value",
		StopCodes: []string{"INVALID_PARAMETER"},
	},

	// Internal (no stop codes for internal errors)
	ErrInternalServer: {
		Message: "An internal error occurred",
	},
	ErrDatabaseError: {
		Message: "Database operation failed",
	},
	credential.ErrDuplicateCode: {
		Message: "Failed to generate a unique credential code",
	},
	report.ErrNoRecipients: {
		Message: "No report recipients configured",
	},
}

// GetErrorStatus maps err to an HTTP status. Explicit HTTPError wins,
// then the sentinel tables, then 500.
func GetErrorStatus(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}

	for sentinel, status := range errorStatusMap {
		if errors.Is(err, sentinel) {
			return status
		}
	}

	return http.StatusInternalServerError
}

// GetErrorInfo resolves the user-facing message and stop codes for err.
func GetErrorInfo(err error) ErrorInfo {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return ErrorInfo{Message: httpErr.Message, StopCodes: httpErr.StopCodes}
	}

	for sentinel, info := range errorInfoMap {
		if errors.Is(err, sentinel) {
			return info
		}
	}

	// Unknown errors leak no detail once they map to a 5xx.
	if GetErrorStatus(err) >= 500 {
		return ErrorInfo{Message: "An internal error occurred"}
	}
	return ErrorInfo{Message: err.Error()}
}

// GetErrorMessage returns the user-facing message for err.
func GetErrorMessage(err error) string {
	return GetErrorInfo(err).Message
}
