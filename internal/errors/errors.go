package errors

import (
	"errors"
	"net/http"
)

// Messages of the sentinel errors below are returned to API clients as-is.
var (
	// ErrUserNotFound is returned when a user row does not exist.
	ErrUserNotFound = errors.New("User not found")
	// ErrUserExists is returned when registering with a taken username or email.
	ErrUserExists = errors.New("Username or email already exists")
	// ErrUserTaken is returned when a profile update collides with another user.
	ErrUserTaken = errors.New("Username or email is already taken")
	// ErrInvalidCredentials is returned for any failed user login.
	ErrInvalidCredentials = errors.New("Invalid credentials")
	// ErrIncorrectPassword is returned when the current password does not verify.
	ErrIncorrectPassword = errors.New("Current password is incorrect")
	// ErrInvalidAdminCredentials is returned for a failed admin login.
	ErrInvalidAdminCredentials = errors.New("Invalid admin credentials")
	// ErrAdminNotConfigured is returned when admin login is attempted without configured credentials.
	ErrAdminNotConfigured = errors.New("Admin credentials are not configured")
	// ErrTooManyAttempts is returned while a login identifier is throttled.
	ErrTooManyAttempts = errors.New("Too many login attempts, try again later")

	ErrDrugNotFound            = errors.New("Drug not found")
	ErrConsumptionNotFound     = errors.New("Consumption record not found")
	ErrProcedureNotFound       = errors.New("Procedure not found")
	ErrProcedureRecordNotFound = errors.New("Procedure record not found")
	ErrScheduleNotFound        = errors.New("Schedule not found")

	ErrInvalidUnitType      = errors.New(`unit_type must be "pills" or "mg"`)
	ErrInvalidScheduleType  = errors.New(`schedule_type must be "interval" or "per_day"`)
	ErrInvalidIntervalHours = errors.New("interval_hours must be a positive number for interval schedules")
	ErrInvalidTimesPerDay   = errors.New("times_per_day must be a positive number for per_day schedules")
	ErrInvalidDateRange     = errors.New("start_date must be on or before end_date")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// BadRequest creates a 400 error carrying a validation message.
func BadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message)
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message}
}

var statusByError = []struct {
	err    error
	status int
}{
	{ErrUserNotFound, http.StatusNotFound},
	{ErrDrugNotFound, http.StatusNotFound},
	{ErrConsumptionNotFound, http.StatusNotFound},
	{ErrProcedureNotFound, http.StatusNotFound},
	{ErrProcedureRecordNotFound, http.StatusNotFound},
	{ErrScheduleNotFound, http.StatusNotFound},
	{ErrUserExists, http.StatusBadRequest},
	{ErrUserTaken, http.StatusBadRequest},
	{ErrInvalidUnitType, http.StatusBadRequest},
	{ErrInvalidScheduleType, http.StatusBadRequest},
	{ErrInvalidIntervalHours, http.StatusBadRequest},
	{ErrInvalidTimesPerDay, http.StatusBadRequest},
	{ErrInvalidDateRange, http.StatusBadRequest},
	{ErrInvalidCredentials, http.StatusUnauthorized},
	{ErrIncorrectPassword, http.StatusUnauthorized},
	{ErrInvalidAdminCredentials, http.StatusUnauthorized},
	{ErrTooManyAttempts, http.StatusTooManyRequests},
	{ErrAdminNotConfigured, http.StatusInternalServerError},
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors collapse
// to a generic 500 so internals never reach the client.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			return NewHTTPError(m.status, m.err.Error())
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "Internal server error")
}
