package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput    = "INVALID_INPUT"
	CodeValidationError = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"

	// Server errors (5xx)
	CodeInternalError      = "INTERNAL_ERROR"
	CodeStorageFailure     = "STORAGE_FAILURE"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
