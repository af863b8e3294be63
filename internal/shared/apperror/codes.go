package apperror

const (
	// Client errors (4xx)
	CodeInvalidInput    = "INVALID_INPUT"
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeNotActive       = "NOT_ACTIVE"
	CodeBadForeignKey   = "BAD_FOREIGN_KEY"
	CodeIntegrity       = "INTEGRITY_ERROR"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeProcessing      = "PROCESSING"

	// Server errors (5xx)
	CodeDatabase           = "DATABASE_ERROR"
	CodeInternalError      = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)
