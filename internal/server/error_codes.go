package server

const (
	// Validation (1xxx)
	ErrCodeInvalidArgument = 1000
	ErrCodeInvalidJSON     = 1001
	ErrCodeRequestTooLarge = 1002
	ErrCodeInvalidID       = 1004
	ErrCodeMissingRequired = 1009
	ErrCodeInvalidForm     = 1015

	// Domain state (2xxx)
	ErrCodePostNotFound   = 2001
	ErrCodeUploadNotFound = 2003

	// Internal/system (4xxx)
	ErrCodeInternal     = 4001
	ErrCodeStoreFailure = 4002
	ErrCodeBlobFailure  = 4006
)

func defaultErrorCodeByStatus(status int) int {
	switch status {
	case 400:
		return ErrCodeInvalidArgument
	case 404:
		return ErrCodePostNotFound
	case 500:
		return ErrCodeInternal
	default:
		return 0
	}
}
