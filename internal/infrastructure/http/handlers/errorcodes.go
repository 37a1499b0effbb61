package handlers

// API error codes returned in JSON { "error": "...", "code": "..." } for stable client handling.
const (
	ErrCodeUnauthorized        = "unauthorized"
	ErrCodeForbidden           = "forbidden"
	ErrCodeNotFound            = "not_found"
	ErrCodeInvalidRequest      = "invalid_request"
	ErrCodeInsufficientCredits = "insufficient_credits"
	ErrCodeRateLimited         = "rate_limited"
	ErrCodeWorkerUnavailable   = "worker_unavailable"
	ErrCodeWorkerRejected      = "worker_rejected"
	ErrCodeInvalidSignature    = "invalid_signature"
	ErrCodeOrderNotFound       = "order_not_found"
	ErrCodeInvalidAPIKey       = "invalid_api_key"
	ErrCodeAPIDisabled         = "api_disabled"
	ErrCodeKeyLimitReached     = "key_limit_reached"
	ErrCodeUnsupportedLang     = "unsupported_lang"
	ErrCodeBatchTooLarge       = "batch_too_large"
	ErrCodeInternal            = "internal_error"
)
