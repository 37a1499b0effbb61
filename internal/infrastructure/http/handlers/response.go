package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	domerrors "github.com/Gautam2117/cliplingua/internal/domain/errors"
)

// writeErr sends JSON { "error": message, "code": errCode }. If errCode is empty, a default is used from code.
func writeErr(w http.ResponseWriter, code int, errCode string, message string) {
	if errCode == "" {
		errCode = defaultErrCode(code)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": errCode})
}

func defaultErrCode(httpCode int) string {
	switch httpCode {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusTooManyRequests:
		return ErrCodeRateLimited
	case http.StatusInternalServerError:
		return ErrCodeInternal
	default:
		return ErrCodeInternal
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainErr maps a use-case error onto the HTTP status and stable code.
// Insufficient credits is 402 so clients can distinguish "buy more" from every
// other 4xx.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domerrors.ErrInsufficientFunds):
		writeErr(w, http.StatusPaymentRequired, ErrCodeInsufficientCredits, err.Error())
	case errors.Is(err, domerrors.ErrRateLimited):
		writeErr(w, http.StatusTooManyRequests, ErrCodeRateLimited, err.Error())
	case errors.Is(err, domerrors.ErrWorkerUnavailable):
		writeErr(w, http.StatusBadGateway, ErrCodeWorkerUnavailable, "clip worker unavailable")
	case errors.Is(err, domerrors.ErrWorkerRejected):
		writeErr(w, http.StatusUnprocessableEntity, ErrCodeWorkerRejected, "clip worker rejected the request")
	case errors.Is(err, domerrors.ErrUnsupportedLang):
		writeErr(w, http.StatusUnprocessableEntity, ErrCodeUnsupportedLang, err.Error())
	case errors.Is(err, domerrors.ErrBatchTooLarge):
		writeErr(w, http.StatusBadRequest, ErrCodeBatchTooLarge, err.Error())
	case errors.Is(err, domerrors.ErrInvalidSignature):
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidSignature, err.Error())
	case errors.Is(err, domerrors.ErrOrderMismatch):
		writeErr(w, http.StatusNotFound, ErrCodeOrderNotFound, err.Error())
	case errors.Is(err, domerrors.ErrInvalidAPIKey):
		writeErr(w, http.StatusUnauthorized, ErrCodeInvalidAPIKey, err.Error())
	case errors.Is(err, domerrors.ErrAPIDisabled):
		writeErr(w, http.StatusForbidden, ErrCodeAPIDisabled, err.Error())
	case errors.Is(err, domerrors.ErrKeyLimitReached):
		writeErr(w, http.StatusForbidden, ErrCodeKeyLimitReached, err.Error())
	case errors.Is(err, domerrors.ErrForbidden):
		writeErr(w, http.StatusForbidden, ErrCodeForbidden, err.Error())
	case errors.Is(err, domerrors.ErrJobNotFound), errors.Is(err, domerrors.ErrOrgNotFound):
		writeErr(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, domerrors.ErrNotAuthenticated):
		writeErr(w, http.StatusUnauthorized, ErrCodeUnauthorized, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}
