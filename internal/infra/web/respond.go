package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"whatsapp-commerce-billing/internal/domain"
)

// envelope is the uniform JSON shape for every response. Error holds a
// stable machine code; Message is for humans.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, envelope{Success: false, Error: code, Message: message})
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses and
// stable error codes. Unknown errors become opaque 500s.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrVoucherNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrMissingDuration):
		writeError(w, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "ALREADY_EXISTS", err.Error())
	case errors.Is(err, domain.ErrVoucherInactive),
		errors.Is(err, domain.ErrVoucherNotYetValid),
		errors.Is(err, domain.ErrVoucherExpired),
		errors.Is(err, domain.ErrUsageLimitReached),
		errors.Is(err, domain.ErrVoucherAlreadyUsed),
		errors.Is(err, domain.ErrBelowMinimum):
		writeError(w, http.StatusUnprocessableEntity, "VOUCHER_NOT_ELIGIBLE", err.Error())
	case errors.Is(err, domain.ErrAmountMismatch):
		writeError(w, http.StatusUnprocessableEntity, "AMOUNT_MISMATCH", err.Error())
	case errors.Is(err, domain.ErrPaymentExists):
		writeError(w, http.StatusConflict, "PAYMENT_EXISTS", err.Error())
	case errors.Is(err, domain.ErrTransactionNotPayable),
		errors.Is(err, domain.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, domain.ErrActivationFailure):
		// Payment is recorded; the sweeper will finish the job.
		writeError(w, http.StatusAccepted, "ACTIVATION_PENDING", "payment accepted, activation queued for retry")
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
