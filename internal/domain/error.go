package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")

	// Pricing
	ErrItemNotFound    = errors.New("catalog item not found")
	ErrMissingDuration = errors.New("whatsapp package item requires a duration")

	// Voucher rejections (order matters: validation short-circuits on the first)
	ErrVoucherNotFound    = errors.New("voucher not found")
	ErrVoucherInactive    = errors.New("voucher is inactive")
	ErrVoucherNotYetValid = errors.New("voucher is not yet valid")
	ErrVoucherExpired     = errors.New("voucher has expired")
	ErrUsageLimitReached  = errors.New("voucher usage limit reached")
	ErrVoucherAlreadyUsed = errors.New("voucher already used by this user")
	ErrBelowMinimum       = errors.New("order total below voucher minimum")

	// Payment / lifecycle
	ErrAmountMismatch          = errors.New("payment amount does not match transaction total")
	ErrInvalidStatusTransition = errors.New("status transition not allowed")
	ErrPaymentExists           = errors.New("transaction already has an active payment")
	ErrActivationFailure       = errors.New("entitlement activation failed")
	ErrTransactionNotPayable   = errors.New("transaction can no longer be paid")

	// Infrastructure
	ErrOperationFailed    = errors.New("storage operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid database execution context")
	ErrLockBusy           = errors.New("lock is held by another worker")
)
