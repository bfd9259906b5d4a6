package entity

import "survey-payout-be/pkg/apperror"

// Response lifecycle
var (
	ErrResponseNotFound  = apperror.NotFound("response_not_found", "survey response not found")
	ErrSurveyNotFound    = apperror.NotFound("survey_not_found", "survey not found")
	ErrSurveyUnavailable = apperror.Conflict("survey_unavailable", "survey is not accepting responses")
	ErrAlreadyCompleted  = apperror.Conflict("already_completed", "survey already completed")
	ErrApprovalPending   = apperror.Conflict("approval_pending", "previous submission is still awaiting approval")
	ErrInvalidOutcome    = apperror.Validation("invalid_outcome", "invalid completion outcome")
	ErrOutcomeConflict   = apperror.Conflict("outcome_conflict", "response already completed with a different outcome")
	ErrAlreadyApproved   = apperror.Conflict("already_approved", "response already approved")
	ErrNotPending        = apperror.Conflict("not_pending", "response is not awaiting approval")
	ErrNotesRequired     = apperror.Validation("notes_required", "notes are required")
	ErrNotCompleted      = apperror.Conflict("not_completed", "response is not completed")
)

// Ledger
var (
	ErrInsufficientBalance = apperror.Insufficient("insufficient_balance", "insufficient balance")
	ErrInvalidAmount       = apperror.Validation("invalid_amount", "amount must be positive")
)

// Withdrawals
var (
	ErrPaymentMethodNotFound = apperror.NotFound("payment_method_not_found", "payment method not found")
	ErrMethodInactive        = apperror.Validation("method_inactive", "payment method is not active")
	ErrBelowMinimum          = apperror.Validation("below_minimum", "amount is below the minimum withdrawal")
	ErrAboveMaximum          = apperror.Validation("above_maximum", "amount is above the maximum withdrawal")
	ErrMissingPaymentDetail  = apperror.Validation("missing_payment_detail", "missing payment detail")
	ErrFeeExceedsAmount      = apperror.Validation("fee_exceeds_amount", "processing fee exceeds the withdrawal amount")
	ErrWithdrawalNotFound    = apperror.NotFound("withdrawal_not_found", "withdrawal request not found")
	ErrNotCancellable        = apperror.Conflict("not_cancellable", "withdrawal request cannot be cancelled")
	ErrInvalidTransition     = apperror.Conflict("invalid_transition", "withdrawal request is not in a valid state for this action")
	ErrReasonRequired        = apperror.Validation("reason_required", "a rejection reason is required")
	ErrReferenceRequired     = apperror.Validation("reference_required", "a transaction reference is required")
)

// Callbacks
var (
	ErrInvalidToken    = apperror.Forbidden("invalid_token", "forbidden")
	ErrMissingCallback = apperror.Validation("missing_parameters", "missing callback parameters")
)
