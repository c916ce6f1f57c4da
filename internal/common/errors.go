package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")

	// Content errors
	ErrContentNotFound = errors.New("content not found")
	ErrContentExists   = errors.New("content already exists for date")

	// Version errors
	ErrVersionConflict = errors.New("version conflict: active version changed")
	ErrVersionNotFound = errors.New("version not found")
	ErrNoChanges       = errors.New("no changes against active version")

	// Review errors
	ErrReviewItemNotFound       = errors.New("review item not found")
	ErrInvalidTransition        = errors.New("invalid review status transition")
	ErrEscalationReasonRequired = errors.New("escalation requires a reason")
	ErrReviewerAtCapacity       = errors.New("reviewer has reached daily review capacity")

	// Rule errors
	ErrRuleNotFound  = errors.New("approval rule not found")
	ErrMalformedRule = errors.New("malformed approval rule definition")

	// Generation errors
	ErrGenerationFailed = errors.New("upstream generation failed")
)
