package moderation

import "errors"

// Failure causes carried on verdicts and decisions. They classify WHY a
// submission was rejected or held; user-facing wording lives in the Reason
// strings, these are for callers that branch on the cause.
var (
	// ErrValidationFailed marks a rejection caused by the text heuristics.
	ErrValidationFailed = errors.New("text validation failed")

	// ErrUnsafeContent marks a rejection caused by the image classifier.
	ErrUnsafeContent = errors.New("unsafe content")

	// ErrClassifierUnavailable marks a hold caused by a classifier outage
	// (model load, decode or inference failure). It never causes a rejection.
	ErrClassifierUnavailable = errors.New("classifier unavailable")
)
