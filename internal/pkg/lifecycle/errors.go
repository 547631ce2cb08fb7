package lifecycle

import "errors"

var (
	// ErrNotFound means the target does not exist.
	ErrNotFound = errors.New("target not found")
	// ErrInvalidTarget means the target exists but the action does not apply
	// to it, e.g. approving an item that is not pending.
	ErrInvalidTarget = errors.New("action does not apply to target")
	// ErrAlreadyTerminal means the item is rejected or deleted and accepts no
	// further transitions.
	ErrAlreadyTerminal = errors.New("item is in a terminal state")
	// ErrActionInProgress means another moderation action on the same target
	// has not finished yet.
	ErrActionInProgress = errors.New("another action on this target is in progress")
)
