package moderation

import (
	"context"
)

// Action is the final publish decision for one submission.
type Action string

const (
	ActionPublish       Action = "publish"
	ActionReject        Action = "reject"
	ActionHoldForReview Action = "hold_for_review"
)

// Submission is the transient moderation input: the free text and the raw
// image payloads of one post or alert. Non-moderation metadata (location,
// category tags) never reaches the engine.
type Submission struct {
	Text   string
	Images [][]byte
}

// Decision is the fused verdict over a submission. Err classifies the cause
// of a non-publish outcome: ErrValidationFailed or ErrUnsafeContent on reject,
// ErrClassifierUnavailable when an outage forced the hold, nil otherwise.
type Decision struct {
	Action  Action   `json:"action"`
	Reasons []string `json:"reasons,omitempty"`
	Err     error    `json:"-"`
}

// Engine fuses the text heuristics and the image classifier into a single
// publish decision.
type Engine struct {
	classifier *Classifier
}

// NewEngine builds the decision engine around an injected classifier.
func NewEngine(classifier *Classifier) *Engine {
	return &Engine{classifier: classifier}
}

// Decide sanitizes and validates the text, classifies the attached images and
// fuses the verdicts. Textual policy violations are authoritative: when the
// text is invalid the submission is rejected outright and the image check is
// skipped. Image uncertainty only ever downgrades to manual review, it never
// auto-rejects on its own.
func (e *Engine) Decide(ctx context.Context, sub Submission) Decision {
	text := Sanitize(sub.Text)

	if result := ValidateText(text); !result.Valid {
		return Decision{Action: ActionReject, Reasons: result.Errors, Err: ErrValidationFailed}
	}

	if len(sub.Images) == 0 {
		return Decision{Action: ActionPublish}
	}

	switch verdict := e.classifier.ClassifyBatch(ctx, sub.Images); verdict.Kind {
	case VerdictUnsafe:
		return Decision{Action: ActionReject, Reasons: []string{verdict.Reason}, Err: verdict.Err}
	case VerdictNeedsReview:
		return Decision{Action: ActionHoldForReview, Reasons: []string{verdict.Reason}, Err: verdict.Err}
	default:
		return Decision{Action: ActionPublish}
	}
}
