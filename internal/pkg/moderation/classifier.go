package moderation

import (
	"bytes"
	"context"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"
)

// VerdictKind is the tri-state outcome of an image safety check.
type VerdictKind string

const (
	VerdictSafe        VerdictKind = "safe"
	VerdictUnsafe      VerdictKind = "unsafe"
	VerdictNeedsReview VerdictKind = "needs_review"
)

// Verdict is the result of classifying one image or a whole batch. Err
// carries the cause for non-safe verdicts: ErrUnsafeContent or
// ErrClassifierUnavailable; a genuine borderline suspicion has no Err.
type Verdict struct {
	Kind   VerdictKind `json:"kind"`
	Reason string      `json:"reason,omitempty"`
	Err    error       `json:"-"`
}

// Classification thresholds over the unsafe-category probabilities.
const (
	unsafeThreshold = 0.6
	reviewThreshold = 0.3
)

// Categories counted against an image. The built-in model only emits
// "explicit", the remote validator may report the finer-grained set.
var unsafeCategories = map[string]struct{}{
	"explicit":   {},
	"suggestive": {},
	"porn":       {},
	"sexy":       {},
	"hentai":     {},
}

const (
	reasonUnsafe      = "La imagen contiene contenido inapropiado y no puede ser publicada"
	reasonNeedsReview = "La imagen será revisada por un moderador antes de publicarse"
	reasonUnavailable = "No se pudo validar la imagen, será revisada por un moderador"
)

// Classifier wraps a Model behind a lazy, process-lifetime initialization and
// converts probability vectors into verdicts. The model is loaded at most
// once: concurrent first callers share the same load via sync.Once, and a
// load failure is cached so the classifier degrades to needs_review instead
// of retry-hammering a broken model.
//
// An optional remote validator acts as a second opinion: images the local
// model finds suspicious are re-checked remotely, and a remote approval
// overrides the local suspicion (the local ratio heuristic produces false
// positives on e.g. close-up pet fur).
type Classifier struct {
	model  Model
	remote *RemoteValidator

	loadOnce sync.Once
	loadErr  error
}

// NewClassifier builds a classifier around the given model. remote may be nil.
func NewClassifier(model Model, remote *RemoteValidator) *Classifier {
	return &Classifier{model: model, remote: remote}
}

func (c *Classifier) ensureLoaded() error {
	c.loadOnce.Do(func() {
		c.loadErr = c.model.Load()
		if c.loadErr != nil {
			log.Errorf("[Classifier] model load failed: %v", c.loadErr)
		}
	})
	return c.loadErr
}

// Classify evaluates a single image. Any failure (model load, decode,
// inference) yields needs_review: uncertain content is never published
// silently, but an outage never blocks all submissions either.
func (c *Classifier) Classify(ctx context.Context, data []byte) Verdict {
	return c.classifyLocal(ctx, data)
}

func (c *Classifier) classifyLocal(ctx context.Context, data []byte) Verdict {
	if err := c.ensureLoaded(); err != nil {
		return Verdict{Kind: VerdictNeedsReview, Reason: reasonUnavailable, Err: ErrClassifierUnavailable}
	}
	if err := ctx.Err(); err != nil {
		return Verdict{Kind: VerdictNeedsReview, Reason: reasonUnavailable, Err: ErrClassifierUnavailable}
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		log.Warnf("[Classifier] image decode failed: %v", err)
		return Verdict{Kind: VerdictNeedsReview, Reason: reasonUnavailable, Err: ErrClassifierUnavailable}
	}

	predictions, err := c.model.Predict(img)
	if err != nil {
		log.Errorf("[Classifier] prediction failed: %v", err)
		return Verdict{Kind: VerdictNeedsReview, Reason: reasonUnavailable, Err: ErrClassifierUnavailable}
	}

	maxUnsafe := 0.0
	for _, p := range predictions {
		if _, ok := unsafeCategories[p.Category]; !ok {
			continue
		}
		if p.Probability > maxUnsafe {
			maxUnsafe = p.Probability
		}
	}

	switch {
	case maxUnsafe > unsafeThreshold:
		return Verdict{Kind: VerdictUnsafe, Reason: reasonUnsafe, Err: ErrUnsafeContent}
	case maxUnsafe > reviewThreshold:
		return Verdict{Kind: VerdictNeedsReview, Reason: reasonNeedsReview}
	default:
		return Verdict{Kind: VerdictSafe}
	}
}

// ClassifyBatch evaluates all images of one submission in parallel and
// aggregates: any unsafe image rejects the whole batch, otherwise any
// needs_review holds the whole batch, otherwise the batch is safe.
//
// When a remote validator is configured, locally suspicious images get a
// second opinion before the aggregate is computed.
func (c *Classifier) ClassifyBatch(ctx context.Context, images [][]byte) Verdict {
	if len(images) == 0 {
		return Verdict{Kind: VerdictSafe}
	}

	verdicts := make([]Verdict, len(images))
	var wg sync.WaitGroup
	for i, data := range images {
		wg.Add(1)
		go func(i int, data []byte) {
			defer wg.Done()
			verdicts[i] = c.classifyLocal(ctx, data)
		}(i, data)
	}
	wg.Wait()

	if c.remote != nil {
		c.confirmSuspicious(ctx, images, verdicts)
	}

	return aggregateVerdicts(verdicts)
}

// confirmSuspicious re-checks locally flagged images against the remote
// validator. A remote approval clears the local flag; a remote failure keeps
// the local verdict (the remote is a refinement, never a gate).
func (c *Classifier) confirmSuspicious(ctx context.Context, images [][]byte, verdicts []Verdict) {
	for i, v := range verdicts {
		if v.Kind == VerdictSafe {
			continue
		}
		approved, err := c.remote.ValidateImage(ctx, images[i])
		if err != nil {
			log.Warnf("[Classifier] remote validation failed for image %d, keeping local verdict: %v", i, err)
			continue
		}
		if approved {
			log.Infof("[Classifier] remote validator cleared image %d flagged locally as %s", i, v.Kind)
			verdicts[i] = Verdict{Kind: VerdictSafe}
		}
	}
}

func aggregateVerdicts(verdicts []Verdict) Verdict {
	review := -1
	for i, v := range verdicts {
		switch v.Kind {
		case VerdictUnsafe:
			return v
		case VerdictNeedsReview:
			if review < 0 {
				review = i
			}
		}
	}
	if review >= 0 {
		return verdicts[review]
	}
	return Verdict{Kind: VerdictSafe}
}
