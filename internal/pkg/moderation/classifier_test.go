package moderation_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazos-app/lazos-api/internal/pkg/moderation"
)

// stubModel reports the explicit probability encoded in the image width:
// a 75px wide image scores 0.75. This keeps the fixtures self-describing.
type stubModel struct {
	loadErr    error
	predictErr error
	loads      atomic.Int32
}

func (m *stubModel) Load() error {
	m.loads.Add(1)
	return m.loadErr
}

func (m *stubModel) Predict(img image.Image) ([]moderation.Prediction, error) {
	if m.predictErr != nil {
		return nil, m.predictErr
	}
	p := float64(img.Bounds().Dx()) / 100
	return []moderation.Prediction{
		{Category: "explicit", Probability: p},
		{Category: "neutral", Probability: 1 - p},
	}, nil
}

// imageWithScore renders a PNG whose width encodes the stub probability.
func imageWithScore(t *testing.T, score float64) []byte {
	t.Helper()
	width := int(score * 100)
	require.Greater(t, width, 0)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, 10))))
	return buf.Bytes()
}

func TestClassifyThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		score float64
		want  moderation.VerdictKind
	}{
		{name: "low probability is safe", score: 0.1, want: moderation.VerdictSafe},
		{name: "boundary 0.3 is still safe", score: 0.3, want: moderation.VerdictSafe},
		{name: "borderline goes to review", score: 0.45, want: moderation.VerdictNeedsReview},
		{name: "boundary 0.6 goes to review", score: 0.6, want: moderation.VerdictNeedsReview},
		{name: "high probability is unsafe", score: 0.75, want: moderation.VerdictUnsafe},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := moderation.NewClassifier(&stubModel{}, nil)
			verdict := c.Classify(context.Background(), imageWithScore(t, tc.score))
			assert.Equal(t, tc.want, verdict.Kind)
			if tc.want != moderation.VerdictSafe {
				assert.NotEmpty(t, verdict.Reason)
			}
		})
	}
}

func TestClassifyBatchAggregation(t *testing.T) {
	t.Parallel()

	t.Run("any unsafe image rejects the batch", func(t *testing.T) {
		t.Parallel()
		c := moderation.NewClassifier(&stubModel{}, nil)
		verdict := c.ClassifyBatch(context.Background(), [][]byte{
			imageWithScore(t, 0.75),
			imageWithScore(t, 0.1),
		})
		assert.Equal(t, moderation.VerdictUnsafe, verdict.Kind)
	})

	t.Run("borderline image holds the batch", func(t *testing.T) {
		t.Parallel()
		c := moderation.NewClassifier(&stubModel{}, nil)
		verdict := c.ClassifyBatch(context.Background(), [][]byte{
			imageWithScore(t, 0.45),
			imageWithScore(t, 0.1),
			imageWithScore(t, 0.2),
		})
		assert.Equal(t, moderation.VerdictNeedsReview, verdict.Kind)
	})

	t.Run("all clean images are safe", func(t *testing.T) {
		t.Parallel()
		c := moderation.NewClassifier(&stubModel{}, nil)
		verdict := c.ClassifyBatch(context.Background(), [][]byte{
			imageWithScore(t, 0.1),
			imageWithScore(t, 0.2),
		})
		assert.Equal(t, moderation.VerdictSafe, verdict.Kind)
	})

	t.Run("empty batch is safe", func(t *testing.T) {
		t.Parallel()
		c := moderation.NewClassifier(&stubModel{}, nil)
		verdict := c.ClassifyBatch(context.Background(), nil)
		assert.Equal(t, moderation.VerdictSafe, verdict.Kind)
	})
}

func TestClassifyFailuresDegradeToReview(t *testing.T) {
	t.Parallel()

	t.Run("model load failure", func(t *testing.T) {
		t.Parallel()
		c := moderation.NewClassifier(&stubModel{loadErr: errors.New("weights missing")}, nil)
		verdict := c.Classify(context.Background(), imageWithScore(t, 0.1))
		assert.Equal(t, moderation.VerdictNeedsReview, verdict.Kind)
		assert.NotEmpty(t, verdict.Reason)
	})

	t.Run("prediction failure", func(t *testing.T) {
		t.Parallel()
		c := moderation.NewClassifier(&stubModel{predictErr: errors.New("inference error")}, nil)
		verdict := c.Classify(context.Background(), imageWithScore(t, 0.1))
		assert.Equal(t, moderation.VerdictNeedsReview, verdict.Kind)
	})

	t.Run("undecodable image", func(t *testing.T) {
		t.Parallel()
		c := moderation.NewClassifier(&stubModel{}, nil)
		verdict := c.Classify(context.Background(), []byte("not an image"))
		assert.Equal(t, moderation.VerdictNeedsReview, verdict.Kind)
	})
}

func TestClassifierLoadsModelOnce(t *testing.T) {
	t.Parallel()

	model := &stubModel{}
	c := moderation.NewClassifier(model, nil)
	img := imageWithScore(t, 0.1)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Classify(context.Background(), img)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), model.loads.Load())
}

func TestSkinToneModelOnSyntheticImages(t *testing.T) {
	t.Parallel()

	model := moderation.NewSkinToneModel()
	require.NoError(t, model.Load())

	t.Run("grey image has no skin", func(t *testing.T) {
		t.Parallel()
		img := image.NewRGBA(image.Rect(0, 0, 50, 50))
		for i := range img.Pix {
			img.Pix[i] = 0x80
		}
		preds, err := model.Predict(img)
		require.NoError(t, err)
		assert.InDelta(t, 0, explicitScore(preds), 0.05)
	})

	t.Run("skin colored image scores high", func(t *testing.T) {
		t.Parallel()
		img := image.NewRGBA(image.Rect(0, 0, 50, 50))
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i] = 224   // R
			img.Pix[i+1] = 172 // G
			img.Pix[i+2] = 105 // B
			img.Pix[i+3] = 255
		}
		preds, err := model.Predict(img)
		require.NoError(t, err)
		assert.Greater(t, explicitScore(preds), 0.6)
	})
}

func explicitScore(preds []moderation.Prediction) float64 {
	for _, p := range preds {
		if p.Category == "explicit" {
			return p.Probability
		}
	}
	return 0
}
