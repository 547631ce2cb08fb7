package moderation

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Prediction is one content-category probability reported by a Model.
type Prediction struct {
	Category    string
	Probability float64
}

// Model is the underlying visual-content classifier. Load is called at most
// once per process by the Classifier; Predict must be safe for concurrent use
// after a successful Load.
type Model interface {
	Load() error
	Predict(img image.Image) ([]Prediction, error)
}

// Analysis downscale bound. Matches the 300px thumbnail the detector was
// calibrated against.
const analysisMaxSize = 300

// lutBits quantizes each RGB channel to 5 bits for the skin lookup table.
const lutBits = 5

// SkinToneModel is the built-in fallback classifier: it estimates the
// probability of explicit content from the fraction of skin-tone pixels in a
// downscaled copy of the image. Pet sightings contain very little human skin,
// which makes the ratio a usable signal despite its simplicity.
//
// Load precomputes a quantized RGB lookup table so Predict is a flat scan
// over pixels.
type SkinToneModel struct {
	lut []bool
}

// NewSkinToneModel returns an unloaded model instance.
func NewSkinToneModel() *SkinToneModel {
	return &SkinToneModel{}
}

// Load builds the skin-tone lookup table.
func (m *SkinToneModel) Load() error {
	size := 1 << (lutBits * 3)
	lut := make([]bool, size)
	step := 1 << (8 - lutBits)
	for r := 0; r < 256; r += step {
		for g := 0; g < 256; g += step {
			for b := 0; b < 256; b += step {
				if isSkinTone(r, g, b) {
					lut[lutIndex(r, g, b)] = true
				}
			}
		}
	}
	m.lut = lut
	return nil
}

// Predict reports the explicit-content probability derived from the skin
// pixel ratio, scaled so that half the frame being skin crosses the unsafe
// threshold.
func (m *SkinToneModel) Predict(img image.Image) ([]Prediction, error) {
	small := imaging.Fit(img, analysisMaxSize, analysisMaxSize, imaging.Lanczos)
	bounds := small.Bounds()

	total := 0
	skin := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := small.At(x, y).RGBA()
			total++
			if m.lut[lutIndex(int(r>>8), int(g>>8), int(b>>8))] {
				skin++
			}
		}
	}

	if total == 0 {
		return []Prediction{{Category: "neutral", Probability: 1}}, nil
	}

	fraction := float64(skin) / float64(total)
	explicit := math.Min(1, fraction*1.2)
	return []Prediction{
		{Category: "explicit", Probability: explicit},
		{Category: "neutral", Probability: 1 - explicit},
	}, nil
}

func lutIndex(r, g, b int) int {
	shift := 8 - lutBits
	return (r>>shift)<<(lutBits*2) | (g>>shift)<<lutBits | b>>shift
}

// isSkinTone classifies an RGB value as human skin using combined HSV ranges
// and RGB ordering heuristics.
func isSkinTone(r, g, b int) bool {
	h, s, v := rgbToHSV(r, g, b)

	skinH := (h >= 0 && h <= 0.15) || (h >= 0.95 && h <= 1.0)
	skinS := s >= 0.15 && s <= 0.75
	skinV := v >= 0.35 && v <= 0.95

	skinRGB := r > 60 && g > 40 && b > 20 &&
		r > g && g > b &&
		r-g > 15 && r-b > 15

	return (skinH && skinS && skinV) || skinRGB
}

func rgbToHSV(r, g, b int) (h, s, v float64) {
	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255

	max := math.Max(rf, math.Max(gf, bf))
	min := math.Min(rf, math.Min(gf, bf))
	v = max

	if max == 0 {
		return 0, 0, 0
	}
	delta := max - min
	s = delta / max
	if delta == 0 {
		return 0, s, v
	}

	switch max {
	case rf:
		h = (gf - bf) / delta
	case gf:
		h = 2 + (bf-rf)/delta
	default:
		h = 4 + (rf-gf)/delta
	}
	h /= 6
	if h < 0 {
		h++
	}
	return h, s, v
}
