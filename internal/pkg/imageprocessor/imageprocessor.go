package imageprocessor

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// Output sizes
const (
	MaxDisplaySize = 1600
	ThumbnailSize  = 400
)

// MaxConcurrent bounds how many encodes run at once, webp encoding is the
// memory-heavy part of a request.
const MaxConcurrent = 3

const webpQuality = 80

// ProcessedImage holds the encoded variants of one uploaded photo.
type ProcessedImage struct {
	Display   []byte
	Thumbnail []byte
	Width     int
	Height    int
}

// Processor turns raw uploads into webp display and thumbnail variants.
type Processor struct {
	throttle chan struct{}
}

// NewProcessor creates a processor with the default concurrency limit.
func NewProcessor() *Processor {
	return &Processor{throttle: make(chan struct{}, MaxConcurrent)}
}

// Process decodes an upload, applies the EXIF orientation, scales it down to
// the display limit and encodes both variants as webp.
func (p *Processor) Process(data []byte) (*ProcessedImage, error) {
	p.throttle <- struct{}{}
	defer func() { <-p.throttle }()

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decoding upload: %w", err)
	}

	display := src
	bounds := src.Bounds()
	if bounds.Dx() > MaxDisplaySize || bounds.Dy() > MaxDisplaySize {
		display = imaging.Fit(src, MaxDisplaySize, MaxDisplaySize, imaging.Lanczos)
	}
	thumbnail := imaging.Fill(src, ThumbnailSize, ThumbnailSize, imaging.Center, imaging.Lanczos)

	displayBytes, err := encodeWebp(display)
	if err != nil {
		return nil, fmt.Errorf("encoding display variant: %w", err)
	}
	thumbnailBytes, err := encodeWebp(thumbnail)
	if err != nil {
		return nil, fmt.Errorf("encoding thumbnail variant: %w", err)
	}

	result := &ProcessedImage{
		Display:   displayBytes,
		Thumbnail: thumbnailBytes,
		Width:     display.Bounds().Dx(),
		Height:    display.Bounds().Dy(),
	}
	log.Infof("[ImageProcessor] Processed upload: %dx%d display, %d byte thumbnail",
		result.Width, result.Height, len(result.Thumbnail))
	return result, nil
}

func encodeWebp(img image.Image) ([]byte, error) {
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, webpQuality)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, options); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
