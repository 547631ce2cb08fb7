package imageprocessor

import (
	"bytes"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
)

func init() {
	// Register Nikon and Canon maker notes
	exif.RegisterParsers(mknote.All...)
}

// SightingHints are EXIF values that can prefill the sighting form: when the
// photo was taken and where.
type SightingHints struct {
	TakenAt   *time.Time
	Latitude  *float64
	Longitude *float64
}

// ExtractHints reads EXIF metadata from a raw upload. Images without EXIF
// data yield empty hints, never an error.
func ExtractHints(data []byte) SightingHints {
	var hints SightingHints

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return hints
	}

	if dt, err := x.DateTime(); err == nil {
		hints.TakenAt = &dt
	}
	if lat, long, err := x.LatLong(); err == nil {
		hints.Latitude = &lat
		hints.Longitude = &long
	}
	return hints
}
