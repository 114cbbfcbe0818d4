// Package landmarks defines the facial landmark record produced by the
// detection engine and by ground-truth annotations.
package landmarks

import (
	"fmt"
	"image"
	"math"
)

// Annotation indices used by the ground-truth file format.
const (
	IdxCrown = iota
	IdxChin
	IdxEyeLeftPupil
	IdxEyeRightPupil
	IdxLipLeftCorner
	IdxLipRightCorner
	NumAnnotated
)

// Record holds the landmark positions for a single face image.
// A zero image.Point means the landmark is unset.
type Record struct {
	CrownPoint     image.Point `json:"crownPoint"`
	ChinPoint      image.Point `json:"chinPoint"`
	EyeLeftPupil   image.Point `json:"eyeLeftPupil"`
	EyeRightPupil  image.Point `json:"eyeRightPupil"`
	LipLeftCorner  image.Point `json:"lipLeftCorner"`
	LipRightCorner image.Point `json:"lipRightCorner"`

	// Auxiliary named points reported by some engine models.
	EyeLeftCorner  image.Point `json:"eyeLeftCorner"`
	EyeRightCorner image.Point `json:"eyeRightCorner"`
	NoseTip        image.Point `json:"noseTip"`

	// Regions estimated by the cascade stages.
	FaceRect     image.Rectangle `json:"faceRect"`
	EyeLeftRect  image.Rectangle `json:"eyeLeftRect"`
	EyeRightRect image.Rectangle `json:"eyeRightRect"`
	MouthRect    image.Rectangle `json:"mouthRect"`

	// Closed lip contours, outer and inner.
	LipContour1 []image.Point `json:"lipContour1,omitempty"`
	LipContour2 []image.Point `json:"lipContour2,omitempty"`

	// AllPoints carries the raw model output when available.
	AllPoints []image.Point `json:"allPoints,omitempty"`
}

// SetByIndex assigns the landmark addressed by an annotation index (0-5).
// Returns an error for indices outside the annotated range.
func (r *Record) SetByIndex(idx int, pt image.Point) error {
	switch idx {
	case IdxCrown:
		r.CrownPoint = pt
	case IdxChin:
		r.ChinPoint = pt
	case IdxEyeLeftPupil:
		r.EyeLeftPupil = pt
	case IdxEyeRightPupil:
		r.EyeRightPupil = pt
	case IdxLipLeftCorner:
		r.LipLeftCorner = pt
	case IdxLipRightCorner:
		r.LipRightCorner = pt
	default:
		return fmt.Errorf("invalid landmark index %d", idx)
	}
	return nil
}

// AnnotatedPoints returns the six annotated landmarks in index order.
func (r *Record) AnnotatedPoints() [NumAnnotated]image.Point {
	return [NumAnnotated]image.Point{
		r.CrownPoint,
		r.ChinPoint,
		r.EyeLeftPupil,
		r.EyeRightPupil,
		r.LipLeftCorner,
		r.LipRightCorner,
	}
}

// Equal reports whether two records hold the same landmark data field by field.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.AnnotatedPoints() != o.AnnotatedPoints() {
		return false
	}
	if r.EyeLeftCorner != o.EyeLeftCorner || r.EyeRightCorner != o.EyeRightCorner || r.NoseTip != o.NoseTip {
		return false
	}
	if r.FaceRect != o.FaceRect || r.EyeLeftRect != o.EyeLeftRect ||
		r.EyeRightRect != o.EyeRightRect || r.MouthRect != o.MouthRect {
		return false
	}
	return equalPoints(r.LipContour1, o.LipContour1) &&
		equalPoints(r.LipContour2, o.LipContour2) &&
		equalPoints(r.AllPoints, o.AllPoints)
}

func equalPoints(a, b []image.Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Distance calculates the Euclidean distance between two points.
func Distance(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// Midpoint returns the midpoint of a and b in floating point coordinates.
func Midpoint(a, b image.Point) (float64, float64) {
	return float64(a.X+b.X) / 2, float64(a.Y+b.Y) / 2
}
