// Package render overlays ground-truth and detected landmarks onto images
// for visual inspection of detection results.
package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/ppbench/internal/landmarks"
)

// Overlay colors. Ground truth and detection use clearly distinct colors so
// both can be read off the same image; auxiliary model points use a muted
// third color.
var (
	truthColor     = color.RGBA{R: 255, G: 30, B: 0}
	detectionColor = color.RGBA{R: 0, G: 30, B: 250}
	regionColor    = color.RGBA{R: 45, G: 82, B: 160}
	faceColor      = color.RGBA{R: 0, G: 128, B: 0}
	auxColor       = color.RGBA{R: 190, G: 40, B: 40}
)

const (
	markerRadius    = 5
	markerThickness = 2
	regionThickness = 3
)

// Annotate returns a copy of src with both landmark records drawn on top.
// Either record may be nil. The source image is never modified, so the same
// buffer can be composed into several overlays. Layering order: detected
// regions, lip contours, ground-truth markers, detected markers, auxiliary
// points.
func Annotate(src gocv.Mat, truth, detected *landmarks.Record) gocv.Mat {
	out := src.Clone()

	if detected != nil {
		drawRegions(&out, detected)
		drawContours(&out, detected)
	}
	if truth != nil {
		drawMarkers(&out, truth, truthColor)
	}
	if detected != nil {
		drawMarkers(&out, detected, detectionColor)
		for _, pt := range detected.AllPoints {
			gocv.Circle(&out, pt, markerRadius, auxColor, 1)
		}
	}
	return out
}

func drawRegions(img *gocv.Mat, rec *landmarks.Record) {
	if !rec.FaceRect.Empty() {
		gocv.Rectangle(img, rec.FaceRect, faceColor, markerThickness)
	}
	for _, r := range []image.Rectangle{rec.EyeLeftRect, rec.EyeRightRect, rec.MouthRect} {
		if !r.Empty() {
			gocv.Rectangle(img, r, regionColor, regionThickness)
		}
	}
}

func drawContours(img *gocv.Mat, rec *landmarks.Record) {
	var contours [][]image.Point
	for _, c := range [][]image.Point{rec.LipContour1, rec.LipContour2} {
		if len(c) > 1 {
			contours = append(contours, c)
		}
	}
	if len(contours) == 0 {
		return
	}

	pts := gocv.NewPointsVectorFromPoints(contours)
	defer pts.Close()
	gocv.Polylines(img, pts, true, detectionColor, 1)
}

func drawMarkers(img *gocv.Mat, rec *landmarks.Record, c color.RGBA) {
	for _, pt := range rec.AnnotatedPoints() {
		if pt != (image.Point{}) {
			gocv.Circle(img, pt, markerRadius, c, markerThickness)
		}
	}
	for _, pt := range []image.Point{rec.EyeLeftCorner, rec.EyeRightCorner, rec.NoseTip} {
		if pt != (image.Point{}) {
			gocv.Circle(img, pt, markerRadius, c, markerThickness)
		}
	}
}
