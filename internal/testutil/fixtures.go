// Package testutil synthesizes annotated image datasets for harness tests.
package testutil

import (
	"encoding/csv"
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"github.com/ayusman/ppbench/internal/landmarks"
)

// AnnotatedPoints returns deterministic ground-truth points for the image at
// position n in a synthetic dataset, in annotation index order
// (crown, chin, eye left, eye right, lip left, lip right).
func AnnotatedPoints(n int) [landmarks.NumAnnotated]image.Point {
	dx := n * 3
	return [landmarks.NumAnnotated]image.Point{
		image.Pt(150+dx, 60),
		image.Pt(150+dx, 280),
		image.Pt(115+dx, 150),
		image.Pt(185+dx, 150),
		image.Pt(125+dx, 230),
		image.Pt(175+dx, 230),
	}
}

// Record returns the ground-truth record matching AnnotatedPoints(n).
func Record(n int) *landmarks.Record {
	rec := &landmarks.Record{}
	for idx, pt := range AnnotatedPoints(n) {
		rec.SetByIndex(idx, pt)
	}
	return rec
}

// WriteAnnotationCSV writes a VIA-format annotation file covering the given
// image names, six point rows per image, with coordinates from
// AnnotatedPoints.
func WriteAnnotationCSV(path string, imageNames []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"filename", "file_size", "file_attributes", "region_count",
		"region_id", "region_shape_attributes", "region_attributes",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for n, name := range imageNames {
		points := AnnotatedPoints(n)
		for idx, pt := range points {
			row := []string{
				name,
				"12345",
				"{}",
				fmt.Sprintf("%d", len(points)),
				fmt.Sprintf("%d", idx),
				fmt.Sprintf(`{"name":"point","cx":%d,"cy":%d}`, pt.X, pt.Y),
				"{}",
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}

	w.Flush()
	return w.Error()
}

// WriteImage writes a synthetic 300x400 color image to path.
func WriteImage(path string) error {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(80, 120, 160, 0), 400, 300, gocv.MatTypeCV8UC3)
	defer img.Close()

	if ok := gocv.IMWrite(path, img); !ok {
		return fmt.Errorf("failed to write test image %s", path)
	}
	return nil
}
