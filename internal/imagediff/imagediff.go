// Package imagediff compares rendered images against stored references for
// visual regression checks.
package imagediff

import (
	"errors"
	"fmt"
	"os"

	"gocv.io/x/gocv"
)

// ErrMismatch is returned when two images differ in size or pixel content.
var ErrMismatch = errors.New("images differ")

// ErrBenchmarkMissing is returned the first time a benchmark comparison runs:
// the actual image is written as the new reference and the check fails so a
// human reviews the freshly introduced reference before it can pass.
var ErrBenchmarkMissing = errors.New("benchmark image did not exist")

// Exact compares two images pixel by pixel. It returns the number of pixels
// whose value differs in any channel; a non-zero count (or any size mismatch)
// is reported as an error wrapping ErrMismatch.
func Exact(expected, actual gocv.Mat) (int, error) {
	if expected.Rows() != actual.Rows() || expected.Cols() != actual.Cols() ||
		expected.Channels() != actual.Channels() {
		return 0, fmt.Errorf("%w: size %dx%dx%d vs %dx%dx%d", ErrMismatch,
			expected.Cols(), expected.Rows(), expected.Channels(),
			actual.Cols(), actual.Rows(), actual.Channels())
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(expected, actual, &diff)

	count := countNonZeroPixels(diff)
	if count > 0 {
		return count, fmt.Errorf("%w: %d differing pixels", ErrMismatch, count)
	}
	return 0, nil
}

// countNonZeroPixels counts pixels with a non-zero value in any channel by
// collapsing multi-channel diffs with a per-pixel max.
func countNonZeroPixels(diff gocv.Mat) int {
	if diff.Channels() == 1 {
		return gocv.CountNonZero(diff)
	}

	channels := gocv.Split(diff)
	acc := channels[0].Clone()
	defer acc.Close()
	for i, ch := range channels {
		if i > 0 {
			gocv.Max(acc, ch, &acc)
		}
		ch.Close()
	}
	return gocv.CountNonZero(acc)
}

// Benchmark validates actual against the reference image at refPath. If the
// reference does not exist yet, actual is written there and the check fails
// with ErrBenchmarkMissing so the new reference gets reviewed. An existing
// reference must match exactly.
func Benchmark(actual gocv.Mat, refPath string) error {
	if _, err := os.Stat(refPath); errors.Is(err, os.ErrNotExist) {
		if ok := gocv.IMWrite(refPath, actual); !ok {
			return fmt.Errorf("failed to write benchmark image %s", refPath)
		}
		return fmt.Errorf("%w: wrote new reference %s", ErrBenchmarkMissing, refPath)
	}

	ref := gocv.IMRead(refPath, gocv.IMReadColor)
	if ref.Empty() {
		return fmt.Errorf("failed to read benchmark image %s", refPath)
	}
	defer ref.Close()

	if _, err := Exact(ref, actual); err != nil {
		return fmt.Errorf("benchmark %s: %w", refPath, err)
	}
	return nil
}
