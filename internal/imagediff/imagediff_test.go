package imagediff

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gocv.io/x/gocv"
)

// newTestImage creates a small color image with a deterministic gradient.
func newTestImage(t *testing.T, rows, cols int) gocv.Mat {
	t.Helper()

	img := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { img.Close() })

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			img.SetUCharAt(r, c*3, uint8(r%256))
			img.SetUCharAt(r, c*3+1, uint8(c%256))
			img.SetUCharAt(r, c*3+2, uint8((r+c)%256))
		}
	}
	return img
}

func TestExact_Reflexive(t *testing.T) {
	img := newTestImage(t, 20, 30)

	count, err := Exact(img, img)
	if err != nil {
		t.Fatalf("an image should equal itself: %v", err)
	}
	if count != 0 {
		t.Errorf("differing pixels = %d, want 0", count)
	}
}

func TestExact_SinglePixelDifference(t *testing.T) {
	a := newTestImage(t, 20, 30)
	b := a.Clone()
	defer b.Close()

	// Flip one channel of one pixel.
	b.SetUCharAt(5, 7*3+1, b.GetUCharAt(5, 7*3+1)+1)

	count, err := Exact(a, b)
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
	if count != 1 {
		t.Errorf("differing pixels = %d, want 1", count)
	}
}

func TestExact_SizeMismatch(t *testing.T) {
	a := newTestImage(t, 20, 30)
	b := newTestImage(t, 20, 31)

	_, err := Exact(a, b)
	if !errors.Is(err, ErrMismatch) {
		t.Errorf("expected ErrMismatch for different sizes, got %v", err)
	}
}

func TestExact_MultiplePixelCount(t *testing.T) {
	a := newTestImage(t, 10, 10)
	b := a.Clone()
	defer b.Close()

	// Change three pixels, one of them in two channels; still three pixels.
	b.SetUCharAt(0, 0, b.GetUCharAt(0, 0)+1)
	b.SetUCharAt(0, 1, b.GetUCharAt(0, 1)+1)
	b.SetUCharAt(3, 4*3, b.GetUCharAt(3, 4*3)+1)
	b.SetUCharAt(9, 9*3+2, b.GetUCharAt(9, 9*3+2)+1)

	count, err := Exact(a, b)
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
	if count != 3 {
		t.Errorf("differing pixels = %d, want 3", count)
	}
}

func TestBenchmark_BootstrapThenPass(t *testing.T) {
	actual := newTestImage(t, 16, 16)
	refPath := filepath.Join(t.TempDir(), "expected.png")

	// First run: no reference yet. The differ must write one and still fail,
	// forcing a human to review the new file.
	err := Benchmark(actual, refPath)
	if !errors.Is(err, ErrBenchmarkMissing) {
		t.Fatalf("expected ErrBenchmarkMissing on first run, got %v", err)
	}
	if _, err := os.Stat(refPath); err != nil {
		t.Fatalf("reference image was not written: %v", err)
	}

	// Second run against the freshly written reference must pass.
	if err := Benchmark(actual, refPath); err != nil {
		t.Errorf("identical image should match the new reference: %v", err)
	}
}

func TestBenchmark_Mismatch(t *testing.T) {
	actual := newTestImage(t, 16, 16)
	refPath := filepath.Join(t.TempDir(), "expected.png")

	if err := Benchmark(actual, refPath); !errors.Is(err, ErrBenchmarkMissing) {
		t.Fatalf("bootstrap failed: %v", err)
	}

	changed := actual.Clone()
	defer changed.Close()
	changed.SetUCharAt(2, 2*3, changed.GetUCharAt(2, 2*3)+10)

	err := Benchmark(changed, refPath)
	if !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
	// The failure names the reference path for investigation.
	if !strings.Contains(err.Error(), refPath) {
		t.Errorf("error %q does not mention the reference path", err)
	}
}
