package fixture

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/ppbench/internal/landmarks"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	cache, err := New(filepath.Join(t.TempDir(), "fixtures"))
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	return cache
}

func sampleRecord() *landmarks.Record {
	return &landmarks.Record{
		CrownPoint:     image.Pt(150, 60),
		ChinPoint:      image.Pt(150, 280),
		EyeLeftPupil:   image.Pt(115, 150),
		EyeRightPupil:  image.Pt(185, 150),
		LipLeftCorner:  image.Pt(125, 230),
		LipRightCorner: image.Pt(175, 230),
		FaceRect:       image.Rect(85, 80, 215, 285),
		LipContour1:    []image.Point{{X: 125, Y: 230}, {X: 150, Y: 222}, {X: 175, Y: 230}},
	}
}

func TestCache_RoundTrip(t *testing.T) {
	cache := newTestCache(t)
	rec := sampleRecord()

	if err := cache.Store("/data/images/face.jpg", rec); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	loaded, ok, err := cache.Load("/data/images/face.jpg")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a cache hit after Store")
	}
	if !rec.Equal(loaded) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", *loaded, *rec)
	}
}

func TestCache_KeyedByBaseName(t *testing.T) {
	cache := newTestCache(t)
	rec := sampleRecord()

	if err := cache.Store("/original/location/face.jpg", rec); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	// Fixtures are relocatable: the same base name from a different
	// directory resolves to the same entry.
	loaded, ok, err := cache.Load("/relocated/elsewhere/face.jpg")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit for the same base name from another directory")
	}
	if !rec.Equal(loaded) {
		t.Error("relocated load returned a different record")
	}
}

func TestCache_MissIsNotAnError(t *testing.T) {
	cache := newTestCache(t)

	rec, ok, err := cache.Load("never_computed.jpg")
	if err != nil {
		t.Fatalf("a miss should not be an error, got: %v", err)
	}
	if ok || rec != nil {
		t.Errorf("expected (nil, false) on miss, got (%v, %v)", rec, ok)
	}
}

func TestCache_StoreOverwrites(t *testing.T) {
	cache := newTestCache(t)

	first := sampleRecord()
	if err := cache.Store("face.jpg", first); err != nil {
		t.Fatalf("first Store failed: %v", err)
	}

	refreshed := sampleRecord()
	refreshed.ChinPoint = image.Pt(151, 282)
	if err := cache.Store("face.jpg", refreshed); err != nil {
		t.Fatalf("overwriting Store failed: %v", err)
	}

	loaded, ok, err := cache.Load("face.jpg")
	if err != nil || !ok {
		t.Fatalf("Load after overwrite failed: ok=%v err=%v", ok, err)
	}
	if !refreshed.Equal(loaded) {
		t.Error("Load returned the stale record after overwrite")
	}
}

func TestCache_LoadOrCompute(t *testing.T) {
	cache := newTestCache(t)
	rec := sampleRecord()

	computeCalls := 0
	compute := func() (*landmarks.Record, error) {
		computeCalls++
		return rec, nil
	}

	got, err := cache.LoadOrCompute("face.jpg", compute)
	if err != nil {
		t.Fatalf("LoadOrCompute failed: %v", err)
	}
	if computeCalls != 1 {
		t.Errorf("compute ran %d times on first call, want 1", computeCalls)
	}
	if !rec.Equal(got) {
		t.Error("LoadOrCompute returned a different record than computed")
	}

	// Second call must be served from the fixture file.
	got, err = cache.LoadOrCompute("face.jpg", compute)
	if err != nil {
		t.Fatalf("second LoadOrCompute failed: %v", err)
	}
	if computeCalls != 1 {
		t.Errorf("compute ran %d times total, want 1", computeCalls)
	}
	if !rec.Equal(got) {
		t.Error("cached record differs from computed one")
	}

	if _, err := os.Stat(cache.Path("face.jpg")); err != nil {
		t.Errorf("fixture file was not persisted: %v", err)
	}
}

func TestCache_LoadOrCompute_ComputeError(t *testing.T) {
	cache := newTestCache(t)

	wantErr := fmt.Errorf("engine exploded")
	_, err := cache.LoadOrCompute("face.jpg", func() (*landmarks.Record, error) {
		return nil, wantErr
	})
	if err == nil {
		t.Fatal("expected compute error to propagate")
	}

	// A failed computation must not leave a fixture behind.
	if _, ok, _ := cache.Load("face.jpg"); ok {
		t.Error("fixture was written despite compute failure")
	}
}
