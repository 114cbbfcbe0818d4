package engine

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.bundle.json")
	want := []byte(`{"detector":"cascade"}`)
	if err := os.WriteFile(path, want, 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("config = %q, want %q", got, want)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestMock_RequiresConfigure(t *testing.T) {
	m := NewMock()
	defer m.Close()

	if _, err := m.SetImage("face.jpg"); err == nil {
		t.Error("SetImage should fail before Configure")
	}

	if err := m.Configure([]byte("{}")); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if _, err := m.SetImage("face.jpg"); err != nil {
		t.Errorf("SetImage failed after Configure: %v", err)
	}
}

func TestMock_ScriptedRecord(t *testing.T) {
	m := NewMock()
	defer m.Close()
	if err := m.Configure(nil); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	want := FrontalRecord()
	want.ChinPoint = image.Pt(150, 290)
	m.SetRecord("/some/dir/face.jpg", want)

	key, err := m.SetImage("/another/dir/face.jpg")
	if err != nil {
		t.Fatalf("SetImage failed: %v", err)
	}

	got, err := m.DetectLandmarks(key)
	if err != nil {
		t.Fatalf("DetectLandmarks failed: %v", err)
	}
	if !want.Equal(got) {
		t.Errorf("detected = %+v, want %+v", *got, *want)
	}
	if m.DetectCalls() != 1 {
		t.Errorf("DetectCalls = %d, want 1", m.DetectCalls())
	}
}

func TestMock_ScriptedError(t *testing.T) {
	m := NewMock()
	defer m.Close()
	if err := m.Configure(nil); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	wantErr := errors.New("no face found")
	m.SetError("face.jpg", wantErr)

	key, err := m.SetImage("face.jpg")
	if err != nil {
		t.Fatalf("SetImage failed: %v", err)
	}
	if _, err := m.DetectLandmarks(key); !errors.Is(err, wantErr) {
		t.Errorf("expected scripted error, got %v", err)
	}
}

func TestMock_ImageBuffer(t *testing.T) {
	m := NewMock()
	defer m.Close()
	if err := m.Configure(nil); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	key, err := m.SetImage("face.jpg")
	if err != nil {
		t.Fatalf("SetImage failed: %v", err)
	}

	img, ok := m.Image(key)
	if !ok {
		t.Fatal("Image returned no buffer for a loaded key")
	}
	if img.Empty() {
		t.Error("loaded image buffer is empty")
	}
	if _, ok := m.Image("unknown"); ok {
		t.Error("Image should miss for unknown keys")
	}
}

func TestFrontalRecord_Geometry(t *testing.T) {
	rec := FrontalRecord()

	if rec.EyeLeftPupil.Y != rec.EyeRightPupil.Y {
		t.Error("preset eyes should be level")
	}
	if rec.CrownPoint.Y >= rec.ChinPoint.Y {
		t.Error("preset crown should sit above the chin")
	}
	if !rec.EyeLeftPupil.In(rec.FaceRect) || !rec.EyeRightPupil.In(rec.FaceRect) {
		t.Error("preset pupils should fall inside the face rect")
	}
	if len(rec.LipContour1) < 3 || len(rec.LipContour2) < 3 {
		t.Error("preset lip contours should be closed polygons")
	}
}
