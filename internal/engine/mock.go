package engine

import (
	"fmt"
	"image"
	"path/filepath"

	"gocv.io/x/gocv"

	"github.com/ayusman/ppbench/internal/landmarks"
)

// Mock is a test implementation of the Engine interface. It lets tests script
// the record or error returned per image and counts detection calls.
type Mock struct {
	records     map[string]*landmarks.Record
	errs        map[string]error
	images      map[string]gocv.Mat
	configured  bool
	detectCalls int
}

// NewMock creates a new Mock engine.
func NewMock() *Mock {
	return &Mock{
		records: make(map[string]*landmarks.Record),
		errs:    make(map[string]error),
		images:  make(map[string]gocv.Mat),
	}
}

// SetRecord sets the record returned for an image (keyed by base name).
func (m *Mock) SetRecord(imageName string, rec *landmarks.Record) {
	m.records[filepath.Base(imageName)] = rec
}

// SetError makes detection fail for an image (keyed by base name).
func (m *Mock) SetError(imageName string, err error) {
	m.errs[filepath.Base(imageName)] = err
}

// DetectCalls returns how many times DetectLandmarks ran.
func (m *Mock) DetectCalls() int {
	return m.detectCalls
}

// Configure marks the mock as configured.
func (m *Mock) Configure(config []byte) error {
	m.configured = true
	return nil
}

// SetImage registers the image and returns its base name as key.
func (m *Mock) SetImage(path string) (string, error) {
	if !m.configured {
		return "", fmt.Errorf("engine not configured")
	}
	key := filepath.Base(path)
	if _, ok := m.images[key]; !ok {
		m.images[key] = gocv.NewMatWithSize(400, 300, gocv.MatTypeCV8UC3)
	}
	return key, nil
}

// DetectLandmarks returns the scripted record or error for the key. Keys with
// no scripted outcome get the frontal preset.
func (m *Mock) DetectLandmarks(key string) (*landmarks.Record, error) {
	m.detectCalls++
	if err := m.errs[key]; err != nil {
		return nil, err
	}
	if rec, ok := m.records[key]; ok {
		copied := *rec
		return &copied, nil
	}
	return FrontalRecord(), nil
}

// Image returns the buffer registered by SetImage.
func (m *Mock) Image(key string) (gocv.Mat, bool) {
	img, ok := m.images[key]
	return img, ok
}

// Close releases the registered image buffers.
func (m *Mock) Close() error {
	for key, img := range m.images {
		img.Close()
		delete(m.images, key)
	}
	return nil
}

// FrontalRecord returns a preset record with plausible passport-photo
// geometry on a 300x400 image: eyes level, mouth centered below, crown and
// chin on the vertical axis.
func FrontalRecord() *landmarks.Record {
	return &landmarks.Record{
		CrownPoint:     image.Pt(150, 60),
		ChinPoint:      image.Pt(150, 280),
		EyeLeftPupil:   image.Pt(115, 150),
		EyeRightPupil:  image.Pt(185, 150),
		LipLeftCorner:  image.Pt(125, 230),
		LipRightCorner: image.Pt(175, 230),
		NoseTip:        image.Pt(150, 190),
		FaceRect:       image.Rect(85, 80, 215, 285),
		EyeLeftRect:    image.Rect(100, 135, 135, 165),
		EyeRightRect:   image.Rect(165, 135, 200, 165),
		MouthRect:      image.Rect(118, 215, 182, 245),
		LipContour1: []image.Point{
			image.Pt(125, 230), image.Pt(140, 222), image.Pt(160, 222),
			image.Pt(175, 230), image.Pt(160, 238), image.Pt(140, 238),
		},
		LipContour2: []image.Point{
			image.Pt(130, 230), image.Pt(150, 226), image.Pt(170, 230),
			image.Pt(150, 234),
		},
	}
}
