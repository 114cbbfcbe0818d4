// Package engine defines the detection engine collaborator used by the
// regression harness. The engine owns the actual face and landmark models;
// the harness only configures it, hands it images, and collects records.
package engine

import (
	"fmt"
	"os"

	"gocv.io/x/gocv"

	"github.com/ayusman/ppbench/internal/landmarks"
	"github.com/ayusman/ppbench/internal/paths"
)

// DefaultConfigPath is the engine configuration bundle, addressed relative to
// the repository root.
const DefaultConfigPath = "share/config.bundle.json"

// Engine is the external detector contract. The configuration blob is opaque
// to the harness; its schema belongs to the engine.
type Engine interface {
	// Configure initializes the engine with an opaque configuration blob.
	// Configuring an already-configured engine is a no-op.
	Configure(config []byte) error

	// SetImage loads an image into the engine's image store and returns the
	// key under which it is addressable.
	SetImage(path string) (string, error)

	// DetectLandmarks runs landmark detection on a previously loaded image.
	DetectLandmarks(key string) (*landmarks.Record, error)

	// Image returns the loaded image buffer for a key, for overlay rendering.
	Image(key string) (gocv.Mat, bool)

	// Close releases any resources held by the engine.
	Close() error
}

// LoadConfig reads the engine configuration blob. An empty path resolves the
// default bundle by searching upward from the working directory.
func LoadConfig(path string) ([]byte, error) {
	if path == "" {
		path = paths.Resolve(DefaultConfigPath)
		if path == "" {
			return nil, fmt.Errorf("engine config %s not found", DefaultConfigPath)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read engine config: %w", err)
	}
	return data, nil
}
