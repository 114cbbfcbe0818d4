// Package fixture persists previously computed landmark records so that
// repeated regression runs skip full detection for unchanged images.
package fixture

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ayusman/ppbench/internal/landmarks"
)

// Cache stores one JSON file per image in Dir. Fixture files are keyed by the
// image's base name only, so a fixture directory can travel with the test
// data regardless of where the source images live. To force recomputation,
// delete the fixture file; Store never runs implicitly.
type Cache struct {
	Dir string
}

// New creates a fixture cache rooted at dir, creating it if needed.
func New(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create fixture dir: %w", err)
	}
	return &Cache{Dir: dir}, nil
}

// Path returns the fixture file path for an image.
func (c *Cache) Path(imagePath string) string {
	return filepath.Join(c.Dir, filepath.Base(imagePath)+".json")
}

// Load retrieves the cached record for an image. A missing fixture is not an
// error: it returns (nil, false, nil) to signal the caller to compute.
func (c *Cache) Load(imagePath string) (*landmarks.Record, bool, error) {
	data, err := os.ReadFile(c.Path(imagePath))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read fixture: %w", err)
	}

	var rec landmarks.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, fmt.Errorf("decode fixture %s: %w", c.Path(imagePath), err)
	}
	return &rec, true, nil
}

// Store writes the record as an indented JSON fixture, overwriting any
// existing file for the same image.
func (c *Cache) Store(imagePath string, rec *landmarks.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}
	if err := os.WriteFile(c.Path(imagePath), data, 0644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}

// LoadOrCompute returns the cached record for an image, or invokes compute
// and persists its result on a cache miss.
func (c *Cache) LoadOrCompute(imagePath string, compute func() (*landmarks.Record, error)) (*landmarks.Record, error) {
	rec, ok, err := c.Load(imagePath)
	if err != nil {
		return nil, err
	}
	if ok {
		return rec, nil
	}

	rec, err = compute()
	if err != nil {
		return nil, err
	}
	if err := c.Store(imagePath, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
