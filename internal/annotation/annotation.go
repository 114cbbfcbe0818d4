// Package annotation loads ground-truth landmark annotations exported from
// the VGG Image Annotator (VIA) in its CSV region format.
package annotation

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ayusman/ppbench/internal/landmarks"
)

// ErrFormat is returned when the annotation file is unreadable, contains an
// out-of-range landmark index, or yields no landmark rows at all.
var ErrFormat = errors.New("malformed annotation file")

// Set maps a resolved image path to its ground-truth landmark record.
type Set map[string]*landmarks.Record

// Paths returns the annotated image paths in sorted order. Iterating the set
// through Paths keeps batch runs deterministic.
func (s Set) Paths() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Expected VIA CSV columns:
// filename, file_size, file_attributes, region_count, region_id,
// region_shape_attributes, region_attributes
const numColumns = 7

// shapeAttrs is the region_shape_attributes JSON for a point region.
type shapeAttrs struct {
	Name string `json:"name"`
	CX   *int   `json:"cx"`
	CY   *int   `json:"cy"`
}

// Parse reads a VIA CSV annotation file and builds one landmark record per
// referenced image. Each point row addresses a landmark slot by its region id
// (0-5); an id outside that range aborts the whole parse. Relative image
// names are resolved against the annotation file's directory, so downstream
// components can key on the resolved paths directly.
func Parse(csvPath string) (Set, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	imageDir := filepath.Dir(csvPath)
	set := Set{}

	for line := 1; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
		}
		if len(row) != numColumns || row[0] == "filename" || !isImageName(row[0]) {
			continue
		}

		var shape shapeAttrs
		if err := json.Unmarshal([]byte(row[5]), &shape); err != nil {
			continue // not a region row
		}
		if shape.CX == nil || shape.CY == nil {
			continue // region is not a point
		}

		idx, err := strconv.Atoi(strings.TrimSpace(row[4]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: region id %q", ErrFormat, line, row[4])
		}

		key := filepath.Join(imageDir, row[0])
		rec := set[key]
		if rec == nil {
			rec = &landmarks.Record{}
			set[key] = rec
		}
		if err := rec.SetByIndex(idx, image.Pt(*shape.CX, *shape.CY)); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
		}
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no landmark rows in %s", ErrFormat, csvPath)
	}
	return set, nil
}

func isImageName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".bmp":
		return true
	}
	return false
}
