// Package runner drives the detection engine over an annotated image set and
// collects one result per image.
package runner

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"

	"github.com/ayusman/ppbench/internal/annotation"
	"github.com/ayusman/ppbench/internal/engine"
	"github.com/ayusman/ppbench/internal/fixture"
	"github.com/ayusman/ppbench/internal/landmarks"
	"github.com/ayusman/ppbench/internal/render"
)

// Config holds configuration options for a regression run.
type Config struct {
	// Engine performs the actual detection. It must already be configured;
	// the runner never configures or re-configures it.
	Engine engine.Engine

	// Cache, when set, stores computed records so later runs reuse them.
	Cache *fixture.Cache

	// Exclude lists image identifiers (base names or full paths) to skip.
	// Excluded images never appear in the results.
	Exclude []string

	// Annotate renders ground truth and detection overlays for each image.
	// Rendering has no effect on the recorded results.
	Annotate bool

	// OutDir receives the annotated overlays when Annotate is set. When
	// empty, overlays are rendered and discarded.
	OutDir string
}

// Result records the outcome of one image: the ground truth it was checked
// against, the detected record, and whether detection succeeded.
type Result struct {
	Image    string
	Truth    *landmarks.Record
	Detected *landmarks.Record
	Success  bool
}

// Runner executes regression batches against an annotated dataset.
type Runner struct {
	cfg      Config
	excluded map[string]struct{}
}

// New creates a Runner with the given configuration.
func New(cfg Config) *Runner {
	excluded := make(map[string]struct{}, len(cfg.Exclude))
	for _, id := range cfg.Exclude {
		excluded[id] = struct{}{}
	}
	return &Runner{cfg: cfg, excluded: excluded}
}

// Run parses the annotation file and processes every non-excluded image in
// sorted path order, one engine invocation per image. Per-image detection
// failures are recorded with Success=false and never abort the batch;
// structural errors (unreadable or malformed annotations) do.
func (r *Runner) Run(annotationPath string) ([]Result, error) {
	set, err := annotation.Parse(annotationPath)
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, imagePath := range set.Paths() {
		if r.isExcluded(imagePath) {
			continue
		}
		truth := set[imagePath]

		detected, key, err := r.detect(imagePath)
		success := err == nil
		if err != nil {
			log.Printf("detection failed for %s: %v", imagePath, err)
			detected = &landmarks.Record{}
		}

		if r.cfg.Annotate && success {
			r.renderOverlay(imagePath, key, truth, detected)
		}

		results = append(results, Result{
			Image:    imagePath,
			Truth:    truth,
			Detected: detected,
			Success:  success,
		})
	}
	return results, nil
}

// isExcluded matches against the explicit identifier set, by base name or
// full path.
func (r *Runner) isExcluded(imagePath string) bool {
	if _, ok := r.excluded[imagePath]; ok {
		return true
	}
	_, ok := r.excluded[filepath.Base(imagePath)]
	return ok
}

// detect returns the landmark record for an image, consulting the fixture
// cache first when one is configured. The returned key addresses the loaded
// image in the engine store; it is empty on a cache hit.
func (r *Runner) detect(imagePath string) (*landmarks.Record, string, error) {
	var key string
	compute := func() (*landmarks.Record, error) {
		k, err := r.cfg.Engine.SetImage(imagePath)
		if err != nil {
			return nil, err
		}
		key = k
		return r.cfg.Engine.DetectLandmarks(k)
	}

	if r.cfg.Cache != nil {
		rec, err := r.cfg.Cache.LoadOrCompute(imagePath, compute)
		return rec, key, err
	}
	rec, err := compute()
	return rec, key, err
}

// renderOverlay draws both records onto the image loaded by the engine and
// optionally writes the composite to OutDir.
func (r *Runner) renderOverlay(imagePath, key string, truth, detected *landmarks.Record) {
	if key == "" {
		// Cache hit: the engine never loaded the image, so load it now.
		k, err := r.cfg.Engine.SetImage(imagePath)
		if err != nil {
			log.Printf("load %s for annotation: %v", imagePath, err)
			return
		}
		key = k
	}

	img, ok := r.cfg.Engine.Image(key)
	if !ok || img.Empty() {
		return
	}

	overlay := render.Annotate(img, truth, detected)
	defer overlay.Close()

	if r.cfg.OutDir != "" {
		outPath := filepath.Join(r.cfg.OutDir, overlayName(imagePath))
		if ok := gocv.IMWrite(outPath, overlay); !ok {
			log.Printf("failed to write overlay %s", outPath)
		}
	}
}

func overlayName(imagePath string) string {
	base := filepath.Base(imagePath)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + "_annotated.png"
}

// Summarize reduces a batch to counts for reporting and persistence.
func Summarize(results []Result) (total, succeeded int) {
	for _, res := range results {
		total++
		if res.Success {
			succeeded++
		}
	}
	return total, succeeded
}

// String formats a result for log output.
func (res Result) String() string {
	status := "FAIL"
	if res.Success {
		status = "OK"
	}
	return fmt.Sprintf("%-4s %s", status, res.Image)
}
