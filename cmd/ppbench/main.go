package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ayusman/ppbench/internal/engine"
	"github.com/ayusman/ppbench/internal/fixture"
	"github.com/ayusman/ppbench/internal/landmarks"
	"github.com/ayusman/ppbench/internal/runner"
	"github.com/ayusman/ppbench/internal/store"
)

func main() {
	var (
		annotationsPath = flag.String("annotations", "", "path to the VIA annotation CSV (required)")
		configPath      = flag.String("config", "", "engine configuration bundle (default: resolved share/config.bundle.json)")
		engineCmd       = flag.String("engine", "", "detection engine command")
		useMock         = flag.Bool("mock", false, "use the mock engine instead of an external process")
		dbPath          = flag.String("db", "", "run history database (default: ~/.ppbench/ppbench.db)")
		fixturesDir     = flag.String("fixtures", "", "fixture cache directory (disabled when empty)")
		excludeList     = flag.String("exclude", "", "comma-separated image identifiers to skip")
		annotate        = flag.Bool("annotate", false, "render overlays of ground truth and detections")
		outDir          = flag.String("out", "", "directory for annotated overlays")
	)
	flag.Parse()

	if *annotationsPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	eng, err := buildEngine(*useMock, *engineCmd, *configPath)
	if err != nil {
		log.Fatalf("Failed to initialize engine: %v", err)
	}
	defer eng.Close()

	var cache *fixture.Cache
	if *fixturesDir != "" {
		cache, err = fixture.New(*fixturesDir)
		if err != nil {
			log.Fatalf("Failed to initialize fixture cache: %v", err)
		}
	}

	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	var exclude []string
	if *excludeList != "" {
		exclude = strings.Split(*excludeList, ",")
	}

	r := runner.New(runner.Config{
		Engine:   eng,
		Cache:    cache,
		Exclude:  exclude,
		Annotate: *annotate,
		OutDir:   *outDir,
	})

	results, err := r.Run(*annotationsPath)
	if err != nil {
		log.Fatalf("Regression run failed: %v", err)
	}

	for _, res := range results {
		fmt.Println(res)
	}

	total, succeeded := runner.Summarize(results)
	fmt.Printf("\n%d/%d images succeeded\n", succeeded, total)

	printCoefficients(results)

	if err := recordRun(*dbPath, *annotationsPath, results); err != nil {
		log.Fatalf("Failed to record run: %v", err)
	}
}

// buildEngine returns a configured engine: the mock for dry runs, otherwise
// the external engine process.
func buildEngine(useMock bool, engineCmd, configPath string) (engine.Engine, error) {
	var eng engine.Engine
	if useMock {
		eng = engine.NewMock()
	} else {
		if engineCmd == "" {
			return nil, fmt.Errorf("either -engine or -mock is required")
		}
		eng = engine.NewService(engineCmd)
	}

	config, err := engine.LoadConfig(configPath)
	if err != nil {
		if !useMock {
			return nil, err
		}
		config = []byte("{}") // the mock ignores configuration content
	}

	if err := eng.Configure(config); err != nil {
		return nil, err
	}
	return eng, nil
}

// printCoefficients reports the calibration ratios over the batch's ground
// truth annotations.
func printCoefficients(results []runner.Result) {
	batch := make([]*landmarks.Record, 0, len(results))
	for _, res := range results {
		batch = append(batch, res.Truth)
	}

	coeffs, err := landmarks.CrownChinCoefficients(batch)
	if err != nil {
		log.Printf("Skipping coefficient calibration: %v", err)
		return
	}
	fmt.Printf("Chin-crown normalization: %g\n", coeffs.ChinCrown)
	fmt.Printf("Chin-frown normalization: %g\n", coeffs.ChinFrown)
}

// recordRun persists the batch outcome to the run history database.
func recordRun(dbPath, annotationsPath string, results []runner.Result) error {
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dbDir := filepath.Join(homeDir, ".ppbench")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return err
		}
		dbPath = filepath.Join(dbDir, "ppbench.db")
	}

	st, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	runResults := make([]store.RunResult, len(results))
	for i, res := range results {
		runResults[i] = store.RunResult{Image: res.Image, Success: res.Success}
	}

	run := &store.Run{AnnotationFile: annotationsPath}
	if err := st.Runs().Record(run, runResults); err != nil {
		return err
	}

	fmt.Printf("Recorded run %s\n", run.ID)
	return nil
}
