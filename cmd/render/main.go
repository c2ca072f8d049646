// Command render batch-renders WebP preview snapshots for every model
// below an unpacked game data tree.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"arx-asset-codec/internal/batch"
	"arx-asset-codec/internal/config"
	"arx-asset-codec/internal/scan"
	"arx-asset-codec/internal/tea"
	"arx-asset-codec/internal/texture"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	testN := flag.Int("test", 0, "Render only first N models for testing")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	assetDir := flag.String("assets", "", "Path to unpacked game data tree (default: auto-detect)")
	outputDir := flag.String("output", "", "Output directory (default: <assets>/previews)")
	quality := flag.Int("quality", 0, "WebP quality 1-100 (default: 90)")
	poseFile := flag.String("pose", "", "Animation clip whose first keyframe poses every model (shared rigs)")

	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	cfg.Resolve(config.Flags{
		AssetDir:  *assetDir,
		OutputDir: *outputDir,
		Quality:   *quality,
		Workers:   *workers,
	})

	if cfg.AssetDir == "" {
		fmt.Fprintln(os.Stderr, "Error: cannot find a graph/obj3d data tree. Use -assets or config.json.")
		os.Exit(1)
	}

	assets, err := scan.Find(cfg.AssetDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning assets: %v\n", err)
		os.Exit(1)
	}
	models := scan.Filter(assets, scan.KindModel)

	if *testN > 0 && *testN < len(models) {
		models = models[:*testN]
	}

	if len(models) == 0 {
		fmt.Println("No models to render.")
		os.Exit(0)
	}

	var poseKF *tea.Keyframe
	if *poseFile != "" {
		raw, err := os.ReadFile(*poseFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading pose clip: %v\n", err)
			os.Exit(1)
		}
		clip, _, err := tea.Decode(raw)
		if err != nil || len(clip.Keyframes) == 0 {
			fmt.Fprintf(os.Stderr, "Error decoding pose clip %s: %v\n", *poseFile, err)
			os.Exit(1)
		}
		poseKF = &clip.Keyframes[0]
	}

	texIndex := texture.BuildIndex(cfg.AssetDir)
	texCache := texture.NewCache(texIndex)
	fmt.Printf("Textures: %d indexed\n", texIndex.Len())

	mode := ""
	if *testN > 0 {
		mode = fmt.Sprintf(" (TEST: first %d)", *testN)
	}
	fmt.Printf("Model preview renderer → WebP%s\n", mode)
	fmt.Printf("Models: %d, Workers: %d\n", len(models), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	batchCfg := batch.Config{
		OutputDir:   cfg.OutputDir,
		TexResolver: texCache,
		Pose:        poseKF,
		RenderSize:  cfg.RenderSize,
		WebPQuality: cfg.WebPQuality,
		Supersample: cfg.Supersample,
		Workers:     cfg.Workers,
	}

	results := batch.Run(batchCfg, models)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(models))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errors) < limit {
			limit = len(errors)
		}
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Model, e.Error)
		}
	}

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
