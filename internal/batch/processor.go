package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"arx-asset-codec/internal/ftl"
	"arx-asset-codec/internal/mathutil"
	"arx-asset-codec/internal/pose"
	"arx-asset-codec/internal/raster"
	"arx-asset-codec/internal/scan"
	"arx-asset-codec/internal/tea"
	"arx-asset-codec/internal/texture"

	"github.com/HugoSmits86/nativewebp"
)

// Config holds all shared resources for a batch render run.
type Config struct {
	OutputDir   string
	TexResolver texture.Resolver
	Pose        *tea.Keyframe // optional shared-rig pose applied to every model
	RenderSize  int
	WebPQuality int
	Supersample int
	Workers     int
}

// Result holds the outcome of processing one model.
type Result struct {
	Model    string // path relative to the scanned root
	Image    string // output path relative to OutputDir, "" on failure
	Warnings int
	Success  bool
	Error    string
}

// Run renders all models using a worker pool and reports progress on
// stdout every two seconds.
func Run(cfg Config, models []scan.Asset) []Result {
	total := len(models)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f models/sec\n", p, total, rate)
				}
			}
		}
	}()

	workChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workChan {
				results[idx] = processModel(cfg, models[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range models {
		workChan <- i
	}
	close(workChan)

	wg.Wait()
	close(done)

	return results
}

func processModel(cfg Config, asset scan.Asset) Result {
	res := Result{Model: asset.Rel}

	raw, err := os.ReadFile(asset.Path)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	model, warns, err := ftl.Decode(raw)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Warnings = len(warns)

	if len(model.Faces) == 0 {
		res.Error = "model has no faces"
		return res
	}

	var positions []mathutil.Vec3
	if cfg.Pose != nil {
		positions = pose.Apply(model, cfg.Pose)
	}

	img := raster.RenderModel(model, positions, cfg.TexResolver, cfg.RenderSize, cfg.Supersample)

	rel := strings.TrimSuffix(asset.Rel, filepath.Ext(asset.Rel)) + ".webp"
	outPath := filepath.Join(cfg.OutputDir, rel)
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		res.Error = err.Error()
		return res
	}

	f, err := os.Create(outPath)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		res.Error = fmt.Sprintf("WebP encode: %v", err)
		return res
	}

	res.Image = rel
	res.Success = true
	return res
}
