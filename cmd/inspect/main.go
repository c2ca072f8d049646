// Command inspect prints a structural summary of asset containers:
// models (.ftl), scenes (.fts) and animations (.tea).
package main

import (
	"flag"
	"fmt"
	"os"

	"arx-asset-codec/internal/codecerr"
	"arx-asset-codec/internal/ftl"
	"arx-asset-codec/internal/fts"
	"arx-asset-codec/internal/scan"
	"arx-asset-codec/internal/tea"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s file.ftl|file.fts|file.tea ...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed := 0
	for _, path := range flag.Args() {
		if err := inspect(path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func inspect(path string) error {
	kind, ok := scan.KindOf(path)
	if !ok {
		return fmt.Errorf("unrecognized extension")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s, %d bytes)\n", path, kind, len(raw))

	switch kind {
	case scan.KindModel:
		return inspectModel(raw)
	case scan.KindScene:
		return inspectScene(raw)
	case scan.KindAnimation:
		return inspectAnimation(raw)
	}
	return nil
}

func inspectModel(raw []byte) error {
	m, warns, err := ftl.Decode(raw)
	if err != nil {
		return err
	}
	fmt.Printf("  name: %q, origin vertex: %d\n", m.Name, m.Origin)
	fmt.Printf("  vertices: %d, faces: %d, textures: %d\n", len(m.Verts), len(m.Faces), len(m.Textures))
	fmt.Printf("  groups: %d, actions: %d, selections: %d\n", len(m.Groups), len(m.Actions), len(m.Selections))
	roots := 0
	for _, g := range m.Groups {
		if g.Parent == -1 {
			roots++
		}
	}
	if len(m.Groups) > 0 {
		fmt.Printf("  hierarchy roots: %d\n", roots)
	}
	printWarnings(warns)
	return nil
}

func inspectScene(raw []byte) error {
	info, err := fts.ReadContainerInfo(raw)
	if err != nil {
		return err
	}
	fmt.Printf("  container path: %q, version: %g\n", info.Path, info.Version)
	fmt.Printf("  secondary headers: %d\n", info.SecondaryCount)
	fmt.Printf("  payload: %d bytes imploded, %d declared uncompressed\n",
		info.CompressedSize, info.UncompressedSize)
	return nil
}

func inspectAnimation(raw []byte) error {
	a, warns, err := tea.Decode(raw)
	if err != nil {
		return err
	}
	fmt.Printf("  name: %q, version: %d\n", a.Name, a.Version)
	fmt.Printf("  keyframes: %d, groups: %d, duration: %.3fs\n",
		len(a.Keyframes), a.GroupCount, a.TotalDuration())
	samples := 0
	for _, kf := range a.Keyframes {
		if kf.Sample != "" {
			samples++
		}
	}
	if samples > 0 {
		fmt.Printf("  sound samples: %d\n", samples)
	}
	printWarnings(warns)
	return nil
}

func printWarnings(warns []codecerr.Warning) {
	for _, w := range warns {
		fmt.Printf("  warning: %v\n", w)
	}
}
