// Package scan enumerates asset files under an unpacked game data tree.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind identifies an asset container family by extension.
type Kind int

const (
	KindModel     Kind = iota // .ftl
	KindScene                 // .fts
	KindAnimation             // .tea
)

func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindScene:
		return "scene"
	case KindAnimation:
		return "animation"
	}
	return "unknown"
}

// Asset is one discovered container file.
type Asset struct {
	Path string // absolute path
	Rel  string // path relative to the scanned root
	Kind Kind
}

var kindByExt = map[string]Kind{
	".ftl": KindModel,
	".fts": KindScene,
	".tea": KindAnimation,
}

// KindOf maps a filename to its container family.
func KindOf(path string) (Kind, bool) {
	k, ok := kindByExt[strings.ToLower(filepath.Ext(path))]
	return k, ok
}

// Find walks root and returns every asset container below it, in walk
// order. Unreadable subtrees abort with an error rather than silently
// shrinking the result.
func Find(root string) ([]Asset, error) {
	var assets []Asset
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		kind, ok := KindOf(path)
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		assets = append(assets, Asset{Path: path, Rel: rel, Kind: kind})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan: walk %s: %w", root, err)
	}
	return assets, nil
}

// Filter returns the subset of assets with the given kind.
func Filter(assets []Asset, kind Kind) []Asset {
	var out []Asset
	for _, a := range assets {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}
