package texture

import (
	"os"
	"path/filepath"
	"strings"
)

// Asset texture references store Windows paths with whatever extension the
// editor last saw ("graph\obj3d\textures\foo.bmp"), while the files on disk
// may carry a different one. The index therefore maps lowercase stems to
// filesystem paths and lookup ignores both directory and extension.
//
// TGA wins over BMP wins over JPEG for the same stem (alpha channel).
type Index struct {
	entries map[string]string // stem.lower() → full path
}

var extPriority = map[string]int{".jpg": 1, ".jpeg": 1, ".bmp": 2, ".tga": 3}

// BuildIndex scans root recursively for texture files.
func BuildIndex(root string) *Index {
	idx := &Index{entries: make(map[string]string)}

	filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		prio, ok := extPriority[ext]
		if !ok {
			return nil
		}
		stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

		existing, exists := idx.entries[stem]
		if !exists || prio > extPriority[strings.ToLower(filepath.Ext(existing))] {
			idx.entries[stem] = path
		}
		return nil
	})

	return idx
}

// ResolvePath returns the filesystem path for a texture reference, or
// ("", false).
func (idx *Index) ResolvePath(texName string) (string, bool) {
	texName = strings.ReplaceAll(texName, "\\", "/")
	base := filepath.Base(texName)
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	path, ok := idx.entries[stem]
	return path, ok
}

// Len returns the number of indexed textures.
func (idx *Index) Len() int {
	return len(idx.entries)
}
