package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry describes one rendered model in the output manifest.
type ManifestEntry struct {
	Model    string `json:"model"`
	Image    string `json:"image,omitempty"`
	Warnings int    `json:"warnings,omitempty"`
	Error    string `json:"error,omitempty"`
}

// WriteManifest writes manifest.json next to the rendered previews.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		entries[i] = ManifestEntry{
			Model:    r.Model,
			Image:    r.Image,
			Warnings: r.Warnings,
			Error:    r.Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
