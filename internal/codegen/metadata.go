package codegen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"amberpipe/internal/naming"
)

// metadataVersion is the schema version stamped into every metadata file.
const metadataVersion = "1.0"

// AssetMetadata is the sidecar record written next to each processed asset.
type AssetMetadata struct {
	AssetName     string   `json:"asset_name"`
	Category      string   `json:"category"`
	OriginalPath  string   `json:"original_path"`
	GeneratedTime string   `json:"generated_time"`
	Prompt        string   `json:"prompt"`
	ProcessSteps  []string `json:"process_steps"`
	Version       string   `json:"version"`
}

// WriteMetadata renders `{name}_metadata.json` into dir for one asset.
func WriteMetadata(dir string, res naming.Resolution, originalPath, prompt string) (string, error) {
	steps := make([]string, 0, len(res.Steps))
	for _, step := range res.Steps {
		steps = append(steps, step.String())
	}

	meta := AssetMetadata{
		AssetName:     res.AssetName,
		Category:      res.Category,
		OriginalPath:  originalPath,
		GeneratedTime: time.Now().UTC().Format(time.RFC3339),
		Prompt:        prompt,
		ProcessSteps:  steps,
		Version:       metadataVersion,
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}

	path := filepath.Join(dir, res.NameWithoutExt+"_metadata.json")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create metadata directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}
	return path, nil
}
