package pipeline

import (
	"fmt"
	"image"
	"path/filepath"

	"amberpipe/internal/naming"
	"amberpipe/internal/raster"
)

// Artifacts writes the output files for one asset. Filenames derive from the
// asset's base name; the extension follows the source file, defaulting to
// PNG when the source had none.
type Artifacts struct {
	dir  string
	base string
	ext  string
}

// NewArtifacts binds an output directory to an asset descriptor.
func NewArtifacts(outputDir string, desc naming.Descriptor) *Artifacts {
	ext := desc.Ext
	if ext == "" {
		ext = ".png"
	}
	return &Artifacts{dir: outputDir, base: desc.NameWithoutExt, ext: ext}
}

// SaveOriginal preserves the untouched input.
func (a *Artifacts) SaveOriginal(img image.Image) (string, error) {
	return a.save(img, a.base+"_original"+a.ext)
}

// SaveProcessed writes the final image of a run.
func (a *Artifacts) SaveProcessed(img image.Image) (string, error) {
	return a.save(img, a.base+"_processed"+a.ext)
}

// SaveNormal writes a synthesized normal map.
func (a *Artifacts) SaveNormal(img image.Image) (string, error) {
	return a.save(img, a.base+"_normal"+a.ext)
}

// SaveLOD writes one level-of-detail variant.
func (a *Artifacts) SaveLOD(img image.Image, level int) (string, error) {
	return a.save(img, fmt.Sprintf("%s_lod%d%s", a.base, level, a.ext))
}

// SaveResized writes the fallback resize, named after its dimensions.
func (a *Artifacts) SaveResized(img image.Image, width, height int) (string, error) {
	return a.save(img, fmt.Sprintf("%s_%dx%d%s", a.base, width, height, a.ext))
}

func (a *Artifacts) save(img image.Image, name string) (string, error) {
	path := filepath.Join(a.dir, name)
	if err := raster.Save(img, path); err != nil {
		return "", err
	}
	return path, nil
}
