// Package codegen produces the engine-facing artifacts that accompany
// processed assets: the AssetIDs.h identifier header and the per-asset
// metadata JSON files.
package codegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"amberpipe/internal/naming"
)

// IDBase is the first asset identifier; later assets count up from it in
// list order.
const IDBase = 0x3E8

const headerName = "AssetIDs.h"

// Generator writes headers into the header directory and mirrors them to
// the compiled directory when one is configured.
type Generator struct {
	headerDir   string
	compiledDir string
}

// NewGenerator binds the output directories.
func NewGenerator(headerDir, compiledDir string) *Generator {
	return &Generator{headerDir: headerDir, compiledDir: compiledDir}
}

// WriteHeader regenerates AssetIDs.h from the given asset names, in order.
// The file is rewritten whole each time so removed assets disappear from it.
func (g *Generator) WriteHeader(assets []string) (string, error) {
	content := renderHeader(assets, time.Now().UTC())

	path := filepath.Join(g.headerDir, headerName)
	if err := writeFile(path, content); err != nil {
		return "", err
	}
	if g.compiledDir != "" {
		if err := writeFile(filepath.Join(g.compiledDir, headerName), content); err != nil {
			return "", err
		}
	}
	return path, nil
}

func renderHeader(assets []string, now time.Time) string {
	var b strings.Builder
	b.WriteString("// AssetIDs.h\n")
	b.WriteString("// Generated by amberpipe on " + now.Format(time.RFC3339) + ". Do not edit.\n")
	b.WriteString("#pragma once\n\n")

	b.WriteString("// Texture suffix conventions\n")
	for _, info := range naming.TextureSuffixes() {
		fmt.Fprintf(&b, "//   %s  %s: %s\n", info.Suffix, info.Name, info.EngineUsage)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "#define ASSET_ID_BASE 0x%X\n\n", IDBase)
	b.WriteString("enum AssetID {\n")
	for i, asset := range assets {
		fmt.Fprintf(&b, "    ID_%s = 0x%X,\n", identifier(asset), IDBase+i)
	}
	b.WriteString("};\n")
	return b.String()
}

// identifier converts an asset name to a C identifier fragment: uppercased,
// with every non-alphanumeric run collapsed to a single underscore.
func identifier(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToUpper(name) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

func writeFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create header directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
