package codegen

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"amberpipe/internal/naming"
)

func TestRenderHeaderAssignsSequentialIDs(t *testing.T) {
	content := renderHeader([]string{"Knight", "Grass Tile", "crate-01"}, time.Unix(0, 0).UTC())

	for _, want := range []string{
		"#pragma once",
		"#define ASSET_ID_BASE 0x3E8",
		"ID_KNIGHT = 0x3E8,",
		"ID_GRASS_TILE = 0x3E9,",
		"ID_CRATE_01 = 0x3EA,",
		"_BC",
		"_N",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("header missing %q\n%s", want, content)
		}
	}
}

func TestWriteHeaderRegeneratesAndMirrors(t *testing.T) {
	base := t.TempDir()
	headerDir := filepath.Join(base, "include")
	compiledDir := filepath.Join(base, "compiled")
	g := NewGenerator(headerDir, compiledDir)

	if _, err := g.WriteHeader([]string{"Knight", "Button"}); err != nil {
		t.Fatalf("write header: %v", err)
	}
	path, err := g.WriteHeader([]string{"Button"})
	if err != nil {
		t.Fatalf("rewrite header: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	content := string(data)
	if strings.Contains(content, "ID_KNIGHT") {
		t.Fatal("removed asset still present, header was appended instead of regenerated")
	}
	if !strings.Contains(content, "ID_BUTTON = 0x3E8,") {
		t.Fatalf("surviving asset not renumbered from base:\n%s", content)
	}

	mirror, err := os.ReadFile(filepath.Join(compiledDir, "AssetIDs.h"))
	if err != nil {
		t.Fatalf("read mirror: %v", err)
	}
	if string(mirror) != content {
		t.Fatal("compiled mirror differs from header dir copy")
	}
}

func TestIdentifier(t *testing.T) {
	cases := map[string]string{
		"Knight":      "KNIGHT",
		"grass tile":  "GRASS_TILE",
		"crate-01":    "CRATE_01",
		"a__b":        "A_B",
		"trailing---": "TRAILING",
	}
	for in, want := range cases {
		if got := identifier(in); got != want {
			t.Errorf("identifier(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWriteMetadata(t *testing.T) {
	dir := t.TempDir()
	res := naming.NewResolver(nil).Resolve("CHR_Knight_Idle_v01.png")

	path, err := WriteMetadata(dir, res, "/incoming/CHR_Knight_Idle_v01.png", "armored knight")
	if err != nil {
		t.Fatalf("write metadata: %v", err)
	}
	if filepath.Base(path) != "CHR_Knight_Idle_v01_metadata.json" {
		t.Fatalf("metadata filename = %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	var meta AssetMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("unmarshal metadata: %v", err)
	}
	if meta.AssetName != "Knight" || meta.Category != "Character" || meta.Version != "1.0" {
		t.Fatalf("metadata = %+v", meta)
	}
	if len(meta.ProcessSteps) != 3 || meta.ProcessSteps[0] != "segment" {
		t.Fatalf("process steps = %v", meta.ProcessSteps)
	}
	if _, err := time.Parse(time.RFC3339, meta.GeneratedTime); err != nil {
		t.Fatalf("generated_time not RFC3339: %v", err)
	}
}
