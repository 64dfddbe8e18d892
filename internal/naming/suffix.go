package naming

import "sort"

// TextureInfo describes the engine role of a recognized texture suffix.
type TextureInfo struct {
	Suffix      string
	Name        string
	Description string
	EngineUsage string
}

// textureSuffixes is the fixed texture suffix standard shared with the
// generated engine header. Matching is longest-suffix-first so more
// specific markers always win.
var textureSuffixes = []TextureInfo{
	{Suffix: "_BC", Name: "Base Color", Description: "Diffuse", EngineUsage: "Base color of objects"},
	{Suffix: "_N", Name: "Normal", Description: "Normal", EngineUsage: "Bump texture and details"},
	{Suffix: "_R", Name: "Roughness", Description: "Roughness", EngineUsage: "Determines whether reflected light is scattered or concentrated"},
	{Suffix: "_E", Name: "Emissive", Description: "Emissive", EngineUsage: "Glowing parts like amber, torches, etc."},
	{Suffix: "_M", Name: "Mask", Description: "Mask", EngineUsage: "Used to implement dynamic effects like blood stains, snow, etc."},
}

var suffixesByLength = func() []TextureInfo {
	cp := make([]TextureInfo, len(textureSuffixes))
	copy(cp, textureSuffixes)
	sort.SliceStable(cp, func(i, j int) bool {
		return len(cp[i].Suffix) > len(cp[j].Suffix)
	})
	return cp
}()

// TextureSuffixes returns the suffix standard in declaration order.
func TextureSuffixes() []TextureInfo {
	cp := make([]TextureInfo, len(textureSuffixes))
	copy(cp, textureSuffixes)
	return cp
}

func matchTextureSuffix(nameWithoutExt string) (TextureInfo, bool) {
	for _, info := range suffixesByLength {
		if hasSuffix(nameWithoutExt, info.Suffix) {
			return info, true
		}
	}
	return TextureInfo{}, false
}

func hasSuffix(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}
