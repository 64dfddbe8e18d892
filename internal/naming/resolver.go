package naming

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Descriptor is the parsed structure of an asset filename. Immutable once
// produced; malformed names degrade to empty fields rather than erroring so
// the pipeline always has some plan.
type Descriptor struct {
	FullName       string
	NameWithoutExt string
	Ext            string
	Prefix         string
	AssetName      string
	Attribute      string
	Version        string
	TextureSuffix  string
}

// Rule maps a filename prefix to its processing flow and display category.
type Rule struct {
	Steps    []Step
	Category string
}

// Resolution is the full outcome of resolving a filename: the descriptor
// plus the processing plan the rule table selected for it.
type Resolution struct {
	Descriptor
	Category    string
	Steps       []Step
	TextureInfo TextureInfo
}

var versionPattern = regexp.MustCompile(`^v\d+(\.\d+)?$`)

// defaultRules covers the core asset categories. Unmatched prefixes fall
// back to the default step so every file gets processed.
func defaultRules() map[string]Rule {
	return map[string]Rule{
		"CHR": {Steps: []Step{StepSegment, StepAlignBottom, StepGenerateShadow}, Category: "Character"},
		"UI":  {Steps: []Step{StepSegment, StepResizeSquare, StepSharpen}, Category: "Icon"},
		"ENV": {Steps: []Step{StepMakeSeamless, StepGeneratePBR, StepGenerateLOD}, Category: "Environment"},
		"PRP": {Steps: []Step{StepSegment, StepGeneratePBR, StepBoxCollision}, Category: "Prop"},
	}
}

var fallbackRule = Rule{Steps: []Step{StepDefault}, Category: "Unknown"}

// Resolver parses filenames and looks up processing rules. Rule updates are
// administrative and rare; lookups copy under a read lock.
type Resolver struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

// NewResolver builds a resolver seeded with the default rules. Custom rules
// overlay the defaults, keyed by prefix.
func NewResolver(custom map[string]Rule) *Resolver {
	rules := defaultRules()
	for prefix, rule := range custom {
		rules[prefix] = cloneRule(rule)
	}
	return &Resolver{rules: rules}
}

// Parse splits a filename into its naming-convention components. It is pure
// and never touches the filesystem.
func Parse(filename string) Descriptor {
	ext := filepath.Ext(filename)
	nameWithoutExt := strings.TrimSuffix(filename, ext)

	parts := strings.Split(nameWithoutExt, "_")
	desc := Descriptor{
		FullName:       filename,
		NameWithoutExt: nameWithoutExt,
		Ext:            strings.ToLower(ext),
	}
	if len(parts) > 0 {
		desc.Prefix = parts[0]
	}
	if len(parts) > 1 {
		desc.AssetName = parts[1]
	}
	if len(parts) > 2 {
		last := parts[len(parts)-1]
		if versionPattern.MatchString(last) {
			desc.Version = last
			desc.Attribute = strings.Join(parts[2:len(parts)-1], "_")
		} else {
			desc.Attribute = strings.Join(parts[2:], "_")
		}
	}
	if info, ok := matchTextureSuffix(nameWithoutExt); ok {
		desc.TextureSuffix = info.Suffix
	}
	return desc
}

// Resolve parses the filename and selects its processing plan. Resolution
// never fails; unknown prefixes get the default flow and category "Unknown".
func (r *Resolver) Resolve(filename string) Resolution {
	desc := Parse(filename)

	r.mu.RLock()
	rule, ok := r.rules[desc.Prefix]
	r.mu.RUnlock()
	if !ok {
		rule = fallbackRule
	}

	res := Resolution{
		Descriptor: desc,
		Category:   rule.Category,
		Steps:      append([]Step(nil), rule.Steps...),
	}
	if desc.TextureSuffix != "" {
		if info, ok := matchTextureSuffix(desc.NameWithoutExt); ok {
			res.TextureInfo = info
		}
	}
	return res
}

// AddRule installs or replaces the rule for a prefix. Affects future
// resolutions only.
func (r *Resolver) AddRule(prefix string, steps []Step, category string) {
	if category == "" {
		category = "Custom"
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[prefix] = Rule{Steps: append([]Step(nil), steps...), Category: category}
}

// RemoveRule deletes the rule for a prefix. Removing an unknown prefix is a
// no-op; removing a default rule makes its prefix resolve to the fallback.
func (r *Resolver) RemoveRule(prefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rules, prefix)
}

// Rules returns a snapshot of the rule table.
func (r *Resolver) Rules() map[string]Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make(map[string]Rule, len(r.rules))
	for prefix, rule := range r.rules {
		snapshot[prefix] = cloneRule(rule)
	}
	return snapshot
}

// Prefixes returns the rule prefixes in sorted order, for stable listings.
func (r *Resolver) Prefixes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	prefixes := make([]string, 0, len(r.rules))
	for prefix := range r.rules {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)
	return prefixes
}

func cloneRule(rule Rule) Rule {
	return Rule{Steps: append([]Step(nil), rule.Steps...), Category: rule.Category}
}
