package naming

import "strings"

// Step identifies one transform in an asset's processing flow.
type Step string

const (
	StepSegment        Step = "segment"
	StepAlignBottom    Step = "align_bottom"
	StepGenerateShadow Step = "generate_shadow"
	StepResizeSquare   Step = "resize_square"
	StepSharpen        Step = "sharpen"
	StepMakeSeamless   Step = "make_seamless"
	StepGeneratePBR    Step = "gen_pbr"
	StepGenerateLOD    Step = "gen_lod"
	StepBoxCollision   Step = "box_collision"
	StepDefault        Step = "default_process"
)

var allSteps = []Step{
	StepSegment,
	StepAlignBottom,
	StepGenerateShadow,
	StepResizeSquare,
	StepSharpen,
	StepMakeSeamless,
	StepGeneratePBR,
	StepGenerateLOD,
	StepBoxCollision,
	StepDefault,
}

var stepSet = func() map[Step]struct{} {
	set := make(map[Step]struct{}, len(allSteps))
	for _, step := range allSteps {
		set[step] = struct{}{}
	}
	return set
}()

// AllSteps returns the ordered list of known steps.
func AllSteps() []Step {
	cp := make([]Step, len(allSteps))
	copy(cp, allSteps)
	return cp
}

// ParseStep converts a string into a known Step.
func ParseStep(value string) (Step, bool) {
	normalized := Step(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := stepSet[normalized]
	return normalized, ok
}

// Known reports whether the step is part of the closed enumeration.
func (s Step) Known() bool {
	_, ok := stepSet[s]
	return ok
}

func (s Step) String() string { return string(s) }
