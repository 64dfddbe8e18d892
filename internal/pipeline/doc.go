// Package pipeline executes the per-asset processing plan. The registry
// binds step identifiers to handlers built over the raster, normalmap, and
// segment packages; the runner walks a resolution's plan in order, records
// one outcome per step, and never lets a step failure abort the run.
package pipeline
