// Package normalmap synthesizes tangent-space normal maps from a
// height-proxy raster using Sobel gradient estimation.
package normalmap
