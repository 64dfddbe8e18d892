// Package raster provides the image I/O and transform primitives the
// pipeline steps are built from. All transforms take and return NRGBA
// buffers; callers own the returned image exclusively.
package raster
