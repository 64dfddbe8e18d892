// Package naming resolves asset filenames against the four-segment naming
// convention ([prefix]_[asset]_[attribute]_[version].ext) and maps prefixes
// to the ordered processing steps each asset category requires.
package naming
