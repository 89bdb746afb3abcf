// Package scanner orchestrates the characterization pipeline and keeps the
// scan registry current.
package scanner
