// Package mediameta extracts numeric file attributes: resolution, bitrates,
// duration, and size.
package mediameta
