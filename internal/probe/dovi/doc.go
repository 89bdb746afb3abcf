// Package dovi detects Dolby Vision metadata by extracting the RPU from a
// short bitstream sample with ffmpeg and dovi_tool.
package dovi
