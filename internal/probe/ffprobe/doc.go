// Package ffprobe shells out to ffprobe and exposes typed views over its
// JSON reports.
package ffprobe
