// Command reelscan characterizes video files: HDR format, best audio
// track, bitrates, and catalog metadata. It runs one-shot scans from the
// command line or a daemon with a filesystem watcher and HTTP API.
package main
