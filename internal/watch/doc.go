// Package watch monitors the media directory for new and deleted video
// files and keeps the scan registry in step with the filesystem.
package watch
