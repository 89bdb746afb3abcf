// Package mediainfo shells out to mediainfo and exposes typed views over its
// JSON track reports.
package mediainfo
