// Package hdr classifies the HDR format of video files through an ordered,
// short-circuiting detection cascade.
package hdr
