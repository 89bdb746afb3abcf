// Package audio selects the representative audio track of a file and
// renders its codec label.
package audio
