// Package tmdb resolves display metadata (posters, titles, credits) from
// The Movie Database API.
package tmdb
