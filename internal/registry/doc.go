// Package registry holds the shared scan state: per-file characterization
// records with synchronous SQLite persistence.
package registry
