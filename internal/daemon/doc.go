// Package daemon runs the long-lived reelscan process: single-instance
// locking, registry persistence, the sweep loop, the filesystem watcher,
// and the HTTP API.
package daemon
