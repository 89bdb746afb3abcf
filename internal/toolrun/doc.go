// Package toolrun executes external analysis tools with a hard timeout,
// guaranteed subprocess termination, and scoped temporary files.
package toolrun
