// Package postercache stores downloaded poster artwork on disk under
// deterministic names.
package postercache
