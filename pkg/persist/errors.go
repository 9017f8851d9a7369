// pkg/persist/errors.go
package persist

import "errors"

var (
	// ErrInputNotFound is reported when a file input cannot be resolved.
	ErrInputNotFound = errors.New("file input not found")
	// ErrNoFile is reported when a change fires with no selected file.
	ErrNoFile = errors.New("no file selected")
	// ErrReadFailed wraps every failure to read a selected file.
	ErrReadFailed = errors.New("file read error")
	// ErrPathNotFound is returned when a load path selects nothing.
	ErrPathNotFound = errors.New("path not found in document")
	// ErrUnknownFormat is returned for a save format outside the known set.
	ErrUnknownFormat = errors.New("unknown format")
	// ErrUnknownReadMode is returned for a read mode outside the known set.
	ErrUnknownReadMode = errors.New("unknown read mode")
)
