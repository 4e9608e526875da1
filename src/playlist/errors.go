package playlist

import "errors"

// Error kinds. Per the error handling design, DeadHandle and OutOfRange are
// swallowed at the public API boundary (handle.go, get_entry.go) and never
// escape to callers; they back a debug log at the point each is swallowed
// so the condition still leaves a trace. ScanFailure is surfaced through
// Entry.Error instead of a return value. IoFailure is logged by the caller
// and otherwise ignored.
var (
	ErrDeadHandle  = errors.New("playlist: handle refers to a deleted playlist")
	ErrOutOfRange  = errors.New("playlist: index out of range")
	ErrScanFailure = errors.New("playlist: scan failed")
	ErrIoFailure   = errors.New("playlist: state file i/o failed")
)
