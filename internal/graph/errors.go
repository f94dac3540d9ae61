package graph

import (
	"errors"
	"fmt"
)

// ErrNotReachable is returned by handle operations whose owning graph has
// been closed. Handles keep only a back-reference; they do not keep the
// graph alive.
var ErrNotReachable = errors.New("graph owner is no longer reachable")

// ConfigError reports an invalid graph-construction request: bad column
// arity, a name conflict, invalid range parameters, or a range gate on a
// multi-slot graph. It is always raised at attach/book time, never during a
// scan.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "graph config: " + e.Msg }

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// CompileError reports that the dynamic path failed to build a node: the
// compile service rejected the synthesized source, or the handle it returned
// had the wrong type.
type CompileError struct {
	Source string
	Err    error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %q: %v", e.Source, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// UnsupportedError reports a capability the configured engine does not
// provide, such as expression compilation without a compile service.
type UnsupportedError struct {
	Op string
}

func (e *UnsupportedError) Error() string { return e.Op + " is not supported" }

// EntryError reports that a filter predicate, derive expression, or action
// body faulted while processing an entry. The scan that raised it aborted
// without publishing any partial results; the offending entry and worker
// slot are recorded for diagnosis.
type EntryError struct {
	Entry int64
	Slot  int
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("entry %d (slot %d): %v", e.Entry, e.Slot, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// entryError wraps err with entry/slot context unless it already carries it
// or is a cancellation surfaced by the scan loop itself.
func entryError(entry int64, slot int, err error) error {
	var ee *EntryError
	if errors.As(err, &ee) {
		return err
	}
	return &EntryError{Entry: entry, Slot: slot, Err: err}
}
