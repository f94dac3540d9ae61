// Package events holds the payload structs published by the engine over the
// eventbus. Subscribers (tracing, metrics) consume them; the engine itself
// never logs.
package events

import "time"

// ScanStart is emitted when a scan begins, before any entry is read.
type ScanStart struct {
	Entries int64
	Slots   int
	Actions int
}

// ScanFinish is emitted when a scan completes or aborts.
type ScanFinish struct {
	Entries  int64
	Slots    int
	Actions  int
	Err      error
	Duration time.Duration
}

// ActionBooked is emitted when an action is registered against the graph.
type ActionBooked struct {
	Kind    string
	Columns []string
}

// ActionDone is emitted when a scan publishes an action's merged result.
type ActionDone struct {
	Kind string
}
