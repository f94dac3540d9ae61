package graph

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/colgraph/colgraph/internal/eventbus"
	"github.com/colgraph/colgraph/internal/events"
	"github.com/colgraph/colgraph/internal/runid"
	"github.com/colgraph/colgraph/internal/source"
)

// ctxPollMask throttles context polls to one every 1024 entries.
const ctxPollMask = 1<<10 - 1

// evalCtx is one worker slot's cursor over its entry subrange. The stored
// row is bound lazily on first column access per entry.
type evalCtx struct {
	g      *Graph
	slot   int
	entry  int64
	reader source.Reader
	row    source.RowView
}

func (ec *evalCtx) setEntry(e int64) {
	ec.entry = e
	ec.row = nil
}

// column materializes one column for the current entry: derived columns pull
// their defining node (cached per entry/slot), stored columns read from the
// bound row.
func (ec *evalCtx) column(name string) (any, error) {
	if d, ok := ec.g.derived[name]; ok {
		return d.value(ec)
	}
	if ec.row == nil {
		row, err := ec.reader.Read(ec.entry)
		if err != nil {
			return nil, err
		}
		ec.row = row
	}
	return ec.row.Value(name)
}

func (ec *evalCtx) values(cols []string) ([]any, error) {
	if len(cols) == 0 {
		return nil, nil
	}
	vals := make([]any, len(cols))
	for i, name := range cols {
		v, err := ec.column(name)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// scan runs every currently booked action (and evaluates the probe chains,
// used by Report) in one pass over the source. Caller holds g.mu.
//
// On success all executed actions are done and unbooked. On fault nothing is
// published: partials are dropped, the booked set is left intact, and the
// fault propagates to the caller that triggered the scan.
func (g *Graph) scan(ctx context.Context, probes []*node) error {
	acts := append([]*action(nil), g.booked...)
	entries := g.src.EntryCount()

	ctx, _ = runid.NewContext(ctx)
	eventbus.Publish(ctx, events.ScanStart{Entries: entries, Slots: g.slots, Actions: len(acts)})
	started := time.Now()

	finish := func(err error) error {
		eventbus.Publish(ctx, events.ScanFinish{
			Entries:  entries,
			Slots:    g.slots,
			Actions:  len(acts),
			Err:      err,
			Duration: time.Since(started),
		})
		return err
	}

	for _, n := range g.nodes {
		n.resetSlots()
	}
	for _, a := range acts {
		a.parts = make([]Accumulator, g.slots)
		for s := range a.parts {
			acc, err := a.payload.NewAccumulator()
			if err != nil {
				return finish(err)
			}
			a.parts[s] = acc
		}
	}

	var err error
	if g.slots == 1 {
		err = g.scanRange(ctx, 0, entries, 0, acts, probes)
	} else {
		eg, gctx := errgroup.WithContext(ctx)
		for s := 0; s < g.slots; s++ {
			lo := int64(s) * entries / int64(g.slots)
			hi := int64(s+1) * entries / int64(g.slots)
			eg.Go(func() error {
				return g.scanRange(gctx, lo, hi, s, acts, probes)
			})
		}
		err = eg.Wait()
	}
	if err != nil {
		for _, a := range acts {
			a.parts = nil
		}
		return finish(err)
	}

	for _, a := range acts {
		acc := a.parts[0]
		for s := 1; s < g.slots; s++ {
			if err := acc.Merge(a.parts[s]); err != nil {
				return finish(err)
			}
		}
		a.final = acc.Result()
		a.parts = nil
		a.state = stateDone
		eventbus.Publish(ctx, events.ActionDone{Kind: a.kind()})
	}
	g.booked = g.booked[len(acts):]
	g.hasRun = true
	return finish(nil)
}

// scanRange is one slot's straight-line loop over [lo, hi).
func (g *Graph) scanRange(ctx context.Context, lo, hi int64, slot int, acts []*action, probes []*node) error {
	reader, err := g.src.Reader(slot)
	if err != nil {
		return err
	}
	defer reader.Close()

	ec := &evalCtx{g: g, slot: slot, reader: reader}
	for e := lo; e < hi; e++ {
		if e&ctxPollMask == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		ec.setEntry(e)
		for _, n := range probes {
			if _, err := n.passes(ec); err != nil {
				return entryError(e, slot, err)
			}
		}
		for _, a := range acts {
			ok, err := a.parent.passes(ec)
			if err != nil {
				return entryError(e, slot, err)
			}
			if !ok {
				continue
			}
			vals, err := ec.values(a.cols)
			if err != nil {
				return entryError(e, slot, err)
			}
			if err := a.parts[slot].Consume(vals); err != nil {
				return entryError(e, slot, err)
			}
		}
	}
	return nil
}

// RunPending executes every currently booked action without accessing a
// particular result.
func (g *Graph) RunPending(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return ErrNotReachable
	}
	if len(g.booked) == 0 {
		return nil
	}
	return g.scan(ctx, nil)
}
