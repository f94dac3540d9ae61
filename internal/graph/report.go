package graph

import "context"

// FilterStat is one named filter's cut-flow line: how many entries it
// examined and how many it accepted, aggregated across slots.
type FilterStat struct {
	Name   string
	Passed int64
	Total  int64
}

// Report walks the chain from this node back to the root and returns every
// named filter's counters in chain order (closest to the root first).
// Anonymous filters are skipped. If no scan has happened yet, one is forced
// so the counters reflect real traffic; the forced scan also executes any
// actions booked at that moment.
func (h handle) Report(ctx context.Context) ([]FilterStat, error) {
	g, err := h.Owner()
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.hasRun {
		if err := g.scan(ctx, []*node{h.n}); err != nil {
			return nil, err
		}
	}
	var stats []FilterStat
	for n := h.n; n != nil; n = n.parent {
		if n.kind != kindFilter || n.name == "" {
			continue
		}
		st := FilterStat{Name: n.name}
		for i := range n.slots {
			st.Passed += n.slots[i].passed
			st.Total += n.slots[i].total
		}
		stats = append(stats, st)
	}
	// Collected leaf-to-root; reports read root-to-leaf.
	for i, j := 0, len(stats)-1; i < j; i, j = i+1, j-1 {
		stats[i], stats[j] = stats[j], stats[i]
	}
	return stats, nil
}
