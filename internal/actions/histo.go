package actions

import (
	"fmt"
	"math"

	"github.com/colgraph/colgraph/internal/graph"
)

// Histo1D describes a fixed-bin one-dimensional histogram payload over the
// half-open range [Lo, Hi).
type Histo1D struct {
	Bins int
	Lo   float64
	Hi   float64
}

// HistoResult is a filled histogram: Counts has one cell per bin, with
// out-of-range entries tallied in Under and Over.
type HistoResult struct {
	Lo, Hi      float64
	Counts      []int64
	Under, Over int64
	Entries     int64
}

func (h Histo1D) NewAccumulator() (graph.Accumulator, error) {
	if h.Bins <= 0 {
		return nil, fmt.Errorf("histogram needs a positive bin count, got %d", h.Bins)
	}
	if !(h.Lo < h.Hi) || math.IsNaN(h.Lo) || math.IsNaN(h.Hi) {
		return nil, fmt.Errorf("histogram range [%v, %v) is empty", h.Lo, h.Hi)
	}
	return &histoAcc{spec: h, counts: make([]int64, h.Bins)}, nil
}

type histoAcc struct {
	spec        Histo1D
	counts      []int64
	under, over int64
	entries     int64
}

func (a *histoAcc) Consume(vals []any) error {
	f, err := toFloat64(vals[0])
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	a.entries++
	switch {
	case f < a.spec.Lo:
		a.under++
	case f >= a.spec.Hi:
		a.over++
	default:
		width := (a.spec.Hi - a.spec.Lo) / float64(a.spec.Bins)
		bin := int((f - a.spec.Lo) / width)
		if bin >= a.spec.Bins { // float round-off at the upper edge
			bin = a.spec.Bins - 1
		}
		a.counts[bin]++
	}
	return nil
}

func (a *histoAcc) Merge(other graph.Accumulator) error {
	o, err := mergeAs[*histoAcc](other)
	if err != nil {
		return err
	}
	if o.spec != a.spec {
		return fmt.Errorf("cannot merge histograms with different binning")
	}
	for i := range a.counts {
		a.counts[i] += o.counts[i]
	}
	a.under += o.under
	a.over += o.over
	a.entries += o.entries
	return nil
}

func (a *histoAcc) Result() any {
	return HistoResult{
		Lo:      a.spec.Lo,
		Hi:      a.spec.Hi,
		Counts:  a.counts,
		Under:   a.under,
		Over:    a.over,
		Entries: a.entries,
	}
}

// FillHisto1D books a histogram fill of a numeric column over accepted
// entries.
func FillHisto1D(at graph.Node, spec Histo1D, columns ...string) (*graph.Result[HistoResult], error) {
	b, err := at.Book(columns, 1, spec)
	if err != nil {
		return nil, err
	}
	return graph.As[HistoResult](b), nil
}
