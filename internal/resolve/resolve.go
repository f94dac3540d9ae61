// Package resolve decides which columns a graph node reads: the explicitly
// requested names, or a prefix of the graph's default-column list when the
// caller requested none.
package resolve

import "fmt"

// Names resolves the column list for a node that reads needed columns.
//
// Rules:
//   - No requested names: the first needed entries of defaults are used.
//     It is an error for defaults to be shorter than needed.
//   - Requested names given: the count must match needed exactly and every
//     name must be non-empty. The list is returned unchanged.
//
// Names never truncates or pads a non-empty request.
func Names(requested []string, needed int, defaults []string) ([]string, error) {
	if len(requested) == 0 {
		if needed == 0 {
			return nil, nil
		}
		if len(defaults) < needed {
			return nil, fmt.Errorf("need %d columns but only %d default columns are set", needed, len(defaults))
		}
		out := make([]string, needed)
		copy(out, defaults[:needed])
		return out, nil
	}
	if len(requested) != needed {
		return nil, fmt.Errorf("need %d columns, got %d", needed, len(requested))
	}
	for i, name := range requested {
		if name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
	}
	out := make([]string, len(requested))
	copy(out, requested)
	return out, nil
}
