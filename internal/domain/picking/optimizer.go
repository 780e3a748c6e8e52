package picking

import "sort"

// TraversalOrder ranks items by their position along the picker's route
type TraversalOrder interface {
	Rank(item string) (int, bool)
}

// Optimizer arranges items into the order a picker walks past them
type Optimizer struct {
	order TraversalOrder
}

func NewOptimizer(order TraversalOrder) *Optimizer {
	return &Optimizer{order: order}
}

// Optimize returns the items sorted by traversal rank. Each item keeps its
// occurrence count. Items absent from the traversal order are dropped.
func (o *Optimizer) Optimize(items []string) []string {
	type ranked struct {
		item string
		rank int
	}

	sorted := make([]ranked, 0, len(items))
	for _, item := range items {
		rank, ok := o.order.Rank(item)
		if !ok {
			continue
		}
		sorted = append(sorted, ranked{item: item, rank: rank})
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].rank < sorted[j].rank
	})

	result := make([]string, len(sorted))
	for i, r := range sorted {
		result[i] = r.item
	}
	return result
}

// Unreachable returns the items that Optimize would drop, in input order
func (o *Optimizer) Unreachable(items []string) []string {
	var missing []string
	for _, item := range items {
		if _, ok := o.order.Rank(item); !ok {
			missing = append(missing, item)
		}
	}
	return missing
}
