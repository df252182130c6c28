package ledger

import (
	"sort"

	"github.com/kiwari-pos/tableside/internal/enum"
)

// Priority is the kitchen fire/hold tag. It never affects status.
type Priority string

const (
	PriorityNone Priority = enum.PriorityNone
	PriorityFire Priority = enum.PriorityFire
	PriorityHold Priority = enum.PriorityHold
)

// Next returns the tag after one toggle: none -> fire -> hold -> none.
func (p Priority) Next() Priority {
	switch p {
	case PriorityNone:
		return PriorityFire
	case PriorityFire:
		return PriorityHold
	default:
		return PriorityNone
	}
}

func (p Priority) rank() int {
	switch p {
	case PriorityFire:
		return 0
	case PriorityHold:
		return 2
	default:
		return 1
	}
}

// KitchenQueue returns the submitted lines the kitchen still has to work on
// (pending, preparing or ready), fired lines first and held lines last.
// Lines with the same tag keep their input order.
func KitchenQueue(lines []OrderLine) []OrderLine {
	var out []OrderLine
	for _, l := range lines {
		if !l.Submitted || l.Status.Terminal() {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.rank() < out[j].Priority.rank()
	})
	return out
}
