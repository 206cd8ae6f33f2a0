package diagram

import (
	"unicode/utf8"

	"github.com/matzehuels/flowtower/pkg/style"
)

// Size returns the box dimensions for a node. It is a pure function of the
// node type, label length (in characters) and description presence.
func Size(n GraphNode) (width, height float64) {
	length := float64(utf8.RuneCountInString(n.Label))

	switch n.Type {
	case style.NodeActivity:
		return clamp(length*7, 140, 200), 60
	case style.NodeTimer:
		return 100, 100
	case style.NodeState:
		return clamp(length*7, 120, 180), 60
	default:
		height = 70
		if n.HasDescription() {
			height = 90
		}
		return clamp(length*8, 160, 240), height
	}
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(v, hi))
}
