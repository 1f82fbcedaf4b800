package layout

import (
	"math"

	"gsn/diagram"
	"gsn/geometry"
)

// Engine computes sizes and positions for argument diagram snapshots.
// It holds only configuration and is safe for concurrent use.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the default layout profile.
func NewEngine() *Engine {
	return &Engine{cfg: DefaultConfig()}
}

// NewEngineWithConfig creates an engine with a custom layout profile.
func NewEngineWithConfig(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// AutoLayout is a convenience wrapper over the default engine.
func AutoLayout(elements []diagram.Element, relations []diagram.Relation, lookup diagram.ModuleLookup) []diagram.Element {
	return NewEngine().AutoLayout(elements, relations, lookup)
}

// AutoLayout returns a fresh element slice with newly computed sizes and
// positions; all other fields pass through untouched. The input is never
// mutated and the call never fails: degenerate graphs fall back to
// defined behaviour instead of erroring.
func (e *Engine) AutoLayout(elements []diagram.Element, relations []diagram.Relation, lookup diagram.ModuleLookup) []diagram.Element {
	result := make([]diagram.Element, len(elements))
	copy(result, elements)
	if len(result) == 0 {
		return result
	}

	f := buildForest(result, relations)
	if len(f.roots) == 0 {
		// Nothing but satellites; no anchor to lay out from.
		return result
	}

	for i := range result {
		w, h := e.sizeFor(result[i].Kind, e.measuredContent(result[i], lookup))
		result[i].Width = w
		result[i].Height = h
	}

	for t := range f.roots {
		e.firstWalk(f, f.roots[t], result)
		e.secondWalk(f, f.treeArenas[t], result)
		e.placeSatellites(f, f.treeArenas[t], result)
	}

	e.resolveOverlaps(f, result)
	e.packTrees(f, result)
	return result
}

// leftReserve is the horizontal room a node needs beyond its left edge
// for its left-hand satellite stack.
func (e *Engine) leftReserve(f *forest, arena int, elems []diagram.Element) float64 {
	return e.satReserve(f.arena[arena].satLeft, elems)
}

// rightReserve mirrors leftReserve for the right-hand stack.
func (e *Engine) rightReserve(f *forest, arena int, elems []diagram.Element) float64 {
	return e.satReserve(f.arena[arena].satRight, elems)
}

func (e *Engine) satReserve(sats []int, elems []diagram.Element) float64 {
	if len(sats) == 0 {
		return 0
	}
	w := 0.0
	for _, s := range sats {
		w = geometry.Max(w, elems[s].Width)
	}
	return e.cfg.SatGap + w
}

// firstWalk runs the post-order pass: every node gets a centre x in its
// sibling frame and a modifier that later shifts its whole subtree. An
// explicit frame stack stands in for recursion. Sibling separation uses
// half-widths plus satellite reserves plus the minimum gap, extended to
// full subtree extents so neighbouring subtrees never interleave.
func (e *Engine) firstWalk(f *forest, rootArena int, elems []diagram.Element) {
	type frame struct {
		arena int
		next  int
	}
	stack := []frame{{arena: rootArena}}
	for len(stack) > 0 {
		fr := &stack[len(stack)-1]
		n := &f.arena[fr.arena]
		if fr.next < len(n.children) {
			child := n.children[fr.next]
			fr.next++
			stack = append(stack, frame{arena: child})
			continue
		}
		stack = stack[:len(stack)-1]
		e.placeInSiblingFrame(f, fr.arena, elems)
	}
}

func (e *Engine) placeInSiblingFrame(f *forest, arena int, elems []diagram.Element) {
	n := &f.arena[arena]
	el := elems[n.elem]
	halfL := el.Width/2 + e.leftReserve(f, arena, elems)
	halfR := el.Width/2 + e.rightReserve(f, arena, elems)

	if len(n.children) == 0 {
		if ls := f.leftSibling(arena); ls >= 0 {
			n.x = f.arena[ls].extMax + e.cfg.MinGap + halfL
		} else {
			n.x = 0
		}
		n.extMin = n.x - halfL
		n.extMax = n.x + halfR
		return
	}

	first := f.arena[n.children[0]]
	last := f.arena[n.children[len(n.children)-1]]
	mid := (first.x + last.x) / 2

	kidsMin := math.Inf(1)
	kidsMax := math.Inf(-1)
	for _, c := range n.children {
		kidsMin = geometry.Min(kidsMin, f.arena[c].extMin)
		kidsMax = geometry.Max(kidsMax, f.arena[c].extMax)
	}

	// Subtree extent relative to this node's centre.
	offMin := geometry.Min(-halfL, kidsMin-mid)
	offMax := geometry.Max(halfR, kidsMax-mid)

	if ls := f.leftSibling(arena); ls >= 0 {
		// Sibling spacing forced the node off its children's centre;
		// the modifier carries the difference down the subtree.
		n.x = f.arena[ls].extMax + e.cfg.MinGap - offMin
		n.mod = n.x - mid
	} else {
		n.x = mid
	}
	n.extMin = n.x + offMin
	n.extMax = n.x + offMax
}

// secondWalk runs the pre-order pass: accumulated modifiers turn sibling
// frame x into final centres, and every depth level shares one row whose
// top is the running sum of the previous levels' maximum heights plus the
// level gap.
func (e *Engine) secondWalk(f *forest, treeArenas []int, elems []diagram.Element) {
	rowHeight := []float64{}
	for _, a := range treeArenas {
		n := f.arena[a]
		for len(rowHeight) <= n.depth {
			rowHeight = append(rowHeight, 0)
		}
		rowHeight[n.depth] = geometry.Max(rowHeight[n.depth], elems[n.elem].Height)
	}
	rowTop := make([]float64, len(rowHeight))
	for d := 1; d < len(rowHeight); d++ {
		rowTop[d] = rowTop[d-1] + rowHeight[d-1] + e.cfg.LevelGap
	}

	root := treeArenas[0]
	type item struct {
		arena  int
		modSum float64
	}
	stack := []item{{arena: root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := f.arena[it.arena]
		center := n.x + it.modSum
		elems[n.elem].X = center - elems[n.elem].Width/2
		elems[n.elem].Y = rowTop[n.depth]
		for _, c := range n.children {
			stack = append(stack, item{arena: c, modSum: it.modSum + n.mod})
		}
	}
}

// placeSatellites stacks each node's satellites vertically along its
// right and left edges, centred on the node, clamped so a stack cannot
// cross into a sibling subtree's reserved space.
func (e *Engine) placeSatellites(f *forest, treeArenas []int, elems []diagram.Element) {
	for _, a := range treeArenas {
		n := f.arena[a]
		host := elems[n.elem]

		if len(n.satRight) > 0 {
			limit := math.Inf(1)
			if rs := f.rightSibling(a); rs >= 0 {
				sib := elems[f.arena[rs].elem]
				limit = sib.X - e.leftReserve(f, rs, elems)
			}
			x := host.X + host.Width + e.cfg.SatGap
			y := host.CenterY() - e.stackHeight(n.satRight, elems)/2
			for _, s := range n.satRight {
				sx := x
				if sx+elems[s].Width > limit {
					sx = limit - elems[s].Width
				}
				elems[s].X = sx
				elems[s].Y = y
				y += elems[s].Height + e.cfg.SatSpacing
			}
		}

		if len(n.satLeft) > 0 {
			limit := math.Inf(-1)
			if ls := f.leftSibling(a); ls >= 0 {
				sib := elems[f.arena[ls].elem]
				limit = sib.X + sib.Width + e.rightReserve(f, ls, elems)
			}
			y := host.CenterY() - e.stackHeight(n.satLeft, elems)/2
			for _, s := range n.satLeft {
				sx := host.X - e.cfg.SatGap - elems[s].Width
				if sx < limit {
					sx = limit
				}
				elems[s].X = sx
				elems[s].Y = y
				y += elems[s].Height + e.cfg.SatSpacing
			}
		}
	}
}

func (e *Engine) stackHeight(sats []int, elems []diagram.Element) float64 {
	h := 0.0
	for i, s := range sats {
		if i > 0 {
			h += e.cfg.SatSpacing
		}
		h += elems[s].Height
	}
	return h
}
