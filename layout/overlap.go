package layout

import (
	"gsn/diagram"
	"gsn/geometry"
)

// resolveOverlaps pushes intersecting placed elements apart. Each pass
// checks every pair's margin-padded bounding boxes and splits the
// correction evenly along the axis with the smaller penetration. The
// iteration cap bounds the work regardless of input; a clean pass exits
// early.
func (e *Engine) resolveOverlaps(f *forest, elems []diagram.Element) {
	var placed []int
	for i, p := range f.placed {
		if p {
			placed = append(placed, i)
		}
	}

	m := e.cfg.OverlapMargin
	for iter := 0; iter < e.cfg.OverlapIterations; iter++ {
		moved := false
		for i := 0; i < len(placed); i++ {
			for j := i + 1; j < len(placed); j++ {
				a := &elems[placed[i]]
				b := &elems[placed[j]]
				px := geometry.Overlap1D(a.X, a.X+a.Width, b.X, b.X+b.Width) + m
				py := geometry.Overlap1D(a.Y, a.Y+a.Height, b.Y, b.Y+b.Height) + m
				if px <= 0 || py <= 0 {
					continue
				}
				if px < py {
					if a.CenterX() <= b.CenterX() {
						a.X -= px / 2
						b.X += px / 2
					} else {
						a.X += px / 2
						b.X -= px / 2
					}
				} else {
					if a.CenterY() <= b.CenterY() {
						a.Y -= py / 2
						b.Y += py / 2
					} else {
						a.Y += py / 2
						b.Y -= py / 2
					}
				}
				moved = true
			}
		}
		if !moved {
			break
		}
	}
}

// packTrees lays independent trees left to right: each tree's bounding
// box is shifted so its minimum x lands on a running cursor, which then
// advances by the tree's width plus the tree gap. Elements no tree
// claimed keep whatever position they came in with.
func (e *Engine) packTrees(f *forest, elems []diagram.Element) {
	cursor := 0.0
	for _, members := range f.trees {
		if len(members) == 0 {
			continue
		}
		b := diagram.BoundsOf(elems[members[0]])
		for _, i := range members[1:] {
			b = b.Union(diagram.BoundsOf(elems[i]))
		}
		dx := cursor - b.MinX
		for _, i := range members {
			elems[i].X += dx
		}
		cursor += b.Width() + e.cfg.TreeGap
	}
}
