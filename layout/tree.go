package layout

import "gsn/diagram"

// treeNode is one arena record. All cross-references are integer indices:
// parent and children index the arena, elem and the satellite lists index
// the working element slice. No pointers, no ownership cycles.
type treeNode struct {
	elem     int
	parent   int // arena index, -1 for roots
	sibIndex int // position within parent's children
	children []int
	satLeft  []int // satellite element indices, stacked along the left edge
	satRight []int // satellite element indices, stacked along the right edge
	depth    int

	// First-pass state. x is the node's centre in its sibling frame, mod
	// shifts the whole subtree during the second pass, extMin/extMax are
	// the subtree's horizontal extent in the same frame.
	x      float64
	mod    float64
	extMin float64
	extMax float64
}

// forest is the arena of every tree built from one snapshot.
type forest struct {
	arena      []treeNode
	roots      []int   // arena indices, in element order
	trees      [][]int // per root: element indices owned by that tree
	treeArenas [][]int // per root: arena indices, in discovery order
	// placed marks elements positioned by some tree, either as a tree
	// node or as a satellite. Unplaced elements keep their prior
	// position.
	placed []bool
}

// buildForest constructs one tree per qualifying root by depth-first
// traversal of supported-by relations. in-context-of targets, and
// satellite-kind targets regardless of relation kind, become satellite
// lists instead of tree children. A revisit inside a tree (cycle or
// shared descendant) terminates that branch; reporting cycles is the
// validator's job.
func buildForest(elements []diagram.Element, relations []diagram.Relation) *forest {
	n := len(elements)
	byID := make(map[string]int, n)
	for i, e := range elements {
		byID[e.ID] = i
	}

	treeKids := make([][]int, n)
	sats := make([][]int, n)
	supportIn := make([]int, n)
	for _, r := range relations {
		src, srcOK := byID[r.Source]
		tgt, tgtOK := byID[r.Target]
		if !srcOK || !tgtOK || src == tgt {
			continue
		}
		switch {
		case r.Kind == diagram.InContextOf || elements[tgt].Kind.IsSatellite():
			sats[src] = append(sats[src], tgt)
		case r.Kind == diagram.SupportedBy:
			treeKids[src] = append(treeKids[src], tgt)
			supportIn[tgt]++
		}
	}

	f := &forest{placed: make([]bool, n)}

	var roots []int
	for i, e := range elements {
		if !e.Kind.IsSatellite() && supportIn[i] == 0 {
			roots = append(roots, i)
		}
	}
	if len(roots) == 0 {
		// Entirely cyclic graph: pick an arbitrary non-satellite
		// element as a synthetic root so layout can still proceed.
		for i, e := range elements {
			if !e.Kind.IsSatellite() {
				roots = append(roots, i)
				break
			}
		}
	}
	if len(roots) == 0 {
		return f // all-satellite graph
	}

	for _, rootElem := range roots {
		f.buildTree(rootElem, treeKids, sats)
	}
	return f
}

// buildTree grows one tree from rootElem using an explicit frame stack so
// depth is never bounded by the call stack.
func (f *forest) buildTree(rootElem int, treeKids, sats [][]int) {
	visited := make(map[int]bool) // element indices, per tree
	visited[rootElem] = true

	rootArena := f.addNode(rootElem, -1, 0, 0, sats)
	f.roots = append(f.roots, rootArena)
	arenas := []int{rootArena}
	members := f.claim(nil, rootArena)

	type frame struct {
		arena int
		next  int
	}
	stack := []frame{{arena: rootArena}}
	for len(stack) > 0 {
		fr := &stack[len(stack)-1]
		node := &f.arena[fr.arena]
		kids := treeKids[node.elem]
		if fr.next >= len(kids) {
			stack = stack[:len(stack)-1]
			continue
		}
		kid := kids[fr.next]
		fr.next++
		if visited[kid] {
			continue
		}
		visited[kid] = true
		child := f.addNode(kid, fr.arena, len(f.arena[fr.arena].children), f.arena[fr.arena].depth+1, sats)
		f.arena[fr.arena].children = append(f.arena[fr.arena].children, child)
		arenas = append(arenas, child)
		members = f.claim(members, child)
		stack = append(stack, frame{arena: child})
	}

	f.trees = append(f.trees, members)
	f.treeArenas = append(f.treeArenas, arenas)
}

// addNode appends an arena record, splitting the element's satellites
// roughly in half between its right and left edges.
func (f *forest) addNode(elem, parent, sibIndex, depth int, sats [][]int) int {
	n := treeNode{
		elem:     elem,
		parent:   parent,
		sibIndex: sibIndex,
		depth:    depth,
	}
	all := sats[elem]
	half := (len(all) + 1) / 2
	for _, s := range all[:half] {
		if !f.placed[s] {
			n.satRight = append(n.satRight, s)
		}
	}
	for _, s := range all[half:] {
		if !f.placed[s] {
			n.satLeft = append(n.satLeft, s)
		}
	}
	f.arena = append(f.arena, n)
	return len(f.arena) - 1
}

// claim records the arena node's element and satellites as owned by the
// current tree. An element already claimed by an earlier tree stays with
// that tree.
func (f *forest) claim(members []int, arena int) []int {
	n := &f.arena[arena]
	if !f.placed[n.elem] {
		f.placed[n.elem] = true
		members = append(members, n.elem)
	}
	for _, s := range n.satRight {
		f.placed[s] = true
		members = append(members, s)
	}
	for _, s := range n.satLeft {
		f.placed[s] = true
		members = append(members, s)
	}
	return members
}

// leftSibling returns the arena index of the node's left sibling, or -1.
func (f *forest) leftSibling(arena int) int {
	n := f.arena[arena]
	if n.parent < 0 || n.sibIndex == 0 {
		return -1
	}
	return f.arena[n.parent].children[n.sibIndex-1]
}

// rightSibling returns the arena index of the node's right sibling, or -1.
func (f *forest) rightSibling(arena int) int {
	n := f.arena[arena]
	if n.parent < 0 {
		return -1
	}
	kids := f.arena[n.parent].children
	if n.sibIndex+1 >= len(kids) {
		return -1
	}
	return kids[n.sibIndex+1]
}
