// Package validation derives structural diagnostics from an argument
// diagram snapshot. All diagram problems surface as diagnostics; the
// validator itself never fails.
package validation

import (
	"fmt"
	"strings"

	"gsn/diagram"
)

// Severity distinguishes blocking errors from advisory warnings.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Code is the fixed diagnostic vocabulary.
type Code string

const (
	CodeNoRootGoal          Code = "NO_ROOT_GOAL"
	CodeMultipleRootGoals   Code = "MULTIPLE_ROOT_GOALS"
	CodeCyclicReference     Code = "CYCLIC_REFERENCE"
	CodeOrphanNodes         Code = "ORPHAN_NODES"
	CodeUndevelopedGoals    Code = "UNDEVELOPED_GOALS"
	CodeNoEvidencePath      Code = "NO_EVIDENCE_PATH"
	CodeSingleChildStrategy Code = "SINGLE_CHILD_STRATEGY"
)

// Diagnostic is a single structural finding with the elements it implicates.
type Diagnostic struct {
	Severity   Severity `json:"kind"`
	Code       Code     `json:"code"`
	Message    string   `json:"message"`
	ElementIDs []string `json:"elementIds,omitempty"`
}

// String formats a diagnostic for humans.
func (d Diagnostic) String() string {
	if len(d.ElementIDs) == 0 {
		return fmt.Sprintf("%s %s: %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s %s: %s [%s]", d.Severity, d.Code, d.Message,
		strings.Join(d.ElementIDs, ", "))
}

// Result is the outcome of one validation pass. IsValid is true exactly
// when Errors is empty; warnings never affect it.
type Result struct {
	IsValid  bool         `json:"isValid"`
	Errors   []Diagnostic `json:"errors"`
	Warnings []Diagnostic `json:"warnings"`
}

// Validator runs the structural checks over a diagram snapshot. It holds
// no state between calls and is safe for concurrent use.
type Validator struct{}

// NewValidator creates a structural validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate runs every check against the snapshot and returns the combined
// diagnostics. Relations pointing at unknown element IDs are skipped, not
// rejected.
func (v *Validator) Validate(elements []diagram.Element, relations []diagram.Relation) Result {
	ix := buildIndex(elements, relations)

	var errors, warnings []Diagnostic
	add := func(d Diagnostic, ok bool) {
		if !ok {
			return
		}
		if d.Severity == SeverityError {
			errors = append(errors, d)
		} else {
			warnings = append(warnings, d)
		}
	}

	rootErr, rootWarn := v.checkRoots(ix)
	add(rootErr.d, rootErr.ok)
	add(rootWarn.d, rootWarn.ok)

	for _, cycle := range v.findCycles(ix) {
		add(Diagnostic{
			Severity:   SeverityError,
			Code:       CodeCyclicReference,
			Message:    "support relations form a cycle",
			ElementIDs: cycle,
		}, true)
	}

	add(v.checkOrphans(ix))
	add(v.checkUndeveloped(ix))
	add(v.checkEvidencePaths(ix))
	add(v.checkStrategyFanOut(ix))

	return Result{
		IsValid:  len(errors) == 0,
		Errors:   errors,
		Warnings: warnings,
	}
}

// graphIndex is the per-call adjacency view. All slices are indexed by
// element position; relation endpoints that do not resolve are dropped.
type graphIndex struct {
	elements []diagram.Element
	byID     map[string]int
	// supportKids holds supported-by targets in relation order.
	supportKids [][]int
	// supportIn counts incoming supported-by edges.
	supportIn []int
	// touched counts relations naming the element on either end,
	// including relations whose other end dangles.
	touched []int
	// undevMarked is true when any outgoing relation reaches an
	// undeveloped element.
	undevMarked []bool
}

func buildIndex(elements []diagram.Element, relations []diagram.Relation) *graphIndex {
	ix := &graphIndex{
		elements:    elements,
		byID:        make(map[string]int, len(elements)),
		supportKids: make([][]int, len(elements)),
		supportIn:   make([]int, len(elements)),
		touched:     make([]int, len(elements)),
		undevMarked: make([]bool, len(elements)),
	}
	for i, e := range elements {
		ix.byID[e.ID] = i
	}
	for _, r := range relations {
		src, srcOK := ix.byID[r.Source]
		tgt, tgtOK := ix.byID[r.Target]
		if srcOK {
			ix.touched[src]++
		}
		if tgtOK {
			ix.touched[tgt]++
		}
		if !srcOK || !tgtOK {
			continue // dangling relation, tolerated
		}
		if elements[tgt].Kind == diagram.KindUndeveloped {
			ix.undevMarked[src] = true
		}
		if r.Kind == diagram.SupportedBy {
			ix.supportKids[src] = append(ix.supportKids[src], tgt)
			ix.supportIn[tgt]++
		}
	}
	return ix
}

// nonSatelliteKids returns the supported-by children that join the tree
// proper; satellite kinds hang beside their parent and are skipped.
func (ix *graphIndex) nonSatelliteKids(i int) []int {
	var kids []int
	for _, c := range ix.supportKids[i] {
		if !ix.elements[c].Kind.IsSatellite() {
			kids = append(kids, c)
		}
	}
	return kids
}

type maybeDiagnostic struct {
	d  Diagnostic
	ok bool
}

// checkRoots verifies exactly one goal sits at the top of the argument.
func (v *Validator) checkRoots(ix *graphIndex) (maybeDiagnostic, maybeDiagnostic) {
	var roots []string
	for i, e := range ix.elements {
		if e.Kind == diagram.KindGoal && ix.supportIn[i] == 0 {
			roots = append(roots, e.ID)
		}
	}
	switch {
	case len(roots) == 0:
		return maybeDiagnostic{Diagnostic{
			Severity: SeverityError,
			Code:     CodeNoRootGoal,
			Message:  "diagram has no top-level goal",
		}, true}, maybeDiagnostic{}
	case len(roots) > 1:
		return maybeDiagnostic{}, maybeDiagnostic{Diagnostic{
			Severity:   SeverityWarning,
			Code:       CodeMultipleRootGoals,
			Message:    fmt.Sprintf("diagram has %d top-level goals", len(roots)),
			ElementIDs: roots,
		}, true}
	}
	return maybeDiagnostic{}, maybeDiagnostic{}
}

// findCycles walks the supported-by graph depth-first with an explicit
// frame stack and reports the nodes on each back-edge's cycle. The stack
// keeps cyclic input from exhausting the call stack.
func (v *Validator) findCycles(ix *graphIndex) [][]string {
	const (
		unvisited = 0
		onStack   = 1
		done      = 2
	)
	state := make([]int, len(ix.elements))

	type frame struct {
		node int
		next int // index of the next child to explore
	}

	var cycles [][]string
	for start := range ix.elements {
		if state[start] != unvisited {
			continue
		}
		stack := []frame{{node: start}}
		state[start] = onStack
		for len(stack) > 0 {
			f := &stack[len(stack)-1]
			if f.next >= len(ix.supportKids[f.node]) {
				state[f.node] = done
				stack = stack[:len(stack)-1]
				continue
			}
			child := ix.supportKids[f.node][f.next]
			f.next++
			switch state[child] {
			case unvisited:
				state[child] = onStack
				stack = append(stack, frame{node: child})
			case onStack:
				// Back-edge: everything on the stack from the child
				// up to the current node lies on the cycle.
				var cycle []string
				collecting := false
				for _, fr := range stack {
					if fr.node == child {
						collecting = true
					}
					if collecting {
						cycle = append(cycle, ix.elements[fr.node].ID)
					}
				}
				cycles = append(cycles, cycle)
			}
		}
	}
	return cycles
}

// checkOrphans flags elements no relation touches. A single-element
// diagram is left alone.
func (v *Validator) checkOrphans(ix *graphIndex) (Diagnostic, bool) {
	if len(ix.elements) <= 1 {
		return Diagnostic{}, false
	}
	var orphans []string
	for i, e := range ix.elements {
		if ix.touched[i] == 0 {
			orphans = append(orphans, e.ID)
		}
	}
	if len(orphans) == 0 {
		return Diagnostic{}, false
	}
	return Diagnostic{
		Severity:   SeverityWarning,
		Code:       CodeOrphanNodes,
		Message:    fmt.Sprintf("%d element(s) are not connected to anything", len(orphans)),
		ElementIDs: orphans,
	}, true
}

// checkUndeveloped flags goals and strategies that neither decompose into
// a child nor carry an explicit undeveloped marker.
func (v *Validator) checkUndeveloped(ix *graphIndex) (Diagnostic, bool) {
	var ids []string
	for i, e := range ix.elements {
		if e.Kind != diagram.KindGoal && e.Kind != diagram.KindStrategy {
			continue
		}
		if len(ix.nonSatelliteKids(i)) == 0 && !ix.undevMarked[i] {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return Diagnostic{}, false
	}
	return Diagnostic{
		Severity:   SeverityWarning,
		Code:       CodeUndevelopedGoals,
		Message:    fmt.Sprintf("%d element(s) are neither developed nor marked undeveloped", len(ids)),
		ElementIDs: ids,
	}, true
}

// checkEvidencePaths verifies every goal can follow supported-by edges to
// at least one terminal element (evidence, undeveloped or module).
func (v *Validator) checkEvidencePaths(ix *graphIndex) (Diagnostic, bool) {
	var ids []string
	for i, e := range ix.elements {
		if e.Kind != diagram.KindGoal {
			continue
		}
		visited := map[int]bool{i: true}
		if !ix.reachesTerminal(i, visited) {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return Diagnostic{}, false
	}
	return Diagnostic{
		Severity:   SeverityWarning,
		Code:       CodeNoEvidencePath,
		Message:    fmt.Sprintf("%d goal(s) are not backed by evidence", len(ids)),
		ElementIDs: ids,
	}, true
}

// reachesTerminal reports whether some supported-by path from i ends in a
// terminal kind. Satellite children are transparently satisfied and
// skipped. Each child branch gets its own visited set; the set only
// guards against cycles, results are deliberately not memoized so the
// observable semantics stay branch-local.
func (ix *graphIndex) reachesTerminal(i int, visited map[int]bool) bool {
	if ix.elements[i].Kind.IsTerminal() {
		return true
	}
	for _, c := range ix.supportKids[i] {
		if ix.elements[c].Kind.IsSatellite() {
			continue
		}
		if visited[c] {
			continue
		}
		branch := make(map[int]bool, len(visited)+1)
		for k := range visited {
			branch[k] = true
		}
		branch[c] = true
		if ix.reachesTerminal(c, branch) {
			return true
		}
	}
	return false
}

// checkStrategyFanOut flags strategies that decompose into a single
// sub-goal; a strategy is expected to split an argument.
func (v *Validator) checkStrategyFanOut(ix *graphIndex) (Diagnostic, bool) {
	var ids []string
	for i, e := range ix.elements {
		if e.Kind == diagram.KindStrategy && len(ix.nonSatelliteKids(i)) == 1 {
			ids = append(ids, e.ID)
		}
	}
	if len(ids) == 0 {
		return Diagnostic{}, false
	}
	return Diagnostic{
		Severity:   SeverityWarning,
		Code:       CodeSingleChildStrategy,
		Message:    fmt.Sprintf("%d strategy element(s) decompose into a single child", len(ids)),
		ElementIDs: ids,
	}, true
}
