package layout

import (
	"fmt"
	"math/rand"
	"testing"

	"gsn/diagram"
)

// TestValidator provides geometric validation for layout tests.
type TestValidator struct {
	t *testing.T
}

// NewTestValidator creates a validator for the given test.
func NewTestValidator(t *testing.T) *TestValidator {
	return &TestValidator{t: t}
}

// ValidateNoOverlaps ensures no two placed non-satellite elements
// intersect once their boxes are padded by margin.
func (v *TestValidator) ValidateNoOverlaps(elems []diagram.Element, margin float64) {
	v.t.Helper()
	for i := 0; i < len(elems); i++ {
		if elems[i].Kind.IsSatellite() {
			continue
		}
		for j := i + 1; j < len(elems); j++ {
			if elems[j].Kind.IsSatellite() {
				continue
			}
			if boxesIntersect(elems[i], elems[j], margin) {
				v.t.Errorf("elements %s and %s overlap: %v and %v",
					elems[i].ID, elems[j].ID, diagram.BoundsOf(elems[i]), diagram.BoundsOf(elems[j]))
			}
		}
	}
}

// ValidateSizes ensures every element has positive dimensions.
func (v *TestValidator) ValidateSizes(elems []diagram.Element) {
	v.t.Helper()
	for _, el := range elems {
		if el.Width <= 0 {
			v.t.Errorf("element %s has invalid width %f", el.ID, el.Width)
		}
		if el.Height <= 0 {
			v.t.Errorf("element %s has invalid height %f", el.ID, el.Height)
		}
	}
}

// ValidateSameRun ensures two layouts of the same snapshot agree on every
// element's geometry.
func (v *TestValidator) ValidateSameRun(a, b []diagram.Element) {
	v.t.Helper()
	if len(a) != len(b) {
		v.t.Fatalf("layout runs disagree on element count: %d vs %d", len(a), len(b))
	}
	byID := make(map[string]diagram.Element, len(a))
	for _, el := range a {
		byID[el.ID] = el
	}
	for _, el := range b {
		prev, ok := byID[el.ID]
		if !ok {
			v.t.Errorf("element %s missing from first run", el.ID)
			continue
		}
		if prev.X != el.X || prev.Y != el.Y || prev.Width != el.Width || prev.Height != el.Height {
			v.t.Errorf("element %s geometry differs between runs: %+v vs %+v", el.ID, prev, el)
		}
	}
}

func boxesIntersect(a, b diagram.Element, margin float64) bool {
	return a.X-margin < b.X+b.Width && b.X-margin < a.X+a.Width &&
		a.Y-margin < b.Y+b.Height && b.Y-margin < a.Y+a.Height
}

// Snapshot generators.

// GenerateChain creates goal -> strategy -> goal -> ... -> evidence.
func GenerateChain(length int) ([]diagram.Element, []diagram.Relation) {
	var elements []diagram.Element
	var relations []diagram.Relation
	for i := 0; i < length; i++ {
		kind := diagram.KindGoal
		switch {
		case i == length-1:
			kind = diagram.KindEvidence
		case i%2 == 1:
			kind = diagram.KindStrategy
		}
		elements = append(elements, diagram.Element{
			ID:      fmt.Sprintf("n%d", i),
			Kind:    kind,
			Content: fmt.Sprintf("Step %d of the argument", i),
		})
		if i > 0 {
			relations = append(relations, diagram.Relation{
				ID:     fmt.Sprintf("r%d", i),
				Source: fmt.Sprintf("n%d", i-1),
				Target: fmt.Sprintf("n%d", i),
				Kind:   diagram.SupportedBy,
			})
		}
	}
	return elements, relations
}

// GenerateRandomTree grows a random argument tree from the given source:
// goals and strategies decompose with a random branching factor, leaves
// finish as evidence, and some nodes pick up context satellites. Growth
// stops past 400 elements to keep property runs bounded.
func GenerateRandomTree(rng *rand.Rand, maxDepth, maxBranch int) ([]diagram.Element, []diagram.Relation) {
	var elements []diagram.Element
	var relations []diagram.Relation
	next := 0

	mint := func(kind diagram.Kind, content string) string {
		id := fmt.Sprintf("n%d", next)
		next++
		elements = append(elements, diagram.Element{ID: id, Kind: kind, Content: content})
		return id
	}
	link := func(src, tgt string, kind diagram.RelationKind) {
		relations = append(relations, diagram.Relation{
			ID:     fmt.Sprintf("r%d", len(relations)),
			Source: src,
			Target: tgt,
			Kind:   kind,
		})
	}

	var grow func(parent string, depth int)
	grow = func(parent string, depth int) {
		if rng.Intn(3) == 0 {
			ctx := mint(diagram.KindContext, fmt.Sprintf("Ctx %d", next))
			link(parent, ctx, diagram.InContextOf)
		}
		if depth >= maxDepth || next > 400 {
			leaf := mint(diagram.KindEvidence, fmt.Sprintf("Evidence item %d", next))
			link(parent, leaf, diagram.SupportedBy)
			return
		}
		branch := 1 + rng.Intn(maxBranch)
		for i := 0; i < branch; i++ {
			var id string
			switch rng.Intn(4) {
			case 0:
				id = mint(diagram.KindEvidence, fmt.Sprintf("Evidence item %d", next))
				link(parent, id, diagram.SupportedBy)
				continue
			case 1:
				id = mint(diagram.KindStrategy, fmt.Sprintf("Argument split %d over the identified concerns", next))
			default:
				id = mint(diagram.KindGoal, fmt.Sprintf("Sub-claim %d holds under all analysed conditions", next))
			}
			link(parent, id, diagram.SupportedBy)
			grow(id, depth+1)
		}
	}

	root := mint(diagram.KindGoal, "The system satisfies its top-level safety claim")
	grow(root, 1)
	return elements, relations
}

// GenerateForest lays several independent random trees side by side.
func GenerateForest(rng *rand.Rand, trees, maxDepth, maxBranch int) ([]diagram.Element, []diagram.Relation) {
	var elements []diagram.Element
	var relations []diagram.Relation
	for t := 0; t < trees; t++ {
		els, rels := GenerateRandomTree(rng, maxDepth, maxBranch)
		prefix := fmt.Sprintf("t%d-", t)
		for _, el := range els {
			el.ID = prefix + el.ID
			elements = append(elements, el)
		}
		for _, r := range rels {
			r.ID = prefix + r.ID
			r.Source = prefix + r.Source
			r.Target = prefix + r.Target
			relations = append(relations, r)
		}
	}
	return elements, relations
}
