// Package diagram contains the fundamental types shared by the GSN
// validation and layout engines.
package diagram

// Kind identifies the GSN element type.
type Kind string

const (
	KindGoal          Kind = "goal"
	KindStrategy      Kind = "strategy"
	KindContext       Kind = "context"
	KindEvidence      Kind = "evidence"
	KindAssumption    Kind = "assumption"
	KindJustification Kind = "justification"
	KindUndeveloped   Kind = "undeveloped"
	KindModule        Kind = "module"
)

// IsSatellite reports whether elements of this kind attach beside their
// supporting element rather than as vertical tree children.
func (k Kind) IsSatellite() bool {
	switch k {
	case KindContext, KindAssumption, KindJustification:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether this kind may terminate a line of argument.
func (k Kind) IsTerminal() bool {
	switch k {
	case KindEvidence, KindUndeveloped, KindModule:
		return true
	default:
		return false
	}
}

// RelationKind identifies how two elements are connected.
type RelationKind string

const (
	// SupportedBy is the hierarchical (solid) relation.
	SupportedBy RelationKind = "supported-by"
	// InContextOf is the satellite (dashed) relation.
	InContextOf RelationKind = "in-context-of"
)

// Element is a typed node in the argument graph.
type Element struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Content string `json:"content"`
	Label   string `json:"label,omitempty"`
	// ModuleRef names the nested diagram backing a module element.
	ModuleRef string `json:"moduleRef,omitempty"`

	// Geometry. Set by the layout engine; pixels, top-left origin.
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CenterX returns the horizontal centre of the element.
func (e Element) CenterX() float64 {
	return e.X + e.Width/2
}

// CenterY returns the vertical centre of the element.
func (e Element) CenterY() float64 {
	return e.Y + e.Height/2
}

// Relation is a directed edge between two elements.
type Relation struct {
	ID     string       `json:"id"`
	Source string       `json:"source"`
	Target string       `json:"target"`
	Kind   RelationKind `json:"kind"`
}

// Diagram is a snapshot of one argument diagram. The editor owns the
// authoritative copy; the validation and layout engines only ever read a
// snapshot and return fresh derived values.
type Diagram struct {
	Elements  []Element  `json:"elements"`
	Relations []Relation `json:"relations"`
}

// ModuleLookup resolves a module element's reference to the nested
// diagram's own snapshot. It is passed explicitly where needed, never held
// as ambient state.
type ModuleLookup func(ref string) (*Diagram, bool)

// RootGoal returns the diagram's top-level goal: the first goal element
// with no incoming supported-by relation. ok is false when none exists.
func (d *Diagram) RootGoal() (Element, bool) {
	supported := make(map[string]bool)
	for _, r := range d.Relations {
		if r.Kind == SupportedBy {
			supported[r.Target] = true
		}
	}
	for _, e := range d.Elements {
		if e.Kind == KindGoal && !supported[e.ID] {
			return e, true
		}
	}
	return Element{}, false
}

// Clone creates a deep copy of the diagram.
func (d *Diagram) Clone() *Diagram {
	if d == nil {
		return nil
	}
	clone := &Diagram{
		Elements:  make([]Element, len(d.Elements)),
		Relations: make([]Relation, len(d.Relations)),
	}
	copy(clone.Elements, d.Elements)
	copy(clone.Relations, d.Relations)
	return clone
}

// Bounds represents a rectangular area.
type Bounds struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// Width returns the width of the bounds.
func (b Bounds) Width() float64 {
	return b.MaxX - b.MinX
}

// Height returns the height of the bounds.
func (b Bounds) Height() float64 {
	return b.MaxY - b.MinY
}

// Union extends the bounds to include another bounds.
func (b Bounds) Union(o Bounds) Bounds {
	if o.MinX < b.MinX {
		b.MinX = o.MinX
	}
	if o.MinY < b.MinY {
		b.MinY = o.MinY
	}
	if o.MaxX > b.MaxX {
		b.MaxX = o.MaxX
	}
	if o.MaxY > b.MaxY {
		b.MaxY = o.MaxY
	}
	return b
}

// BoundsOf returns the bounding box of an element's placed geometry.
func BoundsOf(e Element) Bounds {
	return Bounds{MinX: e.X, MinY: e.Y, MaxX: e.X + e.Width, MaxY: e.Y + e.Height}
}
