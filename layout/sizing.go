package layout

import (
	"math"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"

	"gsn/diagram"
	"gsn/geometry"
)

// goldenRatio is the target width:height aspect for element boxes.
const goldenRatio = 1.618

var (
	breakPattern = regexp.MustCompile(`(?i)<br\s*/?>`)
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	emphasis     = strings.NewReplacer("**", "", "__", "", "*", "", "`", "", "~~", "")
)

// StripMarkup removes the simple inline markup element content may carry
// so only visible glyphs are measured.
func StripMarkup(s string) string {
	s = breakPattern.ReplaceAllString(s, " ")
	s = tagPattern.ReplaceAllString(s, "")
	return emphasis.Replace(s)
}

// textWidth estimates the pixel width of content laid out on a single
// line. Full-width glyphs (CJK and friends) count as two cells.
func (e *Engine) textWidth(s string) float64 {
	return float64(runewidth.StringWidth(s)) * e.cfg.CharWidth
}

// sizeFor computes an element box for the given kind and content. The box
// approaches the golden ratio while guaranteeing the wrapped text fits at
// the chosen width; height grows as needed, width is clamped per kind.
func (e *Engine) sizeFor(kind diagram.Kind, content string) (w, h float64) {
	b := e.cfg.boundsFor(kind)
	tw := e.textWidth(StripMarkup(content))

	if kind == diagram.KindUndeveloped {
		// Diamonds render near-square.
		side := math.Sqrt(tw*e.cfg.LineHeight) + 2*e.cfg.PaddingY
		side = geometry.Clamp(side, geometry.Max(b.MinWidth, b.MinHeight), b.MaxWidth)
		return side, side
	}

	if tw == 0 {
		h = b.MinHeight
		w = geometry.Clamp(h*goldenRatio, b.MinWidth, b.MaxWidth)
		return w, h
	}

	// Pick the width whose wrapped text area lands on the golden ratio,
	// then grow the height until the text actually fits.
	w = math.Sqrt(goldenRatio*tw*e.cfg.LineHeight) + 2*e.cfg.PaddingX
	w = geometry.Clamp(w, b.MinWidth, b.MaxWidth)
	lines := math.Ceil(tw / (w - 2*e.cfg.PaddingX))
	h = lines*e.cfg.LineHeight + 2*e.cfg.PaddingY
	if h < b.MinHeight {
		h = b.MinHeight
	}
	return w, h
}

// measuredContent returns the text an element is sized from. Module
// elements represent a whole nested diagram and take the nested top-level
// goal's content when the lookup can resolve it.
func (e *Engine) measuredContent(el diagram.Element, lookup diagram.ModuleLookup) string {
	if el.Kind == diagram.KindModule && el.ModuleRef != "" && lookup != nil {
		if nested, ok := lookup(el.ModuleRef); ok && nested != nil {
			if root, ok := nested.RootGoal(); ok {
				return root.Content
			}
		}
	}
	return el.Content
}
