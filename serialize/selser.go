package serialize

import (
	"go.mau.fi/util/ptr"

	"maunium.net/go/wtserialize/dom"
)

// zeroWidthFosterTags is empty and is not consulted: dsrQualifies lets any
// fostered or misnested node reuse a zero-width range, whatever its tag,
// on top of the always-exempt {p, br, ol} in dom.ZeroWidthEligible.
var zeroWidthFosterTags = map[string]bool{}

// tryReuseSource implements the selser reuse path (spec.md §4.8, C7). It
// returns a chunk of verbatim reused source, the node to resume walking
// from (nil means "node's natural next sibling"), and whether reuse
// applied at all.
func (w *Walker) tryReuseSource(node *dom.Node) (Chunk, *dom.Node, bool) {
	if !w.qualifiesForReuse(node) {
		return nil, nil, false
	}

	start, end := ptr.Val(node.Provenance.DSR.Start), ptr.Val(node.Provenance.DSR.End)
	if start < 0 || end > len(w.env.Source) || start > end {
		return nil, nil, false
	}
	src := w.env.Source[start:end]

	suppressed := w.suppressSingleLineForReuse(node)
	if suppressed {
		w.state.PushSingleLineContext(false)
		defer w.state.PopSingleLineContext()
	}

	chunk := Bounded{Value: src, Node: node}
	resumeFrom := w.envelopeEnd(node)
	return chunk, resumeFrom, true
}

// qualifiesForReuse implements the four-part qualification test verbatim
// from spec.md §4.8.
func (w *Walker) qualifiesForReuse(node *dom.Node) bool {
	if !w.state.SelserMode || w.state.InModifiedContent {
		return false
	}
	if node.Provenance == nil {
		return false
	}
	if node.Provenance.DiffMarked {
		return false
	}
	if !w.sourceStillValid(node) {
		return false
	}
	return w.dsrQualifies(node)
}

// sourceStillValid delegates to the caller-supplied validity oracle
// (spec.md §4.8: "Original source is still valid in the edited context
// (oracle from caller)"). When the caller supplies none, reused source is
// assumed valid — the common case of serializing the same document that
// was parsed, unedited outside explicitly diff-marked subtrees.
func (w *Walker) sourceStillValid(node *dom.Node) bool {
	if w.env.SourceValid == nil {
		return true
	}
	return w.env.SourceValid(node)
}

func (w *Walker) dsrQualifies(node *dom.Node) bool {
	dsr := node.Provenance.DSR
	if !dsr.Valid() {
		return false
	}
	width, _ := dsr.Width()
	if width > 0 {
		return true
	}
	// width == 0: only a named set of implicit/auto-inserted constructs,
	// or fostered/misnested content, may reuse a zero-width range.
	if dom.ZeroWidthEligible(node.Tag) {
		return true
	}
	return node.Provenance.Fostered || node.Provenance.Misnested
}

// suppressSingleLineForReuse reports whether node is one of the
// structures spec.md §4.8 says must have single-line context disabled
// while its reused bytes (which may legitimately span multiple lines) are
// emitted: encapsulation wrappers, top-level list/definition structures,
// and a <table> that is the sole child of <dd>.
func (w *Walker) suppressSingleLineForReuse(node *dom.Node) bool {
	if node.IsEncapsulationWrapper() {
		return true
	}
	switch node.Tag {
	case "ul", "ol", "dl", "li", "dt", "dd":
		return node.Parent == nil || node.Parent.Type != dom.ElementNode || !isListOrDef(node.Parent.Tag)
	case "table":
		return node.Parent != nil && node.Parent.Tag == "dd" && node.Parent.FirstChild == node && node.NextSibling == nil
	}
	return false
}

func isListOrDef(tag string) bool {
	switch tag {
	case "ul", "ol", "dl":
		return true
	default:
		return false
	}
}

// envelopeEnd returns the node to resume walking from after reusing
// node's source: past node itself normally, or past the whole
// template/extension span when node is an encapsulation wrapper, since
// the reused bytes already cover every node `about`-linked to it.
func (w *Walker) envelopeEnd(node *dom.Node) *dom.Node {
	if !node.IsEncapsulationWrapper() {
		return node.NextSibling
	}
	about, ok := node.GetAttr("about")
	if !ok {
		return node.NextSibling
	}
	n := node.NextSibling
	for n != nil {
		if a, ok := n.GetAttr("about"); !ok || a != about {
			return n
		}
		n = n.NextSibling
	}
	return nil
}
