package wikidefault

import (
	"context"
	"strings"

	"maunium.net/go/wtserialize/dom"
	"maunium.net/go/wtserialize/serialize"
)

// Emphasis emits a quote-marker run (`''` or `'''`) around its children.
// It uses EmitBounded on both markers because an adjacent apostrophe from
// a sibling chunk could otherwise merge into a longer, differently
// parsed quote run — the exact hazard spec.md §3's "Constrained-text
// chunks" design note calls out.
type Emphasis struct {
	Marker string
}

func (e Emphasis) Handle(ctx context.Context, w *serialize.Walker, node *dom.Node, wrapperUnmodified bool) (*dom.Node, error) {
	w.EmitBounded(node, e.Marker)
	next, err := w.SerializeChildrenOf(node)
	if err != nil {
		return nil, err
	}
	w.EmitBounded(node, e.Marker)
	return next, nil
}

func (e Emphasis) SeparatorContract(node *dom.Node) serialize.SepContract {
	return serialize.SepContract{}
}

// Link emits a wikilink `[[target|text]]` for an internal target, or an
// external link `[url text]` for anything that looks like a URL.
// Internal hrefs follow the Parsoid convention of a leading "./" before
// the page title, which this strips before use as the wikilink target.
type Link struct{}

func (Link) Handle(ctx context.Context, w *serialize.Walker, node *dom.Node, wrapperUnmodified bool) (*dom.Node, error) {
	href, _ := node.GetAttr("href")
	text := renderChildText(node)

	if isExternalHref(href) {
		w.EmitBounded(node, "[")
		w.EmitPlain(node, href)
		if text != "" {
			w.EmitPlain(node, " "+text)
		}
		w.EmitBounded(node, "]")
		return nil, nil
	}

	target := strings.TrimPrefix(href, "./")
	w.EmitBounded(node, "[[")
	if text != "" && text != target {
		w.EmitPlain(node, target+"|"+text)
	} else {
		w.EmitPlain(node, target)
	}
	w.EmitBounded(node, "]]")
	return nil, nil
}

func (Link) SeparatorContract(node *dom.Node) serialize.SepContract {
	return serialize.SepContract{}
}

func isExternalHref(href string) bool {
	return strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") ||
		strings.HasPrefix(href, "//") || strings.HasPrefix(href, "mailto:")
}

// renderChildText collapses a link's children down to plain text for the
// display-text comparison against its target; nested markup inside link
// text is rare enough in practice that this handler doesn't recurse the
// walker for it, unlike every other handler here.
func renderChildText(node *dom.Node) string {
	var b strings.Builder
	for c := node.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == dom.TextNode {
			b.WriteString(c.Data)
		} else {
			b.WriteString(renderChildText(c))
		}
	}
	return b.String()
}
