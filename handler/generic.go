package handler

import (
	"context"

	"maunium.net/go/wtserialize/dom"
	"maunium.net/go/wtserialize/serialize"
	"maunium.net/go/wtserialize/wikiconst"
)

// GenericHTML is the fallback handler of spec.md §4.4: it emits
// `<tag attrs...>` children `</tag>` for any node that doesn't have a
// more specific wikitext handler, or whose provenance says it must keep
// HTML surface syntax.
type GenericHTML struct {
	AttrOptions AttrOptions
}

func (g GenericHTML) Handle(ctx context.Context, w *serialize.Walker, node *dom.Node, wrapperUnmodified bool) (*dom.Node, error) {
	tag := srcTagName(node)
	autoStart, autoEnd, selfClose, noClose, inHTMLPre := false, false, false, false, false
	if node.Provenance != nil {
		autoStart = node.Provenance.AutoInsertedStart
		autoEnd = node.Provenance.AutoInsertedEnd
		selfClose = node.Provenance.SelfClose
		noClose = node.Provenance.NoClose
		inHTMLPre = node.Tag == "pre" && node.Provenance.Stx == "html"
	}
	isNowiki := node.Tag == "nowiki"

	if !autoStart {
		w.EmitPlain(node, "<"+tag+g.attrString(ctx, w, node)+g.closingMarker(node.Tag, selfClose, noClose)+">")
	}

	if inHTMLPre {
		w.SetInHTMLPre(true)
	}
	if isNowiki {
		w.SetInNoWiki(true)
	}
	next, err := w.SerializeChildrenOf(node)
	if isNowiki {
		w.SetInNoWiki(false)
	}
	if inHTMLPre {
		w.SetInHTMLPre(false)
	}
	if err != nil {
		return nil, err
	}

	voidTag := wikiconst.IsVoid(node.Tag)
	if !autoEnd && !voidTag && !selfClose {
		w.EmitPlain(node, "</"+tag+">")
	}
	return next, nil
}

func (g GenericHTML) attrString(ctx context.Context, w *serialize.Walker, node *dom.Node) string {
	opts := g.AttrOptions
	if opts.Oracle.Oracle == nil {
		opts.Oracle = w.Oracle()
	}
	s := SerializeAttributes(ctx, node, opts)
	if s == "" {
		return ""
	}
	return " " + s
}

// closingMarker appends the self-closing " /" marker spec.md §4.4 calls
// for: void-by-spec tags (unless no_close is set) or an input self_close
// flag.
func (g GenericHTML) closingMarker(tag string, selfClose, noClose bool) string {
	if selfClose || (wikiconst.IsVoid(tag) && !noClose) {
		return " /"
	}
	return ""
}

func srcTagName(node *dom.Node) string {
	if node.Provenance != nil && node.Provenance.SrcTagName != "" {
		return node.Provenance.SrcTagName
	}
	return node.Tag
}

// SeparatorContract gives block-level elements a forced start-of-line on
// both sides and leaves inline elements unconstrained; spec.md §4.4
// itself doesn't name a default contract, so this follows the same
// is-block test the post-pass uses (wikiconst.IsBlock).
func (g GenericHTML) SeparatorContract(node *dom.Node) serialize.SepContract {
	if wikiconst.IsBlock(node.Tag) {
		return serialize.SepContract{
			Before: serialize.SepSide{Min: 0, Max: serialize.Unbounded, ForceSOL: true},
			After:  serialize.SepSide{Min: 0, Max: serialize.Unbounded, ForceSOL: true},
		}
	}
	return serialize.SepContract{}
}
