package wikidefault

import (
	"context"
	"strconv"

	"maunium.net/go/wtserialize/dom"
	"maunium.net/go/wtserialize/serialize"
)

// Paragraph emits a bare block, relying entirely on its separator
// contract (forced blank line on both sides) to produce the blank-line
// paragraph break; wikitext has no opening/closing paragraph marker.
type Paragraph struct{}

func (Paragraph) Handle(ctx context.Context, w *serialize.Walker, node *dom.Node, wrapperUnmodified bool) (*dom.Node, error) {
	return w.SerializeChildrenOf(node)
}

func (Paragraph) SeparatorContract(node *dom.Node) serialize.SepContract {
	return serialize.SepContract{
		Before: serialize.SepSide{Min: 2, Max: serialize.Unbounded, ForceSOL: true},
		After:  serialize.SepSide{Min: 2, Max: serialize.Unbounded, ForceSOL: true},
	}
}

// Heading emits `=== text ===`, with the marker run length taken from the
// tag's level (h1 -> 1 '=', ... h6 -> 6 '='). Heading content runs on a
// single line: spec.md §3 names "inside... headings" as a single-line
// region (the serializer disables newline expansion there).
type Heading struct{}

func (Heading) Handle(ctx context.Context, w *serialize.Walker, node *dom.Node, wrapperUnmodified bool) (*dom.Node, error) {
	level := headingLevel(node.Tag)
	marker := repeat('=', level)
	w.EmitBounded(node, marker+" ")
	w.PushSingleLineContext(true)
	next, err := w.SerializeChildrenOf(node)
	w.PopSingleLineContext()
	if err != nil {
		return nil, err
	}
	w.EmitBounded(node, " "+marker)
	return next, nil
}

func (Heading) SeparatorContract(node *dom.Node) serialize.SepContract {
	return serialize.SepContract{
		Before: serialize.SepSide{Min: 1, Max: serialize.Unbounded, ForceSOL: true},
		After:  serialize.SepSide{Min: 1, Max: serialize.Unbounded, ForceSOL: true},
	}
}

func headingLevel(tag string) int {
	if len(tag) != 2 || tag[0] != 'h' {
		return 2
	}
	n, err := strconv.Atoi(tag[1:])
	if err != nil || n < 1 || n > 6 {
		return 2
	}
	return n
}

func repeat(b byte, n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return string(out)
}

// LineBreak emits a bare <br> since wikitext has no dedicated line-break
// marker that survives every context; this mirrors spec.md §4.8's
// zero-width exception list, which names br alongside p and ol precisely
// because it's normally an empty element with nothing else to reuse.
type LineBreak struct{}

func (LineBreak) Handle(ctx context.Context, w *serialize.Walker, node *dom.Node, wrapperUnmodified bool) (*dom.Node, error) {
	w.EmitPlain(node, "<br>")
	return w.SerializeChildrenOf(node)
}

func (LineBreak) SeparatorContract(node *dom.Node) serialize.SepContract {
	return serialize.SepContract{}
}

// IndentPre emits a wikitext indent-pre block: a leading space at the
// start of every line the block covers (spec.md §3's in_indent_pre
// disables newline collapsing in text emission so each source line stays
// intact; this handler's job is only the leading-space markers).
//
// TODO: a hard line break from a nested <br> inside the block doesn't
// currently get its own leading space re-inserted; only the block's own
// start-of-line does.
type IndentPre struct{}

func (IndentPre) Handle(ctx context.Context, w *serialize.Walker, node *dom.Node, wrapperUnmodified bool) (*dom.Node, error) {
	if w.OnSOL() {
		w.EmitBounded(node, " ")
	}
	w.SetInIndentPre(true)
	next, err := w.SerializeChildrenOf(node)
	w.SetInIndentPre(false)
	return next, err
}

func (IndentPre) SeparatorContract(node *dom.Node) serialize.SepContract {
	return serialize.SepContract{
		Before: serialize.SepSide{Min: 1, Max: serialize.Unbounded, ForceSOL: true},
		After:  serialize.SepSide{Min: 1, Max: serialize.Unbounded, ForceSOL: true},
	}
}
