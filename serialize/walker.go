package serialize

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"

	"maunium.net/go/wtserialize/dom"
	"maunium.net/go/wtserialize/escape"
	"maunium.net/go/wtserialize/wikiconst"
)

// Env is spec.md §6's "env": everything the core needs from its caller
// besides the DOM itself.
type Env struct {
	// Source is the original wikitext source; required when Selser is on.
	Source string
	// EditedDoc lets an extension body.id reference resolve against the
	// caller-supplied "edited document" when it isn't found in the
	// current document (spec.md §4.3).
	EditedDoc *dom.Node

	Oracle   escape.Oracle
	Registry Registry
	Log      zerolog.Logger

	ScrubWikitext bool

	// SourceValid lets the caller disqualify a node's reused source in
	// the "edited context" case (spec.md §4.8); nil means always valid.
	SourceValid func(node *dom.Node) bool
}

// Options configures one call to Serialize.
type Options struct {
	Selser bool
	Env    *Env
}

// Walker is the DOM walker + dispatcher (spec.md C6). One Walker serves
// exactly one top-level Serialize call.
type Walker struct {
	ctx   context.Context
	env   *Env
	state *State
}

// Serialize is the module's sole entry point (spec.md §6):
// serialize(body, {selser?, env}) -> string.
func Serialize(ctx context.Context, body *dom.Node, opts Options) (string, error) {
	if opts.Env == nil {
		return "", fmt.Errorf("serialize: Options.Env is required")
	}
	if opts.Selser && opts.Env.Source == "" {
		return "", fmt.Errorf("serialize: selser mode requires Env.Source")
	}
	log := opts.Env.Log.With().Logger()
	state := NewState(log, opts.Selser)
	w := &Walker{ctx: ctx, env: opts.Env, state: state}
	if err := w.serializeChildren(body); err != nil {
		return "", err
	}
	return ApplyPostPass(state.String(), opts.Env.ScrubWikitext), nil
}

func (w *Walker) oracle() escape.Total {
	return escape.Total{
		Oracle: w.env.Oracle,
		OnErr: func(err error) {
			w.state.Log.Warn().Err(err).Msg("escape oracle failed, defaulting to nowiki guard")
		},
	}
}

// SerializeChildren walks node's children in document order, maintaining
// the dispatcher's ordering guarantee from spec.md §4.1: "for any two
// sibling nodes A < B, all chunks produced by A... are appended before any
// chunk produced by B, and the separator resolved between them appears
// exactly once."
func (w *Walker) SerializeChildren(node *dom.Node) error {
	return w.serializeChildren(node)
}

// SerializeChildrenOf is the handler-facing form of SerializeChildren: a
// handler that recurses into all of node's children unconditionally (the
// common case) returns its result directly as its own (next, err).
func (w *Walker) SerializeChildrenOf(node *dom.Node) (*dom.Node, error) {
	return nil, w.serializeChildren(node)
}

// EmitPlain emits text as a Plain chunk attributed to node, for handlers
// that need to write literal markup (tag delimiters, etc.) rather than
// escaped text content.
func (w *Walker) EmitPlain(node *dom.Node, text string) {
	w.state.Emit(Plain{Value: text, Node: node})
}

// EmitBounded emits text as a Bounded chunk attributed to node, for
// handlers emitting wikitext markers (quote runs, link brackets) whose
// edge characters participate in the unsafe-adjacency check (spec.md
// Design Note "Constrained-text chunks").
func (w *Walker) EmitBounded(node *dom.Node, text string) {
	w.state.Emit(Bounded{Value: text, Node: node})
}

// SetInHTMLPre toggles the in_html_pre context flag (spec.md §3, §4.4).
func (w *Walker) SetInHTMLPre(v bool) { w.state.InHTMLPre = v }

// SetInNoWiki toggles the in_no_wiki context flag (spec.md §3, §4.10).
func (w *Walker) SetInNoWiki(v bool) { w.state.InNoWiki = v }

// SetInIndentPre toggles the in_indent_pre context flag (spec.md §3, §4.10).
func (w *Walker) SetInIndentPre(v bool) { w.state.InIndentPre = v }

// PushSingleLineContext and PopSingleLineContext expose the state's
// single-line region stack to handlers (table-cell attributes, headings).
func (w *Walker) PushSingleLineContext(active bool) { w.state.PushSingleLineContext(active) }
func (w *Walker) PopSingleLineContext()             { w.state.PopSingleLineContext() }

// OnSOL reports whether the next emitted character would land at
// start-of-line.
func (w *Walker) OnSOL() bool { return w.state.OnSOL() }

// Source returns the original wikitext source, for handlers that need
// to inspect it directly (e.g. to resolve an extsrc-less extension body).
func (w *Walker) Source() string { return w.env.Source }

// EditedDoc returns the caller-supplied edited-document handle (spec.md
// §4.3's by-id extension body lookup fallback).
func (w *Walker) EditedDoc() *dom.Node { return w.env.EditedDoc }

// Oracle exposes the escape oracle for handlers that need to consult it
// directly (the encapsulation handler, for template-arg escaping).
func (w *Walker) Oracle() escape.Total { return w.oracle() }

// Logger returns the walker's logger, for handlers that need to report a
// per-node failure without aborting the whole document (spec.md §7).
func (w *Walker) Logger() zerolog.Logger { return w.state.Log }

func (w *Walker) serializeChildren(node *dom.Node) error {
	var prev *dom.Node
	child := node.FirstChild
	for child != nil {
		next, err := w.visit(prev, child)
		if err != nil {
			return err
		}
		prev = child
		if next != nil {
			child = next
		} else {
			child = child.NextSibling
		}
	}
	return nil
}

// visit dispatches one node per spec.md §4.1's six steps.
func (w *Walker) visit(prev, node *dom.Node) (*dom.Node, error) {
	switch node.Type {
	case dom.TextNode:
		if isSeparatorText(prev, node) {
			w.absorbSeparatorText(prev, node)
			return nil, nil
		}
		w.updateSeparatorBefore(prev, node)
		w.emitText(node)
		return nil, nil
	case dom.CommentNode:
		w.absorbComment(node)
		return nil, nil
	case dom.ElementNode:
		return w.visitElement(prev, node)
	default:
		return nil, nil
	}
}

// isSeparatorText reports whether a whitespace-only text node between two
// block-level siblings should be absorbed by the separator engine instead
// of emitted as its own chunk (spec.md §4.1 step 1).
func isSeparatorText(prev, node *dom.Node) bool {
	if prev == nil || node.NextSibling == nil {
		return false
	}
	if !isAllWhitespace(node.Data) {
		return false
	}
	return isBlockElement(prev) && isBlockElement(node.NextSibling)
}

func isAllWhitespace(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

func isBlockElement(n *dom.Node) bool {
	return n != nil && n.Type == dom.ElementNode
}

func (w *Walker) absorbSeparatorText(prev, node *dom.Node) {
	if w.state.sep == nil {
		w.state.sep = &pendingSeparator{min: 0, max: Unbounded}
	}
	w.state.sep.src += node.Data
}

func (w *Walker) absorbComment(node *dom.Node) {
	text := "<!--" + node.Data + "-->"
	if w.state.sep == nil {
		w.state.sep = &pendingSeparator{min: 0, max: Unbounded}
	}
	w.state.sep.src += text
}

func (w *Walker) visitElement(prev, node *dom.Node) (*dom.Node, error) {
	if isDiffMarkerMeta(node) {
		w.updateModificationFlags(node)
		return nil, nil
	}

	w.updateSeparatorBefore(prev, node)
	w.updatePrevCurrModification(node)

	if reused, next, ok := w.tryReuseSource(node); ok {
		if w.suppressSingleLineForReuse(node) {
			w.state.PushSingleLineContext(false)
			w.state.Emit(reused)
			w.state.PopSingleLineContext()
		} else {
			w.state.Emit(reused)
		}
		return next, nil
	}

	parentHTMLStructure := parentHasHTMLStructure(node)
	h := w.env.Registry.Resolve(node, parentHTMLStructure)
	if h == nil {
		panic(fmt.Sprintf("serialize: no handler resolvable for <%s>", node.Tag))
	}

	wrapperUnmodified := node.Provenance != nil && node.Provenance.OnlySubtreeChanged
	next, err := h.Handle(w.ctx, w, node, wrapperUnmodified)
	if err != nil {
		return nil, fmt.Errorf("serialize: handling <%s>: %w", node.Tag, err)
	}

	w.updateSeparatorAfter(node)
	return next, nil
}

func isDiffMarkerMeta(n *dom.Node) bool {
	if !n.IsElement("meta") {
		return false
	}
	typeOf, _ := n.GetAttr("typeof")
	return typeOf == "mw:DiffMarker"
}

func (w *Walker) updateModificationFlags(meta *dom.Node) {
	if meta.Parent != nil && meta.Parent.Provenance != nil {
		meta.Parent.Provenance.DiffMarked = true
	}
}

func (w *Walker) updatePrevCurrModification(node *dom.Node) {
	w.state.PrevNodeUnmodified = w.state.CurrNodeUnmodified
	w.state.CurrNodeUnmodified = NodeUnmodified(node)
}

// updateSeparatorBefore resolves the separator contributed by the
// relationship between prev and node (spec.md §4.1 step 2). In the
// zero-width parent-child case (spec.md §4.7), the Before side actually
// combined against prev's After isn't node's own contract but its first
// child's — so surrounding whitespace still constrains the child
// directly, the way it would if the zero-width node weren't there at all.
func (w *Walker) updateSeparatorBefore(prev, node *dom.Node) {
	if prev == nil {
		return
	}
	prevHandler := w.handlerFor(prev)
	nodeHandler := w.handlerFor(node)
	var after, before SepSide
	if prevHandler != nil {
		after = prevHandler.SeparatorContract(prev).After
	}
	if nodeHandler != nil {
		before = nodeHandler.SeparatorContract(node).Before
	}
	info := ConstraintInfo{Kind: SepSibling, NodeA: prev, NodeB: node, OnSOL: w.state.OnSOL()}
	if zw := node.Provenance; zw != nil && zw.DSR.ZeroWidth() && node.FirstChild != nil {
		info = rewriteZeroWidthParentChild(info, node)
		before = SepSide{}
		if childHandler := w.handlerFor(info.NodeB); childHandler != nil {
			before = childHandler.SeparatorContract(info.NodeB).Before
		}
	}
	w.state.SetSeparator(before, after, "", info)
}

// updateSeparatorAfter records node's own trailing boundary requirement as
// a pending separator rather than writing it immediately: whichever comes
// next (a sibling's updateSeparatorBefore, an absorbed whitespace/comment
// text node, or the enclosing handler's own subsequent Emit call for e.g.
// a closing tag) will flush it, combined with whatever that next thing
// requires. If nothing at all follows — node was the last thing emitted in
// the whole document — the pending requirement is simply never flushed,
// which is what keeps a document-final block from gaining a stray trailing
// newline it has no successor to separate from.
func (w *Walker) updateSeparatorAfter(node *dom.Node) {
	h := w.handlerFor(node)
	if h == nil {
		return
	}
	side := h.SeparatorContract(node).After
	if !side.ForceSOL && side.Min == 0 {
		return
	}
	if w.state.sep == nil {
		w.state.sep = &pendingSeparator{min: side.Min, max: side.Max, forceSOL: side.ForceSOL}
		if w.state.sep.max == 0 {
			w.state.sep.max = Unbounded
		}
		return
	}
	if side.ForceSOL {
		w.state.sep.forceSOL = true
	}
	if side.Min > w.state.sep.min {
		w.state.sep.min = side.Min
	}
	if side.Max < w.state.sep.max {
		w.state.sep.max = side.Max
	}
}

func (w *Walker) handlerFor(node *dom.Node) Handler {
	if node == nil || node.Type != dom.ElementNode {
		return nil
	}
	return w.env.Registry.Resolve(node, parentHasHTMLStructure(node))
}

func parentHasHTMLStructure(node *dom.Node) bool {
	parent := node.Parent
	if parent == nil || parent.Type != dom.ElementNode {
		return false
	}
	if parent.Provenance == nil || parent.Provenance.Stx != "html" {
		return false
	}
	return slices.Contains(wikiconst.TableParentTags[node.Tag], parent.Tag)
}
