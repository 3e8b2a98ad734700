package serialize

import (
	"context"

	"maunium.net/go/wtserialize/dom"
)

// Handler is spec.md §6's handler contract: "A handler exposes
// handle(node, state, wrapper_unmodified) -> next_node?, plus a separator
// contract {before, after}."
//
// Handler implementations live in the handler package, not here, so that
// the walker can depend on this interface without the core importing any
// particular tag's rendering logic — per the Design Note "Handler registry
// vs. inheritance," the registry is a plain tag->handler table, and
// per-tag handlers themselves are explicitly out of the core's scope
// (spec.md §1).
type Handler interface {
	// Handle emits node (and, typically, recurses into its children via
	// w.SerializeChildren). Returning a non-nil next tells the walker to
	// resume from that node instead of node's natural next sibling —
	// used by the encapsulation handler to skip the rest of a
	// template/extension's wrapper span.
	Handle(ctx context.Context, w *Walker, node *dom.Node, wrapperUnmodified bool) (next *dom.Node, err error)
	SeparatorContract(node *dom.Node) SepContract
}

// Registry resolves a handler for a node, implementing the selection
// rules of spec.md §4.2.
type Registry interface {
	Resolve(node *dom.Node, parentHasHTMLStructure bool) Handler
}
