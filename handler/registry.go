// Package handler implements per-tag wikitext emission (spec.md §4.2-§4.4):
// the handler registry, the generic HTML element fallback, and
// template/extension encapsulation emission. Tag-specific wikitext
// handlers (paragraphs, headings, lists, ...) live in the wikidefault
// subpackage so this package stays free of any particular wiki's markup
// opinions, matching how the core only depends on the Handler/Registry
// interfaces (serialize.Handler, serialize.Registry) rather than this
// package.
package handler

import (
	"maunium.net/go/wtserialize/dom"
	"maunium.net/go/wtserialize/serialize"
)

// key identifies a handler by tag and syntax variant, per spec.md §4.2's
// "For an element with tag t and syntax variant s".
type key struct {
	tag string
	stx string
}

// Registry is a plain tag->handler table (Design Note "Handler registry
// vs. inheritance": the registry is deliberately not a class hierarchy).
type Registry struct {
	byTagStx map[key]serialize.Handler
	byTag    map[string]serialize.Handler
	generic  serialize.Handler
	encaps   serialize.Handler
}

// New builds an empty registry around the generic HTML handler and the
// encapsulation handler; callers register their tag-specific handlers
// with Register/RegisterDefault (handler/wikidefault does this for a
// representative wiki markup set).
func New() *Registry {
	return &Registry{
		byTagStx: map[key]serialize.Handler{},
		byTag:    map[string]serialize.Handler{},
		generic:  GenericHTML{},
		encaps:   Encapsulation{},
	}
}

// Register installs h for the exact (tag, stx) pair.
func (r *Registry) Register(tag, stx string, h serialize.Handler) {
	r.byTagStx[key{tag, stx}] = h
}

// RegisterDefault installs h as tag's default across any syntax variant
// not otherwise registered (spec.md §4.2 rule 5's "registry's default for t").
func (r *Registry) RegisterDefault(tag string, h serialize.Handler) {
	r.byTag[tag] = h
}

// Resolve implements the five-rule selection order from spec.md §4.2.
func (r *Registry) Resolve(node *dom.Node, parentHasHTMLStructure bool) serialize.Handler {
	tag := node.Tag
	stx := ""
	if node.Provenance != nil {
		stx = node.Provenance.Stx
	}

	if node.IsEncapsulationWrapper() && isFirstEncapsulationWrapper(node) { // rule 1
		return r.encaps
	}
	if h, ok := r.byTagStx[key{tag, stx}]; ok { // rule 2
		return h
	}
	if stx == "html" && tag != "a" { // rule 3
		return r.generic
	}
	if isNewlyInserted(node) && parentHasHTMLStructure { // rule 4
		return r.generic
	}
	if h, ok := r.byTag[tag]; ok { // rule 5a
		return h
	}
	return r.generic // rule 5b
}

// isFirstEncapsulationWrapper reports whether node is the first element
// sharing its `about` group, i.e. the one that should actually emit
// {{...}} / <ext.../> rather than be silently skipped by the walker's
// envelope advance.
func isFirstEncapsulationWrapper(node *dom.Node) bool {
	about, ok := node.GetAttr("about")
	if !ok {
		return true
	}
	for sib := node.PrevSibling; sib != nil; sib = sib.PrevSibling {
		if a, ok := sib.GetAttr("about"); ok && a == about {
			return false
		}
	}
	return true
}

// isNewlyInserted reports whether node has no DSR at all, per spec.md
// §4.2 rule 4's "newly inserted (no DSR)".
func isNewlyInserted(node *dom.Node) bool {
	return node.Provenance == nil || !node.Provenance.DSR.Valid()
}
