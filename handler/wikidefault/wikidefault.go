// Package wikidefault registers a representative set of wikitext tag
// handlers into a handler.Registry: paragraphs, emphasis, headings,
// lists, links, and indent-pre. These are the kind of per-tag handlers
// spec.md §1 scopes out of the core ("Non-goals... the core does not
// render") — the core only needs the handler.Registry/serialize.Handler
// contract, and this package is one concrete filling for it, built the
// way format/htmlparser.go's tagToString dispatches by tag name, just as
// a registry of small structs instead of one big switch.
package wikidefault

import (
	"maunium.net/go/wtserialize/handler"
)

// Register installs every handler this package ships into r.
func Register(r *handler.Registry) {
	r.RegisterDefault("p", Paragraph{})
	r.RegisterDefault("b", Emphasis{Marker: "'''"})
	r.RegisterDefault("strong", Emphasis{Marker: "'''"})
	r.RegisterDefault("i", Emphasis{Marker: "''"})
	r.RegisterDefault("em", Emphasis{Marker: "''"})
	for _, h := range []string{"h1", "h2", "h3", "h4", "h5", "h6"} {
		r.RegisterDefault(h, Heading{})
	}
	r.RegisterDefault("ul", List{})
	r.RegisterDefault("ol", List{})
	r.RegisterDefault("li", ListItem{})
	r.RegisterDefault("a", Link{})
	r.RegisterDefault("pre", IndentPre{})
	r.RegisterDefault("br", LineBreak{})
}
