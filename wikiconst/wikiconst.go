// Package wikiconst holds the static tag/regex tables spec.md §6 says the
// serializer's environment provides: "wiki constants (lists of HTML5 tags,
// block tags, parent/child table tags, void elements, SOL-transparent
// wikitext regex)".
//
// These are fixed tables with no parsing or I/O behavior, so unlike the
// rest of the module they stay on the standard library: no pack example
// wires a dependency for "is this tag void" lookups, and introducing one
// here would just be a map literal wearing a different import path.
package wikiconst

import "regexp"

// VoidElements are HTML5 elements with no closing tag.
var VoidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// BlockTags are tags treated as block-level by the post-pass (spec.md
// §4.9), which uses them to decide whether the rest of a line no longer
// needs an indent-pre guard, and by the generic HTML handler's separator
// contract.
var BlockTags = map[string]bool{
	"p": true, "div": true, "table": true, "tr": true, "td": true, "th": true,
	"tbody": true, "thead": true, "tfoot": true, "caption": true,
	"ul": true, "ol": true, "li": true, "dl": true, "dt": true, "dd": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "hr": true, "center": true,
	"fieldset": true, "figure": true, "figcaption": true, "section": true,
}

// HTML5Tags is the set of bona fide HTML5 element names. Nothing in this
// module consults it: the generic HTML handler (spec.md §4.4) accepts any
// tag, and handler-selection rule 3 goes by syntax variant only.
var HTML5Tags = map[string]bool{
	"a": true, "abbr": true, "address": true, "area": true, "article": true,
	"aside": true, "audio": true, "b": true, "base": true, "bdi": true,
	"bdo": true, "blockquote": true, "body": true, "br": true, "button": true,
	"canvas": true, "caption": true, "cite": true, "code": true, "col": true,
	"colgroup": true, "data": true, "datalist": true, "dd": true, "del": true,
	"details": true, "dfn": true, "dialog": true, "div": true, "dl": true,
	"dt": true, "em": true, "embed": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "head": true, "header": true,
	"hr": true, "html": true, "i": true, "iframe": true, "img": true,
	"input": true, "ins": true, "kbd": true, "label": true, "legend": true,
	"li": true, "link": true, "main": true, "map": true, "mark": true,
	"meta": true, "meter": true, "nav": true, "noscript": true, "object": true,
	"ol": true, "optgroup": true, "option": true, "output": true, "p": true,
	"param": true, "picture": true, "pre": true, "progress": true, "q": true,
	"rp": true, "rt": true, "ruby": true, "s": true, "samp": true,
	"script": true, "section": true, "select": true, "small": true,
	"source": true, "span": true, "strong": true, "style": true, "sub": true,
	"summary": true, "sup": true, "table": true, "tbody": true, "td": true,
	"template": true, "textarea": true, "tfoot": true, "th": true, "thead": true,
	"time": true, "title": true, "tr": true, "track": true, "u": true,
	"ul": true, "var": true, "video": true, "wbr": true,
}

// TableParentTags pairs a table-structure tag with the set of tags that
// legally parent it in HTML syntax; spec.md §4.2 rule 4 consults this to
// decide whether a newly inserted, DSR-less child must keep its parent's
// HTML surface syntax rather than switch to wikitext pipes/stars.
var TableParentTags = map[string][]string{
	"tr":      {"table", "tbody", "thead", "tfoot"},
	"td":      {"tr"},
	"th":      {"tr"},
	"tbody":   {"table"},
	"thead":   {"table"},
	"tfoot":   {"table"},
	"caption": {"table"},
	"li":      {"ul", "ol"},
	"dt":      {"dl"},
	"dd":      {"dl"},
}

// SOLTransparentWikitextRegex matches wikitext that has no layout effect
// at start-of-line: pure whitespace and HTML comments (category and
// redirect links are not matched), per spec.md §4.9 (the indent-pre-nowiki
// strip compares the rest of the line against this).
var SOLTransparentWikitextRegex = regexp.MustCompile(`^(?:[ \t]|<!--.*?-->)*$`)

// IsVoid reports whether tag is void-by-spec (self-closing, no children
// permitted), consulted by the generic HTML handler (spec.md §4.4).
func IsVoid(tag string) bool {
	return VoidElements[tag]
}

// IsBlock reports whether tag is block-level.
func IsBlock(tag string) bool {
	return BlockTags[tag]
}
