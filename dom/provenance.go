package dom

import "go.mau.fi/util/ptr"

// DSR is a Data Source Range: the byte offsets of a node's content and the
// widths of its opening/closing markup in the original wikitext source.
// Any field may be absent (nil) — a node can have a known start/end but an
// unknown open/close width, for instance when it was auto-inserted by the
// parser on one side only.
type DSR struct {
	Start      *int
	End        *int
	OpenWidth  *int
	CloseWidth *int
}

// Valid reports whether Start and End are both present and form a
// non-negative range, per spec.md §3: "dsr values satisfying
// 0 ≤ start ≤ end are valid; widths may be absent but never negative."
func (d *DSR) Valid() bool {
	if d == nil || d.Start == nil || d.End == nil {
		return false
	}
	return ptr.Val(d.Start) >= 0 && ptr.Val(d.End) >= ptr.Val(d.Start)
}

// ZeroWidth reports whether the range is valid and has start == end.
func (d *DSR) ZeroWidth() bool {
	return d.Valid() && ptr.Val(d.Start) == ptr.Val(d.End)
}

// Width returns the byte length of the reused region and whether DSR is
// valid enough to compute it.
func (d *DSR) Width() (int, bool) {
	if !d.Valid() {
		return 0, false
	}
	return ptr.Val(d.End) - ptr.Val(d.Start), true
}

// zeroWidthEligibleTags holds the tags spec.md §4.8 permits to reuse a
// zero-width DSR range: implicit paragraphs, line breaks, and
// auto-inserted <references/>.
var zeroWidthEligibleTags = map[string]bool{
	"p":  true,
	"br": true,
	"ol": true,
}

// ZeroWidthEligible reports whether tag is one of the zero-width exception
// tags from the selser qualification rule in spec.md §4.8.
func ZeroWidthEligible(tag string) bool {
	return zeroWidthEligibleTags[tag]
}

// TemplateInfo carries the preserved-parameter-info and sanitized-attribute
// snapshots spec.md §3 calls pi, a, and sa.
type TemplateInfo struct {
	// Pi is the ordered parameter-name list per template invocation,
	// e.g. [["1", "x"]] for one invocation with one positional and one
	// named argument.
	Pi [][]string
	// Spc is the spacing quadruple around '=' for a given key, keyed by
	// the same names that appear in Pi.
	Spc map[string][4]string
	// Named records which keys in Pi were explicitly marked named even
	// though they look positional.
	Named map[string]bool
}

// Provenance is the per-node metadata a wiki parser is expected to attach
// to every element it emits. Everything here is read-only to the
// serializer (spec.md §3 "Lifecycle").
type Provenance struct {
	DSR DSR
	// Stx is "wiki", "html", or a tag-specific syntax variant.
	Stx string

	AutoInsertedStart bool
	AutoInsertedEnd   bool
	SelfClose         bool
	NoClose           bool

	Fostered  bool
	Misnested bool

	// LiHackSrc is a fragment to re-emit before the node when the
	// historical "list-item hack" is detected.
	LiHackSrc string

	// SrcTagName is the literal tag spelling from the original source
	// (e.g. "TABLE" vs "table"), used by the generic HTML handler.
	SrcTagName string

	DataMW *DataMW
	Info   *TemplateInfo

	// A holds sanitized-away attribute values that are still considered
	// "live" for provenance purposes; Sa holds the attributes that were
	// stripped by sanitization but should be restored on re-serialization
	// (spec.md §4.5 rule 7).
	A  map[string]*string
	Sa map[string]string

	// DiffMarked is true when an out-of-band diff pass has flagged this
	// node (or an ancestor up to the nearest subtree root) as changed.
	DiffMarked bool
	// OnlySubtreeChanged is true when the node's own open/close markup is
	// unmodified but a descendant changed (spec.md §4.8 wrapper_unmodified).
	OnlySubtreeChanged bool
}

// IsEncapsulationWrapper reports whether typeof/about mark this node as the
// boundary of a template- or extension-generated region (spec.md GLOSSARY).
func (n *Node) IsEncapsulationWrapper() bool {
	typeOf, ok := n.GetAttr("typeof")
	if !ok {
		return false
	}
	return matchesEncapsulationTypeof(typeOf)
}
