// Package escape defines the escape oracle boundary (spec.md C3): given a
// text fragment and the context it will be emitted into, decide whether it
// needs a nowiki guard, and in template-argument context, whether it must
// be emitted as a named rather than positional parameter.
//
// spec.md §1 scopes the oracle's actual decision logic out of the core —
// "The escape oracle (a subroutine that, given candidate output and
// context, decides whether wrapping with a nowiki guard is required)" is
// listed as an external collaborator the core only consumes through this
// interface. This package ships the interface, a context type, and one
// reference implementation (DefaultOracle) good enough to round-trip the
// test fixtures in spec.md §8; a caller running against a real wiki's
// grammar is expected to supply its own.
package escape

import "context"

// Mode distinguishes the handful of syntactic positions the oracle must
// reason about differently.
type Mode int

const (
	// ModeText is ordinary running text.
	ModeText Mode = iota
	// ModeTemplateArg is a template or extension argument value
	// (spec.md §4.3).
	ModeTemplateArg
	// ModeAttribute is an HTML attribute value (spec.md §4.5, §4.10
	// in_attribute).
	ModeAttribute
)

// Context is the set of flags the oracle needs beyond the candidate text
// itself, mirroring serializer state fields from spec.md §3: on_sol,
// in_no_wiki, in_html_pre, in_indent_pre, single_line_context.
type Context struct {
	Mode Mode

	OnSOL         bool
	InNoWiki      bool
	InHTMLPre     bool
	InIndentPre   bool
	SingleLine    bool
	PrecedingChar rune
	HasPreceding  bool
}

// Decision is the oracle's verdict for one fragment.
type Decision struct {
	// NeedsNowiki is true when the fragment must be wrapped in <nowiki>
	// (or otherwise escaped) to round-trip as plain text.
	NeedsNowiki bool
	// ForceNamed is set only in ModeTemplateArg: true means the argument
	// must be emitted as name=value even if it was originally positional,
	// because the value's wikitext would otherwise be misparsed as
	// continuing a positional argument list (spec.md §4.3).
	ForceNamed bool
}

// Oracle decides escaping strategy for one text fragment. Implementations
// are trusted to be total (spec.md §7: "The escape oracle is trusted to be
// total") — they must not leave content ambiguously escaped, but they may
// perform expensive or out-of-process work (spec.md §5), which is why
// Decide takes a context.Context.
type Oracle interface {
	Decide(ctx context.Context, text string, wctx Context) (Decision, error)
}

// Total wraps an Oracle whose Decide can error, and degrades any error to
// the conservative decision (always escape) rather than letting one
// fragment's oracle failure abort the whole document — consistent with
// spec.md §7's per-node containment policy for the other error kinds.
type Total struct {
	Oracle Oracle
	OnErr  func(err error)
}

func (t Total) Decide(ctx context.Context, text string, wctx Context) Decision {
	d, err := t.Oracle.Decide(ctx, text, wctx)
	if err != nil {
		if t.OnErr != nil {
			t.OnErr(err)
		}
		return Decision{NeedsNowiki: true}
	}
	return d
}
