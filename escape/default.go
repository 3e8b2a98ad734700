package escape

import (
	"context"
	"regexp"
	"strings"
)

// solMarkupPrefix matches the wikitext constructs that only take on
// block/markup meaning when they start a line, optionally after leading
// spaces or tabs: list/definition markers, headings, horizontal rules, and
// table syntax ("{|", "|", "|-", "|+", "|}", "!"). A line that starts with
// whitespace alone (indent-pre) is not matched.
var solMarkupPrefix = regexp.MustCompile(`^[ \t]*(?:[*#:;]|={1,6}|-{4,}|\{\||\|[-}+]?|!)`)

// inlineMarkup matches wikitext inline markup that is significant anywhere
// in a line, not just at start-of-line.
var inlineMarkup = regexp.MustCompile(`''|\[\[|\]\]|\{\{|\}\}|\[http|<!--|</?nowiki|&[a-zA-Z#][a-zA-Z0-9]*;?`)

// DefaultOracle is a heuristic, dependency-free reference Oracle: it flags
// a fragment as needing a nowiki guard when it contains a character
// sequence that wikitext would otherwise parse as markup in the current
// context. It is intentionally conservative (it may escape more than a
// full wikitext grammar strictly requires) rather than risk round-trip
// corruption — spec.md §1 only promises round-trip, not minimal output.
type DefaultOracle struct{}

func (DefaultOracle) Decide(_ context.Context, text string, wctx Context) (Decision, error) {
	if wctx.InNoWiki || wctx.InHTMLPre {
		return Decision{}, nil
	}
	if text == "" {
		return Decision{}, nil
	}

	switch wctx.Mode {
	case ModeAttribute:
		// Attribute values can't contain unescaped quotes; that is
		// handled by entity-escaping in handler.SerializeAttributes, so
		// the oracle only needs to flag raw "{{"/"}}" sequences that
		// would make the value look templated when it isn't.
		return Decision{NeedsNowiki: strings.Contains(text, "{{") || strings.Contains(text, "}}")}, nil
	case ModeTemplateArg:
		return decideTemplateArg(text), nil
	default:
		return decideText(text, wctx), nil
	}
}

func decideText(text string, wctx Context) Decision {
	if wctx.OnSOL && solMarkupPrefix.MatchString(text) {
		return Decision{NeedsNowiki: true}
	}
	if inlineMarkup.MatchString(text) {
		return Decision{NeedsNowiki: true}
	}
	if wctx.HasPreceding && wctx.PrecedingChar == '\'' && strings.HasPrefix(text, "'") {
		return Decision{NeedsNowiki: true}
	}
	return Decision{}
}

// decideTemplateArg flags pipes/equals signs that would otherwise be
// mistaken for argument separators inside an unnamed template value, and
// signals ForceNamed when escaping alone can't save a positional value
// (e.g. it contains a bare "=" at the top level, which parses as
// name=value even when no name was given).
func decideTemplateArg(text string) Decision {
	d := Decision{}
	if strings.Contains(text, "|") || strings.Contains(text, "}}") {
		d.NeedsNowiki = true
	}
	if strings.Contains(text, "=") {
		d.ForceNamed = true
	}
	return d
}
