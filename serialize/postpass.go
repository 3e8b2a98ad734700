package serialize

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"go.mau.fi/util/exstrings"

	"maunium.net/go/wtserialize/wikiconst"
)

// indentPreNowikiLine matches spec.md §4.9's "Indent-pre nowikis" pattern:
// start-of-line, a SOL-transparent prefix, a whitespace-only nowiki guard,
// then the rest of the line.
var indentPreNowikiLine = regexp.MustCompile(`^([ \t]|<!--.*?-->)*<nowiki>([ \t]+)</nowiki>(.*)$`)

// anyTagName finds any HTML start or end tag and captures its name;
// lineHasBlockTag checks that name against wikiconst.IsBlock.
var anyTagName = regexp.MustCompile(`<(/?)([a-zA-Z][a-zA-Z0-9]*)[\s/>]`)

// trailingSelfClosingNowikis matches spec.md §4.9's "Trailing self-closing
// nowikis" pattern, one line at a time.
var trailingSelfClosingNowikis = regexp.MustCompile(`^([^=]*?)(?:<nowiki\s*/>\s*)+$`)

// quoteAdjacentToken splits a line into the token classes the
// quote-adjacent-nowiki rewrite needs to track.
var quoteAdjacentToken = regexp.MustCompile(`'''''|'''|''|\[\[|\]\]|\{\{|\}\}|<nowiki\s*/>|</?[a-zA-Z][^>]*>`)

// ApplyPostPass runs the three C8 rewrites over the finished buffer
// (spec.md §4.9). Each rewrite is independently best-effort: a line that
// doesn't match cleanly is left unchanged rather than failing the whole
// pass (spec.md §7 "Post-pass rewrites are best-effort").
func ApplyPostPass(text string, scrubWikitext bool) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = stripIndentPreNowiki(line, scrubWikitext)
		line = stripQuoteAdjacentNowikis(line)
		line = stripTrailingSelfClosingNowikis(line)
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// stripIndentPreNowiki implements the first C8 rewrite.
func stripIndentPreNowiki(line string, scrubWikitext bool) string {
	m := indentPreNowikiLine.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	prefix := line[:strings.Index(line, "<nowiki>")]
	rest := m[3]

	if wikiconst.SOLTransparentWikitextRegex.MatchString(rest) || lineHasBlockTag(rest) {
		return prefix + rest
	}
	if scrubWikitext {
		return prefix + rest
	}
	return line
}

func lineHasBlockTag(rest string) bool {
	for _, m := range anyTagName.FindAllStringSubmatch(rest, -1) {
		if wikiconst.IsBlock(strings.ToLower(m[2])) {
			return true
		}
	}
	return false
}

// stripTrailingSelfClosingNowikis implements the third C8 rewrite.
func stripTrailingSelfClosingNowikis(line string) string {
	m := trailingSelfClosingNowikis.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	return m[1]
}

// quoteToken is one entry of a tokenized line: either a marker
// (bracket/quote/tag, matched by quoteAdjacentToken) or the literal text
// run between two markers. Markers and text strictly alternate, starting
// and ending on text (either may be empty), so tokens[i-1]/tokens[i+1]
// relative to a marker at i are always the text immediately flanking it —
// this is what lets the sandwich check in quoteNowikiSandwichTrim inspect
// real text instead of another marker.
type quoteToken struct {
	text   string
	start  int
	end    int
	marker bool
}

// stripQuoteAdjacentNowikis implements the second C8 rewrite: walk the
// line's bracket/quote tokens and drop a <nowiki/> sitting between a
// trailing `'` and a quote-marker run when the bracket/quote stack says
// it's safe (spec.md §4.9 "Quote-adjacent nowikis").
func stripQuoteAdjacentNowikis(line string) string {
	tokens := tokenizeQuoteLine(line)
	if tokens == nil {
		return line
	}

	var stack []string
	inSkipRegion := false
	var skipTag string
	type excision struct{ start, end int }
	var excisions []excision

	for i, t := range tokens {
		if !t.marker {
			continue
		}
		tok := t.text
		switch {
		case inSkipRegion:
			if tok == "</"+skipTag+">" {
				inSkipRegion = false
			}
			continue
		case tok == "<ref>" || tok == "<nowiki>":
			inSkipRegion = true
			skipTag = strings.Trim(strings.Trim(tok, "<>"), "/")
			continue
		case tok == "[[" || tok == "{{":
			stack = append(stack, tok)
		case tok == "]]" || tok == "}}":
			if len(stack) == 0 {
				return line
			}
			stack = stack[:len(stack)-1]
		case tok == "''" || tok == "'''" || tok == "'''''":
			stack = append(stack, tok)
		case tok == "<nowiki/>":
			depth := quoteDepth(stack)
			if trimStart, ok := quoteNowikiSandwichTrim(tokens, i); ok {
				if depth == 0 {
					excisions = append(excisions, excision{t.start, t.end})
				} else if depth == 1 {
					excisions = append(excisions, excision{t.start, t.end})
					excisions = append(excisions, excision{trimStart, tokens[i-1].end})
				}
			}
		}
	}

	if len(stack) > 0 {
		for _, t := range stack {
			if t == "[[" || t == "{{" {
				return line
			}
		}
	}
	if len(excisions) == 0 {
		return line
	}

	sort.Slice(excisions, func(a, b int) bool { return excisions[a].start < excisions[b].start })
	var b strings.Builder
	last := 0
	for _, ex := range excisions {
		b.WriteString(line[last:ex.start])
		last = ex.end
	}
	b.WriteString(line[last:])
	return b.String()
}

func quoteDepth(stack []string) int {
	n := 0
	for _, t := range stack {
		if t == "''" || t == "'''" || t == "'''''" {
			n++
		}
	}
	return n
}

func isQuoteMarkerRun(s string) bool {
	return s == "''" || s == "'''" || s == "'''''"
}

// quoteNowikiSandwichTrim matches spec.md §4.9's literal token-position
// exception: the <nowiki/> at tokens[nowikiIdx] sits at the position
// ["''", "bar'", "<nowiki/>", "", "''"] — immediately preceded by text
// ending in exactly one apostrophe (not a longer accidental run that
// would itself form a quote marker — exstrings.LongestSequenceOf counts
// the run the same way the teacher sizes backtick fences in
// SafeMarkdownCode) and immediately followed by empty text and then
// another quote-marker run. When it matches, the returned trimStart is
// the start of that trailing apostrophe: spec.md §8 scenario 5's worked
// example shows the apostrophe itself, not just the nowiki guard, is
// dropped — the sandwiched single quote is redundant once unguarded; it's
// the nowiki sitting between it and the closing quote run that made it
// look like it needed to stay.
func quoteNowikiSandwichTrim(tokens []quoteToken, nowikiIdx int) (trimStart int, ok bool) {
	if nowikiIdx < 1 || nowikiIdx+2 >= len(tokens) {
		return 0, false
	}
	before, gap, after := tokens[nowikiIdx-1], tokens[nowikiIdx+1], tokens[nowikiIdx+2]
	if before.marker || gap.marker || !after.marker {
		return 0, false
	}
	if gap.text != "" || !isQuoteMarkerRun(after.text) {
		return 0, false
	}
	if !strings.HasSuffix(before.text, "'") || exstrings.LongestSequenceOf(before.text, '\'') != 1 {
		return 0, false
	}
	_, size := utf8.DecodeLastRuneInString(before.text)
	return before.end - size, true
}

// tokenizeQuoteLine splits line into the alternating text/marker sequence
// quoteNowikiSandwichTrim and the bracket/quote stack above both rely on.
func tokenizeQuoteLine(line string) []quoteToken {
	locs := quoteAdjacentToken.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return nil
	}
	tokens := make([]quoteToken, 0, 2*len(locs)+1)
	last := 0
	for _, loc := range locs {
		tokens = append(tokens, quoteToken{text: line[last:loc[0]], start: last, end: loc[0]})
		tokens = append(tokens, quoteToken{text: line[loc[0]:loc[1]], start: loc[0], end: loc[1], marker: true})
		last = loc[1]
	}
	tokens = append(tokens, quoteToken{text: line[last:], start: last, end: len(line)})
	return tokens
}
