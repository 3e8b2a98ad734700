package serialize

import (
	"html"
	"regexp"
	"strings"

	"maunium.net/go/wtserialize/dom"
	"maunium.net/go/wtserialize/escape"
)

// doubleNewlineRun matches spec.md §4.6 step 1's `\n[ \t]*\n+`.
var doubleNewlineRun = regexp.MustCompile(`\n[ \t]*\n+`)

// trailingNewlineRun matches spec.md §4.6 step 2's `\n\s*$`.
var trailingNewlineRun = regexp.MustCompile(`\n\s*$`)

// leadingConsumedNewlines matches spec.md §4.6 step 3's `^[ \t]*\n+\s*`.
var leadingConsumedNewlines = regexp.MustCompile(`^[ \t]*\n+\s*`)

// newlineRunCollapse matches any run of more than one newline (with
// optional intervening whitespace) for the "collapse to a single \n" step.
var newlineRunCollapse = regexp.MustCompile(`\n[ \t]*\n+`)

// emitText implements spec.md §4.6, the text-emission helper the walker
// calls for non-separator text nodes.
func (w *Walker) emitText(node *dom.Node) {
	text := node.Data

	// Step 2: capture a trailing \n\s*$ run for the next separator.
	var trailingCapture string
	if m := trailingNewlineRun.FindString(text); m != "" {
		trailingCapture = m
		text = text[:len(text)-len(m)]
	}

	if !w.state.InIndentPre {
		if !(w.state.InHTMLPre && allTextSiblingsWithOneBlankLine(node)) {
			text = newlineRunCollapse.ReplaceAllString(text, "\n")
		}
		text = leadingConsumedNewlines.ReplaceAllString(text, "")
	}

	escaped := html.EscapeString(text)
	escaped = strings.ReplaceAll(escaped, "&#39;", "'")
	escaped = strings.ReplaceAll(escaped, "&#34;", "\"")

	needsEscapeCheck := (w.state.OnSOL() || !w.state.CurrNodeUnmodified) && !w.state.InNoWiki && !w.state.InHTMLPre
	final := escaped
	if needsEscapeCheck && escaped != "" {
		wctx := escape.Context{
			Mode:        escape.ModeText,
			OnSOL:       w.state.OnSOL(),
			InNoWiki:    w.state.InNoWiki,
			InHTMLPre:   w.state.InHTMLPre,
			InIndentPre: w.state.InIndentPre,
			SingleLine:  w.state.SingleLineContext(),
		}
		if last := w.lastEmittedChar(); last != 0 {
			wctx.PrecedingChar = last
			wctx.HasPreceding = true
		}
		decision := w.oracle().Decide(w.ctx, escaped, wctx)
		if decision.NeedsNowiki {
			final = "<nowiki>" + escaped + "</nowiki>"
			w.state.HasIndentPreNowikis = true
		}
	}

	w.state.Emit(Plain{Value: final, Node: node})

	if trailingCapture != "" && (w.state.sep == nil || w.state.sep.src == "") {
		if w.state.sep == nil {
			w.state.sep = &pendingSeparator{min: 0, max: Unbounded}
		}
		w.state.sep.src = trailingCapture
	}
}

func allTextSiblingsWithOneBlankLine(node *dom.Node) bool {
	if node.Parent == nil {
		return false
	}
	blankLines := 0
	for c := node.Parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != dom.TextNode {
			return false
		}
		blankLines += len(doubleNewlineRun.FindAllString(c.Data, -1))
	}
	return blankLines == 1
}

func (w *Walker) lastEmittedChar() rune {
	line := w.state.CurrentLine()
	if line == "" {
		return 0
	}
	var last rune
	for _, r := range line {
		last = r
	}
	return last
}
