package serialize

import (
	"strings"

	"github.com/rs/zerolog"

	"maunium.net/go/wtserialize/dom"
)

// State is the serializer state singleton per serialization (spec.md §3).
// A fresh State is created per top-level Serialize call and discarded on
// completion; it is never shared across serializations (spec.md §5).
type State struct {
	Log zerolog.Logger

	out          strings.Builder
	lineStart    int
	onSOL        bool
	lastRight    Boundary
	hasEmittedAny bool

	// Context flags (spec.md §4.10).
	InNoWiki    bool
	InHTMLPre   bool
	InIndentPre bool
	InAttribute bool

	// Selser bookkeeping (spec.md §3).
	SelserMode         bool
	InModifiedContent  bool
	CurrNodeUnmodified bool
	PrevNodeUnmodified bool

	sep *pendingSeparator
	sepEngine *separatorEngine

	singleLineStack []bool

	// Post-pass flags (spec.md §3). ApplyPostPass does not consult them:
	// it runs all three C8 rewrites over every line.
	HasIndentPreNowikis    bool
	HasQuoteNowikis        bool
	HasSelfClosingNowikis  bool
}

// NewState creates a fresh serializer state, matching spec.md §3's
// "Lifecycle": on_sol true because out is empty.
func NewState(log zerolog.Logger, selserMode bool) *State {
	return &State{
		Log:       log,
		onSOL:     true,
		SelserMode: selserMode,
		sepEngine: newSeparatorEngine(),
	}
}

// OnSOL reports whether the next character would appear at start-of-line.
func (s *State) OnSOL() bool { return s.onSOL }

// CurrentLine returns the unflushed tail of the output since the last
// newline, for contextual decisions (spec.md §3 "current_line").
func (s *State) CurrentLine() string {
	full := s.out.String()
	return full[s.lineStart:]
}

// SingleLineContext reports whether the innermost pushed single-line
// region (table-cell attributes, headings, …) is still active.
func (s *State) SingleLineContext() bool {
	if len(s.singleLineStack) == 0 {
		return false
	}
	return s.singleLineStack[len(s.singleLineStack)-1]
}

// PushSingleLineContext enters a region that suppresses newline expansion.
func (s *State) PushSingleLineContext(active bool) {
	s.singleLineStack = append(s.singleLineStack, active)
}

// PopSingleLineContext leaves the innermost single-line region.
func (s *State) PopSingleLineContext() {
	if len(s.singleLineStack) > 0 {
		s.singleLineStack = s.singleLineStack[:len(s.singleLineStack)-1]
	}
}

// SetSeparator installs (or replaces) the pending separator between the
// last emitted node and whatever is emitted next. Per spec.md §3's
// invariant, no chunk is appended directly; the pending separator always
// resolves first, in flushSeparator.
func (s *State) SetSeparator(before, after SepSide, src string, info ConstraintInfo) {
	min, max, forceSOL := combine(after, before)
	s.sep = &pendingSeparator{min: min, max: max, forceSOL: forceSOL, src: src, info: info}
}

// flushSeparator resolves and writes the pending separator, if any, then
// clears it.
func (s *State) flushSeparator(nextWantsSpace bool) {
	if s.sep == nil {
		return
	}
	resolved := s.sepEngine.resolve(*s.sep, s.CurrentLine() != "", nextWantsSpace)
	s.writeRaw(resolved)
	s.sep = nil
}

// Emit appends a chunk to the output, resolving any pending separator
// first and guarding unsafe boundary adjacency (spec.md Design Note,
// "Constrained-text chunks").
func (s *State) Emit(c Chunk) {
	text := c.Text()
	if s.SingleLineContext() {
		text = strings.ReplaceAll(text, "\n", " ")
	}
	wantsSpace := text != "" && !startsWithNewline(text)
	s.flushSeparator(wantsSpace)
	if s.hasEmittedAny && unsafeAdjacency(s.lastRight, c.Left()) {
		s.writeRaw("<nowiki/>")
	}
	s.writeRaw(text)
	if text != "" {
		s.lastRight = c.Right()
		s.hasEmittedAny = true
	}
}

// EmitRaw is a convenience for emitting a Plain chunk with no source node.
func (s *State) EmitRaw(text string) {
	s.Emit(Plain{Value: text})
}

func startsWithNewline(s string) bool {
	return len(s) > 0 && s[0] == '\n'
}

func (s *State) writeRaw(text string) {
	if text == "" {
		return
	}
	s.out.WriteString(text)
	if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
		s.lineStart = s.out.Len() - (len(text) - idx - 1)
	}
	s.onSOL = strings.HasSuffix(text, "\n")
}

// String returns the accumulated output.
func (s *State) String() string {
	return s.out.String()
}

// NodeUnmodified is a small helper mirroring the walker's bookkeeping of
// prev/curr modification state from diff marks (spec.md §4.1 step 6).
func NodeUnmodified(n *dom.Node) bool {
	return n.Provenance == nil || !n.Provenance.DiffMarked
}
