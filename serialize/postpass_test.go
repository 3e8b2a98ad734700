package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// spec.md §8 scenario 5: only the trailing nowiki between a quote run and
// a quote-adjacent apostrophe can be dropped; the leading one can't, since
// dropping it would let the preceding "'" merge into the quote run.
func TestApplyPostPassQuoteAdjacentNowiki(t *testing.T) {
	in := "''<nowiki/>'foo'<nowiki/>''"
	out := ApplyPostPass(in, false)
	assert.Equal(t, "''<nowiki/>'foo''", out)
}

// spec.md §8 scenario 6: an indent-pre whitespace-only nowiki guard is
// redundant once the rest of the line starts with a block tag.
func TestApplyPostPassIndentPreNowiki(t *testing.T) {
	in := " <nowiki> </nowiki><div>x</div>"
	out := ApplyPostPass(in, false)
	assert.Equal(t, " <div>x</div>", out)
}

func TestApplyPostPassIndentPreNowikiKeptForPlainText(t *testing.T) {
	in := " <nowiki> </nowiki>plain text"
	out := ApplyPostPass(in, false)
	assert.Equal(t, in, out, "a non-block, non-SOL-transparent rest of line still needs its indent-pre guard")
}

func TestApplyPostPassTrailingSelfClosingNowikis(t *testing.T) {
	in := "some text<nowiki/><nowiki/>"
	out := ApplyPostPass(in, false)
	assert.Equal(t, "some text", out)
}

// spec.md §8 "Post-pass safety": applying C8 twice yields the same result
// as once.
func TestApplyPostPassIdempotent(t *testing.T) {
	cases := []string{
		"''<nowiki/>'foo'<nowiki/>''",
		" <nowiki> </nowiki><div>x</div>",
		"some text<nowiki/><nowiki/>",
		"plain line with no markers at all",
		"[[a]] {{b}} ''c''",
	}
	for _, in := range cases {
		once := ApplyPostPass(in, true)
		twice := ApplyPostPass(once, true)
		assert.Equal(t, once, twice, "input: %q", in)
	}
}
