package serialize_test

import (
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"maunium.net/go/wtserialize/dom"
	"maunium.net/go/wtserialize/escape"
	"maunium.net/go/wtserialize/handler"
	"maunium.net/go/wtserialize/handler/wikidefault"
	"maunium.net/go/wtserialize/serialize"
)

func newRegistry() *handler.Registry {
	r := handler.New()
	wikidefault.Register(r)
	return r
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func intp(v int) *int { return &v }

// spec.md §8 scenario 1: a lone paragraph with provenance but no other
// surrounding content round-trips to exactly its text, with no extra
// whitespace forced around it by the paragraph's own separator contract.
func TestScenarioParagraphRoundTrip(t *testing.T) {
	body := &dom.Node{Type: dom.ElementNode, Tag: "body"}
	p := &dom.Node{
		Type: dom.ElementNode, Tag: "p",
		Provenance: &dom.Provenance{DSR: dom.DSR{Start: intp(0), End: intp(3), OpenWidth: intp(0), CloseWidth: intp(0)}},
	}
	p.AppendChild(&dom.Node{Type: dom.TextNode, Data: "foo"})
	body.AppendChild(p)

	env := &serialize.Env{Oracle: escape.DefaultOracle{}, Registry: newRegistry(), Log: testLogger()}
	out, err := serialize.Serialize(context.Background(), body, serialize.Options{Env: env})
	require.NoError(t, err)
	require.Equal(t, "foo", out)
}

// spec.md §8 scenario 2: an unmodified <i> with valid DSR in selser mode
// reuses the original source bytes verbatim instead of re-emitting via the
// italic handler.
func TestScenarioItalicSelserReuse(t *testing.T) {
	body := &dom.Node{Type: dom.ElementNode, Tag: "body"}
	i := &dom.Node{
		Type: dom.ElementNode, Tag: "i",
		Provenance: &dom.Provenance{
			DSR: dom.DSR{Start: intp(0), End: intp(7), OpenWidth: intp(2), CloseWidth: intp(2)},
			Stx: "wiki",
		},
	}
	i.AppendChild(&dom.Node{Type: dom.TextNode, Data: "foo"})
	body.AppendChild(i)

	env := &serialize.Env{Oracle: escape.DefaultOracle{}, Registry: newRegistry(), Log: testLogger(), Source: "''foo''"}
	out, err := serialize.Serialize(context.Background(), body, serialize.Options{Selser: true, Env: env})
	require.NoError(t, err)
	require.Equal(t, "''foo''", out)
}

// spec.md §8 scenario 3: a transclusion wrapper's pi only names the
// original positional argument; the handler appends the new named
// argument "x" in source order with no spacing, since it was never in pi.
func TestScenarioTemplateReemissionWithAddedNamedParam(t *testing.T) {
	body := &dom.Node{Type: dom.ElementNode, Tag: "body"}
	tmpl := &dom.Node{
		Type: dom.ElementNode, Tag: "span",
		Attr: []dom.Attr{{Key: "typeof", Val: "mw:Transclusion"}, {Key: "about", Val: "#mwt1"}},
		Provenance: &dom.Provenance{
			DataMW: dom.NewDataMW(`{"parts":[{"template":{"target":{"wt":"echo"},"params":{"1":{"wt":"a"},"x":{"wt":"b"}}}}]}`),
			Info:   &dom.TemplateInfo{Pi: [][]string{{"1"}}},
		},
	}
	body.AppendChild(tmpl)

	env := &serialize.Env{Oracle: escape.DefaultOracle{}, Registry: newRegistry(), Log: testLogger()}
	out, err := serialize.Serialize(context.Background(), body, serialize.Options{Env: env})
	require.NoError(t, err)
	require.Equal(t, "{{echo|a|x=b}}", out)
}

// Two paragraphs in document order get exactly the blank-line separator
// their shared contract requires, with no extra trailing blank line after
// the final one.
func TestTwoParagraphsGetBlankLineSeparator(t *testing.T) {
	body := &dom.Node{Type: dom.ElementNode, Tag: "body"}
	for _, text := range []string{"first", "second"} {
		p := &dom.Node{Type: dom.ElementNode, Tag: "p"}
		p.AppendChild(&dom.Node{Type: dom.TextNode, Data: text})
		body.AppendChild(p)
	}

	env := &serialize.Env{Oracle: escape.DefaultOracle{}, Registry: newRegistry(), Log: testLogger()}
	out, err := serialize.Serialize(context.Background(), body, serialize.Options{Env: env})
	require.NoError(t, err)
	require.Equal(t, "first\n\nsecond", out)
}

// A link whose display text matches its target collapses to the
// single-argument wikilink form.
func TestLinkCollapsesMatchingDisplayText(t *testing.T) {
	body := &dom.Node{Type: dom.ElementNode, Tag: "body"}
	a := &dom.Node{Type: dom.ElementNode, Tag: "a", Attr: []dom.Attr{{Key: "href", Val: "./Target_Page"}}}
	a.AppendChild(&dom.Node{Type: dom.TextNode, Data: "Target_Page"})
	body.AppendChild(a)

	env := &serialize.Env{Oracle: escape.DefaultOracle{}, Registry: newRegistry(), Log: testLogger()}
	out, err := serialize.Serialize(context.Background(), body, serialize.Options{Env: env})
	require.NoError(t, err)
	require.Equal(t, "[[Target_Page]]", out)
}

// Selser mode with no caller-supplied source is a configuration error,
// not a silent fallback to full serialization.
func TestSerializeRequiresSourceForSelser(t *testing.T) {
	body := &dom.Node{Type: dom.ElementNode, Tag: "body"}
	env := &serialize.Env{Oracle: escape.DefaultOracle{}, Registry: newRegistry(), Log: testLogger()}
	_, err := serialize.Serialize(context.Background(), body, serialize.Options{Selser: true, Env: env})
	require.Error(t, err)
}
