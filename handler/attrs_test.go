package handler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"maunium.net/go/wtserialize/dom"
	"maunium.net/go/wtserialize/handler"
)

// spec.md §8 scenario 4: a live class attribute plus a sanitized-away
// style value restores the style at the end, after the live attributes.
func TestSerializeAttributesRestoresSanitizedAttribute(t *testing.T) {
	node := &dom.Node{
		Attr: []dom.Attr{{Key: "class", Val: "foo"}},
		Provenance: &dom.Provenance{
			A:  map[string]*string{"style": nil},
			Sa: map[string]string{"style": "color:red"},
		},
	}
	out := handler.SerializeAttributes(context.Background(), node, handler.AttrOptions{})
	assert.Equal(t, `class="foo" style="color:red"`, out)
}

// "Attribute filter soundness": no ignore-set attribute ever reaches the
// output, regardless of what else is on the node.
func TestSerializeAttributesDropsIgnoreSetKeys(t *testing.T) {
	node := &dom.Node{
		Attr: []dom.Attr{
			{Key: "data-parsoid", Val: `{"dsr":[0,1]}`},
			{Key: "data-mw", Val: `{"parts":[]}`},
			{Key: "class", Val: "foo"},
		},
	}
	out := handler.SerializeAttributes(context.Background(), node, handler.AttrOptions{})
	assert.Equal(t, `class="foo"`, out)
	assert.NotContains(t, out, "data-parsoid")
	assert.NotContains(t, out, "data-mw")
}

// A parser-generated-looking id with no provenance confirmation callback
// never appears in the output.
func TestSerializeAttributesDropsUnconfirmedParserGeneratedID(t *testing.T) {
	node := &dom.Node{Attr: []dom.Attr{{Key: "id", Val: "mwAB"}, {Key: "class", Val: "foo"}}}
	out := handler.SerializeAttributes(context.Background(), node, handler.AttrOptions{})
	assert.Equal(t, `class="foo"`, out)
	assert.NotContains(t, out, "mwAB")
}

// The same id is kept once the caller's provenance check confirms it.
func TestSerializeAttributesKeepsConfirmedParserGeneratedID(t *testing.T) {
	node := &dom.Node{Attr: []dom.Attr{{Key: "id", Val: "mwAB"}}}
	out := handler.SerializeAttributes(context.Background(), node, handler.AttrOptions{
		IDConfirmedByProvenance: func(_ *dom.Node, id string) bool { return id == "mwAB" },
	})
	assert.Equal(t, `id="mwAB"`, out)
}

// An about value that is nothing but a "#mwt<n>" id is stripped to empty,
// so the attribute is dropped.
func TestSerializeAttributesStripsAboutPrefix(t *testing.T) {
	node := &dom.Node{Attr: []dom.Attr{{Key: "about", Val: "#mwt1"}}}
	out := handler.SerializeAttributes(context.Background(), node, handler.AttrOptions{})
	assert.Equal(t, "", out)
}

// A typeof value made only of internal "mw:" bookkeeping tokens is
// stripped to empty, so the attribute is dropped.
func TestSerializeAttributesStripsMwTypeofTokens(t *testing.T) {
	node := &dom.Node{Attr: []dom.Attr{{Key: "typeof", Val: "mw:Transclusion mw:ExpandedAttrs"}}}
	out := handler.SerializeAttributes(context.Background(), node, handler.AttrOptions{})
	assert.Equal(t, "", out)
}
