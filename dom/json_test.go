package dom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maunium.net/go/wtserialize/dom"
)

func TestDecodeJSONBuildsTree(t *testing.T) {
	raw := `{
		"type": "element",
		"tag": "body",
		"children": [
			{
				"type": "element",
				"tag": "p",
				"provenance": {"dsr": {"start": 0, "end": 3, "open_width": 0, "close_width": 0}},
				"children": [{"type": "text", "data": "foo"}]
			}
		]
	}`
	root, err := dom.DecodeJSON([]byte(raw))
	require.NoError(t, err)
	require.NotNil(t, root.FirstChild)

	p := root.FirstChild
	assert.Equal(t, dom.ElementNode, p.Type)
	assert.Equal(t, "p", p.Tag)
	require.NotNil(t, p.Provenance)
	require.True(t, p.Provenance.DSR.Valid())
	width, ok := p.Provenance.DSR.Width()
	assert.True(t, ok)
	assert.Equal(t, 3, width)

	require.NotNil(t, p.FirstChild)
	assert.Equal(t, dom.TextNode, p.FirstChild.Type)
	assert.Equal(t, "foo", p.FirstChild.Data)
}

func TestDecodeJSONAttrsAndSanitizedAttrs(t *testing.T) {
	raw := `{
		"type": "element",
		"tag": "span",
		"attr": [{"key": "class", "val": "foo"}],
		"provenance": {"dsr": {}, "sa": {"style": "color:red"}, "a": {"style": null}}
	}`
	n, err := dom.DecodeJSON([]byte(raw))
	require.NoError(t, err)
	v, ok := n.GetAttr("class")
	assert.True(t, ok)
	assert.Equal(t, "foo", v)
	require.NotNil(t, n.Provenance)
	assert.Equal(t, "color:red", n.Provenance.Sa["style"])
	assert.False(t, n.Provenance.DSR.Valid())
}

func TestDSRZeroWidthAndInvalid(t *testing.T) {
	var d dom.DSR
	assert.False(t, d.Valid())
	assert.False(t, d.ZeroWidth())
	_, ok := d.Width()
	assert.False(t, ok)

	zero := 0
	d = dom.DSR{Start: &zero, End: &zero}
	assert.True(t, d.Valid())
	assert.True(t, d.ZeroWidth())
}
