package escape_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maunium.net/go/wtserialize/escape"
)

func TestDefaultOracleInlineMarkup(t *testing.T) {
	o := escape.DefaultOracle{}

	d, err := o.Decide(context.Background(), "plain text", escape.Context{})
	require.NoError(t, err)
	assert.False(t, d.NeedsNowiki)

	d, err = o.Decide(context.Background(), "has [[a link]]", escape.Context{})
	require.NoError(t, err)
	assert.True(t, d.NeedsNowiki)

	d, err = o.Decide(context.Background(), "*bullet", escape.Context{OnSOL: true})
	require.NoError(t, err)
	assert.True(t, d.NeedsNowiki)

	d, err = o.Decide(context.Background(), "*bullet", escape.Context{OnSOL: false})
	require.NoError(t, err)
	assert.False(t, d.NeedsNowiki)
}

func TestDefaultOracleInNoWikiOrPreIsInert(t *testing.T) {
	o := escape.DefaultOracle{}

	d, err := o.Decide(context.Background(), "[[anything]]", escape.Context{InNoWiki: true})
	require.NoError(t, err)
	assert.False(t, d.NeedsNowiki)

	d, err = o.Decide(context.Background(), "[[anything]]", escape.Context{InHTMLPre: true})
	require.NoError(t, err)
	assert.False(t, d.NeedsNowiki)
}

func TestDefaultOracleTemplateArg(t *testing.T) {
	o := escape.DefaultOracle{}

	d, err := o.Decide(context.Background(), "a|b", escape.Context{Mode: escape.ModeTemplateArg})
	require.NoError(t, err)
	assert.True(t, d.NeedsNowiki)
	assert.False(t, d.ForceNamed)

	d, err = o.Decide(context.Background(), "a=b", escape.Context{Mode: escape.ModeTemplateArg})
	require.NoError(t, err)
	assert.False(t, d.NeedsNowiki)
	assert.True(t, d.ForceNamed)
}

func TestDefaultOracleAttributeMode(t *testing.T) {
	o := escape.DefaultOracle{}

	d, err := o.Decide(context.Background(), `has "quotes"`, escape.Context{Mode: escape.ModeAttribute})
	require.NoError(t, err)
	assert.False(t, d.NeedsNowiki)

	d, err = o.Decide(context.Background(), "{{looks templated}}", escape.Context{Mode: escape.ModeAttribute})
	require.NoError(t, err)
	assert.True(t, d.NeedsNowiki)
}

func TestTotalDegradesOnError(t *testing.T) {
	failing := escape.Total{
		Oracle: failingOracle{},
		OnErr:  func(error) {},
	}
	d := failing.Decide(context.Background(), "foo", escape.Context{})
	assert.True(t, d.NeedsNowiki)
}

type failingOracle struct{}

func (failingOracle) Decide(context.Context, string, escape.Context) (escape.Decision, error) {
	return escape.Decision{}, errors.New("boom")
}
