package escape

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/sync/singleflight"

	"maunium.net/go/wtserialize/escape/oraclestore"
)

// CachingOracle decorates another Oracle with a persisted decision cache
// and in-flight deduplication. It exists for oracles that perform
// out-of-process checks (spec.md §5); a pure heuristic oracle like
// DefaultOracle gains nothing from it and can be used directly.
//
// Deduplicating concurrent identical lookups with singleflight does not
// reintroduce the fan-out parallelism spec.md §5 rules out for the walk
// itself — the walk stays a sequential chain of continuations; this only
// collapses redundant work when two independent Serialize calls (e.g. in a
// server handling concurrent requests) happen to ask the same question at
// the same time.
type CachingOracle struct {
	Inner Oracle
	Store *oraclestore.Store
	group singleflight.Group
}

func NewCachingOracle(inner Oracle, store *oraclestore.Store) *CachingOracle {
	return &CachingOracle{Inner: inner, Store: store}
}

func cacheKey(text string, wctx Context) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%t|%t|%t|%t|%t|%c|%t|%s", wctx.Mode, wctx.OnSOL, wctx.InNoWiki,
		wctx.InHTMLPre, wctx.InIndentPre, wctx.SingleLine, wctx.PrecedingChar, wctx.HasPreceding, text)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *CachingOracle) Decide(ctx context.Context, text string, wctx Context) (Decision, error) {
	key := cacheKey(text, wctx)
	v, err, _ := c.group.Do(key, func() (any, error) {
		if cached, ok, err := c.Store.Get(ctx, key); err == nil && ok {
			return Decision{NeedsNowiki: cached.NeedsNowiki, ForceNamed: cached.ForceNamed}, nil
		}
		d, err := c.Inner.Decide(ctx, text, wctx)
		if err != nil {
			return Decision{}, err
		}
		_ = c.Store.Put(ctx, key, oraclestore.Decision{NeedsNowiki: d.NeedsNowiki, ForceNamed: d.ForceNamed})
		return d, nil
	})
	if err != nil {
		return Decision{}, err
	}
	return v.(Decision), nil
}
