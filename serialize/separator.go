package serialize

import (
	"strings"

	"maunium.net/go/wtserialize/dom"
	"maunium.net/go/wtserialize/internal/ringcache"
)

// Unbounded stands in for "no maximum" in a SepSide.Max.
const Unbounded = 1 << 30

// SepSide is one half of a handler's separator contract (spec.md §6
// "Handler contract... a separator contract {before, after} each being
// {min, max, force_sol}").
type SepSide struct {
	Min      int
	Max      int
	ForceSOL bool
}

// SepContract is a handler's declared whitespace requirements on both
// sides of the node it handles.
type SepContract struct {
	Before SepSide
	After  SepSide
}

// SepKind distinguishes the three constraint shapes spec.md §3 names.
type SepKind int

const (
	SepSibling SepKind = iota
	SepParentChild
	SepChildParent
)

// ConstraintInfo is spec.md §3's constraint_info: {sepType, nodeA, nodeB, onSOL}.
type ConstraintInfo struct {
	Kind  SepKind
	NodeA *dom.Node
	NodeB *dom.Node
	OnSOL bool
}

// pendingSeparator is the not-yet-resolved whitespace between the last
// emitted node and the next one.
type pendingSeparator struct {
	min, max int
	forceSOL bool
	src      string
	info     ConstraintInfo
}

// combine merges two sides of a separator contract per spec.md §4.7:
// "min_final = max(min_A, min_B); max_final = min(max_A, max_B);
// infeasibility (min_final > max_final) resolves by letting min win."
func combine(after, before SepSide) (min, max int, forceSOL bool) {
	min = maxInt(after.Min, before.Min)
	max = minInt(after.Max, before.Max)
	if max < min {
		max = min
	}
	forceSOL = after.ForceSOL || before.ForceSOL
	return
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func countNewlines(s string) int {
	return strings.Count(s, "\n")
}

// resolutionKey is the key under which separatorEngine memoizes resolved
// separator strings, so that calling the resolution between the same two
// contracts twice produces the same result (spec.md §8 "Separator
// idempotence"). resolveUncached is already pure; memoizing also saves
// recomputing the newline count/clamp work for hot repeated contract
// pairs (e.g. "p" after "p" throughout a document).
type resolutionKey struct {
	min, max int
	forceSOL bool
	src      string
	lineNonEmpty bool
	nextWantsSpace bool
}

type separatorEngine struct {
	cache *ringcache.Cache[resolutionKey, string]
}

func newSeparatorEngine() *separatorEngine {
	return &separatorEngine{cache: ringcache.New[resolutionKey, string](256)}
}

// resolve turns a pending separator into concrete text. src, when present,
// is kept verbatim if it already satisfies the constraints; otherwise the
// engine synthesizes newlines (clamped to [min,max]) and falls back to a
// single space when no newline is required but the following content
// needs separation from a non-empty current line.
func (e *separatorEngine) resolve(p pendingSeparator, lineNonEmpty, nextWantsSpace bool) string {
	key := resolutionKey{
		min: p.min, max: p.max, forceSOL: p.forceSOL, src: p.src,
		lineNonEmpty: lineNonEmpty, nextWantsSpace: nextWantsSpace,
	}
	if cached, ok := e.cache.Get(key); ok {
		return cached
	}
	resolved := e.resolveUncached(p, lineNonEmpty, nextWantsSpace)
	e.cache.Put(key, resolved)
	return resolved
}

func (e *separatorEngine) resolveUncached(p pendingSeparator, lineNonEmpty, nextWantsSpace bool) string {
	if p.src != "" && srcSatisfies(p.src, p) {
		return p.src
	}
	n := clampInt(countNewlines(p.src), p.min, p.max)
	if p.forceSOL && n == 0 {
		n = 1
	}
	if n > 0 {
		return strings.Repeat("\n", n)
	}
	if nextWantsSpace && lineNonEmpty {
		return " "
	}
	return ""
}

func srcSatisfies(src string, p pendingSeparator) bool {
	n := countNewlines(src)
	if n < p.min || n > p.max {
		return false
	}
	if p.forceSOL && !strings.HasSuffix(src, "\n") {
		return false
	}
	return true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// rewriteZeroWidthParentChild implements spec.md §4.7's "Zero-width
// parent-child case": when a node with zero DSR width has children, the
// sibling-type constraint between its predecessor and itself is rewritten
// as a parent-child constraint between it and its first child.
func rewriteZeroWidthParentChild(info ConstraintInfo, zeroWidthNode *dom.Node) ConstraintInfo {
	firstChild := zeroWidthNode.FirstChild
	if firstChild == nil {
		return info
	}
	return ConstraintInfo{
		Kind:  SepParentChild,
		NodeA: zeroWidthNode,
		NodeB: firstChild,
		OnSOL: info.OnSOL,
	}
}
