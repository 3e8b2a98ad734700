package handler

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"maunium.net/go/wtserialize/dom"
	"maunium.net/go/wtserialize/escape"
	"maunium.net/go/wtserialize/serialize"
)

// Encapsulation emits the {{...}} / <ext attrs>body</ext> surface form
// for a template or extension wrapper from its data_mw envelope (spec.md
// §4.3). It is selected ahead of every other rule by the registry (§4.2
// rule 1) and always advances the walker past the entire `about`-linked
// envelope (serialize.Walker's envelopeEnd, consulted via the selser path
// and mirrored here for the non-reused case).
type Encapsulation struct{}

func (Encapsulation) Handle(ctx context.Context, w *serialize.Walker, node *dom.Node, wrapperUnmodified bool) (*dom.Node, error) {
	if node.Provenance == nil || node.Provenance.DataMW == nil {
		log := w.Logger()
		log.Error().Str("about", aboutOf(node)).Msg("encapsulation wrapper has no data-mw; dropping")
		return envelopeEnd(node), nil
	}
	dataMW := node.Provenance.DataMW
	if name, attrList, body, ok := dataMW.Extension(); ok {
		emitExtension(w, node, name, attrList, body)
		return envelopeEnd(node), nil
	}
	if parts, literals, ok := dataMW.Parts(); ok {
		emitTransclusion(ctx, w, node, parts, literals)
		return envelopeEnd(node), nil
	}
	log := w.Logger()
	log.Error().Str("about", aboutOf(node)).Msg("encapsulation wrapper has no transclusion or extension envelope; dropping")
	return envelopeEnd(node), nil
}

func (Encapsulation) SeparatorContract(node *dom.Node) serialize.SepContract {
	return serialize.SepContract{}
}

func aboutOf(node *dom.Node) string {
	a, _ := node.GetAttr("about")
	return a
}

// envelopeEnd mirrors serialize.Walker's own envelope-skip logic so the
// handler's returned "next" is the same node the selser path would have
// resumed from.
func envelopeEnd(node *dom.Node) *dom.Node {
	about, ok := node.GetAttr("about")
	if !ok {
		return node.NextSibling
	}
	n := node.NextSibling
	for n != nil {
		if a, ok := n.GetAttr("about"); !ok || a != about {
			return n
		}
		n = n.NextSibling
	}
	return nil
}

// emitTransclusion implements the template branch of spec.md §4.3: a part
// list mixing literal wikitext strings and {target, params} template
// invocations is re-assembled, one `{{target|args...}}` per template part,
// with literal parts emitted verbatim in the order interleave gives them.
func emitTransclusion(ctx context.Context, w *serialize.Walker, node *dom.Node, parts []dom.TemplatePart, literals []string) {
	litIdx := 0
	for _, lit := range interleave(parts, literals, node) {
		if lit.isLiteral {
			w.EmitPlain(node, lit.text)
			litIdx++
			continue
		}
		w.EmitBounded(node, "{{")
		w.EmitPlain(node, emitTemplateTarget(lit.part))
		emitTemplateParams(ctx, w, node, lit.part)
		w.EmitBounded(node, "}}")
	}
}

type partOrLiteral struct {
	isLiteral bool
	text      string
	part      dom.TemplatePart
}

// interleave merges the two slices DataMW.Parts returns into one emission
// list. Template parts and literals each keep their own source order, but
// literals carry no recorded position, so the merge does not reproduce
// the original mix: each literal is placed before the next template part,
// and any literals left over follow the last template part.
func interleave(parts []dom.TemplatePart, literals []string, node *dom.Node) []partOrLiteral {
	// With no literals (the common case, and every one of spec.md's
	// worked examples) the result is the template parts in source order.
	out := make([]partOrLiteral, 0, len(parts)+len(literals))
	if len(literals) == 0 {
		for _, p := range parts {
			out = append(out, partOrLiteral{part: p})
		}
		return out
	}
	li := 0
	for _, p := range parts {
		if li < len(literals) {
			out = append(out, partOrLiteral{isLiteral: true, text: literals[li]})
			li++
		}
		out = append(out, partOrLiteral{part: p})
	}
	for ; li < len(literals); li++ {
		out = append(out, partOrLiteral{isLiteral: true, text: literals[li]})
	}
	return out
}

func emitTemplateTarget(part dom.TemplatePart) string {
	if part.TargetWt != "" {
		return part.TargetWt
	}
	return part.TargetHref
}

// emitTemplateParams implements spec.md §4.3's per-argument rules:
// preserved order from pi, positional-vs-named detection against the
// running counter, spacing from pi.spc, oracle-driven escaping, and the
// wt/html fallback for a param's value.
func emitTemplateParams(ctx context.Context, w *serialize.Walker, node *dom.Node, part dom.TemplatePart) {
	order := paramOrder(node, part)
	positionalCounter := 1
	for _, key := range order {
		p, ok := part.Params[key]
		if !ok {
			continue
		}
		emitKey := resolveParamKey(node, key)
		isPositional := emitKey == strconv.Itoa(positionalCounter) && !namedFlag(node, emitKey)

		value, needsNowiki := resolveParamValue(ctx, w, node, p, isPositional)
		if needsNowiki {
			isPositional = false // oracle forced named
		}

		spc := paramSpacing(node, emitKey)
		w.EmitBounded(node, "|")
		if isPositional {
			w.EmitPlain(node, spc[0]+value+spc[3])
			positionalCounter++
		} else {
			w.EmitPlain(node, spc[0]+emitKey+spc[1]+"="+spc[2]+value+spc[3])
		}
	}
}

// paramOrder returns param keys in pi order, then appends any param keys
// present in the part but absent from pi (newly added arguments), per
// spec.md §4.3: "Preserve original argument order from pi..., then
// append any new arguments."
func paramOrder(node *dom.Node, part dom.TemplatePart) []string {
	seen := map[string]bool{}
	var order []string
	if node.Provenance != nil && node.Provenance.Info != nil {
		for _, group := range node.Provenance.Info.Pi {
			for _, k := range group {
				if _, ok := part.Params[k]; ok && !seen[k] {
					order = append(order, k)
					seen[k] = true
				}
			}
		}
	}
	var rest []string
	for k := range part.Params {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// resolveParamKey implements spec.md §4.3's key rule: prefer key.wt, else
// the map key trimmed of whitespace, rewriting data_mw if trimming
// changed anything.
func resolveParamKey(node *dom.Node, key string) string {
	if node.Provenance == nil || node.Provenance.DataMW == nil {
		return key
	}
	parts, _, ok := node.Provenance.DataMW.Parts()
	if !ok {
		return key
	}
	for partIdx, part := range parts {
		p, found := part.Params[key]
		if !found {
			continue
		}
		if p.HasKeyWt {
			return p.KeyWt
		}
		trimmed := strings.TrimSpace(key)
		if trimmed != key {
			_ = node.Provenance.DataMW.RenameParam(partIdx, key, trimmed)
			return trimmed
		}
		return key
	}
	return key
}

func namedFlag(node *dom.Node, key string) bool {
	return node.Provenance != nil && node.Provenance.Info != nil && node.Provenance.Info.Named[key]
}

// paramSpacing returns the {before-key, after-key, after-equals,
// after-value} spacing quadruple from pi.spc, defaulting per spec.md §4.3
// to ["", " ", " ", ""] for a key that was already named in pi — but a key
// with no pi entry at all is one §4.3's "append any new arguments" rule
// just added, which never had a recorded style to default to, so it gets
// all-empty spacing instead (spec.md §8 scenario 3 turns on this: the
// newly-added "x" param renders as "x=b", not "x = b").
func paramSpacing(node *dom.Node, key string) [4]string {
	if node.Provenance != nil && node.Provenance.Info != nil {
		if spc, ok := node.Provenance.Info.Spc[key]; ok {
			return spc
		}
		if key != "" && piContainsKey(node.Provenance.Info.Pi, key) {
			return [4]string{"", " ", " ", ""}
		}
	}
	return [4]string{"", "", "", ""}
}

func piContainsKey(pi [][]string, key string) bool {
	for _, group := range pi {
		for _, k := range group {
			if k == key {
				return true
			}
		}
	}
	return false
}

// resolveParamValue implements the wt/html fallback and the escape-oracle
// consultation from spec.md §4.3; the returned needsNowiki actually
// reports the oracle's ForceNamed verdict (§4.3: "which may report it
// must be emitted as named... even when positional was intended").
func resolveParamValue(ctx context.Context, w *serialize.Walker, node *dom.Node, p dom.Param, isPositional bool) (value string, forceNamed bool) {
	if p.HasWt {
		value = p.Wt
	} else if p.HasHTML {
		value = serializeNestedHTML(ctx, w, node, p.HTML)
	}
	if !isPositional {
		value = strings.TrimSpace(value)
	}
	wctx := escape.Context{Mode: escape.ModeTemplateArg, OnSOL: false}
	decision := w.Oracle().Decide(ctx, value, wctx)
	if decision.NeedsNowiki {
		value = "<nowiki>" + value + "</nowiki>"
	}
	return value, decision.ForceNamed
}

// serializeNestedHTML implements §4.3's html-form fallback: "recursively
// serializing the html form via a nested serializer with on_sol=false".
// The nested document isn't available as a dom.Node here (p.HTML is a raw
// HTML string from data_mw, not a parsed node), so this degrades to
// stripping tags; a caller wiring a real HTML parser for param.html
// values should parse p.HTML into a dom.Node tree and call
// serialize.Serialize on it directly instead of going through this path.
func serializeNestedHTML(ctx context.Context, w *serialize.Walker, node *dom.Node, rawHTML string) string {
	log := w.Logger()
	log.Warn().Str("target", aboutOf(node)).Msg("template param has no wt form; falling back to tag-stripped html form")
	return stripTags(rawHTML)
}

func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// emitExtension implements the extension branch of spec.md §4.3.
func emitExtension(w *serialize.Walker, node *dom.Node, name string, attrList []dom.Attr, body dom.ExtensionBody) {
	attrStr := canonicalizeExtAttrs(attrList)
	if !body.HasAny {
		w.EmitPlain(node, "<"+name+attrStr+" />")
		return
	}
	resolved, ok := resolveExtensionBody(w, node, body)
	if !ok {
		log := w.Logger()
		log.Error().Str("ext", name).Msg("extension body could not be resolved; dropping call")
		return
	}
	w.EmitPlain(node, "<"+name+attrStr+">"+resolved+"</"+name+">")
}

func canonicalizeExtAttrs(attrList []dom.Attr) string {
	if len(attrList) == 0 {
		return ""
	}
	var b strings.Builder
	for _, a := range attrList {
		fmt.Fprintf(&b, " %s=%q", a.Key, a.Val)
	}
	return b.String()
}

// resolveExtensionBody implements the body-resolution priority from
// spec.md §4.3: html -> by-id lookup (current doc, then edited doc) ->
// extsrc.
func resolveExtensionBody(w *serialize.Walker, node *dom.Node, body dom.ExtensionBody) (string, bool) {
	if body.HTML != "" {
		return body.HTML, true
	}
	if body.HasID {
		root := node
		for root.Parent != nil {
			root = root.Parent
		}
		if found := findByID(root, body.ID); found != nil {
			return renderSubtreeText(found), true
		}
		if edited := w.EditedDoc(); edited != nil {
			if found := findByID(edited, body.ID); found != nil {
				return renderSubtreeText(found), true
			}
		}
	}
	if body.ExtSrc != "" {
		return body.ExtSrc, true
	}
	return "", false
}

func findByID(root *dom.Node, id string) *dom.Node {
	if root == nil {
		return nil
	}
	if v, ok := root.GetAttr("id"); ok && v == id {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func renderSubtreeText(n *dom.Node) string {
	var b strings.Builder
	var walk func(*dom.Node)
	walk = func(n *dom.Node) {
		if n.Type == dom.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
