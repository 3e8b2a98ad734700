package handler

// Attribute-list serialization (spec.md §4.5): turning a node's (key,
// value, provenance) triples back into a single wikitext-ready attribute
// string. This lives alongside the generic HTML handler that's its only
// caller in this package, rather than its own package, since nothing
// outside handler needs it.

import (
	"context"
	"html"
	"regexp"
	"sort"
	"strings"

	"maunium.net/go/wtserialize/dom"
	"maunium.net/go/wtserialize/escape"
)

// attrIgnoreSet holds the keys spec.md §4.5 rule 1 drops unconditionally
// — internal bookkeeping the parser attaches that must never round-trip
// into wikitext.
var attrIgnoreSet = map[string]bool{
	"data-parsoid":           true,
	"data-mw":                true,
	"data-ve-changed":        true,
	"data-parsoid-changed":   true,
	"data-parsoid-diff":      true,
	"data-parsoid-serialize": true,
}

var parserGeneratedID = regexp.MustCompile(`^mw[\w-]{2,}$`)
var aboutPrefix = regexp.MustCompile(`^#mwt\d+`)
var typeofMwToken = regexp.MustCompile(`(^|\s)mw:\S+`)

// TemplatedAttrResolver answers spec.md §4.5 rule 4: given an attribute
// key and value as they literally appear in the DOM, report the
// templated (data-mw-resolved) key and/or value to emit instead, when the
// attribute was generated from a template parameter.
//
// The serializer core only consumes this interface (spec.md §1 scopes
// "the attribute key/value from data-mw oracle" out of the core); a real
// deployment backs it with the node's data-mw-derived key/value map,
// which is why Resolve takes the node rather than just the raw strings.
type TemplatedAttrResolver interface {
	Resolve(node *dom.Node, key, value string) (resolvedKey, resolvedValue string, templated bool)
}

// NoopAttrResolver treats every attribute as non-templated, passing
// key/value through unchanged.
type NoopAttrResolver struct{}

func (NoopAttrResolver) Resolve(_ *dom.Node, key, value string) (string, string, bool) {
	return key, value, false
}

// AttrOptions configures one SerializeAttributes call.
type AttrOptions struct {
	Resolver TemplatedAttrResolver
	Oracle   escape.Total
	// IDConfirmedByProvenance reports whether a parser-generated-looking
	// id attribute is confirmed legitimate by provenance (rule 2); nil
	// means never confirmed, matching the conservative "warn and drop"
	// default.
	IDConfirmedByProvenance func(node *dom.Node, id string) bool
	OnWarn                  func(msg string)
}

// SerializeAttributes renders node's live attribute list to a single
// string, in the seven-rule order spec.md §4.5 specifies.
func SerializeAttributes(ctx context.Context, node *dom.Node, opts AttrOptions) string {
	if opts.Resolver == nil {
		opts.Resolver = NoopAttrResolver{}
	}
	var parts []string
	reused := attrsReusedFromSource(node)

	for _, a := range node.Attr {
		key, val := a.Key, a.Val

		if attrIgnoreSet[key] { // rule 1
			continue
		}

		if key == "id" { // rule 2
			if parserGeneratedID.MatchString(val) {
				if opts.IDConfirmedByProvenance == nil || !opts.IDConfirmedByProvenance(node, val) {
					if opts.OnWarn != nil {
						opts.OnWarn("dropping parser-generated id attribute with no provenance confirmation: " + val)
					}
					continue
				}
			}
		}

		if key == "about" && aboutPrefix.MatchString(val) { // rule 3
			val = aboutPrefix.ReplaceAllString(val, "")
			if val == "" {
				continue
			}
		}
		if key == "typeof" {
			stripped := typeofMwToken.ReplaceAllString(val, "")
			stripped = strings.TrimSpace(stripped)
			if stripped != val {
				val = stripped
				if val == "" {
					continue
				}
			}
		}

		resolvedKey, resolvedVal, templated := opts.Resolver.Resolve(node, key, val)
		key, val = resolvedKey, resolvedVal
		key = strings.TrimPrefix(key, "data-x-") // rule 4

		part := renderAttr(ctx, key, val, templated, reused[key], opts)
		if part != "" {
			parts = append(parts, part)
		}
	}

	parts = append(parts, restoreSanitizedAttrs(node, liveAttrKeys(node))...) // rule 7

	return strings.Join(parts, " ")
}

func renderAttr(ctx context.Context, key, val string, templated, wasReused bool, opts AttrOptions) string {
	if val != "" { // rule 5
		out := val
		if !wasReused {
			out = html.EscapeString(val)
			out = strings.ReplaceAll(out, "&#39;", "&#039;")
			if opts.Oracle.Oracle != nil {
				decision := opts.Oracle.Decide(ctx, out, escape.Context{Mode: escape.ModeAttribute})
				if decision.NeedsNowiki {
					out = strings.ReplaceAll(out, "{{", "&#123;&#123;")
					out = strings.ReplaceAll(out, "}}", "&#125;&#125;")
				}
			}
		}
		return key + `="` + strings.ReplaceAll(out, `"`, "&quot;") + `"`
	}
	// rule 6: empty value.
	if templated || strings.ContainsAny(key, "{<") {
		return key
	}
	return key + `=""`
}

// attrsReusedFromSource reports, per key, whether the node's provenance
// marks the value as coming verbatim from source (the `a` snapshot
// spec.md §3 tracks) rather than needing fresh entity-escaping.
func attrsReusedFromSource(node *dom.Node) map[string]bool {
	out := map[string]bool{}
	if node.Provenance == nil {
		return out
	}
	for k := range node.Provenance.A {
		out[k] = true
	}
	return out
}

func liveAttrKeys(node *dom.Node) map[string]bool {
	out := map[string]bool{}
	for _, a := range node.Attr {
		out[a.Key] = true
	}
	return out
}

// restoreSanitizedAttrs implements rule 7: attributes sanitized away by
// an upstream cleanup pass, recorded in provenance's Sa map, are restored
// verbatim as long as nothing re-added that key live.
func restoreSanitizedAttrs(node *dom.Node, live map[string]bool) []string {
	if node.Provenance == nil || len(node.Provenance.Sa) == 0 {
		return nil
	}
	keys := make([]string, 0, len(node.Provenance.Sa))
	for k := range node.Provenance.Sa {
		if !live[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		v := node.Provenance.Sa[k]
		if v == "" {
			out = append(out, k)
			continue
		}
		out = append(out, k+`="`+strings.ReplaceAll(v, `"`, "&quot;")+`"`)
	}
	return out
}
