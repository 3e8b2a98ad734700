package dom

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.mau.fi/util/exgjson"
)

// DataMW wraps a template/extension envelope (spec.md §3 "data_mw") as raw
// JSON. Parsoid-style data-mw blobs are loosely typed in practice (a
// param's "wt" is sometimes not a string — spec.md §7 "Type violation in
// data_mw"), so this stays on gjson/sjson rather than unmarshalling into a
// rigid struct: malformed fields degrade to their string form instead of
// failing the whole node.
type DataMW struct {
	raw string
}

// NewDataMW wraps a raw JSON document. No validation is performed eagerly;
// accessors fail soft.
func NewDataMW(raw string) *DataMW {
	return &DataMW{raw: raw}
}

func (d *DataMW) String() string {
	if d == nil {
		return ""
	}
	return d.raw
}

// Param is one template argument value: prefer Wt, fall back to HTML.
type Param struct {
	Wt      string
	HasWt   bool
	HTML    string
	HasHTML bool
	KeyWt   string
	HasKeyWt bool
}

// TemplatePart is one {template:{...}} entry of data_mw.parts.
type TemplatePart struct {
	index      int
	TargetWt   string
	TargetHref string
	Params     map[string]Param
}

// Parts returns every literal-string / template part of a transclusion
// envelope, in source order, and whether the envelope parsed as a
// transclusion at all (data_mw.parts present).
func (d *DataMW) Parts() ([]TemplatePart, []string, bool) {
	if d == nil || !gjson.Valid(d.raw) {
		return nil, nil, false
	}
	root := gjson.Parse(d.raw)
	partsVal := root.Get("parts")
	if !partsVal.Exists() || !partsVal.IsArray() {
		return nil, nil, false
	}
	var parts []TemplatePart
	var literals []string
	idx := 0
	partsVal.ForEach(func(_, part gjson.Result) bool {
		if part.Type == gjson.String {
			literals = append(literals, part.String())
			idx++
			return true
		}
		tmpl := part.Get("template")
		if !tmpl.Exists() {
			idx++
			return true
		}
		tp := TemplatePart{
			index:      idx,
			TargetWt:   tmpl.Get("target.wt").String(),
			TargetHref: tmpl.Get("target.href").String(),
			Params:     map[string]Param{},
		}
		tmpl.Get("params").ForEach(func(key, val gjson.Result) bool {
			p := Param{}
			if wt := val.Get("wt"); wt.Exists() {
				p.HasWt = true
				if wt.Type == gjson.String {
					p.Wt = wt.String()
				} else {
					// Type violation: coerce via the tokens-to-string
					// reducer (spec.md §7) — here, gjson's raw text.
					p.Wt = wt.Raw
				}
			}
			if html := val.Get("html"); html.Exists() {
				p.HasHTML = true
				p.HTML = html.String()
			}
			if keyWt := val.Get("key.wt"); keyWt.Exists() {
				p.HasKeyWt = true
				p.KeyWt = keyWt.String()
			}
			tp.Params[key.String()] = p
			return true
		})
		parts = append(parts, tp)
		idx++
		return true
	})
	return parts, literals, true
}

// RenameParam rewrites data_mw in place so the given part's parameter key
// is renamed, per spec.md §4.3: "If trimming changes the key, rewrite the
// param map under the trimmed name." partIndex indexes into the slice
// Parts returns (not the raw JSON array index, which may also include
// literal strings).
func (d *DataMW) RenameParam(partIndex int, oldKey, newKey string) error {
	parts, _, ok := d.Parts()
	if !ok || partIndex < 0 || partIndex >= len(parts) {
		return fmt.Errorf("dom: no template part at index %d", partIndex)
	}
	rawIndex := parts[partIndex].index
	oldPath := exgjson.Path("parts", strconv.Itoa(rawIndex), "template", "params", oldKey)
	newPath := exgjson.Path("parts", strconv.Itoa(rawIndex), "template", "params", newKey)
	val := gjson.Get(d.raw, oldPath)
	if !val.Exists() {
		return fmt.Errorf("dom: param %q not found in part %d", oldKey, partIndex)
	}
	updated, err := sjson.SetRaw(d.raw, newPath, val.Raw)
	if err != nil {
		return fmt.Errorf("dom: rename param: %w", err)
	}
	updated, err = sjson.Delete(updated, oldPath)
	if err != nil {
		return fmt.Errorf("dom: delete old param key: %w", err)
	}
	d.raw = updated
	return nil
}

// ExtensionBody resolves per spec.md §4.3's priority: html, then a
// by-id lookup the caller performs, then extsrc.
type ExtensionBody struct {
	HTML   string
	HasID  bool
	ID     string
	ExtSrc string
	HasAny bool
}

// Extension returns the extension envelope (name/attrs/body), and whether
// data_mw parsed as one at all.
func (d *DataMW) Extension() (name string, attrs []Attr, body ExtensionBody, ok bool) {
	if d == nil || !gjson.Valid(d.raw) {
		return "", nil, ExtensionBody{}, false
	}
	root := gjson.Parse(d.raw)
	nameVal := root.Get("name")
	if !nameVal.Exists() {
		return "", nil, ExtensionBody{}, false
	}
	name = nameVal.String()
	root.Get("attrs").ForEach(func(key, val gjson.Result) bool {
		attrs = append(attrs, Attr{Key: key.String(), Val: val.String()})
		return true
	})
	bodyVal := root.Get("body")
	if html := bodyVal.Get("html"); html.Exists() {
		body.HTML = html.String()
		body.HasAny = true
	}
	if id := bodyVal.Get("id"); id.Exists() {
		body.HasID = true
		body.ID = id.String()
		body.HasAny = true
	}
	if extsrc := bodyVal.Get("extsrc"); extsrc.Exists() {
		body.ExtSrc = extsrc.String()
		body.HasAny = true
	}
	return name, attrs, body, true
}

// matchesEncapsulationTypeof reports whether typeOf marks an encapsulation
// wrapper, per spec.md §6: "mw:Transclusion", "mw:Extension/<name>", etc.
func matchesEncapsulationTypeof(typeOf string) bool {
	for _, tok := range strings.Fields(typeOf) {
		if tok == "mw:Transclusion" || tok == "mw:Param" {
			return true
		}
		if strings.HasPrefix(tok, "mw:Extension/") {
			return true
		}
	}
	return false
}
