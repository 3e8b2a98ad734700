package dom

import (
	"encoding/json"
	"fmt"
)

// jsonNode is the on-disk shape of a dom.Node snapshot: the annotated
// HTML DOM the core consumes, serialized as JSON so cmd/wtserialize (and
// tests) can build one without a full HTML+data-parsoid parser. A real
// wiki parser would construct dom.Node trees directly in-process; this
// schema exists for the CLI boundary and test fixtures only.
type jsonNode struct {
	Type string      `json:"type"` // "element", "text", "comment"
	Tag  string      `json:"tag,omitempty"`
	Data string      `json:"data,omitempty"`
	Attr []jsonAttr  `json:"attr,omitempty"`
	Children []jsonNode `json:"children,omitempty"`

	Provenance *jsonProvenance `json:"provenance,omitempty"`
}

type jsonAttr struct {
	Key string `json:"key"`
	Val string `json:"val"`
}

type jsonDSR struct {
	Start      *int `json:"start,omitempty"`
	End        *int `json:"end,omitempty"`
	OpenWidth  *int `json:"open_width,omitempty"`
	CloseWidth *int `json:"close_width,omitempty"`
}

type jsonProvenance struct {
	DSR               jsonDSR `json:"dsr"`
	Stx               string  `json:"stx,omitempty"`
	AutoInsertedStart bool    `json:"auto_inserted_start,omitempty"`
	AutoInsertedEnd   bool    `json:"auto_inserted_end,omitempty"`
	SelfClose         bool    `json:"self_close,omitempty"`
	NoClose           bool    `json:"no_close,omitempty"`
	Fostered          bool    `json:"fostered,omitempty"`
	Misnested         bool    `json:"misnested,omitempty"`
	LiHackSrc         string  `json:"li_hack_src,omitempty"`
	SrcTagName        string  `json:"src_tag_name,omitempty"`
	DataMW            json.RawMessage `json:"data_mw,omitempty"`
	A                 map[string]*string `json:"a,omitempty"`
	Sa                map[string]string  `json:"sa,omitempty"`
	DiffMarked        bool `json:"diff_marked,omitempty"`
	OnlySubtreeChanged bool `json:"only_subtree_changed,omitempty"`
}

// DecodeJSON parses a DOM snapshot in the schema jsonNode documents and
// builds the corresponding Node tree, rooted at the snapshot's own
// top-level node; no wrapper element is added.
func DecodeJSON(data []byte) (*Node, error) {
	var root jsonNode
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("dom: decode json: %w", err)
	}
	return buildNode(root)
}

func buildNode(jn jsonNode) (*Node, error) {
	n := &Node{}
	switch jn.Type {
	case "element", "":
		n.Type = ElementNode
		n.Tag = jn.Tag
	case "text":
		n.Type = TextNode
		n.Data = jn.Data
	case "comment":
		n.Type = CommentNode
		n.Data = jn.Data
	default:
		return nil, fmt.Errorf("dom: unknown node type %q", jn.Type)
	}
	for _, a := range jn.Attr {
		n.Attr = append(n.Attr, Attr{Key: a.Key, Val: a.Val})
	}
	if jn.Provenance != nil {
		p := &Provenance{
			DSR:                DSR{Start: jn.Provenance.DSR.Start, End: jn.Provenance.DSR.End, OpenWidth: jn.Provenance.DSR.OpenWidth, CloseWidth: jn.Provenance.DSR.CloseWidth},
			Stx:                jn.Provenance.Stx,
			AutoInsertedStart:  jn.Provenance.AutoInsertedStart,
			AutoInsertedEnd:    jn.Provenance.AutoInsertedEnd,
			SelfClose:          jn.Provenance.SelfClose,
			NoClose:            jn.Provenance.NoClose,
			Fostered:           jn.Provenance.Fostered,
			Misnested:          jn.Provenance.Misnested,
			LiHackSrc:          jn.Provenance.LiHackSrc,
			SrcTagName:         jn.Provenance.SrcTagName,
			A:                  jn.Provenance.A,
			Sa:                 jn.Provenance.Sa,
			DiffMarked:         jn.Provenance.DiffMarked,
			OnlySubtreeChanged: jn.Provenance.OnlySubtreeChanged,
		}
		if len(jn.Provenance.DataMW) > 0 {
			p.DataMW = NewDataMW(string(jn.Provenance.DataMW))
		}
		n.Provenance = p
	}
	for _, c := range jn.Children {
		child, err := buildNode(c)
		if err != nil {
			return nil, err
		}
		n.AppendChild(child)
	}
	return n, nil
}
