package wikidefault

import (
	"context"

	"maunium.net/go/wtserialize/dom"
	"maunium.net/go/wtserialize/serialize"
)

// List itself emits nothing; wikitext lists have no block delimiter, only
// per-item markers, so List just recurses into its <li> children and
// contributes the blank-line-free block separator around the whole list.
type List struct{}

func (List) Handle(ctx context.Context, w *serialize.Walker, node *dom.Node, wrapperUnmodified bool) (*dom.Node, error) {
	return w.SerializeChildrenOf(node)
}

func (List) SeparatorContract(node *dom.Node) serialize.SepContract {
	return serialize.SepContract{
		Before: serialize.SepSide{Min: 0, Max: serialize.Unbounded, ForceSOL: true},
		After:  serialize.SepSide{Min: 0, Max: serialize.Unbounded, ForceSOL: true},
	}
}

// ListItem emits the nesting-depth marker run built from every ancestor
// list tag (ul -> '*', ol -> '#'), innermost last, e.g. "ul > ol > li"
// emits "*#". This is the wikitext analogue of the nested <ul><ol>
// structure without any per-level delimiter beyond the marker itself.
type ListItem struct{}

func (ListItem) Handle(ctx context.Context, w *serialize.Walker, node *dom.Node, wrapperUnmodified bool) (*dom.Node, error) {
	w.EmitBounded(node, listMarkerRun(node))
	w.EmitPlain(node, " ")
	return w.SerializeChildrenOf(node)
}

func (ListItem) SeparatorContract(node *dom.Node) serialize.SepContract {
	return serialize.SepContract{
		Before: serialize.SepSide{Min: 0, Max: serialize.Unbounded, ForceSOL: true},
		After:  serialize.SepSide{Min: 0, Max: serialize.Unbounded, ForceSOL: true},
	}
}

func listMarkerRun(li *dom.Node) string {
	var innermostFirst []byte
	for n := li.Parent; n != nil; n = n.Parent {
		switch n.Tag {
		case "ul":
			innermostFirst = append(innermostFirst, '*')
		case "ol":
			innermostFirst = append(innermostFirst, '#')
		case "dl":
			if li.Tag == "dt" {
				innermostFirst = append(innermostFirst, ';')
			} else {
				innermostFirst = append(innermostFirst, ':')
			}
		default:
			continue
		}
	}
	markers := make([]byte, len(innermostFirst))
	for i, b := range innermostFirst {
		markers[len(markers)-1-i] = b
	}
	return string(markers)
}
