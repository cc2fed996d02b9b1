package memdom

import (
	"fmt"
	"strings"

	"github.com/vango-dev/vrt/pkg/vdom"
)

type propKind uint8

const (
	stringProp propKind = iota + 1
	boolProp
)

// globalProps are DOM properties every element exposes.
var globalProps = map[string]propKind{
	"id":     stringProp,
	"title":  stringProp,
	"lang":   stringProp,
	"dir":    stringProp,
	"hidden": boolProp,
}

// tagProps are the element-specific DOM properties.
var tagProps = map[string]map[string]propKind{
	"input": {
		"value":       stringProp,
		"type":        stringProp,
		"name":        stringProp,
		"placeholder": stringProp,
		"checked":     boolProp,
		"disabled":    boolProp,
		"readOnly":    boolProp,
		"required":    boolProp,
	},
	"button": {
		"type":     stringProp,
		"name":     stringProp,
		"disabled": boolProp,
	},
	"textarea": {
		"value":       stringProp,
		"placeholder": stringProp,
		"disabled":    boolProp,
	},
	"select": {
		"value":    stringProp,
		"disabled": boolProp,
	},
	"option": {
		"value":    stringProp,
		"selected": boolProp,
		"disabled": boolProp,
	},
	"a": {
		"href":   stringProp,
		"target": stringProp,
	},
	"img": {
		"src": stringProp,
		"alt": stringProp,
	},
	"label": {
		"htmlFor": stringProp,
	},
}

// unreflected properties never show up as attributes.
var unreflected = map[string]bool{
	"value": true,
}

func propKindOf(el *Node, key string) (propKind, bool) {
	// input.form is a read-only property; it can only be set as an attribute.
	if key == "form" && el.Tag == "input" {
		return 0, false
	}
	if kind, ok := tagProps[el.Tag][key]; ok {
		return kind, true
	}
	kind, ok := globalProps[key]
	return kind, ok
}

func attrName(prop string) string {
	if prop == "htmlFor" {
		return "for"
	}
	return strings.ToLower(prop)
}

// PatchProp applies one prop change. The class prop is normalized, event
// handlers go through an invoker, known DOM properties are set as
// properties and everything else becomes an attribute.
func (d *Document) PatchProp(node any, key string, prev, next any) {
	el := asNode(node)
	d.count("prop")

	switch {
	case key == "class" || key == "className":
		if next == nil {
			el.RemoveAttr("class")
			return
		}
		el.SetAttr("class", vdom.NormalizeClass(next))

	case vdom.IsOn(key):
		d.patchEvent(el, key, next)

	default:
		if kind, ok := propKindOf(el, key); ok {
			d.setProp(el, key, kind, next)
			return
		}
		if next == nil || next == false {
			el.RemoveAttr(key)
			return
		}
		el.SetAttr(key, fmt.Sprint(next))
	}
}

func (d *Document) setProp(el *Node, key string, kind propKind, next any) {
	if el.props == nil {
		el.props = make(map[string]any)
	}

	switch kind {
	case boolProp:
		// An empty string means "present", as in <input disabled>.
		on := next == "" || vdom.Truthy(next)
		el.props[key] = on
		if on {
			el.SetAttr(attrName(key), "")
		} else {
			el.RemoveAttr(attrName(key))
		}

	default:
		if next == nil {
			delete(el.props, key)
			el.RemoveAttr(attrName(key))
			return
		}
		s := fmt.Sprint(next)
		el.props[key] = s
		if !unreflected[key] {
			el.SetAttr(attrName(key), s)
		}
	}
}
