// pkg/binder/collect.go
package binder

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/domunify/pkg/dom"
)

// CollectFlat gathers every bound value under root, ignoring containers.
// Binding targets are elements carrying the key attribute and every native
// form control. Repeated keys accumulate into a list.
func (b *Binder) CollectFlat(root *html.Node, opts CollectOptions) Data {
	result := Data{}
	if root == nil {
		return result
	}
	selector := fmt.Sprintf("[%s], input, select, textarea", b.attrs.Key)
	b.collect(result, b.queryAll(root, selector), opts)
	return result
}

// CollectNested gathers bound values under root, scoping everything inside a
// container under the container's name. Sibling containers sharing a name
// produce a list of objects. Plain elements between root and a target are
// walked through; only container markers start a new scope.
func (b *Binder) CollectNested(root *html.Node, opts CollectOptions) Data {
	result := Data{}
	if root == nil {
		return result
	}
	selector := fmt.Sprintf("[%s], input[name], select[name], textarea[name]", b.attrs.Key)
	b.collect(result, b.findDirect(root, selector), opts)

	var order []string
	groups := make(map[string][]*html.Node)
	for _, c := range b.findDirect(root, fmt.Sprintf("[%s]", b.attrs.Container)) {
		name := dom.Attr(c, b.attrs.Container)
		if _, seen := groups[name]; !seen {
			order = append(order, name)
		}
		groups[name] = append(groups[name], c)
	}
	for _, name := range order {
		group := groups[name]
		if len(group) == 1 {
			result[name] = b.CollectNested(group[0], opts)
			continue
		}
		list := make([]Data, len(group))
		for i, c := range group {
			list[i] = b.CollectNested(c, opts)
		}
		result[name] = list
	}
	return result
}

func (b *Binder) collect(result Data, targets []*html.Node, opts CollectOptions) {
	seen := make(map[*html.Node]struct{}, len(targets))
	for _, el := range targets {
		if _, dup := seen[el]; dup {
			continue
		}
		seen[el] = struct{}{}
		if !opts.IncludeDisabled && disabled(el) {
			continue
		}
		key := b.keyOf(el)
		if key == "" {
			continue
		}
		value, ok := b.valueOf(el)
		if !ok {
			continue
		}
		if opts.ExcludeEmpty && value == "" {
			continue
		}
		accumulate(result, key, value)
	}
}
