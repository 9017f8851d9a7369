// pkg/binder/binder.go
package binder

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/domunify/pkg/dom"
)

// Data is a bound-data object. Values are strings, []string, []any, nested
// Data (or map[string]any), []Data, or scalars that are stringified on fill.
// A nil value means "leave untouched".
type Data map[string]any

// Attributes names the marker attributes that drive binding.
type Attributes struct {
	Key       string // explicit binding key, default "data-key"
	Container string // nesting boundary, default "data-container"
}

// DefaultAttributes returns the standard marker attributes.
func DefaultAttributes() Attributes {
	return Attributes{Key: "data-key", Container: "data-container"}
}

// CollectOptions tunes flat and nested collection.
type CollectOptions struct {
	IncludeDisabled bool
	ExcludeEmpty    bool
}

// Binder moves values between DOM subtrees and Data.
type Binder struct {
	doc    *dom.Document
	logger *zap.Logger
	attrs  Attributes
}

// New creates a Binder over doc. Zero-valued attribute names take defaults.
func New(doc *dom.Document, logger *zap.Logger, attrs Attributes) *Binder {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultAttributes()
	if attrs.Key == "" {
		attrs.Key = def.Key
	}
	if attrs.Container == "" {
		attrs.Container = def.Container
	}
	return &Binder{doc: doc, logger: logger.Named("binder"), attrs: attrs}
}

// Attributes returns the marker attributes in use.
func (b *Binder) Attributes() Attributes { return b.attrs }

// --- Queries ---

// queryAll runs a selector and degrades a bad one to "no matches".
func (b *Binder) queryAll(root *html.Node, selector string) []*html.Node {
	nodes, err := dom.QueryAll(root, selector)
	if err != nil {
		b.logger.Warn("Invalid selector; treating as no match.", zap.String("selector", selector), zap.Error(err))
		return nil
	}
	return nodes
}

// direct filters nodes to those not enclosed by a container below root.
func (b *Binder) direct(root *html.Node, nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if !b.insideContainer(root, n) {
			out = append(out, n)
		}
	}
	return out
}

func (b *Binder) insideContainer(root, n *html.Node) bool {
	for p := n.Parent; p != nil && p != root; p = p.Parent {
		if dom.HasAttr(p, b.attrs.Container) {
			return true
		}
	}
	return false
}

func (b *Binder) findDirect(root *html.Node, selector string) []*html.Node {
	return b.direct(root, b.queryAll(root, selector))
}

// withAttr keeps the nodes whose attr equals value.
func withAttr(nodes []*html.Node, attr, value string) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if v, ok := dom.GetAttr(n, attr); ok && v == value {
			out = append(out, n)
		}
	}
	return out
}

// keyOf resolves an element's binding key: explicit key, then name, then id.
func (b *Binder) keyOf(el *html.Node) string {
	if k := dom.Attr(el, b.attrs.Key); k != "" {
		return k
	}
	if k := dom.Attr(el, "name"); k != "" {
		return k
	}
	return dom.Attr(el, "id")
}

// --- Values ---

// valueOf extracts an element's bound value. ok is false for an unchecked
// checkbox or radio.
func (b *Binder) valueOf(el *html.Node) (any, bool) {
	if !dom.IsFormControl(el) {
		return dom.TextContent(el), true
	}
	if dom.IsCheckable(el) {
		if !b.doc.Checked(el) {
			return nil, false
		}
		return b.doc.Value(el), true
	}
	if dom.IsMultiple(el) {
		return b.selectedValues(el), true
	}
	return b.doc.Value(el), true
}

func (b *Binder) selectedValues(sel *html.Node) []string {
	values := []string{}
	for _, o := range b.doc.SelectedOptions(sel) {
		values = append(values, dom.OptionValue(o))
	}
	return values
}

// disabled mirrors the DOM's disabled property, which only controls carry.
func disabled(el *html.Node) bool {
	if !dom.IsFormControl(el) && (!dom.IsElement(el) || el.Data != "button") {
		return false
	}
	return dom.Disabled(el)
}

// accumulate stores value under key, turning repeats into a list in
// first-seen order.
func accumulate(result Data, key string, value any) {
	existing, ok := result[key]
	if !ok {
		result[key] = value
		return
	}
	if list, isList := existing.([]any); isList {
		result[key] = append(list, value)
		return
	}
	result[key] = []any{existing, value}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case string:
		return t == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}

// asData reports whether v is a nested object.
func asData(v any) (Data, bool) {
	switch t := v.(type) {
	case Data:
		return t, true
	case map[string]any:
		return Data(t), true
	}
	return nil, false
}

// AsData converts a decoded value into Data when it is an object.
func AsData(v any) (Data, bool) { return asData(v) }

// isRecordList reports whether v is a non-empty list of nested objects.
func isRecordList(v any) bool {
	switch t := v.(type) {
	case []Data:
		return len(t) > 0
	case []map[string]any:
		return len(t) > 0
	case []any:
		if len(t) == 0 {
			return false
		}
		_, ok := asData(t[0])
		return ok
	}
	return false
}

// AsRecords converts a decoded list of objects into []Data. ok is false when
// v is not a list or contains a non-object.
func AsRecords(v any) ([]Data, bool) {
	switch t := v.(type) {
	case []Data:
		return t, true
	case []map[string]any:
		out := make([]Data, len(t))
		for i := range t {
			out[i] = Data(t[i])
		}
		return out, true
	case []any:
		out := make([]Data, 0, len(t))
		for _, item := range t {
			d, ok := asData(item)
			if !ok {
				return nil, false
			}
			out = append(out, d)
		}
		return out, true
	}
	return nil, false
}

// toList returns the elements of a slice value as strings.
func toList(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, len(t))
		for i, item := range t {
			out[i] = toString(item)
		}
		return out, true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]string, rv.Len())
	for i := range out {
		out[i] = toString(rv.Index(i).Interface())
	}
	return out, true
}

// toString renders a bound value the way the DOM stringifies assignments.
func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case fmt.Stringer:
		return t.String()
	}
	if list, ok := toList(v); ok {
		return strings.Join(list, ",")
	}
	return fmt.Sprint(v)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// reset returns a control to its type-appropriate empty state.
func (b *Binder) reset(el *html.Node) {
	switch {
	case dom.IsCheckable(el):
		b.doc.SetChecked(el, false)
	case el.Data == "select":
		// Explicitly deselecting every option leaves a single-select empty.
		for _, o := range dom.Options(el) {
			b.doc.SetSelected(o, false)
		}
	default:
		b.doc.SetValue(el, "")
		if el.Data == "textarea" {
			dom.SetTextContent(el, "")
		}
	}
}
