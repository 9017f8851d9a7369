// pkg/factory/source.go
package factory

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/domunify/pkg/dom"
	"github.com/xkilldash9x/domunify/pkg/sanitize"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Source supplies existing nodes to replicate. A cursor satisfies it.
type Source interface {
	SourceNodes() []*html.Node
}

// FromSource resolves any supported config variant into nodes appended to
// frag and returns the newly created top-level nodes:
//
//	Source          the source nodes are cloned with live state
//	string          JSON object or array of configs, otherwise sanitized HTML
//	[]any, []Config every entry is built as a config
//	*html.Node      cloned with live state
//	Config, map     built as a config
func (f *Factory) FromSource(src any, frag *html.Node) []*html.Node {
	if frag == nil {
		frag = f.doc.CreateFragment()
	}
	switch v := src.(type) {
	case nil:
		return nil
	case Source:
		var out []*html.Node
		for _, n := range v.SourceNodes() {
			clone := f.doc.CloneWithState(n)
			out = append(out, f.adopt(frag, clone)...)
		}
		return out
	case string:
		return f.fromString(v, frag)
	case []byte:
		return f.fromString(string(v), frag)
	case *html.Node:
		if v == nil {
			return nil
		}
		return f.adopt(frag, f.doc.CloneWithState(v))
	case []*html.Node:
		var out []*html.Node
		for _, n := range v {
			if n != nil {
				out = append(out, f.adopt(frag, f.doc.CloneWithState(n))...)
			}
		}
		return out
	case []any:
		return f.fromList(v, frag)
	case []Config, []*Config, []map[string]any:
		return f.fromList(normalizeChildren(v), frag)
	case Config, *Config, map[string]any:
		return f.CreateFromConfig(v, frag)
	}
	f.logger.Warn("Unsupported config variant; nothing created.", zap.String("type", fmt.Sprintf("%T", src)))
	return nil
}

func (f *Factory) fromList(items []any, frag *html.Node) []*html.Node {
	var out []*html.Node
	for _, item := range items {
		out = append(out, f.CreateFromConfig(item, frag)...)
	}
	return out
}

func (f *Factory) fromString(s string, frag *html.Node) []*html.Node {
	var parsed any
	if err := json.UnmarshalFromString(s, &parsed); err != nil {
		nodes := sanitize.ToNodes(s)
		for _, n := range nodes {
			frag.AppendChild(n)
		}
		return nodes
	}
	if list, ok := parsed.([]any); ok {
		return f.fromList(list, frag)
	}
	return f.CreateFromConfig(parsed, frag)
}

// adopt appends n to frag and returns what was actually inserted. A cloned
// fragment contributes its children.
func (f *Factory) adopt(frag, n *html.Node) []*html.Node {
	if !dom.IsFragment(n) {
		dom.AppendChild(frag, n)
		return []*html.Node{n}
	}
	moved := dom.ChildNodes(n)
	dom.AppendChild(frag, n)
	return moved
}

// ParseConfig decodes a JSON document into config values for CreateFromConfig.
func ParseConfig(data []byte) (any, error) {
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return parsed, nil
}
