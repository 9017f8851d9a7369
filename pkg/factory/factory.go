// pkg/factory/factory.go
package factory

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/domunify/pkg/dom"
	"github.com/xkilldash9x/domunify/pkg/sanitize"
)

// DefaultMaxDepth caps nested children recursion.
const DefaultMaxDepth = 100

// DefaultForbiddenTags are never created, whatever the grammar says.
var DefaultForbiddenTags = []string{"script", "style", "iframe", "object", "embed"}

var (
	tagGrammar     = regexp.MustCompile(`(?i)^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)
	invalidAttrKey = regexp.MustCompile(`[\s<>]`)
	dangerousValue = regexp.MustCompile(`(?i)(javascript|vbscript|data\s*:\s*text/html)`)
	// navigationKeys are matched by substring, so "xlink:href" is covered.
	navigationKeys = []string{"href", "src", "action", "formaction"}
	hyphenated     = regexp.MustCompile(`-([a-z])`)
)

// Options tunes a Factory.
type Options struct {
	MaxDepth      int
	Sanitize      bool
	FallbackTag   string
	ForbiddenTags []string
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		MaxDepth:      DefaultMaxDepth,
		Sanitize:      true,
		FallbackTag:   "div",
		ForbiddenTags: DefaultForbiddenTags,
	}
}

// Factory builds element trees from declarative configs. Bad input is
// reported at Warn level and replaced by a safe default; it never aborts a
// build.
type Factory struct {
	doc       *dom.Document
	logger    *zap.Logger
	opts      Options
	forbidden map[string]struct{}
}

// New creates a Factory bound to doc.
func New(doc *dom.Document, logger *zap.Logger, opts Options) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.FallbackTag == "" || !tagGrammar.MatchString(opts.FallbackTag) {
		opts.FallbackTag = "div"
	}
	if opts.ForbiddenTags == nil {
		opts.ForbiddenTags = DefaultForbiddenTags
	}
	forbidden := make(map[string]struct{}, len(opts.ForbiddenTags))
	for _, t := range opts.ForbiddenTags {
		forbidden[strings.ToLower(t)] = struct{}{}
	}
	return &Factory{
		doc:       doc,
		logger:    logger.Named("factory"),
		opts:      opts,
		forbidden: forbidden,
	}
}

// Document returns the document the factory creates nodes in.
func (f *Factory) Document() *dom.Document { return f.doc }

// CreateFromConfig builds the element described by cfg, which must be a
// Config, *Config or map[string]any. When parent is non-nil the element is
// appended to it before returning.
func (f *Factory) CreateFromConfig(cfg any, parent *html.Node) []*html.Node {
	return f.create(cfg, parent, f.opts.Sanitize, 0)
}

func (f *Factory) create(raw any, parent *html.Node, sanitizeHTML bool, depth int) []*html.Node {
	if depth > f.opts.MaxDepth {
		f.logger.Warn("Maximum recursion depth exceeded; skipping child processing.", zap.Int("depth", depth))
		return nil
	}
	var cfg Config
	switch v := raw.(type) {
	case Config:
		cfg = v
	case *Config:
		if v == nil {
			f.logger.Warn("Invalid config: nil; returning no elements.")
			return nil
		}
		cfg = *v
	case map[string]any:
		cfg = f.FromMap(v)
	default:
		f.logger.Warn("Invalid config: must be an object; returning no elements.", zap.String("type", fmt.Sprintf("%T", raw)))
		return nil
	}
	el := f.build(cfg, sanitizeHTML, depth)
	if parent != nil {
		dom.AppendChild(parent, el)
	}
	return []*html.Node{el}
}

func (f *Factory) build(cfg Config, sanitizeHTML bool, depth int) *html.Node {
	if cfg.Sanitize != nil {
		sanitizeHTML = *cfg.Sanitize
	}

	tag := strings.ToLower(strings.TrimSpace(cfg.Tag))
	if tag == "" {
		tag = f.opts.FallbackTag
	}
	if _, banned := f.forbidden[tag]; banned || !tagGrammar.MatchString(tag) {
		f.logger.Warn("Invalid tag; using fallback tag.", zap.String("tag", cfg.Tag), zap.String("fallback", f.opts.FallbackTag))
		tag = f.opts.FallbackTag
	}
	el := f.doc.CreateElement(tag)

	if cfg.Class != "" {
		dom.SetAttr(el, "class", strings.TrimSpace(cfg.Class))
	}
	if cfg.ID != "" {
		dom.SetAttr(el, "id", strings.TrimSpace(cfg.ID))
	}

	if cfg.Text != nil && cfg.HTML != nil {
		f.logger.Warn(`Both "text" and "html" provided; using "text".`)
	}
	switch {
	case cfg.Text != nil:
		dom.SetTextContent(el, *cfg.Text)
	case cfg.HTML != nil && sanitizeHTML:
		f.logger.Debug("Sanitizing html content.", zap.String("tag", tag))
		for _, n := range sanitize.ToNodes(*cfg.HTML) {
			el.AppendChild(n)
		}
	case cfg.HTML != nil:
		f.logger.Warn("Sanitization disabled; using raw HTML. Content must be trusted.", zap.String("tag", tag))
		if err := dom.SetInnerHTML(el, *cfg.HTML); err != nil {
			f.logger.Warn("Failed to parse raw HTML; skipping.", zap.Error(err))
		}
	}

	children := normalizeChildren(cfg.Children)
	value, hasValue := controlValue(cfg.Value)
	if hasValue {
		f.applyValue(el, value, len(children) == 0)
	}

	f.applyAttrs(el, cfg.Attrs, sanitizeHTML, "attribute")
	f.applyAttrs(el, cfg.Extra, sanitizeHTML, "non-standard attribute")
	f.applyStyles(el, cfg.Styles)
	f.applyDataset(el, cfg.Dataset)
	f.applyEvents(el, cfg.Events)

	frag := f.doc.CreateFragment()
	for _, child := range children {
		if depth >= f.opts.MaxDepth {
			f.logger.Warn("Maximum recursion depth exceeded; skipping child processing.", zap.Int("depth", depth))
			break
		}
		switch c := child.(type) {
		case *html.Node:
			if c != nil {
				dom.AppendChild(frag, c)
			}
		case Config, *Config, map[string]any:
			for _, n := range f.create(c, nil, sanitizeHTML, depth+1) {
				frag.AppendChild(n)
			}
		default:
			if isPrimitive(c) {
				frag.AppendChild(f.doc.CreateTextNode(stringify(c)))
				continue
			}
			f.logger.Warn("Invalid child type; skipping.", zap.String("type", fmt.Sprintf("%T", child)))
		}
	}
	dom.AppendChild(el, frag)

	// Options only exist once children are in place.
	if hasValue && tag == "select" {
		f.doc.SetValue(el, value)
	}
	return el
}

func controlValue(v any) (string, bool) {
	switch {
	case v == nil:
		return "", false
	case isNumber(v):
		return stringify(v), true
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return "", true
}

func (f *Factory) applyValue(el *html.Node, value string, childless bool) {
	switch el.Data {
	case "input":
		f.doc.SetValue(el, value)
	case "select":
		if childless && value != "" {
			opt := f.doc.CreateElement("option")
			dom.SetAttr(opt, "value", value)
			dom.SetTextContent(opt, value)
			el.AppendChild(opt)
		}
	case "textarea":
		f.doc.SetValue(el, value)
		dom.SetTextContent(el, value)
	}
	dom.SetAttr(el, "value", value)
}

func (f *Factory) applyAttrs(el *html.Node, attrs map[string]any, sanitizeHTML bool, kind string) {
	for _, rawKey := range dom.SortedKeys(attrs) {
		v := attrs[rawKey]
		if v == nil || v == false {
			continue
		}
		key := strings.TrimSpace(rawKey)
		if invalidKey(key) {
			f.logger.Warn("Invalid "+kind+" key; skipping.", zap.String("key", rawKey))
			continue
		}
		value := ""
		if v != true {
			value = stringify(v)
		}
		if sanitizeHTML && isNavigationKey(key) && dangerousValue.MatchString(value) {
			f.logger.Warn("Sanitizing dangerous "+kind+"; value removed.", zap.String("key", key), zap.String("value", value))
			value = ""
		}
		dom.SetAttr(el, key, value)
	}
}

// invalidKey rejects empty keys and keys holding whitespace or angle brackets.
func invalidKey(key string) bool {
	return strings.TrimSpace(key) == "" || invalidAttrKey.MatchString(key)
}

func isNavigationKey(key string) bool {
	lower := strings.ToLower(key)
	for _, k := range navigationKeys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (f *Factory) applyStyles(el *html.Node, styles map[string]any) {
	for _, rawKey := range dom.SortedKeys(styles) {
		if invalidKey(rawKey) {
			f.logger.Warn("Invalid style key; skipping.", zap.String("key", rawKey))
			continue
		}
		key := hyphenated.ReplaceAllStringFunc(rawKey, func(m string) string {
			return strings.ToUpper(m[1:])
		})
		v := styles[rawKey]
		if _, ok := v.(string); !ok && !isNumber(v) {
			f.logger.Warn("Invalid style value; skipping.", zap.String("key", key), zap.Any("value", v))
			continue
		}
		dom.SetStyle(el, key, stringify(v))
	}
}

func (f *Factory) applyDataset(el *html.Node, dataset map[string]any) {
	for _, key := range dom.SortedKeys(dataset) {
		if invalidKey(key) {
			f.logger.Warn("Invalid dataset key; skipping.", zap.String("key", key))
			continue
		}
		dom.SetData(el, key, stringify(dataset[key]))
	}
}

func (f *Factory) applyEvents(el *html.Node, events map[string]any) {
	for _, name := range dom.SortedKeys(events) {
		if strings.TrimSpace(name) == "" || strings.HasPrefix(strings.ToLower(name), "on") {
			f.logger.Warn("Invalid event name; skipping.", zap.String("event", name))
			continue
		}
		var fn dom.Listener
		switch h := events[name].(type) {
		case dom.Listener:
			fn = h
		case func(*dom.Event):
			fn = h
		}
		if fn == nil {
			f.logger.Warn("Invalid handler for event; skipping.", zap.String("event", name))
			continue
		}
		f.doc.AddEventListener(el, name, fn)
	}
}

// normalizeChildren turns the Children field into a flat slice.
func normalizeChildren(children any) []any {
	switch c := children.(type) {
	case nil:
		return nil
	case []any:
		return c
	case []Config:
		out := make([]any, len(c))
		for i := range c {
			out[i] = c[i]
		}
		return out
	case []*Config:
		out := make([]any, len(c))
		for i := range c {
			out[i] = c[i]
		}
		return out
	case []map[string]any:
		out := make([]any, len(c))
		for i := range c {
			out[i] = c[i]
		}
		return out
	case []*html.Node:
		out := make([]any, len(c))
		for i := range c {
			out[i] = c[i]
		}
		return out
	case []string:
		out := make([]any, len(c))
		for i := range c {
			out[i] = c[i]
		}
		return out
	}
	return []any{children}
}
