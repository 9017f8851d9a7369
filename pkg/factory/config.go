// pkg/factory/config.go
package factory

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Config declares one element. The zero value builds an empty div.
type Config struct {
	Tag   string
	Class string
	ID    string
	// Text and HTML are mutually exclusive; Text wins when both are set.
	Text *string
	HTML *string

	Attrs   map[string]any
	Styles  map[string]any
	Dataset map[string]any
	// Events maps an event type ("click", not "onclick") to a dom.Listener
	// or func(*dom.Event).
	Events map[string]any

	// Children is a single child or a slice of children. A child may be an
	// *html.Node, a primitive (rendered as text) or a nested config.
	Children any

	// Value is applied to form controls as both live value and attribute.
	// Strings and numbers are honored; anything else becomes "".
	Value any

	// Sanitize overrides the factory default for this entry and its
	// descendants.
	Sanitize *bool

	// Extra holds unrecognized keys. They become literal attributes.
	Extra map[string]any
}

// Ptr returns a pointer to v. It keeps Text, HTML and Sanitize literals short.
func Ptr[T any](v T) *T { return &v }

// recognized are the keys FromMap maps onto Config fields.
var recognized = map[string]struct{}{
	"tag": {}, "class": {}, "id": {}, "text": {}, "html": {},
	"attrs": {}, "styles": {}, "dataset": {}, "events": {},
	"children": {}, "value": {}, "sanitize": {},
}

// FromMap converts a decoded JSON or YAML object into a Config. Fields with
// the wrong type are reported and skipped.
func (f *Factory) FromMap(m map[string]any) Config {
	var cfg Config
	for key, raw := range m {
		if _, ok := recognized[key]; !ok {
			if cfg.Extra == nil {
				cfg.Extra = make(map[string]any)
			}
			cfg.Extra[key] = raw
			continue
		}
		if raw == nil {
			continue
		}
		switch key {
		case "tag":
			if s, ok := raw.(string); ok {
				cfg.Tag = s
			} else {
				f.logger.Warn("Invalid tag type; using fallback tag.", zap.Any("tag", raw))
			}
		case "class":
			if s, ok := raw.(string); ok {
				cfg.Class = strings.TrimSpace(s)
			} else {
				f.logger.Warn("Invalid class; skipping.", zap.Any("class", raw))
			}
		case "id":
			if s, ok := raw.(string); ok {
				cfg.ID = strings.TrimSpace(s)
			} else {
				f.logger.Warn("Invalid id; skipping.", zap.Any("id", raw))
			}
		case "text":
			cfg.Text = Ptr(stringify(raw))
		case "html":
			cfg.HTML = Ptr(stringify(raw))
		case "attrs":
			cfg.Attrs = f.section(key, raw)
		case "styles":
			cfg.Styles = f.section(key, raw)
		case "dataset":
			cfg.Dataset = f.section(key, raw)
		case "events":
			cfg.Events = f.section(key, raw)
		case "children":
			cfg.Children = raw
		case "value":
			cfg.Value = raw
		case "sanitize":
			if b, ok := raw.(bool); ok {
				cfg.Sanitize = &b
			} else {
				f.logger.Warn("Invalid sanitize flag; using default.", zap.Any("sanitize", raw))
			}
		}
	}
	return cfg
}

func (f *Factory) section(name string, raw any) map[string]any {
	switch m := raw.(type) {
	case map[string]any:
		return m
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out
	}
	f.logger.Warn("Invalid config section; expected an object.", zap.String("section", name), zap.String("type", fmt.Sprintf("%T", raw)))
	return nil
}

// stringify renders attribute, dataset and child values as text.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case float64:
		// JSON numbers decode as float64; 3 renders as "3".
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	}
	return false
}

func isPrimitive(v any) bool {
	switch v.(type) {
	case string, bool:
		return true
	}
	return isNumber(v)
}
