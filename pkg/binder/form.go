// pkg/binder/form.go
package binder

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/domunify/pkg/dom"
)

// DuplicatePolicy decides what happens when form collection meets a key twice.
type DuplicatePolicy string

const (
	DuplicateArray DuplicatePolicy = "array"
	DuplicateFirst DuplicatePolicy = "first"
	DuplicateLast  DuplicatePolicy = "last"
	DuplicateError DuplicatePolicy = "error"
)

// FileHandling decides how file inputs are represented.
type FileHandling string

const (
	FileNames FileHandling = "names"
	FileMeta  FileHandling = "meta"
	FileNone  FileHandling = "none"
)

// ErrDuplicateKey is matched by every DuplicateKeyError.
var ErrDuplicateKey = errors.New("duplicate key")

// DuplicateKeyError is returned by CollectForm under DuplicateError.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string { return fmt.Sprintf("duplicate key: %s", e.Key) }

// Is makes every DuplicateKeyError match ErrDuplicateKey.
func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

// Exclusions drop controls from form collection.
type Exclusions struct {
	Classes []string
	IDs     []string
	Names   []string
	Types   []string
	// Data drops controls whose dataset entry (camelCase key) equals the value.
	Data map[string]string
}

// FormOptions configures CollectForm.
type FormOptions struct {
	Selector         string
	KeyAttr          string
	IncludeDisabled  bool
	ExcludeEmpty     bool
	IncludeButtons   bool
	HandleDuplicates DuplicatePolicy
	FileHandling     FileHandling
	Exclude          Exclusions
	TransformKey     func(key string) string
	TransformValue   func(value any, el *html.Node) any
}

// DefaultFormOptions returns the standard form-collection settings.
func DefaultFormOptions() FormOptions {
	return FormOptions{
		Selector:         "input,select,textarea",
		KeyAttr:          "name",
		HandleDuplicates: DuplicateArray,
		FileHandling:     FileNames,
	}
}

// FileMetadata is the FileMeta representation of one selected file.
type FileMetadata struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
	Size int64  `json:"size" yaml:"size"`
}

// CollectForm gathers control values under root keyed by KeyAttr. It is the
// only collection mode that can fail: DuplicateError returns a
// *DuplicateKeyError on the first repeated key.
func (b *Binder) CollectForm(root *html.Node, opts FormOptions) (Data, error) {
	def := DefaultFormOptions()
	if opts.Selector == "" {
		opts.Selector = def.Selector
	}
	if opts.KeyAttr == "" {
		opts.KeyAttr = def.KeyAttr
	}
	if opts.HandleDuplicates == "" {
		opts.HandleDuplicates = def.HandleDuplicates
	}
	if opts.FileHandling == "" {
		opts.FileHandling = def.FileHandling
	}

	data := Data{}
	if root == nil {
		return data, nil
	}
	elements := b.queryAll(root, opts.Selector)
	if opts.IncludeButtons {
		elements = append(elements, b.queryAll(root, "button[name]")...)
	}

	for _, el := range elements {
		if !opts.IncludeDisabled && dom.Disabled(el) {
			continue
		}
		if excluded(el, opts) {
			continue
		}
		key := dom.Attr(el, opts.KeyAttr)
		if key == "" {
			continue
		}
		value := b.formValue(el, opts.FileHandling)
		if value == nil || (opts.ExcludeEmpty && isEmpty(value)) {
			continue
		}
		if opts.TransformValue != nil {
			value = opts.TransformValue(value, el)
		}
		if opts.TransformKey != nil {
			key = opts.TransformKey(key)
		}
		if err := setDataValue(data, key, value, opts.HandleDuplicates); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func excluded(el *html.Node, opts FormOptions) bool {
	ex := opts.Exclude
	if id := dom.Attr(el, "id"); id != "" && contains(ex.IDs, id) {
		return true
	}
	for _, cls := range ex.Classes {
		if dom.HasClass(el, cls) {
			return true
		}
	}
	if contains(ex.Names, dom.Attr(el, opts.KeyAttr)) {
		return true
	}
	if contains(ex.Types, dom.ControlType(el)) {
		return true
	}
	for k, v := range ex.Data {
		if got, ok := dom.Data(el, k); ok && got == v {
			return true
		}
	}
	return false
}

func (b *Binder) formValue(el *html.Node, files FileHandling) any {
	switch {
	case el.Data == "button":
		return dom.Attr(el, "value")
	case dom.IsCheckable(el):
		if !b.doc.Checked(el) {
			return nil
		}
		return b.doc.Value(el)
	case dom.IsMultiple(el):
		return b.selectedValues(el)
	case el.Data == "input" && dom.ControlType(el) == "file":
		selected := b.doc.Files(el)
		switch files {
		case FileNone:
			return nil
		case FileMeta:
			meta := make([]any, len(selected))
			for i, f := range selected {
				meta[i] = FileMetadata{Name: f.Name, Type: f.Type, Size: f.Size}
			}
			return meta
		}
		names := make([]string, len(selected))
		for i, f := range selected {
			names[i] = f.Name
		}
		return names
	}
	return b.doc.Value(el)
}

func setDataValue(data Data, key string, value any, policy DuplicatePolicy) error {
	existing, ok := data[key]
	if !ok {
		data[key] = value
		return nil
	}
	switch policy {
	case DuplicateLast:
		data[key] = value
	case DuplicateFirst:
	case DuplicateError:
		return &DuplicateKeyError{Key: key}
	default:
		list := spread(existing)
		if list == nil {
			list = []any{existing}
		}
		if more := spread(value); more != nil {
			list = append(list, more...)
		} else {
			list = append(list, value)
		}
		data[key] = list
	}
	return nil
}

// spread returns the elements of a list value, or nil for a scalar.
func spread(v any) []any {
	switch t := v.(type) {
	case []any:
		return append([]any{}, t...)
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	}
	return nil
}
