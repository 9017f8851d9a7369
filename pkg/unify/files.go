// pkg/unify/files.go
package unify

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/domunify/pkg/binder"
	"github.com/xkilldash9x/domunify/pkg/dom"
	"github.com/xkilldash9x/domunify/pkg/persist"
)

// DownloadOptions configures DownloadFile.
type DownloadOptions struct {
	Filename string // default "file.txt"
	MimeType string // default "text/plain"
	// Format transforms content first. A failure is logged and nothing is saved.
	Format func(content any) (any, error)
}

// DownloadFile hands content to the downloader.
func (c *Cursor) DownloadFile(content any, opts DownloadOptions) *Cursor {
	if opts.Filename == "" {
		opts.Filename = "file.txt"
	}
	if opts.MimeType == "" {
		opts.MimeType = "text/plain"
	}
	if opts.Format != nil {
		formatted, err := opts.Format(content)
		if err != nil {
			c.logger.Error("Download format error.", zap.String("filename", opts.Filename), zap.Error(err))
			return c
		}
		content = formatted
	}
	data, err := persist.Bytes(content)
	if err != nil {
		c.report(nil, "downloadFile", err)
		return c
	}
	if err := c.download(opts.Filename, opts.MimeType, data); err != nil {
		c.report(nil, "downloadFile", err)
	}
	c.logStep("downloadFile")
	return c
}

func (c *Cursor) download(filename, mimeType string, content []byte) error {
	if c.downloader == nil {
		return ErrNoDownloader
	}
	return c.downloader.Download(c.ctx, filename, mimeType, content)
}

// LoadFileOptions configures LoadFile.
type LoadFileOptions struct {
	ReadAs  persist.ReadMode // default text
	Parse   func(result any) (any, error)
	OnError func(error)
}

// LoadFile waits for the next change on a file input, reads its first file
// and passes the result to cb. input is a selector or an input element. A
// missing input is reported at once and nothing is attached.
func (c *Cursor) LoadFile(input any, cb func(result any), opts LoadFileOptions) *Cursor {
	el := c.resolveInput(input)
	if el == nil {
		c.report(opts.OnError, "loadFile", persist.ErrInputNotFound)
		return c
	}
	c.doc.AddEventListener(el, "change", func(*dom.Event) {
		result, err := c.readSelected(el, opts.ReadAs)
		if err != nil {
			c.report(opts.OnError, "loadFile", err)
			return
		}
		if opts.Parse != nil {
			if result, err = opts.Parse(result); err != nil {
				c.report(opts.OnError, "loadFile", err)
				return
			}
		}
		if cb != nil {
			cb(result)
		}
		c.doc.SetValue(el, "")
	}, dom.Once())
	c.logStep("loadFile")
	return c
}

func (c *Cursor) resolveInput(input any) *html.Node {
	switch v := input.(type) {
	case string:
		el, err := c.doc.QuerySelector(v)
		if err != nil {
			c.logger.Warn("Invalid selector; treating as no match.", zap.String("operation", "load"), zap.Error(err))
			return nil
		}
		return el
	case *html.Node:
		return v
	}
	return nil
}

func (c *Cursor) readSelected(input *html.Node, mode persist.ReadMode) (any, error) {
	files := c.doc.Files(input)
	if len(files) == 0 {
		return nil, persist.ErrNoFile
	}
	if c.reader == nil {
		return nil, fmt.Errorf("%w: %w", persist.ErrReadFailed, ErrNoFileReader)
	}
	f := files[0]
	data, err := c.reader.Read(c.ctx, f)
	if err != nil {
		return nil, err
	}
	return persist.Present(mode, data, f.Type)
}

// SaveOptions configures Save.
type SaveOptions struct {
	Filename string         // default "data.json"
	Mode     string         // default "nested"
	Format   persist.Format // default json
	// Indent is the JSON indent width: zero means 2, negative means compact.
	Indent    int
	Transform func(data any) any
	OnError   func(error)
}

// Save collects the context with a named mode, encodes it and downloads it.
// A context of one element saves that element's data unwrapped.
func (c *Cursor) Save(opts SaveOptions) *Cursor {
	if opts.Filename == "" {
		opts.Filename = "data.json"
	}
	if opts.Mode == "" {
		opts.Mode = "nested"
	}
	switch {
	case opts.Indent == 0:
		opts.Indent = 2
	case opts.Indent < 0:
		opts.Indent = 0
	}

	results, err := c.Get(opts.Mode)
	if err != nil {
		c.report(opts.OnError, "save", err)
		return c
	}
	var data any = results
	if len(results) == 1 {
		data = results[0]
	}
	if opts.Transform != nil {
		data = opts.Transform(data)
	}
	content, mimeType, err := persist.Encode(opts.Format, data, opts.Indent)
	if err != nil {
		c.report(opts.OnError, "save", err)
		return c
	}
	if err := c.download(opts.Filename, mimeType, content); err != nil {
		c.report(opts.OnError, "save", err)
		return c
	}
	c.logStep("save")
	return c
}

// LoadOptions configures Load.
type LoadOptions struct {
	// Parse is "json" (the default) or "text". ParseFunc overrides it.
	Parse     string
	ParseFunc func(raw string) (any, error)
	// Path narrows a JSON document with a gjson path before filling.
	Path    string
	NoFill  bool
	OnLoad  func(data any)
	OnError func(error)
}

// Load waits for the next change on a file input, parses the file and
// fills the context captured now: a list is distributed across the
// elements, an object is written to each.
func (c *Cursor) Load(input any, opts LoadOptions) *Cursor {
	el := c.resolveInput(input)
	if el == nil {
		c.report(opts.OnError, "load", persist.ErrInputNotFound)
		return c
	}
	targets := clone(c.current)
	c.doc.AddEventListener(el, "change", func(*dom.Event) {
		raw, err := c.readSelected(el, persist.ReadText)
		if err != nil {
			c.report(opts.OnError, "load", err)
			return
		}
		data, err := parseLoaded(raw.(string), opts)
		if err != nil {
			c.report(opts.OnError, "load", err)
			return
		}
		if !opts.NoFill && fillable(data) {
			c.fillTargets(targets, data, binder.FillOptions{})
		}
		if opts.OnLoad != nil {
			opts.OnLoad(data)
		}
		c.doc.SetValue(el, "")
	}, dom.Once())
	c.logStep("load")
	return c
}

func parseLoaded(raw string, opts LoadOptions) (any, error) {
	if opts.ParseFunc != nil {
		return opts.ParseFunc(raw)
	}
	switch opts.Parse {
	case "", "json":
		doc, err := persist.SelectPath([]byte(raw), opts.Path)
		if err != nil {
			return nil, err
		}
		return persist.DecodeJSON(doc)
	case "text":
		return raw, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownParse, opts.Parse)
}

func fillable(data any) bool {
	if _, ok := binder.AsData(data); ok {
		return true
	}
	_, ok := asList(data)
	return ok
}
