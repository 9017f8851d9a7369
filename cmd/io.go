// File: cmd/io.go
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/domunify/internal/config"
	"github.com/xkilldash9x/domunify/pkg/dom"
	"github.com/xkilldash9x/domunify/pkg/persist"
	"github.com/xkilldash9x/domunify/pkg/unify"
)

// openKV connects the configured key-value store. The returned func releases
// it. Tests replace this to avoid a live database.
var openKV = func(ctx context.Context, cfg config.KVConfig, logger *zap.Logger) (persist.KV, func(), error) {
	if !cfg.Enabled() {
		return nil, nil, fmt.Errorf("kv.dsn is not configured")
	}
	kv, pool, err := persist.OpenPostgresKV(ctx, cfg.DSN, logger)
	if err != nil {
		return nil, nil, err
	}
	return kv, pool.Close, nil
}

// withKV runs fn against the configured store under the configured timeout.
func withKV(ctx context.Context, cfg config.KVConfig, logger *zap.Logger, fn func(ctx context.Context, kv persist.KV) error) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	kv, release, err := openKV(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open kv store: %w", err)
	}
	defer release()
	return fn(ctx, kv)
}

func loadDocument(path string, logger *zap.Logger) (*dom.Document, error) {
	f, err := appFs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	doc, err := dom.Parse(f, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// cursorOptions maps the configuration onto cursor options.
func cursorOptions(cfg *config.Config, logger *zap.Logger) []unify.Option {
	return []unify.Option{
		unify.WithLogger(logger),
		unify.WithFactoryOptions(cfg.Factory().Options()),
		unify.WithAttributes(cfg.Binder().Attributes()),
		unify.WithFormOptions(cfg.Form().Options()),
		unify.WithSyncDefaults(cfg.Sync().Options()),
		unify.WithDownloader(persist.NewFSDownloader(appFs, cfg.Download().Dir, logger)),
		unify.WithContext(context.Background()),
	}
}

// rootFor turns a --select value into a cursor root. An empty selector means
// the body.
func rootFor(selector string) any {
	if strings.TrimSpace(selector) == "" {
		return nil
	}
	return selector
}

// decodeFile decodes a JSON or YAML document, chosen by extension.
func decodeFile(path string, raw []byte) (any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var v any
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to decode yaml %s: %w", path, err)
		}
		return v, nil
	}
	return persist.DecodeJSON(raw)
}

// renderDocument serializes doc with live control state reflected.
func renderDocument(doc *dom.Document) ([]byte, error) {
	snapshot := doc.CloneWithState(doc.Root())
	defer doc.Release(snapshot)
	doc.ReflectState(snapshot)
	var buf bytes.Buffer
	if err := html.Render(&buf, snapshot); err != nil {
		return nil, fmt.Errorf("failed to render document: %w", err)
	}
	return buf.Bytes(), nil
}

// writeOutput writes content to path, or to the command's stdout when path
// is empty.
func writeOutput(cmd *cobra.Command, path string, content []byte) error {
	if path == "" {
		if _, err := cmd.OutOrStdout().Write(content); err != nil {
			return err
		}
		if len(content) > 0 && content[len(content)-1] != '\n' {
			_, err := fmt.Fprintln(cmd.OutOrStdout())
			return err
		}
		return nil
	}
	if err := afero.WriteFile(appFs, path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
