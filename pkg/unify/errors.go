// pkg/unify/errors.go
package unify

import (
	"errors"

	"go.uber.org/zap"
)

var (
	// ErrUnknownMode is returned for a collection mode that is not registered.
	ErrUnknownMode = errors.New("unknown collection mode")
	// ErrUnknownStorage is reported when Sync names an unregistered store.
	ErrUnknownStorage = errors.New("unknown storage")
	// ErrNoKV is reported when Sync selects the kv store but none is set.
	ErrNoKV = errors.New("no key-value store configured")
	// ErrNoDownloader is reported when content is saved without a downloader.
	ErrNoDownloader = errors.New("no downloader configured")
	// ErrNoFileReader is reported when a file is loaded without a reader.
	ErrNoFileReader = errors.New("no file reader configured")
	// ErrUnknownParse is reported for a load parse mode other than json or text.
	ErrUnknownParse = errors.New("unknown parse mode")
)

// report routes an I/O failure to onError, or logs it when there is none.
func (c *Cursor) report(onError func(error), op string, err error) {
	if onError != nil {
		onError(err)
		return
	}
	c.logger.Error("Operation failed", zap.String("operation", op), zap.Error(err))
}
