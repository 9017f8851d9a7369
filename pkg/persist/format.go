// pkg/persist/format.go
package persist

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/xkilldash9x/domunify/pkg/binder"
	"github.com/xkilldash9x/domunify/pkg/dom"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Format names a saved-file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

// Encode renders data in format and returns the matching MIME type. indent
// applies to JSON only.
func Encode(format Format, data any, indent int) ([]byte, string, error) {
	switch format {
	case "", FormatJSON:
		out, err := MarshalJSON(data, indent)
		return out, "application/json", err
	case FormatCSV:
		return []byte(EncodeCSV(data)), "text/csv", nil
	case FormatYAML:
		out, err := yaml.Marshal(data)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode yaml: %w", err)
		}
		return out, "application/yaml", nil
	case FormatText:
		if s, ok := data.(string); ok {
			return []byte(s), "text/plain", nil
		}
		out, err := json.Marshal(data)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode text: %w", err)
		}
		return out, "text/plain", nil
	}
	return nil, "", fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

// MarshalJSON encodes v, indenting by indent spaces when indent is positive.
func MarshalJSON(v any, indent int) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if indent > 0 {
		out, err = json.MarshalIndent(v, "", strings.Repeat(" ", indent))
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}
	return out, nil
}

// DecodeJSON parses raw into generic values: objects become map[string]any,
// arrays []any and numbers float64.
func DecodeJSON(raw []byte) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}
	return v, nil
}

// SelectPath narrows a JSON document to the value at a gjson path. An empty
// path returns raw unchanged.
func SelectPath(raw []byte, path string) ([]byte, error) {
	if path == "" {
		return raw, nil
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("failed to decode json: invalid document")
	}
	res := gjson.GetBytes(raw, path)
	if !res.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	return []byte(res.Raw), nil
}

// EncodeCSV renders a list of records, or a single record, as CSV. The header
// is the sorted union of keys; every cell is quoted with quotes doubled.
// Anything else is rendered as plain text.
func EncodeCSV(data any) string {
	if records, ok := binder.AsRecords(data); ok {
		seen := make(map[string]struct{})
		for _, r := range records {
			for k := range r {
				seen[k] = struct{}{}
			}
		}
		keys := dom.SortedKeys(seen)
		rows := make([]string, len(records))
		for i, r := range records {
			rows[i] = csvRow(keys, r)
		}
		return csvRow(keys, nil) + "\n" + strings.Join(rows, "\n")
	}
	if record, ok := binder.AsData(data); ok {
		keys := dom.SortedKeys(record)
		return csvRow(keys, nil) + "\n" + csvRow(keys, record)
	}
	if data == nil {
		return ""
	}
	return cell(data)
}

// csvRow renders the header when record is nil, else the record's cells.
func csvRow(keys []string, record binder.Data) string {
	cells := make([]string, len(keys))
	for i, k := range keys {
		v := k
		if record != nil {
			v = cell(record[k])
		}
		cells[i] = `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return strings.Join(cells, ",")
}

func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ",")
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = cell(item)
		}
		return strings.Join(parts, ",")
	case map[string]any, binder.Data, []binder.Data:
		out, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(out)
	case float64:
		out, _ := json.Marshal(t)
		return string(out)
	}
	return fmt.Sprint(v)
}

// Bytes converts download content to bytes. Strings and byte slices pass
// through, anything else is JSON encoded.
func Bytes(content any) ([]byte, error) {
	switch t := content.(type) {
	case nil:
		return nil, nil
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	case fmt.Stringer:
		return []byte(t.String()), nil
	}
	return MarshalJSON(content, 0)
}
