// pkg/sanitize/sanitize.go
package sanitize

import (
	"fmt"
	"regexp"

	"golang.org/x/net/html"

	"github.com/xkilldash9x/domunify/pkg/dom"
)

// This is a minimal cleaner. It removes script elements and inline event
// handler attributes and nothing else; it is not a defense for untrusted
// markup. Use a full policy sanitizer for that.

var (
	scriptBlock    = regexp.MustCompile(`(?i)<script[\s\S]*?</script>`)
	doubleQuotedOn = regexp.MustCompile(`(?i)\son\w+\s*=\s*"[^"]*"`)
	singleQuotedOn = regexp.MustCompile(`(?i)\son\w+\s*=\s*'[^']*'`)
	unquotedOn     = regexp.MustCompile(`(?i)\son\w+\s*=\s*[^\s>]+`)
)

// Clean returns raw with script regions and on* attributes removed. nil
// becomes "" and other non-string values are formatted with fmt.
func Clean(raw any) string {
	var s string
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		s = v
	case []byte:
		s = string(v)
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}
	s = scriptBlock.ReplaceAllString(s, "")
	s = doubleQuotedOn.ReplaceAllString(s, "")
	s = singleQuotedOn.ReplaceAllString(s, "")
	return unquotedOn.ReplaceAllString(s, "")
}

// ToNodes cleans raw and parses it as the children of a detached div. The
// returned nodes are detached and may be appended anywhere.
func ToNodes(raw any) []*html.Node {
	cleaned := Clean(raw)
	if cleaned == "" {
		return nil
	}
	nodes, err := dom.ParseFragment(cleaned, nil)
	if err != nil {
		// html.ParseFragment only fails on reader errors, which a string
		// reader does not produce.
		return nil
	}
	return nodes
}
