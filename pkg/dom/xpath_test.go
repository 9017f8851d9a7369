package dom_test

import (
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/domunify/pkg/dom"
)

const testHTML = `
	<html>
	<body>
		<div id="header">
			<h1>Welcome</h1>
		</div>
		<div class="content">
			<p>P1</p><p>P2</p>
			<ul>
				<li>Item 1</li>
				<li>Item 2</li>
				<li id="special">Item 3</li>
			</ul>
		</div>
		<div class="content"><p>P3</p></div>
	</body>
	</html>
	`

func TestPathOf(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(testHTML))
	require.NoError(t, err)

	tests := []struct {
		name         string
		targetXPath  string
		expectedPath string
	}{
		{"Body", "//body", "/html[1]/body[1]"},
		{"Element with ID", "//div[@id='header']", `//*[@id='header']`},
		{"Child of ID element", "//h1", `//*[@id='header']/h1[1]`},
		{"Specific index", "(//p)[2]", "/html[1]/body[1]/div[2]/p[2]"},
		{"Ambiguous classes", "(//div[@class='content'])[2]/p", "/html[1]/body[1]/div[3]/p[1]"},
		{"List item", "//ul/li[2]", "/html[1]/body[1]/div[2]/ul[1]/li[2]"},
		{"List item with ID", "//li[@id='special']", `//*[@id='special']`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := htmlquery.FindOne(doc, tt.targetXPath)
			require.NotNil(t, target, "setup error: target not found with %s", tt.targetXPath)

			path := dom.PathOf(target)
			assert.Equal(t, tt.expectedPath, path)

			// The generated path must select the original node through the
			// package's own query boundary too.
			found, err := dom.Query(doc, path)
			require.NoError(t, err)
			assert.Same(t, target, found)
		})
	}

	t.Run("should return empty for nil", func(t *testing.T) {
		assert.Equal(t, "", dom.PathOf(nil))
	})
}
