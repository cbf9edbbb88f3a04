package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlocks(t *testing.T) {
	markdown := "# Title\n\nFirst line\nsecond line\n\n- one\n- two\n  - nested\n\n1. first\n2. second\n\n> quoted\n> more\n\n```\ncode here\n  indented\n```\n\n* * *\n\nTail"

	blocks := parseBlocks(markdown)

	want := []block{
		{kind: blockHeading, level: 1, text: "Title"},
		{kind: blockParagraph, text: "First line second line"},
		{kind: blockBullet, level: 0, text: "one"},
		{kind: blockBullet, level: 0, text: "two"},
		{kind: blockBullet, level: 1, text: "nested"},
		{kind: blockOrdered, level: 0, marker: "1.", text: "first"},
		{kind: blockOrdered, level: 0, marker: "2.", text: "second"},
		{kind: blockQuote, text: "quoted more"},
		{kind: blockCode, text: "code here\n  indented"},
		{kind: blockRule},
		{kind: blockParagraph, text: "Tail"},
	}
	require.Len(t, blocks, len(want))
	for i := range want {
		assert.Equal(t, want[i], blocks[i], "block %d", i)
	}
}

func TestParseBlocks_UnterminatedFence(t *testing.T) {
	blocks := parseBlocks("```\nline")
	require.Len(t, blocks, 1)
	assert.Equal(t, blockCode, blocks[0].kind)
	assert.Equal(t, "line", blocks[0].text)
}

func TestParseBlocks_Table(t *testing.T) {
	blocks := parseBlocks("| Name | Score |\n| --- | --- |\n| Ann | 9 |\n")

	require.Len(t, blocks, 1)
	assert.Equal(t, blockTable, blocks[0].kind)
	assert.Equal(t, [][]string{{"Name", "Score"}, {"Ann", "9"}}, blocks[0].rows)
}

func TestParseBlocks_OrderedStartAndMarker(t *testing.T) {
	blocks := parseBlocks("3) third\n4) fourth")

	require.Len(t, blocks, 2)
	assert.Equal(t, "3)", blocks[0].marker)
	assert.Equal(t, "4)", blocks[1].marker)
}

func TestParseBlocks_SkipsRawHTML(t *testing.T) {
	blocks := parseBlocks("<div>left over</div>\n\nText")

	require.Len(t, blocks, 1)
	assert.Equal(t, "Text", blocks[0].text)
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"**bold** and *italic*", "bold and italic"},
		{"~~gone~~ text", "gone text"},
		{"[docs](https://example.com/docs)", "docs (https://example.com/docs)"},
		{"[https://example.com](https://example.com)", "https://example.com"},
		{"[jump](#section)", "jump"},
		{"![logo](https://example.com/logo.png)", "[image: logo]"},
		{"![](https://example.com/x.png)", "[image]"},
		{"use `go test`", "use go test"},
		{`snake\_case and 2 \* 3`, "snake_case and 2 * 3"},
		{"fish &amp; chips &#8364;", "fish & chips €"},
		{"<https://example.com>", "https://example.com"},
		{"line one<br>line two", "line one line two"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			blocks := parseBlocks(tt.in)
			require.Len(t, blocks, 1)
			assert.Equal(t, tt.want, blocks[0].text)
		})
	}
}
