package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

type blockKind int

const (
	blockParagraph blockKind = iota
	blockHeading
	blockBullet
	blockOrdered
	blockQuote
	blockCode
	blockRule
	blockTable
)

// block is one printable unit of a document laid out top to bottom
type block struct {
	kind   blockKind
	level  int    // Heading level, or list nesting depth
	marker string // Ordered list marker, e.g. "3."
	text   string
	rows   [][]string // Table cells; the first row is the header
}

// blockMarkdown parses the flattened documents. Tables and strikethrough are
// the GFM constructs the HTML flattening emits.
var blockMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
)

// parseBlocks splits markdown into printable blocks
func parseBlocks(markdown string) []block {
	source := []byte(markdown)
	doc := blockMarkdown.Parser().Parse(text.NewReader(source))

	var blocks []block
	collectBlocks(doc, source, &blocks)
	return blocks
}

func collectBlocks(parent ast.Node, source []byte, out *[]block) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			*out = append(*out, block{kind: blockHeading, level: node.Level, text: plainText(node, source)})
		case *ast.Paragraph, *ast.TextBlock:
			if t := plainText(node, source); t != "" {
				*out = append(*out, block{kind: blockParagraph, text: t})
			}
		case *ast.ThematicBreak:
			*out = append(*out, block{kind: blockRule})
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			*out = append(*out, block{kind: blockCode, text: codeText(node, source)})
		case *ast.Blockquote:
			*out = append(*out, block{kind: blockQuote, text: plainText(node, source)})
		case *ast.List:
			collectList(node, source, 0, out)
		case *east.Table:
			*out = append(*out, block{kind: blockTable, rows: tableRows(node, source)})
		case *ast.HTMLBlock:
			// Raw HTML has already been flattened; leftovers are not printed
		default:
			collectBlocks(n, source, out)
		}
	}
}

// collectList emits one block per item, nested lists one level deeper
func collectList(list *ast.List, source []byte, depth int, out *[]block) {
	number := list.Start
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		b := block{kind: blockBullet, level: depth}
		if list.IsOrdered() {
			b.kind = blockOrdered
			b.marker = fmt.Sprintf("%d%c", number, list.Marker)
			number++
		}

		var (
			parts  []string
			nested []*ast.List
		)
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if l, ok := c.(*ast.List); ok {
				nested = append(nested, l)
				continue
			}
			if t := plainText(c, source); t != "" {
				parts = append(parts, t)
			}
		}
		b.text = strings.Join(parts, " ")
		*out = append(*out, b)

		for _, l := range nested {
			collectList(l, source, min(depth+1, 4), out)
		}
	}
}

func tableRows(table *east.Table, source []byte) [][]string {
	var rows [][]string
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, plainText(cell, source))
		}
		rows = append(rows, cells)
	}
	return rows
}

func codeText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return strings.TrimRight(buf.String(), "\n")
}

// plainText flattens the inline content under n. Links keep their target
// in parentheses and images print as their alt text.
func plainText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				buf.Write(unescape(node.Segment.Value(source)))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte(' ')
				}
			}
		case *ast.String:
			if entering {
				buf.Write(node.Value)
			}
		case *ast.AutoLink:
			if entering {
				buf.Write(node.URL(source))
			}
			return ast.WalkSkipChildren, nil
		case *ast.Image:
			if entering {
				alt := strings.TrimSpace(string(node.Text(source)))
				if alt == "" {
					buf.WriteString("[image]")
				} else {
					buf.WriteString("[image: " + alt + "]")
				}
			}
			return ast.WalkSkipChildren, nil
		case *ast.Link:
			if !entering {
				dest := string(node.Destination)
				label := string(node.Text(source))
				if dest != "" && dest != label && !strings.HasPrefix(dest, "#") {
					buf.WriteString(" (" + dest + ")")
				}
			}
		case *ast.RawHTML:
			// Inline HTML left by flattening, e.g. <br> in table cells, is a word break
			if entering {
				buf.WriteByte(' ')
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.TextBlock:
			// Separate paragraphs inside quotes and cells
			if !entering {
				buf.WriteByte(' ')
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				buf.WriteString(codeText(node, source))
				buf.WriteByte(' ')
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(buf.String()), " ")
}

// unescape resolves backslash escapes and entity references left in text segments
func unescape(b []byte) []byte {
	return util.ResolveEntityNames(util.ResolveNumericReferences(util.UnescapePunctuations(b)))
}
