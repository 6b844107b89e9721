package normalize

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// extractMarkdown flattens a Markdown document to plain text using the
// goldmark AST. Headings become their own blocks so chunk boundaries can
// fall on them.
func extractMarkdown(data []byte) (*Result, error) {
	md := goldmark.New()
	reader := text.NewReader(data)
	doc := md.Parser().Parse(reader)

	var blocks []string
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		if h, ok := n.(*ast.Heading); ok {
			blocks = append(blocks, string(h.Text(data)))
			continue
		}
		if t := mdNodeText(n, data); t != "" {
			blocks = append(blocks, t)
		}
	}

	return &Result{Text: joinBlocks(blocks)}, nil
}

// mdNodeText gets the text content of a goldmark AST node. Blocks that own
// source lines yield those directly; container blocks recurse.
func mdNodeText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t := mdNodeText(c, src); t != "" {
			if buf.Len() > 0 {
				buf.WriteByte('\n')
			}
			buf.WriteString(t)
		}
	}
	return strings.TrimSpace(buf.String())
}
