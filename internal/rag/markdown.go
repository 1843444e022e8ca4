package rag

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// normalizeMarkdown strips markdown structure down to plain text for
// chunking and embedding, and returns the first level-1 heading as a title
// candidate. Non-markdown documents skip this entirely.
func normalizeMarkdown(source string) (title, plain string) {
	md := goldmark.New()
	src := []byte(source)
	root := md.Parser().Parse(text.NewReader(src))

	var b strings.Builder
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			heading := string(node.Text(src))
			if node.Level == 1 && title == "" {
				title = heading
			}
			b.WriteString(heading)
			b.WriteString("\n")
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			b.Write(node.Segment.Value(src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteString("\n")
			}
		case *ast.CodeBlock:
			writeLines(&b, src, node.BaseBlock)
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			writeLines(&b, src, node.BaseBlock)
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.ListItem, *ast.Blockquote:
			if b.Len() > 0 {
				b.WriteString("\n")
			}
		}
		return ast.WalkContinue, nil
	})

	return title, strings.TrimSpace(b.String())
}

func writeLines(b *strings.Builder, src []byte, block ast.BaseBlock) {
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	b.WriteString("\n")
}
