package linkedin

import (
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var markdownParser = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough),
).Parser()

// PlainText 将模型输出中的 Markdown 标记展平为 LinkedIn 可直接展示的纯文本。
// 段落之间保留一个空行，列表保留项目符号或序号，强调与代码标记被去除。
func PlainText(markdown string) string {
	src := []byte(strings.TrimSpace(markdown))
	if len(src) == 0 {
		return ""
	}

	doc := markdownParser.Parse(text.NewReader(src))
	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Paragraph, *ast.Heading, *ast.TextBlock:
			if entering {
				startBlock(&b, n)
			}
		case *ast.ListItem:
			if entering {
				switch {
				case b.Len() == 0:
				case node.PreviousSibling() == nil:
					b.WriteString("\n\n")
				case !strings.HasSuffix(b.String(), "\n"):
					b.WriteString("\n")
				}
				b.WriteString(listMarker(node))
			}
		case *ast.Text:
			if entering {
				b.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					b.WriteString("\n")
				}
			}
		case *ast.String:
			if entering {
				b.Write(node.Value)
			}
		case *ast.AutoLink:
			if entering {
				b.Write(node.URL(src))
				return ast.WalkSkipChildren, nil
			}
		case *ast.Link:
			if !entering && len(node.Destination) > 0 {
				b.WriteString(" (")
				b.Write(node.Destination)
				b.WriteString(")")
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if entering {
				startBlock(&b, n)
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					b.Write(seg.Value(src))
				}
				return ast.WalkSkipChildren, nil
			}
		case *ast.HTMLBlock, *ast.RawHTML, *ast.Image:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return normalizeBlankLines(b.String())
}

// startBlock 块级元素之间空一行，列表项内部的首个段落不换行
func startBlock(b *strings.Builder, n ast.Node) {
	if b.Len() == 0 {
		return
	}
	if p := n.Parent(); p != nil && p.Kind() == ast.KindListItem && n.PreviousSibling() == nil {
		return
	}
	if n.Kind() == ast.KindTextBlock {
		if !strings.HasSuffix(b.String(), "\n") {
			b.WriteString("\n")
		}
		return
	}
	b.WriteString("\n\n")
}

func listMarker(item *ast.ListItem) string {
	list, ok := item.Parent().(*ast.List)
	if !ok || !list.IsOrdered() {
		return "• "
	}
	idx := list.Start
	for s := item.PreviousSibling(); s != nil; s = s.PreviousSibling() {
		idx++
	}
	return strconv.Itoa(idx) + ". "
}

func normalizeBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, l := range lines {
		l = strings.TrimRight(l, " \t")
		if l == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
