package policy

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

var blankRuns = regexp.MustCompile(`\n{3,}`)

// ParseMarkdown flattens a markdown policy to plain text for embedding. The
// first level-1 heading, if any, is returned as the title.
func ParseMarkdown(src []byte) (title, body string) {
	doc := md.Parser().Parse(text.NewReader(src))

	var (
		buf        bytes.Buffer
		titleStart = -1
	)

	newline := func() {
		if buf.Len() > 0 && !bytes.HasSuffix(buf.Bytes(), []byte("\n")) {
			buf.WriteByte('\n')
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Heading:
			if entering {
				newline()
				if title == "" && node.Level == 1 {
					titleStart = buf.Len()
				}
			} else {
				if titleStart >= 0 {
					title = strings.TrimSpace(buf.String()[titleStart:])
					titleStart = -1
				}
				buf.WriteString("\n\n")
			}
		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte('\n')
				}
			}
		case *ast.String:
			if entering {
				buf.Write(node.Value)
			}
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			if entering {
				newline()
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					buf.Write(seg.Value(src))
				}
				buf.WriteByte('\n')
				return ast.WalkSkipChildren, nil
			}
		case *ast.Paragraph:
			if !entering {
				buf.WriteString("\n\n")
			}
		case *ast.TextBlock, *east.TableRow, *east.TableHeader:
			if !entering {
				newline()
			}
		case *east.TableCell:
			if !entering {
				buf.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})

	body = blankRuns.ReplaceAllString(buf.String(), "\n\n")
	return title, strings.TrimSpace(body)
}
