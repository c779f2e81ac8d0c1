package writeups

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// descriptionLimit caps derived descriptions, in runes.
const descriptionLimit = 200

var mdParser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()

// FirstParagraph returns the plain text of the first paragraph in a markdown
// body, collapsed to one line and cut at descriptionLimit runes. Headings,
// code blocks and lists are skipped over.
func FirstParagraph(body []byte) string {
	doc := mdParser.Parse(text.NewReader(body))

	var para ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindParagraph:
			// only top-level prose, not paragraphs nested in lists or quotes
			if n.Parent() == doc {
				para = n
				return ast.WalkStop, nil
			}
		case ast.KindList, ast.KindBlockquote:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if para == nil {
		return ""
	}

	var sb strings.Builder
	_ = ast.Walk(para, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := n.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(body))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		case *ast.CodeSpan:
			for c := t.FirstChild(); c != nil; c = c.NextSibling() {
				if seg, ok := c.(*ast.Text); ok {
					sb.Write(seg.Segment.Value(body))
				}
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	desc := strings.Join(strings.Fields(sb.String()), " ")
	if r := []rune(desc); len(r) > descriptionLimit {
		desc = strings.TrimSpace(string(r[:descriptionLimit])) + "…"
	}
	return desc
}
