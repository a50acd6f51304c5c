package generation

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/harrison/foresight/internal/patterns"
)

// Errors returned by Screen.
var (
	ErrEmptyReflection = errors.New("empty reflection")
	ErrMissingHedge    = errors.New("reflection lacks hedging language")
)

// OutputViolation reports a forbidden framing in generated text.
type OutputViolation struct {
	Category patterns.Category
}

func (v *OutputViolation) Error() string {
	return fmt.Sprintf("reflection contains forbidden %s framing", v.Category)
}

var markdown = goldmark.New()

// PlainText renders model output as plain paragraphs: markdown emphasis,
// headings, lists and code are reduced to their text.
func PlainText(src string) string {
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var paragraphs []string
	var buf bytes.Buffer
	flush := func() {
		if p := strings.Join(strings.Fields(buf.String()), " "); p != "" {
			paragraphs = append(paragraphs, p)
		}
		buf.Reset()
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Paragraph, *ast.Heading, *ast.TextBlock:
			if !entering {
				flush()
			}
		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte(' ')
				}
			}
		case *ast.String:
			if entering {
				buf.Write(node.Value)
			}
		case *ast.CodeSpan:
			if entering {
				for c := node.FirstChild(); c != nil; c = c.NextSibling() {
					if t, ok := c.(*ast.Text); ok {
						buf.Write(t.Segment.Value(source))
					}
				}
				return ast.WalkSkipChildren, nil
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	flush()

	return strings.Join(paragraphs, "\n\n")
}

// Screen flattens provider output and checks it is safe to show: non-empty,
// free of advice, certainty, verdicts and assistant self-reference, and
// hedged as one possible future.
func Screen(raw string) (string, error) {
	clean := PlainText(trimQuotes(raw))
	if clean == "" {
		return "", ErrEmptyReflection
	}
	if rule, ok := patterns.ForbiddenOutput.FirstMatch(clean); ok {
		return "", &OutputViolation{Category: rule.Category}
	}
	if !patterns.HedgingMarkers.MatchesAny(clean) {
		return "", ErrMissingHedge
	}
	return clean, nil
}
