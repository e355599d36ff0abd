// Package casefile reads compiler test cases written as Markdown.
//
// A case starts at a heading "Test: <name>" and holds one pyc fence with
// the program, followed by one expectation fence: a c fence with the exact
// emitted unit, or an error fence "<Kind>: <message fragment>". Code blocks
// without a language are commentary and are skipped.
package casefile

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Fence languages.
const (
	LangSource = "pyc"
	LangCode   = "c"
	LangError  = "error"
)

const headingPrefix = "Test: "

type Case struct {
	Name   string
	Line   int    // line of the heading
	Source string // program text, always ending in a newline
	Expect string // LangCode or LangError
	Want   string // expected C text, or "<Kind>: <fragment>"
}

// ErrorWant splits an error expectation into its kind and message fragment.
func (c *Case) ErrorWant() (kind, fragment string) {
	kind, fragment, _ = strings.Cut(c.Want, ":")
	return strings.TrimSpace(kind), strings.TrimSpace(fragment)
}

// Load reads and extracts the cases of one Markdown file.
func Load(path string) ([]Case, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cases, err := Extract(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cases, nil
}

// Extract returns the cases of a Markdown document in document order.
func Extract(source []byte) ([]Case, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var cases []Case
	var cur *Case
	finish := func() error {
		if cur == nil {
			return nil
		}
		if err := validate(cur); err != nil {
			return err
		}
		cases = append(cases, *cur)
		cur = nil
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			title := headingText(n, source)
			if !strings.HasPrefix(title, headingPrefix) {
				return ast.WalkContinue, nil
			}
			if err := finish(); err != nil {
				return ast.WalkStop, err
			}
			cur = &Case{
				Name: strings.TrimSpace(strings.TrimPrefix(title, headingPrefix)),
				Line: lineOf(n, source),
			}
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			lang := string(n.Language(source))
			if lang == "" {
				return ast.WalkContinue, nil
			}
			line := lineOf(n, source)
			if cur == nil {
				return ast.WalkStop, fmt.Errorf("line %d: %s fence outside of a test case", line, lang)
			}
			content := blockContent(n, source)
			switch lang {
			case LangSource:
				if cur.Source != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple %s fences in test %q", line, LangSource, cur.Name)
				}
				cur.Source = content
			case LangCode, LangError:
				if cur.Source == "" {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence before the %s fence in test %q", line, lang, LangSource, cur.Name)
				}
				if cur.Expect != "" {
					return ast.WalkStop, fmt.Errorf("line %d: multiple expectations in test %q", line, cur.Name)
				}
				cur.Expect = lang
				if lang == LangError {
					content = strings.TrimSpace(content)
				}
				cur.Want = content
			default:
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language %q in test %q", line, lang, cur.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return cases, nil
}

func validate(c *Case) error {
	if c.Name == "" {
		return fmt.Errorf("line %d: test case without a name", c.Line)
	}
	if c.Source == "" {
		return fmt.Errorf("test %q has no %s fence", c.Name, LangSource)
	}
	if c.Expect == "" {
		return fmt.Errorf("test %q has no %s or %s fence", c.Name, LangCode, LangError)
	}
	if c.Expect == LangError {
		if kind, frag := c.ErrorWant(); kind == "" || frag == "" {
			return fmt.Errorf("test %q: error fence must read \"<Kind>: <message>\"", c.Name)
		}
	}
	return nil
}

func headingText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			buf.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func blockContent(n *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.String()
}

// lineOf is the 1-based line a node starts on. Headings and fences carry
// their first content line; an empty fence falls back to line 1.
func lineOf(n ast.Node, source []byte) int {
	if n.Lines().Len() == 0 {
		return 1
	}
	return bytes.Count(source[:n.Lines().At(0).Start], []byte("\n")) + 1
}
