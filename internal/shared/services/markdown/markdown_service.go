// Package markdown renders audit reports to HTML and strips markup from
// imported free text.
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

type MarkdownService interface {
	// ReportHTML renders an audit report written in markdown. Only the
	// elements a report uses survive sanitizing.
	ReportHTML(report string) (string, error)
	// PlainText removes every tag from s and trims surrounding whitespace.
	PlainText(s string) string
}

type service struct {
	md     goldmark.Markdown
	report *bluemonday.Policy
	strict *bluemonday.Policy
}

func NewMarkdownService() MarkdownService {
	return &service{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
		report: reportPolicy(),
		strict: bluemonday.StrictPolicy(),
	}
}

// reportPolicy admits headings, lists, tables and inline emphasis. Course
// and lesson titles are user supplied, so links and images are dropped.
func reportPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "ul", "ol", "li", "strong", "em", "del", "code", "pre")
	p.AllowElements("h1", "h2", "h3", "h4")
	p.AllowAttrs("id").Matching(bluemonday.SpaceSeparatedTokens).OnElements("h1", "h2", "h3", "h4")
	p.AllowTables()
	p.AllowStyles("text-align").MatchingEnum("left", "right", "center").OnElements("th", "td")
	return p
}

func (s *service) ReportHTML(report string) (string, error) {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(report), &buf); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return s.report.Sanitize(buf.String()), nil
}

func (s *service) PlainText(in string) string {
	if in == "" {
		return ""
	}
	// StrictPolicy escapes entities; imported text is stored unescaped.
	return strings.TrimSpace(html.UnescapeString(s.strict.Sanitize(in)))
}
