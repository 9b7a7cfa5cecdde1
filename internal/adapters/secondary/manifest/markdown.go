package manifest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/slidestep/internal/adapters/secondary/memory"
)

// deckFrontmatter is the optional YAML header of a markdown deck
type deckFrontmatter struct {
	Viewport float64   `yaml:"viewport"`
	Heights  []float64 `yaml:"heights"`
}

var markdown = goldmark.New()

// parseMarkdown reads a deck of "---" separated slides. Each slide is titled
// by its first heading, or "Slide N" when it has none.
func parseMarkdown(content []byte) (*Manifest, error) {
	header, body, err := extractFrontmatter(content)
	if err != nil {
		return nil, err
	}

	chunks := splitSlides(body)
	m := &Manifest{
		Viewport: header.Viewport,
		Slides:   make([]memory.Item, 0, len(chunks)),
	}

	for i, chunk := range chunks {
		item := memory.Item{Title: headingText(chunk)}
		if item.Title == "" {
			item.Title = fmt.Sprintf("Slide %d", i+1)
		}
		if i < len(header.Heights) {
			item.Height = header.Heights[i]
		}
		m.Slides = append(m.Slides, item)
	}

	return m, nil
}

func headingText(src []byte) string {
	doc := markdown.Parser().Parse(text.NewReader(src))

	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok {
			title = strings.TrimSpace(string(heading.Text(src))) //nolint:staticcheck // plain text of inline children
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	return title
}

// extractFrontmatter splits a leading YAML block from the deck
func extractFrontmatter(content []byte) (deckFrontmatter, []byte, error) {
	var header deckFrontmatter

	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return header, content, nil
	}

	lines := bytes.Split(content, []byte("\n"))
	endIndex := -1
	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			endIndex = i
			break
		}
	}

	// no closing delimiter, the leading rule is just a separator
	if endIndex == -1 {
		return header, content, nil
	}

	raw := bytes.Join(lines[1:endIndex], []byte("\n"))
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := yaml.Unmarshal(raw, &header); err != nil {
			return header, nil, fmt.Errorf("decoding frontmatter: %w", err)
		}
	}

	return header, bytes.Join(lines[endIndex+1:], []byte("\n")), nil
}

// splitSlides splits on horizontal rules and drops empty chunks
func splitSlides(content []byte) [][]byte {
	parts := strings.Split(string(content), "\n---\n")

	slides := make([][]byte, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			slides = append(slides, []byte(trimmed))
		}
	}
	return slides
}
