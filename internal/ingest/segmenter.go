// Package ingest loads counseling documents into the vector index. Markdown
// is flattened to plain text via its AST, segmented into overlapping
// token windows, embedded in batches, and upserted with source metadata.
package ingest

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmtext "github.com/yuin/goldmark/text"
)

const (
	// segmentTokens is the target window per segment, sized so each
	// segment fits comfortably inside the embedding model's input limit.
	segmentTokens = 400
	// segmentOverlap carries trailing context into the next window so
	// answers spanning a boundary are still retrievable.
	segmentOverlap = 50
)

var (
	segEnc  *tiktoken.Tiktoken
	segOnce sync.Once
)

func segmentEncoder() *tiktoken.Tiktoken {
	segOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return
		}
		segEnc = enc
	})
	return segEnc
}

// Segmenter splits document text into overlapping token windows.
type Segmenter struct {
	md goldmark.Markdown
}

// NewSegmenter creates a Segmenter with table-aware markdown parsing.
func NewSegmenter() *Segmenter {
	return &Segmenter{
		md: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// Segment flattens markdown to plain text and cuts it into token windows.
// Plain-text files pass through the same windowing without AST flattening.
func (s *Segmenter) Segment(content []byte, markdown bool) []string {
	text := string(content)
	if markdown {
		text = s.flatten(content)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return window(text)
}

// flatten renders markdown to plain text by collecting text nodes from
// the AST. Headings and paragraphs become newline-separated blocks.
func (s *Segmenter) flatten(content []byte) string {
	doc := s.md.Parser().Parse(gmtext.NewReader(content))

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.ListItem:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "\n") {
				b.WriteString("\n")
			}
		case *ast.Text:
			b.Write(node.Segment.Value(content))
		case *ast.String:
			b.Write(node.Value)
		case *ast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(content))
			}
		case *ast.FencedCodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(content))
			}
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// window slices text into segments of segmentTokens with segmentOverlap
// carryover. When the tokenizer is unavailable the same windowing runs
// over whitespace-separated words.
func window(text string) []string {
	if enc := segmentEncoder(); enc != nil {
		ids := enc.Encode(text, nil, nil)
		if len(ids) <= segmentTokens {
			return []string{text}
		}
		var segs []string
		step := segmentTokens - segmentOverlap
		for start := 0; start < len(ids); start += step {
			end := start + segmentTokens
			if end > len(ids) {
				end = len(ids)
			}
			seg := strings.TrimSpace(enc.Decode(ids[start:end]))
			if seg != "" {
				segs = append(segs, seg)
			}
			if end == len(ids) {
				break
			}
		}
		return segs
	}

	words := strings.Fields(text)
	if len(words) <= segmentTokens {
		return []string{text}
	}
	var segs []string
	step := segmentTokens - segmentOverlap
	for start := 0; start < len(words); start += step {
		end := start + segmentTokens
		if end > len(words) {
			end = len(words)
		}
		segs = append(segs, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return segs
}
