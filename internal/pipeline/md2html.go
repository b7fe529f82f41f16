package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// HTMLConverter abstracts Markdown to HTML conversion.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// MarkdownOptions selects renderer features.
type MarkdownOptions struct {
	Emoji           bool // :smile: shortcodes
	ImageDimensions bool // ![alt](src =WxH)
	Unsafe          bool // raw HTML passes through; callers must sanitize
}

// GoldmarkConverter converts Markdown to an HTML fragment using goldmark.
type GoldmarkConverter struct {
	md   goldmark.Markdown
	dims bool
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM tables,
// strikethrough, task lists and linkify, plus hard line breaks.
// Intraword underscores stay literal per CommonMark.
func NewGoldmarkConverter(opts MarkdownOptions) *GoldmarkConverter {
	extensions := []goldmark.Extender{extension.GFM}
	if opts.Emoji {
		extensions = append(extensions, emoji.New(emoji.WithRenderingMethod(emoji.Unicode)))
	}

	var parserOpts []parser.Option
	if opts.ImageDimensions {
		parserOpts = append(parserOpts, parser.WithASTTransformers(
			util.Prioritized(imageDimensionTransformer{}, 100),
		))
	}

	rendererOpts := []renderer.Option{html.WithHardWraps(), html.WithXHTML()}
	if opts.Unsafe {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}

	md := goldmark.New(
		goldmark.WithExtensions(extensions...),
		goldmark.WithParserOptions(parserOpts...),
		goldmark.WithRendererOptions(rendererOpts...),
	)
	return &GoldmarkConverter{md: md, dims: opts.ImageDimensions}
}

// ToHTML converts Markdown content to an HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// goldmark doesn't natively support context.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.dims {
		content = markImageDimensions(content)
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(content), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

const dimension = `(\*|\d+[A-Za-z%]{0,4})`

var (
	// ![alt](src =WxH "title") with an optional title.
	imageWithDimensions = regexp.MustCompile(`!\[([^\]]*)\]\(\s*<?([^\s<>()]+)>?\s+=` + dimension + `x` + dimension + `(\s+"[^"]*")?\s*\)`)

	// Destination carrying a dimension suffix after markImageDimensions.
	dimensionSuffix = regexp.MustCompile(`^(.*) =` + dimension + `x` + dimension + `$`)
)

// markImageDimensions moves the size into an angle-bracket destination so
// goldmark parses the image; the transformer then splits it back out.
func markImageDimensions(content string) string {
	return imageWithDimensions.ReplaceAllString(content, `![$1](<$2 =${3}x$4>$5)`)
}

// imageDimensionTransformer sets width and height attributes on images
// whose destination ends in " =WxH". A "*" leaves that side unset.
type imageDimensionTransformer struct{}

func (imageDimensionTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		img, ok := n.(*ast.Image)
		if !ok {
			return ast.WalkContinue, nil
		}
		m := dimensionSuffix.FindSubmatch(img.Destination)
		if m == nil {
			return ast.WalkContinue, nil
		}
		img.Destination = m[1]
		if string(m[2]) != "*" {
			img.SetAttribute([]byte("width"), m[2])
		}
		if string(m[3]) != "*" {
			img.SetAttribute([]byte("height"), m[3])
		}
		return ast.WalkContinue, nil
	})
}

// Compile-time interface checks.
var (
	_ HTMLConverter         = (*GoldmarkConverter)(nil)
	_ parser.ASTTransformer = imageDimensionTransformer{}
)
