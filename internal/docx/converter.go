package docx

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"mime"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// DefaultMaxPartSize bounds the decompressed size of a single package part.
const DefaultMaxPartSize = 64 << 20

var (
	bodyExpr      = xpath.MustCompile(`//*[local-name()='body']`)
	blipExpr      = xpath.MustCompile(`.//*[local-name()='blip']`)
	imageDataExpr = xpath.MustCompile(`.//*[local-name()='imagedata']`)
	docPrExpr     = xpath.MustCompile(`.//*[local-name()='docPr']`)

	headingStyle = regexp.MustCompile(`^heading ?([1-6])$`)
)

// Converter renders .docx bytes as an HTML fragment.
type Converter struct {
	maxPartSize int64
}

// Option configures a Converter.
type Option func(*Converter)

// WithMaxPartSize caps the decompressed size of any part, images included.
func WithMaxPartSize(n int64) Option {
	return func(c *Converter) {
		if n > 0 {
			c.maxPartSize = n
		}
	}
}

// New creates a Converter.
func New(opts ...Option) *Converter {
	c := &Converter{maxPartSize: DefaultMaxPartSize}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ToHTML converts a .docx document.
func (c *Converter) ToHTML(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	a, err := openArchive(data, c.maxPartSize)
	if err != nil {
		return "", err
	}
	doc, err := a.parse(a.mainPart)
	if err != nil {
		return "", err
	}
	body := xmlquery.QuerySelector(doc, bodyExpr)
	if body == nil {
		return "", fmt.Errorf("%w: %s has no body", ErrMalformedPart, a.mainPart)
	}

	w := &writer{pkg: a}
	if err := w.blocks(ctx, body); err != nil {
		return "", err
	}
	return w.b.String(), nil
}

// openList is one level of the open list stack.
type openList struct {
	numID string
	level int
	tag   string
}

// writer renders block content. Table cells get their own writer.
type writer struct {
	pkg   *archive
	b     strings.Builder
	lists []openList
}

func (w *writer) blocks(ctx context.Context, parent *xmlquery.Node) error {
	for n := parent.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != xmlquery.ElementNode {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		switch n.Data {
		case "p":
			w.paragraph(n)
		case "tbl":
			w.closeLists(0)
			if err := w.table(ctx, n); err != nil {
				return err
			}
		case "sdt":
			if content := child(n, "sdtContent"); content != nil {
				if err := w.blocks(ctx, content); err != nil {
					return err
				}
			}
		}
	}
	w.closeLists(0)
	return nil
}

func (w *writer) paragraph(p *xmlquery.Node) {
	props := child(p, "pPr")
	content := w.inline(p)

	if numID, level, ok := listInfo(props); ok {
		w.listItem(numID, level, content)
		return
	}
	w.closeLists(0)
	if content == "" {
		return
	}

	tag := "p"
	if h := w.headingLevel(props); h > 0 {
		tag = "h" + strconv.Itoa(h)
	}
	w.b.WriteString("<" + tag + ">" + content + "</" + tag + ">")
}

func (w *writer) headingLevel(props *xmlquery.Node) int {
	id := val(child(props, "pStyle"))
	if id == "" {
		return 0
	}
	name, ok := w.pkg.styles[id]
	if !ok || name == "" {
		name = strings.ToLower(id)
	}
	if name == "title" {
		return 1
	}
	if m := headingStyle.FindStringSubmatch(name); m != nil {
		level, _ := strconv.Atoi(m[1])
		return level
	}
	return 0
}

func listInfo(props *xmlquery.Node) (string, int, bool) {
	numPr := child(props, "numPr")
	numID := val(child(numPr, "numId"))
	if numID == "" || numID == "0" {
		return "", 0, false
	}
	level, err := strconv.Atoi(val(child(numPr, "ilvl")))
	if err != nil {
		level = 0
	}
	return numID, level, true
}

func (w *writer) listItem(numID string, level int, content string) {
	w.closeLists(level + 1)
	if n := len(w.lists); n > 0 && w.lists[n-1].level == level {
		if w.lists[n-1].numID == numID {
			w.b.WriteString("</li><li>" + content)
			return
		}
		w.closeLists(level)
	}

	tag := "ul"
	if w.pkg.numbering.ordered(numID, strconv.Itoa(level)) {
		tag = "ol"
	}
	w.lists = append(w.lists, openList{numID: numID, level: level, tag: tag})
	w.b.WriteString("<" + tag + "><li>" + content)
}

// closeLists closes every open list at or deeper than level.
func (w *writer) closeLists(level int) {
	for n := len(w.lists); n > 0 && w.lists[n-1].level >= level; n = len(w.lists) {
		w.b.WriteString("</li></" + w.lists[n-1].tag + ">")
		w.lists = w.lists[:n-1]
	}
}

func (w *writer) table(ctx context.Context, tbl *xmlquery.Node) error {
	w.b.WriteString("<table>")
	for _, tr := range children(tbl, "tr") {
		w.b.WriteString("<tr>")
		for _, tc := range children(tr, "tc") {
			if span, err := strconv.Atoi(val(child(child(tc, "tcPr"), "gridSpan"))); err == nil && span > 1 {
				w.b.WriteString(`<td colspan="` + strconv.Itoa(span) + `">`)
			} else {
				w.b.WriteString("<td>")
			}
			cell := &writer{pkg: w.pkg}
			if err := cell.blocks(ctx, tc); err != nil {
				return err
			}
			w.b.WriteString(cell.b.String() + "</td>")
		}
		w.b.WriteString("</tr>")
	}
	w.b.WriteString("</table>")
	return nil
}

// inline renders the run-level content of a paragraph or container.
func (w *writer) inline(parent *xmlquery.Node) string {
	var b strings.Builder
	for n := parent.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != xmlquery.ElementNode {
			continue
		}
		switch n.Data {
		case "r":
			b.WriteString(w.run(n))
		case "hyperlink":
			b.WriteString(w.hyperlink(n))
		case "ins", "smartTag", "fldSimple", "customXml":
			b.WriteString(w.inline(n))
		}
	}
	return b.String()
}

func (w *writer) hyperlink(n *xmlquery.Node) string {
	content := w.inline(n)
	href := ""
	if rel, ok := w.pkg.rels[attr(n, "id")]; ok {
		href = rel.Target
	}
	if anchor := attr(n, "anchor"); anchor != "" {
		href += "#" + anchor
	}
	if href == "" || content == "" {
		return content
	}
	return `<a href="` + html.EscapeString(href) + `">` + content + `</a>`
}

func (w *writer) run(r *xmlquery.Node) string {
	var b strings.Builder
	for c := r.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != xmlquery.ElementNode {
			continue
		}
		switch c.Data {
		case "t":
			b.WriteString(html.EscapeString(c.InnerText()))
		case "tab":
			b.WriteString("\t")
		case "br":
			if attr(c, "type") != "page" {
				b.WriteString("<br />")
			}
		case "cr":
			b.WriteString("<br />")
		case "noBreakHyphen":
			b.WriteString("-")
		case "drawing", "pict":
			b.WriteString(w.image(c))
		}
	}
	if b.Len() == 0 {
		return ""
	}
	return formatRun(child(r, "rPr"), b.String())
}

// formatRun wraps content in the tags its run properties call for.
func formatRun(props *xmlquery.Node, content string) string {
	var tags []string
	if toggle(props, "b") {
		tags = append(tags, "strong")
	}
	if toggle(props, "i") {
		tags = append(tags, "em")
	}
	if u := child(props, "u"); u != nil && val(u) != "none" {
		tags = append(tags, "u")
	}
	if toggle(props, "strike") || toggle(props, "dstrike") {
		tags = append(tags, "s")
	}
	switch val(child(props, "vertAlign")) {
	case "superscript":
		tags = append(tags, "sup")
	case "subscript":
		tags = append(tags, "sub")
	}

	for i := len(tags) - 1; i >= 0; i-- {
		content = "<" + tags[i] + ">" + content + "</" + tags[i] + ">"
	}
	return content
}

// toggle reports whether an on/off run property is on.
func toggle(props *xmlquery.Node, name string) bool {
	p := child(props, name)
	if p == nil {
		return false
	}
	switch val(p) {
	case "false", "0", "off", "none":
		return false
	}
	return true
}

// image renders an embedded picture as a data URI. Linked or unreadable
// pictures are dropped.
func (w *writer) image(n *xmlquery.Node) string {
	id := attr(xmlquery.QuerySelector(n, blipExpr), "embed")
	if id == "" {
		id = attr(xmlquery.QuerySelector(n, imageDataExpr), "id")
	}
	rel, ok := w.pkg.rels[id]
	if !ok || rel.External {
		return ""
	}
	name := w.pkg.resolve(rel.Target)
	data, err := w.pkg.read(name)
	if err != nil {
		return ""
	}

	ext := strings.ToLower(path.Ext(name))
	mediaType := mime.TypeByExtension(ext)
	if mediaType == "" {
		mediaType = "image/" + strings.TrimPrefix(ext, ".")
	}
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}

	img := `<img src="data:` + mediaType + `;base64,` + base64.StdEncoding.EncodeToString(data) + `"`
	if alt := attr(xmlquery.QuerySelector(n, docPrExpr), "descr"); alt != "" {
		img += ` alt="` + html.EscapeString(alt) + `"`
	}
	return img + " />"
}
