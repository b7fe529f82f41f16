package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Sentinel errors for document reading.
var (
	ErrNotDocx       = errors.New("not a DOCX document")
	ErrMissingPart   = errors.New("missing document part")
	ErrMalformedPart = errors.New("malformed document part")
	ErrPartTooLarge  = errors.New("document part too large")
)

const (
	defaultMainPart = "word/document.xml"
	packageRels     = "_rels/.rels"
	officeDocument  = "/officeDocument"
)

var (
	relationshipExpr = xpath.MustCompile(`//*[local-name()='Relationship']`)
	styleExpr        = xpath.MustCompile(`//*[local-name()='style']`)
	abstractNumExpr  = xpath.MustCompile(`//*[local-name()='abstractNum']`)
	numExpr          = xpath.MustCompile(`//*[local-name()='num']`)
)

// relationship is one entry of a .rels part.
type relationship struct {
	Type     string
	Target   string
	External bool
}

// archive is an opened .docx package.
type archive struct {
	files       map[string]*zip.File
	maxPartSize int64
	mainPart    string
	rels        map[string]relationship
	styles      map[string]string // styleId -> lower-cased style name
	numbering   numbering
}

func openArchive(data []byte, maxPartSize int64) (*archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotDocx, err)
	}

	a := &archive{
		files:       make(map[string]*zip.File, len(zr.File)),
		maxPartSize: maxPartSize,
		mainPart:    defaultMainPart,
	}
	for _, f := range zr.File {
		a.files[partName(f.Name)] = f
	}

	if root, err := a.relationships(packageRels); err == nil {
		for _, rel := range root {
			if strings.HasSuffix(rel.Type, officeDocument) && !rel.External {
				a.mainPart = partName(rel.Target)
				break
			}
		}
	}
	if _, ok := a.files[a.mainPart]; !ok {
		if len(zr.File) == 0 || a.files["[Content_Types].xml"] == nil {
			return nil, fmt.Errorf("%w: no content types", ErrNotDocx)
		}
		return nil, fmt.Errorf("%w: %s", ErrMissingPart, a.mainPart)
	}

	dir, base := path.Split(a.mainPart)
	if a.rels, err = a.relationships(dir + "_rels/" + base + ".rels"); err != nil && !errors.Is(err, ErrMissingPart) {
		return nil, err
	}
	if a.styles, err = a.loadStyles(dir + "styles.xml"); err != nil && !errors.Is(err, ErrMissingPart) {
		return nil, err
	}
	if a.numbering, err = a.loadNumbering(dir + "numbering.xml"); err != nil && !errors.Is(err, ErrMissingPart) {
		return nil, err
	}
	return a, nil
}

// partName normalizes a zip entry or absolute target into a package path.
func partName(name string) string {
	return strings.TrimPrefix(strings.ReplaceAll(name, `\`, "/"), "/")
}

// resolve turns a relationship target into a package path relative to the
// main document part.
func (a *archive) resolve(target string) string {
	if strings.HasPrefix(target, "/") {
		return partName(target)
	}
	return path.Join(path.Dir(a.mainPart), target)
}

func (a *archive) read(name string) ([]byte, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingPart, name)
	}
	if f.UncompressedSize64 > uint64(a.maxPartSize) {
		return nil, fmt.Errorf("%w: %s", ErrPartTooLarge, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPart, name, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(io.LimitReader(rc, a.maxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPart, name, err)
	}
	if int64(len(data)) > a.maxPartSize {
		return nil, fmt.Errorf("%w: %s", ErrPartTooLarge, name)
	}
	return data, nil
}

func (a *archive) parse(name string) (*xmlquery.Node, error) {
	data, err := a.read(name)
	if err != nil {
		return nil, err
	}
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPart, name, err)
	}
	return doc, nil
}

func (a *archive) relationships(name string) (map[string]relationship, error) {
	doc, err := a.parse(name)
	if err != nil {
		return nil, err
	}
	rels := make(map[string]relationship)
	for _, n := range xmlquery.QuerySelectorAll(doc, relationshipExpr) {
		rels[attr(n, "Id")] = relationship{
			Type:     attr(n, "Type"),
			Target:   attr(n, "Target"),
			External: attr(n, "TargetMode") == "External",
		}
	}
	return rels, nil
}

func (a *archive) loadStyles(name string) (map[string]string, error) {
	doc, err := a.parse(name)
	if err != nil {
		return nil, err
	}
	styles := make(map[string]string)
	for _, n := range xmlquery.QuerySelectorAll(doc, styleExpr) {
		id := attr(n, "styleId")
		if id == "" {
			continue
		}
		styles[id] = strings.ToLower(val(child(n, "name")))
	}
	return styles, nil
}

// numbering maps list instances to their per-level number formats.
type numbering struct {
	abstractOf map[string]string            // numId -> abstractNumId
	formats    map[string]map[string]string // abstractNumId -> ilvl -> numFmt
}

func (a *archive) loadNumbering(name string) (numbering, error) {
	doc, err := a.parse(name)
	if err != nil {
		return numbering{}, err
	}
	nb := numbering{
		abstractOf: make(map[string]string),
		formats:    make(map[string]map[string]string),
	}
	for _, n := range xmlquery.QuerySelectorAll(doc, abstractNumExpr) {
		levels := make(map[string]string)
		for _, lvl := range children(n, "lvl") {
			levels[attr(lvl, "ilvl")] = val(child(lvl, "numFmt"))
		}
		nb.formats[attr(n, "abstractNumId")] = levels
	}
	for _, n := range xmlquery.QuerySelectorAll(doc, numExpr) {
		nb.abstractOf[attr(n, "numId")] = val(child(n, "abstractNumId"))
	}
	return nb, nil
}

// ordered reports whether a list level is numbered. Unknown lists are
// bulleted.
func (nb numbering) ordered(numID, level string) bool {
	f := nb.formats[nb.abstractOf[numID]][level]
	return f != "" && f != "bullet" && f != "none"
}

// attr returns an attribute by local name, ignoring its prefix.
func attr(n *xmlquery.Node, local string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// val returns the w:val attribute.
func val(n *xmlquery.Node) string {
	return attr(n, "val")
}

// child returns the first element child with the given local name.
func child(n *xmlquery.Node, local string) *xmlquery.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == local {
			return c
		}
	}
	return nil
}

func children(n *xmlquery.Node, local string) []*xmlquery.Node {
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == local {
			out = append(out, c)
		}
	}
	return out
}
