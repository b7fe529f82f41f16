// Package editor is an in-memory rich-text editor host: a parsed HTML page
// with a content element, an undo stack of scenes and HTML insertion.
package editor

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Sentinel errors for document operations.
var (
	ErrParse       = errors.New("failed to parse document")
	ErrRender      = errors.New("failed to render document")
	ErrNoInsertion = errors.New("no insertion point")
)

// Default content element lookup.
const (
	DefaultContentElementID = "content"
	DefaultFallbackSelector = ".ueditor-content"
)

// Option configures a Document.
type Option func(*Document)

// WithContentElementID sets the id of the content element.
func WithContentElementID(id string) Option {
	return func(d *Document) { d.contentID = id }
}

// WithFallbackSelector sets the selector tried when no element carries the
// content id. Supported forms are "#id", ".class" and a bare tag name.
func WithFallbackSelector(selector string) Option {
	return func(d *Document) { d.fallback = selector }
}

// Document is a page being edited. Methods are safe for concurrent use.
type Document struct {
	mu        sync.Mutex
	root      *html.Node
	contentID string
	fallback  string
	scenes    []string
}

// Parse reads a page.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	d := &Document{
		root:      root,
		contentID: DefaultContentElementID,
		fallback:  DefaultFallbackSelector,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// ParseString reads a page from a string.
func ParseString(page string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(page), opts...)
}

// SaveScene records the current state on the undo stack. Saving a state
// equal to the last scene is a no-op.
func (d *Document) SaveScene() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.saveLocked()
}

func (d *Document) saveLocked() {
	scene, err := render(d.root)
	if err != nil {
		return
	}
	if n := len(d.scenes); n > 0 && d.scenes[n-1] == scene {
		return
	}
	d.scenes = append(d.scenes, scene)
}

// Scenes returns the depth of the undo stack.
func (d *Document) Scenes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.scenes)
}

// Undo restores the scene before the latest one. Unsaved changes are saved
// first so they are what gets undone. Elements obtained earlier are stale
// after a successful Undo.
func (d *Document) Undo() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.saveLocked()
	if len(d.scenes) < 2 {
		return false, nil
	}
	d.scenes = d.scenes[:len(d.scenes)-1]
	root, err := html.Parse(strings.NewReader(d.scenes[len(d.scenes)-1]))
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrParse, err)
	}
	d.root = root
	return true, nil
}

// InsertHTML appends fragment to the content element, or to the body when
// the page has none.
func (d *Document) InsertHTML(fragment string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	target := d.contentLocked()
	if target == nil {
		target = find(d.root, func(n *html.Node) bool { return n.DataAtom == atom.Body })
	}
	if target == nil {
		return ErrNoInsertion
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), target)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	for _, n := range nodes {
		target.AppendChild(n)
	}
	return nil
}

// ContentElement returns the live content element, or nil.
func (d *Document) ContentElement() *Element {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.contentLocked()
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

func (d *Document) contentLocked() *html.Node {
	if d.contentID != "" {
		if n := find(d.root, byID(d.contentID)); n != nil {
			return n
		}
	}
	if match := selector(d.fallback); match != nil {
		return find(d.root, match)
	}
	return nil
}

// Render serializes the whole page.
func (d *Document) Render() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return render(d.root)
}

func render(n *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRender, err)
	}
	return b.String(), nil
}

// Element is a live element of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// skipText lists elements whose text is never rewritten.
var skipText = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
	atom.Pre:    true,
	atom.Code:   true,
}

// RewriteText applies rewrite to every text node under the element except
// those inside script, style, pre and code, and returns how many changed.
func (e *Element) RewriteText(rewrite func(string) string) int {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	changed := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				if out := rewrite(c.Data); out != c.Data {
					c.Data = out
					changed++
				}
			case html.ElementNode:
				if !skipText[c.DataAtom] {
					walk(c)
				}
			}
		}
	}
	walk(e.node)
	return changed
}

// InnerHTML serializes the element's children.
func (e *Element) InnerHTML() (string, error) {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()

	var b strings.Builder
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&b, c); err != nil {
			return "", fmt.Errorf("%w: %v", ErrRender, err)
		}
	}
	return b.String(), nil
}

// find returns the first node in document order matching match.
func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func byID(id string) func(*html.Node) bool {
	return func(n *html.Node) bool { return attr(n, "id") == id }
}

// selector compiles a single simple selector.
func selector(sel string) func(*html.Node) bool {
	sel = strings.TrimSpace(sel)
	switch {
	case sel == "":
		return nil
	case strings.HasPrefix(sel, "#"):
		return byID(sel[1:])
	case strings.HasPrefix(sel, "."):
		class := sel[1:]
		return func(n *html.Node) bool {
			for _, c := range strings.Fields(attr(n, "class")) {
				if c == class {
					return true
				}
			}
			return false
		}
	default:
		tag := strings.ToLower(sel)
		return func(n *html.Node) bool { return n.Data == tag }
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
