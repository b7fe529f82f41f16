package woniuimport

import "github.com/woniunote/woniuimport/internal/editor"

// Editor is the rich-text editor receiving a confirmed result.
type Editor interface {
	// SaveScene records an undo point.
	SaveScene()
	// InsertHTML inserts html at the editor's insertion point.
	InsertHTML(html string) error
	// ContentElement returns the live content element, or nil.
	ContentElement() ContentElement
}

// ContentElement is the part of the editor page holding user content.
type ContentElement interface {
	// RewriteText applies rewrite to every text node outside code and
	// scripts, returning the number of nodes changed.
	RewriteText(rewrite func(string) string) int
}

// DocumentEditor adapts an in-memory editor.Document to Editor.
type DocumentEditor struct {
	doc *editor.Document
}

// NewDocumentEditor wraps doc.
func NewDocumentEditor(doc *editor.Document) *DocumentEditor {
	return &DocumentEditor{doc: doc}
}

// SaveScene records an undo point.
func (d *DocumentEditor) SaveScene() {
	d.doc.SaveScene()
}

// InsertHTML inserts html into the content element, or the body.
func (d *DocumentEditor) InsertHTML(html string) error {
	return d.doc.InsertHTML(html)
}

// ContentElement returns the document's content element, or nil.
func (d *DocumentEditor) ContentElement() ContentElement {
	el := d.doc.ContentElement()
	if el == nil {
		return nil
	}
	return el
}

// Document returns the wrapped document.
func (d *DocumentEditor) Document() *editor.Document {
	return d.doc
}

var (
	_ Editor         = (*DocumentEditor)(nil)
	_ ContentElement = (*editor.Element)(nil)
)
