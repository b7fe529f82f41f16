// Package woniuimport drives the editor's "import file" dialog: it turns an
// uploaded Word or Markdown file into HTML, previews it, and inserts it into
// a rich-text editor with math typesetting.
//
// # Quick Start
//
// Create an importer, import a file, then confirm it into an editor:
//
//	imp, err := woniuimport.NewImporter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = imp.ImportFile(ctx, woniuimport.File{Name: "notes.md", Data: data})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	doc, _ := editor.ParseString(page)
//	if err := imp.Confirm(ctx, woniuimport.NewDocumentEditor(doc)); err != nil {
//	    log.Fatal(err)
//	}
//
// A failed import keeps the previous result; Confirm without a result only
// raises an alert.
//
// # Import Paths
//
//   - .docx and .doc go through a WordConverter (internal/docx by default)
//     and are shown verbatim.
//   - .md goes through the Markdown pipeline (internal/pipeline): fenced
//     code is protected, bracket formulas with trigger tokens become
//     $$...$$, and the MathJax bootstrap is injected once. The math engine
//     is loaded first.
//   - ImportText converts Markdown typed into the dialog without loading
//     the engine.
//
// When several imports overlap, only the last one begun is shown.
//
// # Math Engines
//
// A MathEngine exposes a TypesetAPI once loaded: DirectAPI for MathJax 3
// style engines, QueueAPI for the MathJax 2 Hub queue. StaticEngine runs in
// process; BrowserPreview hosts MathJax in headless Chrome (go-rod) and
// doubles as the dialog's preview pane:
//
//	pv := woniuimport.NewBrowserPreview(woniuimport.WithPreviewConfig(cfg))
//	defer pv.Close()
//
//	imp, err := woniuimport.NewImporter(
//	    woniuimport.WithConfig(cfg),
//	    woniuimport.WithDialog(pv),
//	    woniuimport.WithMathEngine(pv),
//	)
//
// For batches, PreviewPool hands out previews and starts browsers lazily.
//
// # Configuration
//
// Config is loaded from YAML with LoadConfig and validated on NewImporter.
// Logging goes to a *zap.Logger set with WithLogger; the default discards.
//
// # Errors
//
// Failures wrap the sentinel errors in errors.go; test them with errors.Is.
// Panics inside an import or confirmation are returned as internal errors.
package woniuimport
