// Package assets holds the HTML snippets and CSS spliced around imported
// content, and lets a site override them from a directory on disk.
//
// An asset root is laid out by Kind:
//
//	styles/{name}.css
//	templates/{name}.html
//
// FSLoader reads one root: the built-in one (NewEmbeddedLoader) or an
// override directory (NewFilesystemLoader). AssetResolver stacks roots and
// falls through only on ErrNotFound, so a site can ship its own
// mathjax-loader.html and keep every other snippet.
//
// Names are bare words; anything that could change the resolved path is
// rejected with ErrInvalidName. Override symlinks must stay inside the
// override directory.
//
// Templates are text/template sources rendered by the pipeline package.
package assets
