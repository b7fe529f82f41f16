// Package docx converts Word .docx documents into HTML fragments.
//
// The archive's main document part is parsed with xmlquery. Paragraphs,
// headings, run formatting, hyperlinks, lists, tables, line breaks and
// embedded images are rendered; everything else (page setup, fields,
// comments, tracked deletions) is dropped. Legacy binary .doc files are not
// zip archives and fail with ErrNotDocx.
package docx
