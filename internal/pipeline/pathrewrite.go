package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ResolveRelativeImages turns relative img[src] paths into file:// URLs
// under sourceDir so a browser preview loaded from a temp file still finds
// them. Paths escaping sourceDir, URLs, data URIs and absolute paths are
// left alone. An empty sourceDir returns the HTML unchanged.
func ResolveRelativeImages(htmlContent, sourceDir string) (string, error) {
	if sourceDir == "" {
		return htmlContent, nil
	}

	absSourceDir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}

	nodes, err := parseFragment(htmlContent)
	if err != nil {
		return "", err
	}

	changed := false
	for _, n := range nodes {
		if resolveImages(n, absSourceDir) {
			changed = true
		}
	}
	if !changed {
		return htmlContent, nil
	}

	var buf strings.Builder
	for _, n := range nodes {
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// parseFragment parses content in a <body> context so no wrapper elements
// are added.
func parseFragment(content string) ([]*html.Node, error) {
	body := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	return html.ParseFragment(strings.NewReader(content), body)
}

func resolveImages(n *html.Node, sourceDir string) bool {
	changed := false
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		for i, attr := range n.Attr {
			if attr.Key != "src" || !isRelativePath(attr.Val) {
				continue
			}
			absPath := filepath.Join(sourceDir, filepath.FromSlash(attr.Val))
			if !isPathUnderDir(absPath, sourceDir) {
				continue
			}
			n.Attr[i].Val = pathToFileURL(absPath)
			changed = true
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if resolveImages(c, sourceDir) {
			changed = true
		}
	}
	return changed
}

// isRelativePath returns true if the path should be rewritten.
func isRelativePath(path string) bool {
	if path == "" || strings.HasPrefix(path, "#") || strings.HasPrefix(path, "//") {
		return false
	}
	if u, err := url.Parse(path); err == nil && u.Scheme != "" {
		return false
	}
	return !filepath.IsAbs(path)
}

// isPathUnderDir checks if absPath is under dir.
func isPathUnderDir(absPath, dir string) bool {
	cleanDir := filepath.Clean(dir) + string(filepath.Separator)
	return strings.HasPrefix(filepath.Clean(absPath)+string(filepath.Separator), cleanDir)
}

// pathToFileURL converts an absolute path to a file:// URL.
func pathToFileURL(absPath string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(absPath)}
	return u.String()
}
