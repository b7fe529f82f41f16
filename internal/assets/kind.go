package assets

import (
	"fmt"
	"path"
)

// Kind is a family of assets sharing a directory and extension.
type Kind struct {
	Label string
	Dir   string
	Ext   string
}

// Asset kinds.
var (
	Styles    = Kind{Label: "style", Dir: "styles", Ext: ".css"}
	Templates = Kind{Label: "template", Dir: "templates", Ext: ".html"}
)

// Path returns the slash-separated path of name inside an asset root.
func (k Kind) Path(name string) (string, error) {
	if !validName(name) {
		return "", fmt.Errorf("%w: %s %q", ErrInvalidName, k.Label, name)
	}
	return path.Join(k.Dir, name+k.Ext), nil
}

// validName accepts ASCII letters, digits, '-' and '_', not starting with '-'.
func validName(name string) bool {
	if name == "" || name[0] == '-' {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		ok := c == '-' || c == '_' ||
			('0' <= c && c <= '9') ||
			('a' <= c && c <= 'z') ||
			('A' <= c && c <= 'Z')
		if !ok {
			return false
		}
	}
	return true
}
