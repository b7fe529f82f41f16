package assets

import (
	"errors"
	"testing"
)

func TestKindPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		kind    Kind
		input   string
		want    string
		wantErr bool
	}{
		{name: "style", kind: Styles, input: "table", want: "styles/table.css"},
		{name: "hyphenated template", kind: Templates, input: "formula-bootstrap", want: "templates/formula-bootstrap.html"},
		{name: "underscore and digits", kind: Templates, input: "mathjax_v3", want: "templates/mathjax_v3.html"},
		{name: "empty", kind: Styles, input: "", wantErr: true},
		{name: "extension given", kind: Styles, input: "table.css", wantErr: true},
		{name: "slash", kind: Styles, input: "a/b", wantErr: true},
		{name: "backslash", kind: Styles, input: `a\b`, wantErr: true},
		{name: "parent", kind: Templates, input: "..", wantErr: true},
		{name: "space", kind: Styles, input: "my style", wantErr: true},
		{name: "leading hyphen", kind: Styles, input: "-rf", wantErr: true},
		{name: "null byte", kind: Styles, input: "a\x00b", wantErr: true},
		{name: "non-ascii", kind: Styles, input: "tablé", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.kind.Path(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidName) {
					t.Errorf("Path(%q) error = %v, want ErrInvalidName", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Path(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Path(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
