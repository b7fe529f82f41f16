package assets

import "errors"

// AssetResolver searches a stack of loaders, first to last. A layer that
// lacks an asset passes the lookup down; any other error stops it.
type AssetResolver struct {
	layers []AssetLoader
}

// NewAssetResolver stacks the override directory, if any, over the built-in
// assets, so one snippet can be replaced while the rest stay built in.
func NewAssetResolver(overrideDir string) (*AssetResolver, error) {
	if overrideDir == "" {
		return NewLayeredResolver(NewEmbeddedLoader()), nil
	}
	override, err := NewFilesystemLoader(overrideDir)
	if err != nil {
		return nil, err
	}
	return NewLayeredResolver(override, NewEmbeddedLoader()), nil
}

// NewLayeredResolver searches layers in the order given.
func NewLayeredResolver(layers ...AssetLoader) *AssetResolver {
	return &AssetResolver{layers: layers}
}

// Layers reports how many loaders are searched.
func (r *AssetResolver) Layers() int {
	return len(r.layers)
}

// LoadStyle returns the first layer's copy of a style.
func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadStyle(name) })
}

// LoadTemplate returns the first layer's copy of a template.
func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.first(func(l AssetLoader) (string, error) { return l.LoadTemplate(name) })
}

func (r *AssetResolver) first(load func(AssetLoader) (string, error)) (string, error) {
	err := ErrNotFound
	for _, l := range r.layers {
		var content string
		content, err = load(l)
		if !errors.Is(err, ErrNotFound) {
			return content, err
		}
	}
	return "", err
}

var _ AssetLoader = (*AssetResolver)(nil)
