package assets

import "errors"

var (
	// ErrNotFound means no layer holds the asset.
	ErrNotFound = errors.New("asset not found")

	// ErrInvalidName rejects names that are not plain words.
	ErrInvalidName = errors.New("invalid asset name")

	// ErrInvalidBasePath rejects an override directory that cannot be used.
	ErrInvalidBasePath = errors.New("invalid asset directory")

	// ErrRead wraps I/O failures other than a missing file.
	ErrRead = errors.New("reading asset")

	// ErrOutsideBase means an override resolves outside its directory.
	ErrOutsideBase = errors.New("asset resolves outside asset directory")
)
