// Package process cleans up headless browser processes left behind by the
// preview renderer.
package process
