// Package archive provides in-memory access to zip based document packages and
// a Walk abstraction over zip bundles holding source documents.
package archive

import (
	"archive/zip"
	"fmt"
	"path"
	"strings"
)

// WalkFunc is the type of the function called for each file in bundle
// visited by Walk. The bundle argument contains path passed to Walk, file is
// the entry which satisfies match condition. If an error is returned,
// processing stops.
type WalkFunc func(bundle string, file *zip.File) error

// Walk visits regular files of the zip bundle located under prefix for which
// match returns true (nil match accepts everything). Entries with path
// traversal components ("..") or absolute paths are rejected.
func Walk(bundle, prefix string, match func(name string) bool, walkFn WalkFunc) error {

	r, err := zip.OpenReader(bundle)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if match != nil && !match(name) {
			continue
		}
		if err := walkFn(bundle, f); err != nil {
			return err
		}
	}
	return nil
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for part := range strings.SplitSeq(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
