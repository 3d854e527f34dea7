package compose

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/maruel/natural"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"docxb/archive"
	"docxb/config"
)

// source is a single package to be merged. Name is path relative to the
// location given on command line (file name for plain files).
type source struct {
	name string
	path string
	data []byte
}

type collector struct {
	fsys afero.Fs
	conf *config.SourcesConfig
	cp   encoding.Encoding
	log  *zap.Logger
}

func (c *collector) accepts(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.ContainsFunc(c.conf.Extensions, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}

func isBundle(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

// collect resolves every command line location into ordered list of sources.
// Location could be a file, a directory or a zip bundle optionally followed by
// path inside of it.
func (c *collector) collect(ctx context.Context, locations []string) ([]source, error) {
	var out []source
	for _, loc := range locations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := c.location(ctx, loc)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			c.log.Warn("Nothing to merge", zap.String("location", loc))
		}
		out = append(out, found...)
	}
	return out, nil
}

func (c *collector) location(ctx context.Context, loc string) ([]source, error) {
	var head, tail string
	for head = loc; len(head) != 0; head, tail = filepath.Split(head) {
		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := c.fsys.Stat(head)
		if err != nil {
			// does not exists - probably path in bundle
			continue
		}

		if fi.IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return nil, fmt.Errorf("source was not found (%s) => (%s)", head, strings.TrimPrefix(loc, head))
			}
			return c.directory(ctx, head)
		}
		if !fi.Mode().IsRegular() {
			return nil, fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(loc, head))
		}
		if isBundle(head) {
			prefix := strings.TrimPrefix(strings.TrimPrefix(loc, head), string(filepath.Separator))
			return c.bundle(ctx, head, filepath.ToSlash(prefix))
		}
		if len(tail) != 0 {
			return nil, fmt.Errorf("source was not found (%s) => (%s)", head, strings.TrimPrefix(loc, head))
		}
		data, err := afero.ReadFile(c.fsys, head)
		if err != nil {
			return nil, fmt.Errorf("unable to read source: %w", err)
		}
		return []source{{name: filepath.Base(head), path: head, data: data}}, nil
	}
	return nil, fmt.Errorf("source was not found (%s)", loc)
}

// directory picks files with known extensions, in natural order of their
// relative paths.
func (c *collector) directory(ctx context.Context, dir string) ([]source, error) {
	var names []string
	err := afero.Walk(c.fsys, dir, func(path string, info fs.FileInfo, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			c.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if info.IsDir() {
			if path != dir && !c.conf.Recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() || !c.accepts(path) {
			c.log.Debug("Skipping file", zap.String("file", path))
			return nil
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))
		names = append(names, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(names, naturalOrder)

	out := make([]source, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := afero.ReadFile(c.fsys, path)
		if err != nil {
			return nil, fmt.Errorf("unable to read source: %w", err)
		}
		out = append(out, source{name: name, path: path, data: data})
	}
	return out, nil
}

// bundle picks entries with known extensions located under prefix.
func (c *collector) bundle(ctx context.Context, path, prefix string) ([]source, error) {
	var out []source
	err := archive.Walk(path, prefix, c.accepts, func(bundle string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !c.conf.Recursive && strings.Contains(strings.TrimPrefix(strings.TrimPrefix(f.Name, prefix), "/"), "/") {
			return nil
		}
		r, err := f.Open()
		if err != nil {
			return fmt.Errorf("unable to open %s in %s: %w", f.Name, bundle, err)
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("unable to read %s in %s: %w", f.Name, bundle, err)
		}
		out = append(out, source{name: c.entryName(f), path: filepath.Join(bundle, filepath.FromSlash(f.Name)), data: data})
		return nil
	})
	if errors.Is(err, zip.ErrFormat) {
		return nil, fmt.Errorf("not a zip bundle (%s): %w", path, err)
	}
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b source) int { return naturalOrder(a.name, b.name) })
	return out, nil
}

// entryName decodes non UTF-8 entry names when code page was forced.
func (c *collector) entryName(f *zip.File) string {
	name := f.Name
	if c.cp == nil || !f.NonUTF8 {
		return name
	}
	n, err := c.cp.NewDecoder().String(name)
	if err != nil {
		cpn, _ := ianaindex.IANA.Name(c.cp)
		c.log.Warn("Unable to convert bundle entry name from specified encoding",
			zap.String("charset", cpn), zap.String("path", name), zap.Error(err))
		return name
	}
	return n
}

func naturalOrder(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	}
	return 0
}

// prepareDestination makes sure result could be written to name.
func prepareDestination(fsys afero.Fs, name string, overwrite bool, log *zap.Logger) error {
	if _, err := fsys.Stat(name); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		log.Warn("Overwriting existing file", zap.String("file", name))
		return fsys.Remove(name)
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}
