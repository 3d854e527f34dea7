package archive

import (
	"archive/zip"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"io/fs"
	"time"

	fixzip "github.com/hidez8891/zip"

	"docxb/common"
)

type entry struct {
	name     string
	file     *zip.File // original entry, nil for added entries
	data     []byte    // replacement content, nil when entry is untouched
	modified time.Time
}

// Package is in-memory view of a zip based document package. Entries which
// were not replaced are copied verbatim (without recompression) when package
// is rendered, order of entries is preserved, new entries are appended.
// NOTE: not to be used concurrently!
type Package struct {
	entries []*entry
	index   map[string]*entry
}

// Open indexes package content. Data must stay unchanged while package is in use.
func Open(data []byte) (*Package, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("unable to open package: %w", err)
	}

	p := &Package{index: make(map[string]*entry, len(r.File))}
	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return nil, fmt.Errorf("package entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() {
			continue
		}
		if _, exists := p.index[name]; exists {
			// first one wins, same as most readers do
			continue
		}
		e := &entry{name: name, file: f, modified: f.Modified}
		p.entries = append(p.entries, e)
		p.index[name] = e
	}
	return p, nil
}

// Has reports whether entry exists in the package.
func (p *Package) Has(name string) bool {
	_, ok := p.index[name]
	return ok
}

// Get returns content of the entry. When entry is absent returned error wraps
// fs.ErrNotExist.
func (p *Package) Get(name string) ([]byte, error) {
	e, ok := p.index[name]
	if !ok {
		return nil, fmt.Errorf("package entry %q: %w", name, fs.ErrNotExist)
	}
	if e.data != nil {
		return e.data, nil
	}

	rc, err := e.file.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open package entry %q: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("unable to read package entry %q: %w", name, err)
	}
	return data, nil
}

// Put replaces content of existing entry or adds new one.
func (p *Package) Put(name string, data []byte) {
	if data == nil {
		data = []byte{}
	}
	if e, ok := p.index[name]; ok {
		e.data = data
		return
	}
	e := &entry{name: name, data: data, modified: time.Now()}
	p.entries = append(p.entries, e)
	p.index[name] = e
}

// Names lists entries in package order.
func (p *Package) Names() []string {
	names := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		names = append(names, e.name)
	}
	return names
}

type renderOptions struct {
	noDataDescriptors bool
}

// WithoutDataDescriptors requests resulting archive to be rewritten without
// data descriptors. Some readers (older word processors and e-readers) are
// picky about it.
func WithoutDataDescriptors(fix bool) func(*renderOptions) {
	return func(o *renderOptions) {
		o.noDataDescriptors = fix
	}
}

// Render produces complete package in requested encoding.
func (p *Package) Render(enc common.Encoding, options ...func(*renderOptions)) ([]byte, error) {
	opts := renderOptions{}
	for _, setOpt := range options {
		setOpt(&opts)
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	for _, e := range p.entries {
		if e.data == nil {
			// untouched - copy raw
			if err := zw.Copy(e.file); err != nil {
				return nil, fmt.Errorf("unable to copy package entry %q: %w", e.name, err)
			}
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate, Modified: e.modified})
		if err != nil {
			return nil, fmt.Errorf("unable to create package entry %q: %w", e.name, err)
		}
		if _, err := w.Write(e.data); err != nil {
			return nil, fmt.Errorf("unable to write package entry %q: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("unable to finalize package: %w", err)
	}

	data := buf.Bytes()
	if opts.noDataDescriptors {
		var err error
		if data, err = copyZipWithoutDataDescriptors(data); err != nil {
			return nil, err
		}
	}

	switch enc {
	case common.EncodingBinary:
		return data, nil
	case common.EncodingBase64:
		out := make([]byte, base64.StdEncoding.EncodedLen(len(data)))
		base64.StdEncoding.Encode(out, data)
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported package encoding: %s", enc)
	}
}

func copyZipWithoutDataDescriptors(data []byte) ([]byte, error) {

	r, err := fixzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("unable to read rendered package: %w", err)
	}

	out := new(bytes.Buffer)
	w := fixzip.NewWriter(out)

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		// copy zip entry
		if err := w.CopyFile(file); err != nil {
			return nil, fmt.Errorf("unable to rewrite package entry %q: %w", file.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("unable to finalize rewritten package: %w", err)
	}
	return out.Bytes(), nil
}
