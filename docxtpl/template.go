// Package docxtpl substitutes placeholders in WordprocessingML packages.
//
// Placeholders are written in document text as {name} or {@name}. Plain tag
// is replaced by escaped text of the value, raw tag must be the only content
// of its paragraph and the whole paragraph is replaced with value markup.
// Tags may be split between runs the way word processors tend to save them.
// Names without value render as empty.
package docxtpl

import (
	"regexp"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"docxb/archive"
)

var partPattern = regexp.MustCompile(`^word/(document|header\d*|footer\d*)\.xml$`)

// Template is a package prepared for placeholder substitution.
type Template struct {
	log  *zap.Logger
	pkg  *archive.Package
	data map[string]string
}

// Load prepares package for rendering. Package is modified in place by Render.
func Load(pkg *archive.Package, log *zap.Logger) *Template {
	if log == nil {
		log = zap.NewNop()
	}
	return &Template{log: log.Named("template"), pkg: pkg}
}

// SetData sets values for placeholders.
func (t *Template) SetData(data map[string]string) {
	t.data = data
}

// Package returns underlying package.
func (t *Template) Package() *archive.Package {
	return t.pkg
}

// Render substitutes placeholders in main document, headers and footers.
// Errors in all parts are reported together, nothing is written when any
// part fails.
func (t *Template) Render() error {
	type result struct {
		name string
		data []byte
	}
	var (
		errs    error
		results []result
	)
	for _, name := range t.pkg.Names() {
		if !partPattern.MatchString(name) {
			continue
		}
		data, err := t.pkg.Get(name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		out, n, err := renderPart(name, string(data), t.data)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if n > 0 {
			results = append(results, result{name: name, data: []byte(out)})
			t.log.Debug("Placeholders replaced", zap.String("part", name), zap.Int("count", n))
		}
	}
	if errs != nil {
		return errs
	}
	for _, r := range results {
		t.pkg.Put(r.name, r.data)
	}
	return nil
}
