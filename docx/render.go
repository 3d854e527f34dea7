package docx

import (
	"fmt"

	"go.uber.org/zap"

	"docxb/archive"
	"docxb/common"
	"docxb/docxtpl"
)

// Template placeholders Render provides values for.
const (
	TagBody   = "body"
	TagHeader = "header"
	TagFooter = "footer"
)

// Render produces composite package from template. Template is expected to
// carry raw placeholders {@body}, {@header} and {@footer}, accumulated markup
// replaces paragraphs holding them. Parts which could not be merged are
// reported as warnings, document is produced regardless. Document is not
// modified and may be rendered again.
func (d *Document) Render(template []byte, enc common.Encoding) ([]byte, []Warning, error) {
	pkg, err := archive.Open(template)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedTemplate, err)
	}

	var warnings []Warning
	if len(d.rels) > 0 {
		pm, err := newPartMerger(pkg, d.log)
		if err != nil {
			return nil, nil, err
		}
		for i := range d.rels {
			if err := pm.add(&d.rels[i]); err != nil {
				return nil, nil, err
			}
		}
		if err := pm.finish(); err != nil {
			return nil, nil, err
		}
		warnings = pm.warnings
	}

	// single section is normalized too, kept block becomes section break
	// paragraph ahead of template's final section properties
	body, err := normalizeBody(joinFragments(d.fragments[targetBody]), d.policy)
	if err != nil {
		return nil, warnings, err
	}

	tpl := docxtpl.Load(pkg, d.log)
	tpl.SetData(map[string]string{
		TagBody:   body,
		TagHeader: blockContent(d.fragments[targetHeader]),
		TagFooter: blockContent(d.fragments[targetFooter]),
	})
	if err := tpl.Render(); err != nil {
		return nil, warnings, fmt.Errorf("unable to render template: %w", err)
	}

	out, err := tpl.Package().Render(enc, archive.WithoutDataDescriptors(d.fixZip))
	if err != nil {
		return nil, warnings, fmt.Errorf("unable to write package: %w", err)
	}
	d.log.Debug("Document rendered",
		zap.Int("size", len(out)),
		zap.Stringer("encoding", enc),
		zap.Int("warnings", len(warnings)))
	return out, warnings, nil
}

// blockContent joins header or footer fragments. These parts must contain at
// least one paragraph.
func blockContent(fragments []string) string {
	if len(fragments) == 0 {
		return emptyParagraph
	}
	return joinFragments(fragments)
}
