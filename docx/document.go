package docx

import (
	"strings"

	"go.uber.org/zap"

	"docxb/common"
)

type target int

const (
	targetBody target = iota
	targetHeader
	targetFooter
)

func (t target) String() string {
	switch t {
	case targetHeader:
		return "header"
	case targetFooter:
		return "footer"
	default:
		return "body"
	}
}

// Document accumulates markup fragments and relationships of merged sources.
// Fragments go to the current target (body unless header or footer block is
// open) in call order.
type Document struct {
	log *zap.Logger

	fragments [3][]string
	current   target
	format    Formatting
	cellEmpty bool // table cell was opened and nothing was written to it yet

	rels   []Relationship
	remap  *remapper
	policy common.SectionPolicy
	fixZip bool
}

// Option configures Document.
type Option func(*Document)

// WithSectionPolicy selects which section properties survive normalization.
func WithSectionPolicy(p common.SectionPolicy) Option {
	return func(d *Document) {
		d.policy = p
	}
}

// WithoutDataDescriptors makes Render strip data descriptors from resulting
// package for readers which cannot handle them.
func WithoutDataDescriptors(fix bool) Option {
	return func(d *Document) {
		d.fixZip = fix
	}
}

// New creates empty document. Nil log disables logging.
func New(log *zap.Logger, options ...Option) *Document {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Document{
		log:    log.Named("docx"),
		remap:  newRemapper(),
		policy: common.SectionPolicyLast,
	}
	for _, o := range options {
		o(d)
	}
	return d
}

func (d *Document) push(fragment string) {
	d.fragments[d.current] = append(d.fragments[d.current], fragment)
	d.cellEmpty = false
}

// Body returns accumulated body fragments.
func (d *Document) Body() []string {
	return append([]string(nil), d.fragments[targetBody]...)
}

// Header returns accumulated header fragments.
func (d *Document) Header() []string {
	return append([]string(nil), d.fragments[targetHeader]...)
}

// Footer returns accumulated footer fragments.
func (d *Document) Footer() []string {
	return append([]string(nil), d.fragments[targetFooter]...)
}

// Relationships returns resolved relationships of all merged sources in
// merge order.
func (d *Document) Relationships() []Relationship {
	return append([]Relationship(nil), d.rels...)
}

// Formatting returns current text state.
func (d *Document) Formatting() Formatting {
	return d.format
}

// SetFormatting replaces current text state.
func (d *Document) SetFormatting(f Formatting) {
	d.format = f
}

// SetBold toggles bold for subsequent text.
func (d *Document) SetBold(on bool) { d.format.Bold = on }

// SetItalic toggles italic for subsequent text.
func (d *Document) SetItalic(on bool) { d.format.Italic = on }

// SetUnderline toggles single underline for subsequent text.
func (d *Document) SetUnderline(on bool) { d.format.Underline = on }

// SetFont sets font family for subsequent text, empty name keeps template default.
func (d *Document) SetFont(name string) { d.format.Font = name }

// SetSize sets font size in points for subsequent text, zero keeps template default.
func (d *Document) SetSize(pt float64) { d.format.Size = pt }

// SetAlignment sets paragraph alignment for subsequent text.
func (d *Document) SetAlignment(align Alignment) { d.format.Alignment = align }

// ResetFormatting returns text state to template defaults.
func (d *Document) ResetFormatting() { d.format = Formatting{} }

// InsertRaw appends markup to current target as is.
func (d *Document) InsertRaw(markup string) { d.push(markup) }

// InsertPageBreak appends paragraph with page break.
func (d *Document) InsertPageBreak() { d.push(pageBreakMarkup) }

// InsertSection appends section properties closing content inserted so far.
func (d *Document) InsertSection(o SectionOptions) { d.push(sectionMarkup(o)) }

// InsertText appends paragraph with text using current formatting. Text is
// written verbatim, XML special characters must be escaped by caller.
func (d *Document) InsertText(text string) {
	d.push(paragraphMarkup(text, d.format))
}

// BeginHeader redirects subsequent fragments to header until EndHeader.
func (d *Document) BeginHeader() { d.current = targetHeader }

// EndHeader restores body as the current target.
func (d *Document) EndHeader() { d.current = targetBody }

// BeginFooter redirects subsequent fragments to footer until EndFooter.
func (d *Document) BeginFooter() { d.current = targetFooter }

// EndFooter restores body as the current target.
func (d *Document) EndFooter() { d.current = targetBody }

// BeginTable opens a table, nil options produce table without borders.
// Table structure is written as is and caller is responsible for pairing
// calls properly: BeginTable, InsertRow, (NextColumn | NextRow)*, EndTable.
func (d *Document) BeginTable(opts *TableOptions) {
	d.push(tableMarkup(opts))
}

// InsertRow opens first row and its first cell.
func (d *Document) InsertRow() {
	d.push(rowOpen)
	d.cellEmpty = true
}

// NextColumn closes current cell and opens the next one in the same row.
func (d *Document) NextColumn() {
	d.push(d.closeCell(cellNext))
	d.cellEmpty = true
}

// NextRow closes current row and opens first cell of the next one.
func (d *Document) NextRow() {
	d.push(d.closeCell(rowNext))
	d.cellEmpty = true
}

// EndTable closes last cell, row and the table.
func (d *Document) EndTable() {
	d.push(d.closeCell(tableClose))
}

// closeCell makes sure every cell has at least one paragraph, consumers
// reject empty cells.
func (d *Document) closeCell(markup string) string {
	if d.cellEmpty {
		return emptyParagraph + markup
	}
	return markup
}

// InsertDocx merges body of the source package into the current target and
// queues its relationships for Render.
func (d *Document) InsertDocx(data []byte) error {
	markup, err := d.ExternalRawXML(data)
	if err != nil {
		return err
	}
	d.push(markup)
	return nil
}

// ExternalRawXML extracts and remaps body markup of the source package
// without inserting it. Relationships of the source are queued regardless,
// so markup inserted later with InsertRaw resolves its resources.
func (d *Document) ExternalRawXML(data []byte) (string, error) {
	src, err := Extract(data)
	if err != nil {
		return "", err
	}
	replace := d.remap.remap(src.Relationships)
	d.rels = append(d.rels, src.Relationships...)

	d.log.Debug("Source extracted",
		zap.Int("body", len(src.Body)),
		zap.Int("relationships", len(src.Relationships)),
		zap.Int("remapped", len(replace)),
		zap.Stringer("target", d.current))

	return rewriteReferences(src.Body, replace), nil
}

func joinFragments(fragments []string) string {
	return strings.Join(fragments, "")
}
