package docx

import (
	"encoding/xml"
	"strconv"
	"strings"

	"docxb/common"
)

const (
	pageBreakMarkup = `<w:p><w:r><w:br w:type="page"/></w:r></w:p>`
	tableOpen       = `<w:tbl>`
	rowOpen         = `<w:tr><w:tc>`
	cellNext        = `</w:tc><w:tc>`
	rowNext         = `</w:tc></w:tr><w:tr><w:tc>`
	tableClose      = `</w:tc></w:tr></w:tbl>`
	emptyParagraph  = `<w:p/>`
)

// Alignment of paragraphs produced by InsertText.
type Alignment string

const (
	AlignLeft    Alignment = ""
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "both"
)

// Formatting is the current text state applied to every InsertText call.
type Formatting struct {
	Bold      bool
	Italic    bool
	Underline bool
	Font      string  // empty means inherited
	Size      float64 // points, zero means inherited
	Alignment Alignment
}

// TableOptions defines table borders. Zero values are replaced with defaults.
type TableOptions struct {
	BorderStyle string // "single" by default
	BorderSize  int    // eighths of a point, 4 by default
	BorderColor string // "auto" by default
}

// SectionOptions describes section break properties, empty fields are not
// emitted.
type SectionOptions struct {
	Orientation common.Orientation
	Type        common.SectionType
	PageWidth   int // twips
	PageHeight  int // twips
}

// escapeAttr makes value safe to be placed between double quotes.
func escapeAttr(s string) string {
	var b strings.Builder
	// strings.Builder never fails
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func paragraphMarkup(text string, f Formatting) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	if f.Alignment != AlignLeft {
		b.WriteString(`<w:pPr><w:jc w:val="`)
		b.WriteString(escapeAttr(string(f.Alignment)))
		b.WriteString(`"/></w:pPr>`)
	}
	b.WriteString("<w:r>")
	// element order follows CT_RPr sequence
	var props strings.Builder
	if f.Font != "" {
		font := escapeAttr(f.Font)
		props.WriteString(`<w:rFonts w:ascii="` + font + `" w:hAnsi="` + font + `" w:cs="` + font + `"/>`)
	}
	if f.Bold {
		props.WriteString("<w:b/>")
	}
	if f.Italic {
		props.WriteString("<w:i/>")
	}
	if f.Size > 0 {
		props.WriteString(`<w:sz w:val="` + strconv.Itoa(halfPoints(f.Size)) + `"/>`)
	}
	if f.Underline {
		props.WriteString(`<w:u w:val="single"/>`)
	}
	if props.Len() > 0 {
		b.WriteString("<w:rPr>")
		b.WriteString(props.String())
		b.WriteString("</w:rPr>")
	}
	// text is markup already, caller is responsible for escaping it
	b.WriteString(`<w:t xml:space="preserve">`)
	b.WriteString(text)
	b.WriteString("</w:t></w:r></w:p>")
	return b.String()
}

// halfPoints converts point size to the units w:sz is measured in.
func halfPoints(pt float64) int {
	return int(pt*2 + 0.5)
}

func tableMarkup(opts *TableOptions) string {
	if opts == nil {
		return tableOpen
	}
	style, size, color := opts.BorderStyle, opts.BorderSize, opts.BorderColor
	if style == "" {
		style = "single"
	}
	if size <= 0 {
		size = 4
	}
	if color == "" {
		color = "auto"
	}
	attrs := `w:val="` + escapeAttr(style) + `" w:space="0" w:color="` + escapeAttr(color) + `" w:sz="` + strconv.Itoa(size) + `"`

	var b strings.Builder
	b.WriteString("<w:tbl><w:tblPr><w:tblBorders>")
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		b.WriteString("<w:" + side + " " + attrs + "/>")
	}
	b.WriteString("</w:tblBorders></w:tblPr>")
	return b.String()
}

func sectionMarkup(opts SectionOptions) string {
	var b strings.Builder
	b.WriteString("<w:p><w:pPr><w:sectPr>")
	if opts.Type != "" {
		b.WriteString(`<w:type w:val="` + escapeAttr(opts.Type.String()) + `"/>`)
	}
	if opts.Orientation != "" || opts.PageWidth > 0 || opts.PageHeight > 0 {
		b.WriteString("<w:pgSz")
		if opts.Orientation != "" {
			b.WriteString(` w:orient="` + escapeAttr(opts.Orientation.String()) + `"`)
		}
		if opts.PageWidth > 0 {
			b.WriteString(` w:w="` + strconv.Itoa(opts.PageWidth) + `"`)
		}
		if opts.PageHeight > 0 {
			b.WriteString(` w:h="` + strconv.Itoa(opts.PageHeight) + `"`)
		}
		b.WriteString("/>")
	}
	b.WriteString("</w:sectPr></w:pPr></w:p>")
	return b.String()
}
