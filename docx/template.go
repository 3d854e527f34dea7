package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"path"
	"sort"

	"github.com/beevik/etree"

	"docxb/archive"
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsCT  = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	relNS = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"
	ctNS  = "application/vnd.openxmlformats-officedocument.wordprocessingml."
)

// systemParts describes parts of the default template in relationship id
// order, ids come from systemRelIDs.
var systemParts = []struct {
	file, relType string
}{
	{"styles.xml", "styles"},
	{"settings.xml", "settings"},
	{"webSettings.xml", "webSettings"},
	{"footnotes.xml", "footnotes"},
	{"endnotes.xml", "endnotes"},
	{"header1.xml", "header"},
	{"footer1.xml", "footer"},
	{"fontTable.xml", "fontTable"},
	{"theme/theme1.xml", "theme"},
	{"footer2.xml", "footer"},
	{"numbering.xml", "numbering"},
}

func newPart(root string, namespaces ...string) (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	el := doc.CreateElement(root)
	for i := 0; i+1 < len(namespaces); i += 2 {
		el.CreateAttr(namespaces[i], namespaces[i+1])
	}
	return doc, el
}

func wordPart(root string) (*etree.Document, *etree.Element) {
	return newPart(root, "xmlns:w", nsW, "xmlns:r", nsR)
}

// val creates child element with w:val attribute.
func val(parent *etree.Element, tag, value string) *etree.Element {
	el := parent.CreateElement(tag)
	el.CreateAttr("w:val", value)
	return el
}

func placeholder(parent *etree.Element, name string) {
	parent.CreateElement("w:p").CreateElement("w:r").CreateElement("w:t").SetText("{@" + name + "}")
}

func documentXML() *etree.Document {
	doc, root := wordPart("w:document")
	body := root.CreateElement("w:body")
	placeholder(body, TagBody)
	sect := body.CreateElement("w:sectPr")
	for _, ref := range []struct{ tag, id string }{
		{"w:headerReference", systemRelIDs["header1.xml"]},
		{"w:footerReference", systemRelIDs["footer1.xml"]},
	} {
		el := sect.CreateElement(ref.tag)
		el.CreateAttr("w:type", "default")
		el.CreateAttr("r:id", ref.id)
	}
	sz := sect.CreateElement("w:pgSz")
	sz.CreateAttr("w:w", "12240")
	sz.CreateAttr("w:h", "15840")
	mar := sect.CreateElement("w:pgMar")
	for _, a := range [][2]string{
		{"w:top", "1440"}, {"w:right", "1440"}, {"w:bottom", "1440"}, {"w:left", "1440"},
		{"w:header", "720"}, {"w:footer", "720"}, {"w:gutter", "0"},
	} {
		mar.CreateAttr(a[0], a[1])
	}
	return doc
}

func stylesXML() *etree.Document {
	doc, root := wordPart("w:styles")
	rpr := root.CreateElement("w:docDefaults").CreateElement("w:rPrDefault").CreateElement("w:rPr")
	fonts := rpr.CreateElement("w:rFonts")
	fonts.CreateAttr("w:ascii", "Calibri")
	fonts.CreateAttr("w:hAnsi", "Calibri")
	fonts.CreateAttr("w:cs", "Times New Roman")
	val(rpr, "w:sz", "22")

	normal := root.CreateElement("w:style")
	normal.CreateAttr("w:type", "paragraph")
	normal.CreateAttr("w:default", "1")
	normal.CreateAttr("w:styleId", "Normal")
	val(normal, "w:name", "Normal")
	val(normal, "w:qFormat", "1")

	table := root.CreateElement("w:style")
	table.CreateAttr("w:type", "table")
	table.CreateAttr("w:default", "1")
	table.CreateAttr("w:styleId", "TableNormal")
	val(table, "w:name", "Normal Table")
	mar := table.CreateElement("w:tblPr").CreateElement("w:tblCellMar")
	for _, side := range []string{"w:left", "w:right"} {
		el := mar.CreateElement(side)
		el.CreateAttr("w:w", "108")
		el.CreateAttr("w:type", "dxa")
	}
	return doc
}

func settingsXML() *etree.Document {
	doc, root := wordPart("w:settings")
	val(root, "w:defaultTabStop", "720")
	for _, notes := range [][2]string{{"w:footnotePr", "w:footnote"}, {"w:endnotePr", "w:endnote"}} {
		pr := root.CreateElement(notes[0])
		for _, id := range []string{"-1", "0"} {
			pr.CreateElement(notes[1]).CreateAttr("w:id", id)
		}
	}
	root.CreateElement("w:compat")
	return doc
}

func webSettingsXML() *etree.Document {
	doc, root := wordPart("w:webSettings")
	root.CreateElement("w:optimizeForBrowser")
	return doc
}

func notesXML(root, child string) *etree.Document {
	doc, el := wordPart(root)
	for _, n := range []struct{ kind, id, mark string }{
		{"separator", "-1", "w:separator"},
		{"continuationSeparator", "0", "w:continuationSeparator"},
	} {
		note := el.CreateElement(child)
		note.CreateAttr("w:type", n.kind)
		note.CreateAttr("w:id", n.id)
		note.CreateElement("w:p").CreateElement("w:r").CreateElement(n.mark)
	}
	return doc
}

func headerFooterXML(root, tag string) *etree.Document {
	doc, el := wordPart(root)
	if tag == "" {
		el.CreateElement("w:p")
		return doc
	}
	placeholder(el, tag)
	return doc
}

func fontTableXML() *etree.Document {
	doc, root := wordPart("w:fonts")
	for _, f := range []struct{ name, family string }{
		{"Calibri", "swiss"},
		{"Times New Roman", "roman"},
	} {
		font := root.CreateElement("w:font")
		font.CreateAttr("w:name", f.name)
		val(font, "w:family", f.family)
		val(font, "w:pitch", "variable")
	}
	return doc
}

func numberingXML() *etree.Document {
	doc, _ := wordPart("w:numbering")
	return doc
}

func themeXML() *etree.Document {
	doc, root := newPart("a:theme", "xmlns:a", nsA)
	root.CreateAttr("name", "Office Theme")
	elements := root.CreateElement("a:themeElements")

	colors := elements.CreateElement("a:clrScheme")
	colors.CreateAttr("name", "Office")
	sys := func(tag, name, last string) {
		el := colors.CreateElement(tag).CreateElement("a:sysClr")
		el.CreateAttr("val", name)
		el.CreateAttr("lastClr", last)
	}
	sys("a:dk1", "windowText", "000000")
	sys("a:lt1", "window", "FFFFFF")
	for _, c := range [][2]string{
		{"a:dk2", "44546A"}, {"a:lt2", "E7E6E6"},
		{"a:accent1", "4472C4"}, {"a:accent2", "ED7D31"}, {"a:accent3", "A5A5A5"},
		{"a:accent4", "FFC000"}, {"a:accent5", "5B9BD5"}, {"a:accent6", "70AD47"},
		{"a:hlink", "0563C1"}, {"a:folHlink", "954F72"},
	} {
		colors.CreateElement(c[0]).CreateElement("a:srgbClr").CreateAttr("val", c[1])
	}

	fonts := elements.CreateElement("a:fontScheme")
	fonts.CreateAttr("name", "Office")
	for _, kind := range []struct{ tag, face string }{
		{"a:majorFont", "Calibri Light"},
		{"a:minorFont", "Calibri"},
	} {
		f := fonts.CreateElement(kind.tag)
		f.CreateElement("a:latin").CreateAttr("typeface", kind.face)
		f.CreateElement("a:ea").CreateAttr("typeface", "")
		f.CreateElement("a:cs").CreateAttr("typeface", "")
	}

	format := elements.CreateElement("a:fmtScheme")
	format.CreateAttr("name", "Office")
	solid := func(parent *etree.Element) {
		parent.CreateElement("a:solidFill").CreateElement("a:schemeClr").CreateAttr("val", "phClr")
	}
	fills := format.CreateElement("a:fillStyleLst")
	lines := format.CreateElement("a:lnStyleLst")
	effects := format.CreateElement("a:effectStyleLst")
	backgrounds := format.CreateElement("a:bgFillStyleLst")
	for _, w := range []string{"6350", "12700", "19050"} {
		solid(fills)
		ln := lines.CreateElement("a:ln")
		ln.CreateAttr("w", w)
		solid(ln)
		effects.CreateElement("a:effectStyle").CreateElement("a:effectLst")
		solid(backgrounds)
	}
	root.CreateElement("a:objectDefaults")
	root.CreateElement("a:extraClrSchemeLst")
	return doc
}

func contentTypesXML() *etree.Document {
	doc, root := newPart("Types", "xmlns", nsCT)
	for _, d := range [][2]string{
		{"rels", extContentTypes["rels"]},
		{"xml", extContentTypes["xml"]},
	} {
		el := root.CreateElement("Default")
		el.CreateAttr("Extension", d[0])
		el.CreateAttr("ContentType", d[1])
	}
	override := func(part, ct string) {
		el := root.CreateElement("Override")
		el.CreateAttr("PartName", partName(part))
		el.CreateAttr("ContentType", ct)
	}
	override(documentPart, ctNS+"document.main+xml")
	for _, p := range systemParts {
		override(partsDir+p.file, relContentTypes[p.relType])
	}
	return doc
}

func packageRelsXML() *etree.Document {
	doc, root := newPart("Relationships", "xmlns", relsNamespace)
	el := root.CreateElement("Relationship")
	el.CreateAttr("Id", "rId1")
	el.CreateAttr("Type", relNS+"officeDocument")
	el.CreateAttr("Target", documentPart)
	return doc
}

func documentRelsXML() *etree.Document {
	doc, root := newPart("Relationships", "xmlns", relsNamespace)
	for _, p := range systemParts {
		el := root.CreateElement("Relationship")
		el.CreateAttr("Id", systemRelIDs[path.Base(p.file)])
		el.CreateAttr("Type", relNS+p.relType)
		el.CreateAttr("Target", p.file)
	}
	return doc
}

// DefaultTemplate builds minimal template package carrying every system
// part and raw placeholders for body, header and footer.
func DefaultTemplate() ([]byte, error) {
	parts := map[string]*etree.Document{
		typesPart:               contentTypesXML(),
		"_rels/.rels":           packageRelsXML(),
		documentPart:            documentXML(),
		manifestPart:            documentRelsXML(),
		"word/styles.xml":       stylesXML(),
		"word/settings.xml":     settingsXML(),
		"word/webSettings.xml":  webSettingsXML(),
		"word/footnotes.xml":    notesXML("w:footnotes", "w:footnote"),
		"word/endnotes.xml":     notesXML("w:endnotes", "w:endnote"),
		"word/header1.xml":      headerFooterXML("w:hdr", TagHeader),
		"word/footer1.xml":      headerFooterXML("w:ftr", TagFooter),
		"word/footer2.xml":      headerFooterXML("w:ftr", ""),
		"word/fontTable.xml":    fontTableXML(),
		"word/theme/theme1.xml": themeXML(),
		"word/numbering.xml":    numberingXML(),
	}
	names := make([]string, 0, len(parts))
	for name := range parts {
		names = append(names, name)
	}
	// content types go first, some consumers insist
	sort.Slice(names, func(i, j int) bool {
		if names[i] == typesPart || names[j] == typesPart {
			return names[i] == typesPart
		}
		return names[i] < names[j]
	})

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, name := range names {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("unable to create template part %s: %w", name, err)
		}
		if _, err := parts[name].WriteTo(w); err != nil {
			return nil, fmt.Errorf("unable to write template part %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("unable to finalize template: %w", err)
	}
	// make sure template is readable with our own package reader
	if _, err := archive.Open(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTemplate, err)
	}
	return buf.Bytes(), nil
}
