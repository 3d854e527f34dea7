package docx

import (
	"path"
	"strings"

	"github.com/beevik/etree"
	"github.com/h2non/filetype"
)

const fallbackContentType = "application/octet-stream"

// Office specific formats filetype does not recognize.
var extContentTypes = map[string]string{
	"emf":  "image/x-emf",
	"wmf":  "image/x-wmf",
	"svg":  "image/svg+xml",
	"xml":  "application/xml",
	"rels": "application/vnd.openxmlformats-package.relationships+xml",
	"bin":  "application/vnd.openxmlformats-officedocument.oleObject",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// relContentTypes maps final segment of relationship type to content type
// of XML parts it usually points to.
var relContentTypes = map[string]string{
	"styles":      ctNS + "styles+xml",
	"settings":    ctNS + "settings+xml",
	"webSettings": ctNS + "webSettings+xml",
	"footnotes":   ctNS + "footnotes+xml",
	"endnotes":    ctNS + "endnotes+xml",
	"header":      ctNS + "header+xml",
	"footer":      ctNS + "footer+xml",
	"fontTable":   ctNS + "fontTable+xml",
	"numbering":   ctNS + "numbering+xml",
	"comments":    ctNS + "comments+xml",
	"theme":       "application/vnd.openxmlformats-officedocument.theme+xml",
}

// contentTypes is editable view of package [Content_Types].xml.
type contentTypes struct {
	doc       *etree.Document
	defaults  map[string]string // lower case extension -> content type
	overrides map[string]string // part name ("/word/x.xml") -> content type
	changed   bool
}

func parseContentTypes(data []byte) (*contentTypes, error) {
	doc, err := readXML(data)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil || root.Tag != "Types" {
		return nil, malformedSource("content types part has no Types root")
	}
	ct := &contentTypes{
		doc:       doc,
		defaults:  make(map[string]string),
		overrides: make(map[string]string),
	}
	for _, el := range root.ChildElements() {
		switch el.Tag {
		case "Default":
			ct.defaults[strings.ToLower(el.SelectAttrValue("Extension", ""))] = el.SelectAttrValue("ContentType", "")
		case "Override":
			ct.overrides[el.SelectAttrValue("PartName", "")] = el.SelectAttrValue("ContentType", "")
		}
	}
	return ct, nil
}

func partName(zipPath string) string {
	return "/" + strings.TrimPrefix(zipPath, "/")
}

func partExt(zipPath string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(zipPath), "."))
}

// lookup returns content type of the part. Override takes precedence, XML
// parts without one get type derived from relationship type, extension
// default is the last resort.
func (ct *contentTypes) lookup(zipPath, relType string) string {
	if ct != nil {
		if t, ok := ct.overrides[partName(zipPath)]; ok {
			return t
		}
	}
	if partExt(zipPath) == "xml" {
		if t, ok := relContentTypes[path.Base(relType)]; ok {
			return t
		}
	}
	if ct == nil {
		return ""
	}
	return ct.defaults[partExt(zipPath)]
}

func (ct *contentTypes) ensureDefault(ext, contentType string) {
	ext = strings.ToLower(ext)
	if _, ok := ct.defaults[ext]; ok {
		return
	}
	el := etree.NewElement("Default")
	el.CreateAttr("Extension", ext)
	el.CreateAttr("ContentType", contentType)
	// Schema requires all Default entries to precede Overrides.
	root := ct.doc.Root()
	if first := root.SelectElement("Override"); first != nil {
		root.InsertChildAt(first.Index(), el)
	} else {
		root.AddChild(el)
	}
	ct.defaults[ext] = contentType
	ct.changed = true
}

func (ct *contentTypes) ensureOverride(zipPath, contentType string) {
	name := partName(zipPath)
	if t, ok := ct.overrides[name]; ok && t == contentType {
		return
	}
	if el := ct.doc.Root().FindElement("Override[@PartName='" + name + "']"); el != nil {
		el.CreateAttr("ContentType", contentType)
	} else {
		el := ct.doc.Root().CreateElement("Override")
		el.CreateAttr("PartName", name)
		el.CreateAttr("ContentType", contentType)
	}
	ct.overrides[name] = contentType
	ct.changed = true
}

func (ct *contentTypes) bytes() ([]byte, error) {
	return ct.doc.WriteToBytes()
}

// guessContentType detects media type of binary asset when source package
// does not declare one.
func guessContentType(zipPath string, payload []byte) string {
	if t, ok := extContentTypes[partExt(zipPath)]; ok {
		return t
	}
	if kind, err := filetype.Match(payload); err == nil && kind != filetype.Unknown {
		return kind.MIME.Value
	}
	if kind := filetype.GetType(partExt(zipPath)); kind != filetype.Unknown {
		return kind.MIME.Value
	}
	return fallbackContentType
}
