package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

const (
	testRelStyles = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	testRelImage  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	testRelLink   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	testRelTheme  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/theme"
)

// minimal PNG signature is enough for content sniffing
var testPNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type part struct {
	name string
	data string
}

func newTestDocument(t *testing.T, options ...Option) *Document {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	return New(logger, options...)
}

func buildPackage(t *testing.T, parts ...part) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			t.Fatalf("create %s: %v", p.name, err)
		}
		if _, err := w.Write([]byte(p.data)); err != nil {
			t.Fatalf("write %s: %v", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func readPackage(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open result: %v", err)
	}
	out := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		out[f.Name] = string(b)
	}
	return out
}

func documentXMLWithBody(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="` + nsW + `" xmlns:r="` + nsR + `"><w:body>` + body + `</w:body></w:document>`
}

func relationshipXML(id, relType, target, mode string) string {
	s := fmt.Sprintf(`<Relationship Id="%s" Type="%s" Target="%s"`, id, relType, target)
	if mode != "" {
		s += ` TargetMode="` + mode + `"`
	}
	return s + "/>"
}

func manifestXML(rels ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="` + relsNamespace + `">` + strings.Join(rels, "") + `</Relationships>`
}

func stylesXMLWith(styleIDs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><w:styles xmlns:w="` + nsW + `">`)
	for _, id := range styleIDs {
		b.WriteString(`<w:style w:type="paragraph" w:styleId="` + id + `"><w:name w:val="` + id + `"/></w:style>`)
	}
	b.WriteString(`</w:styles>`)
	return b.String()
}

const testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Default Extension="png" ContentType="image/png"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`</Types>`

// sourceDocx builds merged source package with given body, manifest entries
// and extra parts.
func sourceDocx(t *testing.T, body string, rels []string, extra ...part) []byte {
	t.Helper()
	parts := []part{
		{typesPart, testContentTypes},
		{documentPart, documentXMLWithBody(body)},
		{manifestPart, manifestXML(rels...)},
	}
	return buildPackage(t, append(parts, extra...)...)
}

// imageSource is a source with a single styled paragraph holding an image
// and its own styles.
func imageSource(t *testing.T, text, styleID string) []byte {
	t.Helper()
	body := `<w:p><w:pPr><w:pStyle w:val="` + styleID + `"/></w:pPr><w:r><w:t>` + text + `</w:t></w:r>` +
		`<w:r><w:drawing><a:blip xmlns:a="` + nsA + `" r:embed="rId7"/></w:drawing></w:r></w:p>`
	return sourceDocx(t, body,
		[]string{
			relationshipXML("rId5", testRelStyles, "styles.xml", ""),
			relationshipXML("rId7", testRelImage, "media/image1.png", ""),
		},
		part{"word/styles.xml", stylesXMLWith("Normal", styleID)},
		part{"word/media/image1.png", string(testPNG)},
	)
}

func defaultTemplate(t *testing.T) []byte {
	t.Helper()
	data, err := DefaultTemplate()
	if err != nil {
		t.Fatalf("DefaultTemplate() error: %v", err)
	}
	return data
}

// sequentialTokens makes remapper issue predictable tokens tok1, tok2...
func sequentialTokens(d *Document) {
	n := 0
	d.remap.newToken = func() string {
		n++
		return fmt.Sprintf("tok%d", n)
	}
}
