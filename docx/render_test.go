package docx

import (
	"bytes"
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
	"testing"

	"docxb/common"
)

func TestRender_MergeSource(t *testing.T) {
	d := newTestDocument(t)
	sequentialTokens(d)
	d.InsertText("Intro")
	if err := d.InsertDocx(imageSource(t, "Merged", "StyleA")); err != nil {
		t.Fatalf("InsertDocx() error: %v", err)
	}

	out, warnings, err := d.Render(defaultTemplate(t), common.EncodingBinary)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	parts := readPackage(t, out)

	doc := parts[documentPart]
	if strings.Contains(doc, "{@body}") {
		t.Error("body placeholder was not replaced")
	}
	intro, merged := strings.Index(doc, ">Intro<"), strings.Index(doc, ">Merged<")
	if intro < 0 || merged < 0 || intro > merged {
		t.Errorf("body content missing or out of order:\n%s", doc)
	}
	if !strings.Contains(doc, `r:embed="rId7_tok1"`) || !strings.Contains(doc, `<w:pStyle w:val="StyleA"/>`) {
		t.Errorf("references not rewritten:\n%s", doc)
	}

	if got := parts["word/media/tok1_image1.png"]; got != string(testPNG) {
		t.Errorf("private asset payload = %q", got)
	}
	manifest := parts[manifestPart]
	if !strings.Contains(manifest, `Id="rId7_tok1"`) || !strings.Contains(manifest, `Target="media/tok1_image1.png"`) {
		t.Errorf("manifest has no private entry:\n%s", manifest)
	}
	if n := strings.Count(manifest, `Id="rId1" `); n != 1 {
		t.Errorf("styles entry duplicated in manifest %d times", n)
	}

	styles := parts["word/styles.xml"]
	normal, styleA := strings.Index(styles, `w:styleId="Normal"`), strings.Index(styles, `w:styleId="StyleA"`)
	if normal < 0 || styleA < normal {
		t.Errorf("styles not merged after template ones:\n%s", styles)
	}
	if strings.Count(styles, `w:styleId="Normal"`) != 1 {
		t.Errorf("shared style duplicated:\n%s", styles)
	}
	if !strings.Contains(parts[typesPart], `Extension="png"`) {
		t.Errorf("png content type not registered:\n%s", parts[typesPart])
	}
}

func TestRender_PrivateAssetsDoNotCollide(t *testing.T) {
	d := newTestDocument(t)
	first := imageSource(t, "One", "StyleA")
	second := sourceDocx(t, `<w:p><w:r><w:drawing><a:blip xmlns:a="`+nsA+`" r:embed="rId7"/></w:drawing></w:r></w:p>`,
		[]string{relationshipXML("rId7", testRelImage, "media/image1.png", "")},
		part{"word/media/image1.png", "other image"},
	)
	for _, src := range [][]byte{first, second} {
		if err := d.InsertDocx(src); err != nil {
			t.Fatalf("InsertDocx() error: %v", err)
		}
	}
	out, _, err := d.Render(defaultTemplate(t), common.EncodingBinary)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	parts := readPackage(t, out)

	rels := d.Relationships()
	var images []Relationship
	for _, r := range rels {
		if r.Type == testRelImage {
			images = append(images, r)
		}
	}
	if len(images) != 2 || images[0].NewTarget == images[1].NewTarget || images[0].NewID == images[1].NewID {
		t.Fatalf("image relationships collide: %+v", images)
	}
	if parts[resolvePartPath(images[0].NewTarget)] != string(testPNG) ||
		parts[resolvePartPath(images[1].NewTarget)] != "other image" {
		t.Error("private payloads mixed up")
	}
	for _, img := range images {
		if !strings.Contains(parts[documentPart], `r:embed="`+img.NewID+`"`) {
			t.Errorf("body does not reference %s", img.NewID)
		}
	}
}

func TestRender_Identity(t *testing.T) {
	template := buildPackage(t,
		part{typesPart, testContentTypes},
		part{documentPart, documentXMLWithBody(`<w:p><w:r><w:t>Static</w:t></w:r></w:p>`)},
		part{manifestPart, manifestXML(relationshipXML("rId1", testRelStyles, "styles.xml", ""))},
		part{"word/styles.xml", stylesXMLWith("Normal")},
		part{"word/header1.xml", `<w:hdr xmlns:w="` + nsW + `"><w:p/></w:hdr>`},
	)
	d := newTestDocument(t)
	out, warnings, err := d.Render(template, common.EncodingBinary)
	if err != nil || len(warnings) != 0 {
		t.Fatalf("Render() = %v, %v", warnings, err)
	}
	want, got := readPackage(t, template), readPackage(t, out)
	if len(want) != len(got) {
		t.Fatalf("got %d parts, want %d", len(got), len(want))
	}
	for name, data := range want {
		if got[name] != data {
			t.Errorf("part %s changed", name)
		}
	}
}

func TestRender_SystemPartAbsentFromTemplate(t *testing.T) {
	template := buildPackage(t,
		part{typesPart, testContentTypes},
		part{documentPart, documentXMLWithBody(`<w:p><w:r><w:t>{@body}</w:t></w:r></w:p>`)},
		part{manifestPart, manifestXML()},
	)
	src := sourceDocx(t, `<w:p><w:r><w:t>x</w:t></w:r></w:p>`,
		[]string{relationshipXML("rId3", relNS+"numbering", "numbering.xml", "")},
		part{"word/numbering.xml", `<w:numbering xmlns:w="` + nsW + `"><w:abstractNum w:abstractNumId="0"/></w:numbering>`},
	)
	d := newTestDocument(t)
	if err := d.InsertDocx(src); err != nil {
		t.Fatalf("InsertDocx() error: %v", err)
	}
	out, warnings, err := d.Render(template, common.EncodingBinary)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	parts := readPackage(t, out)
	if !strings.Contains(parts["word/numbering.xml"], `w:abstractNumId="0"`) {
		t.Error("numbering part not introduced")
	}
	if !strings.Contains(parts[manifestPart], `Id="rId11"`) || !strings.Contains(parts[manifestPart], `Target="numbering.xml"`) {
		t.Errorf("manifest entry missing:\n%s", parts[manifestPart])
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	// source package has no override, type comes from relationship
	if !strings.Contains(parts[typesPart], `<Override PartName="/word/numbering.xml" ContentType="`+relContentTypes["numbering"]+`"/>`) {
		t.Errorf("content type override missing:\n%s", parts[typesPart])
	}
}

func TestRender_Unmergeable(t *testing.T) {
	src := sourceDocx(t, `<w:p><w:r><w:t>still here</w:t></w:r></w:p>`,
		[]string{relationshipXML("rId1", testRelStyles, "styles.xml", "")},
		part{"word/styles.xml", `<w:notStyles xmlns:w="` + nsW + `"/>`},
	)
	d := newTestDocument(t)
	if err := d.InsertDocx(src); err != nil {
		t.Fatalf("InsertDocx() error: %v", err)
	}
	out, warnings, err := d.Render(defaultTemplate(t), common.EncodingBinary)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(warnings) != 1 || warnings[0].Part != "word/styles.xml" || warnings[0].RelID != "rId1" {
		t.Errorf("warnings = %v", warnings)
	}
	if !strings.Contains(readPackage(t, out)[documentPart], "still here") {
		t.Error("document not produced")
	}
}

func TestRender_ThemeFirstWins(t *testing.T) {
	src := sourceDocx(t, `<w:p/>`,
		[]string{relationshipXML("rId4", testRelTheme, "theme/theme1.xml", "")},
		part{"word/theme/theme1.xml", `<a:theme xmlns:a="` + nsA + `" name="Source"/>`},
	)
	d := newTestDocument(t)
	if err := d.InsertDocx(src); err != nil {
		t.Fatalf("InsertDocx() error: %v", err)
	}
	out, _, err := d.Render(defaultTemplate(t), common.EncodingBinary)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	theme := readPackage(t, out)["word/theme/theme1.xml"]
	if !strings.Contains(theme, `name="Office Theme"`) || strings.Contains(theme, "Source") {
		t.Errorf("template theme replaced:\n%s", theme)
	}
}

func TestRender_External(t *testing.T) {
	body := `<w:p><w:hyperlink r:id="rId9"><w:r><w:t>link</w:t></w:r></w:hyperlink></w:p>`
	src := sourceDocx(t, body, []string{relationshipXML("rId9", testRelLink, "https://example.com/", "External")})
	d := newTestDocument(t)
	sequentialTokens(d)
	if err := d.InsertDocx(src); err != nil {
		t.Fatalf("InsertDocx() error: %v", err)
	}
	out, _, err := d.Render(defaultTemplate(t), common.EncodingBinary)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	parts := readPackage(t, out)
	if !strings.Contains(parts[manifestPart], `Id="rId9_tok1" Type="`+testRelLink+`" Target="https://example.com/" TargetMode="External"`) {
		t.Errorf("external relationship missing:\n%s", parts[manifestPart])
	}
	if !strings.Contains(parts[documentPart], `r:id="rId9_tok1"`) {
		t.Error("hyperlink reference not rewritten")
	}
}

func TestRender_HeaderFooter(t *testing.T) {
	d := newTestDocument(t)
	d.BeginHeader()
	d.InsertText("Page header")
	d.EndHeader()
	d.InsertText("Body")

	out, _, err := d.Render(defaultTemplate(t), common.EncodingBinary)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	parts := readPackage(t, out)
	if !strings.Contains(parts["word/header1.xml"], "Page header") || strings.Contains(parts["word/header1.xml"], "{@") {
		t.Errorf("header = %s", parts["word/header1.xml"])
	}
	footer := parts["word/footer1.xml"]
	if strings.Contains(footer, "{@footer}") || !strings.Contains(footer, "<w:p/>") {
		t.Errorf("footer = %s", footer)
	}
	if strings.Contains(parts[documentPart], "Page header") {
		t.Error("header content leaked into body")
	}
}

func TestRender_SingleSection(t *testing.T) {
	d := newTestDocument(t)
	for _, text := range []string{"one", "two"} {
		src := sourceDocx(t, `<w:p><w:r><w:t>`+text+`</w:t></w:r></w:p><w:sectPr><w:pgSz w:w="`+text+`"/></w:sectPr>`, nil)
		if err := d.InsertDocx(src); err != nil {
			t.Fatalf("InsertDocx() error: %v", err)
		}
	}
	out, _, err := d.Render(defaultTemplate(t), common.EncodingBinary)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	doc := readPackage(t, out)[documentPart]
	// merged body keeps one section, template keeps its own final one
	if n := len(regexp.MustCompile(`<w:sectPr[\s>]`).FindAllString(doc, -1)); n != 2 {
		t.Errorf("got %d sections:\n%s", n, doc)
	}
	if strings.Contains(doc, `w:w="one"`) || !strings.Contains(doc, `w:w="two"`) {
		t.Errorf("wrong section kept:\n%s", doc)
	}
}

func TestRender_Base64(t *testing.T) {
	d := newTestDocument(t)
	d.InsertText("encoded")
	out, _, err := d.Render(defaultTemplate(t), common.EncodingBase64)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(string(out))
	if err != nil {
		t.Fatalf("output is not base64: %v", err)
	}
	if !strings.Contains(readPackage(t, raw)[documentPart], "encoded") {
		t.Error("decoded package lacks content")
	}
}

func TestRender_Repeatable(t *testing.T) {
	d := newTestDocument(t)
	if err := d.InsertDocx(imageSource(t, "x", "StyleA")); err != nil {
		t.Fatalf("InsertDocx() error: %v", err)
	}
	template := defaultTemplate(t)
	a, _, err := d.Render(template, common.EncodingBinary)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	b, _, err := d.Render(template, common.EncodingBinary)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	pa, pb := readPackage(t, a), readPackage(t, b)
	if pa[manifestPart] != pb[manifestPart] || pa["word/styles.xml"] != pb["word/styles.xml"] {
		t.Error("second render differs")
	}
}

func TestRender_BadTemplate(t *testing.T) {
	d := newTestDocument(t)
	if _, _, err := d.Render([]byte("not a zip"), common.EncodingBinary); !errors.Is(err, ErrMalformedTemplate) {
		t.Errorf("Render() error = %v, want ErrMalformedTemplate", err)
	}

	// relationships need template manifest
	if err := d.InsertDocx(imageSource(t, "x", "StyleA")); err != nil {
		t.Fatalf("InsertDocx() error: %v", err)
	}
	noManifest := buildPackage(t, part{documentPart, documentXMLWithBody("")}, part{typesPart, testContentTypes})
	if _, _, err := d.Render(noManifest, common.EncodingBinary); !errors.Is(err, ErrMalformedTemplate) {
		t.Errorf("Render() error = %v, want ErrMalformedTemplate", err)
	}
}

func TestExternalRawXML(t *testing.T) {
	d := newTestDocument(t)
	sequentialTokens(d)
	markup, err := d.ExternalRawXML(imageSource(t, "raw", "StyleA"))
	if err != nil {
		t.Fatalf("ExternalRawXML() error: %v", err)
	}
	if len(d.Body()) != 0 {
		t.Error("markup was inserted")
	}
	if !strings.Contains(markup, `r:embed="rId7_tok1"`) {
		t.Errorf("markup not remapped: %s", markup)
	}
	if len(d.Relationships()) != 2 {
		t.Errorf("relationships not queued: %d", len(d.Relationships()))
	}

	d.InsertRaw(markup)
	out, _, err := d.Render(defaultTemplate(t), common.EncodingBinary)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !bytes.Contains([]byte(readPackage(t, out)["word/media/tok1_image1.png"]), testPNG[:8]) {
		t.Error("asset of raw markup missing")
	}
}

func TestDocumentString(t *testing.T) {
	d := newTestDocument(t)
	sequentialTokens(d)
	d.InsertText("dump me")
	if err := d.InsertDocx(imageSource(t, "x", "StyleA")); err != nil {
		t.Fatalf("InsertDocx() error: %v", err)
	}
	s := d.String()
	for _, want := range []string{"Document: policy last", "body: 2 fragments", "Relationships: 2", "rId7 -> rId7_tok1", "word/media/image1.png"} {
		if !strings.Contains(s, want) {
			t.Errorf("dump lacks %q:\n%s", want, s)
		}
	}
}

func TestRender_SectionBetweenSources(t *testing.T) {
	d := newTestDocument(t)
	if err := d.InsertDocx(imageSource(t, "Hello", "StyleA")); err != nil {
		t.Fatalf("InsertDocx() error: %v", err)
	}
	d.InsertSection(SectionOptions{Type: common.SectionTypeContinuous})
	if err := d.InsertDocx(imageSource(t, "World", "StyleB")); err != nil {
		t.Fatalf("InsertDocx() error: %v", err)
	}

	out, _, err := d.Render(defaultTemplate(t), common.EncodingBinary)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	doc := readPackage(t, out)[documentPart]

	hello, brk, world := strings.Index(doc, ">Hello<"), strings.Index(doc, `w:val="continuous"`), strings.Index(doc, ">World<")
	if hello < 0 || brk < hello || world < brk {
		t.Fatalf("section break is not between sources:\n%s", doc)
	}

	ids := regexp.MustCompile(`r:embed="([^"]+)"`).FindAllStringSubmatch(doc, -1)
	if len(ids) != 2 || ids[0][1] == ids[1][1] {
		t.Fatalf("private ids are not distinct: %v", ids)
	}
	for _, id := range ids {
		for _, system := range systemRelIDs {
			if id[1] == system {
				t.Errorf("private id %s collides with system id", id[1])
			}
		}
	}
}

func TestRender_NumberingFromTwoSources(t *testing.T) {
	d := newTestDocument(t)
	for _, ids := range [][2]string{{"0", "1"}, {"5", "6"}} {
		src := sourceDocx(t,
			`<w:p><w:pPr><w:numPr><w:ilvl w:val="0"/><w:numId w:val="`+ids[1]+`"/></w:numPr></w:pPr><w:r><w:t>item</w:t></w:r></w:p>`,
			[]string{relationshipXML("rId3", relNS+"numbering", "numbering.xml", "")},
			part{"word/numbering.xml", numberingXMLWith(ids[0], ids[1])},
		)
		if err := d.InsertDocx(src); err != nil {
			t.Fatalf("InsertDocx() error: %v", err)
		}
	}
	out, warnings, err := d.Render(defaultTemplate(t), common.EncodingBinary)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	numbering := readPackage(t, out)["word/numbering.xml"]
	lastAbstract, firstNum := strings.LastIndex(numbering, "<w:abstractNum "), strings.Index(numbering, "<w:num ")
	if lastAbstract < 0 || firstNum < 0 || lastAbstract > firstNum {
		t.Errorf("list definitions follow list instances:\n%s", numbering)
	}
	if strings.Count(numbering, "<w:num ") != 2 {
		t.Errorf("list instances lost:\n%s", numbering)
	}
}

func TestRender_SectionsThenText(t *testing.T) {
	d := newTestDocument(t)
	d.InsertSection(SectionOptions{Orientation: common.OrientationLandscape})
	d.InsertSection(SectionOptions{Type: common.SectionTypeOddPage})
	d.InsertText("Text")

	body := d.Body()
	if len(body) != 3 {
		t.Fatalf("body has %d fragments, want 3", len(body))
	}
	if !strings.Contains(body[0], `<w:pgSz w:orient="landscape"/>`) || strings.Contains(body[0], "<w:type ") {
		t.Errorf("first section = %q", body[0])
	}
	if !strings.Contains(body[1], `<w:type w:val="oddPage"/>`) || strings.Contains(body[1], "w:orient") {
		t.Errorf("second section = %q", body[1])
	}
	if !strings.Contains(body[2], ">Text<") || strings.Contains(body[2], "<w:sectPr") {
		t.Errorf("text fragment = %q", body[2])
	}

	out, _, err := d.Render(defaultTemplate(t), common.EncodingBinary)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	doc := readPackage(t, out)[documentPart]
	// one composite section survives, template keeps its own final one
	if n := len(regexp.MustCompile(`<w:sectPr[\s>]`).FindAllString(doc, -1)); n != 2 {
		t.Errorf("got %d sections:\n%s", n, doc)
	}
	if strings.Contains(doc, `w:orient="landscape"`) || !strings.Contains(doc, `w:val="oddPage"`) {
		t.Errorf("wrong section kept:\n%s", doc)
	}
	if kept, text := strings.Index(doc, `w:val="oddPage"`), strings.Index(doc, ">Text<"); text < kept {
		t.Errorf("text is not after kept section:\n%s", doc)
	}
}
