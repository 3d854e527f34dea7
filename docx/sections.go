package docx

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"

	"docxb/common"
)

var (
	sectPrOpen = regexp.MustCompile(`<w:sectPr[\s>/]`)
	// Declarations with empty or trivial values left over from merged
	// sources confuse consumers once fragments are nested in the template.
	emptyNamespaceDecl = regexp.MustCompile(`\s?xmlns:\w+="\w*"`)
)

// normalizeBody leaves at most one section properties block in composite body
// markup, policy decides which one. Surviving block which was the final one of
// a merged body becomes a section break paragraph: composite body is placed
// before template own final section properties. Body without section
// properties is returned untouched.
func normalizeBody(body string, policy common.SectionPolicy) (string, error) {
	if !sectPrOpen.MatchString(body) {
		return body, nil
	}

	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromString("<body>" + body + "</body>"); err != nil {
		return "", fmt.Errorf("unable to parse body markup: %w", err)
	}

	root := doc.Root()
	var sects []*etree.Element
	collectSections(root, &sects)
	if len(sects) == 0 {
		return body, nil
	}
	keep := chooseSection(sects, policy)
	for _, s := range sects {
		if s != keep {
			s.Parent().RemoveChild(s)
		}
	}
	if keep.Parent() == root {
		p := etree.NewElement("w:p")
		root.InsertChildAt(keep.Index(), p)
		root.RemoveChild(keep)
		p.CreateElement("w:pPr").AddChild(keep)
	}

	out, err := doc.WriteToString()
	if err != nil {
		return "", fmt.Errorf("unable to serialize body markup: %w", err)
	}
	out = strings.TrimSuffix(strings.TrimPrefix(out, "<body>"), "</body>")
	return emptyNamespaceDecl.ReplaceAllString(out, ""), nil
}

func collectSections(el *etree.Element, sects *[]*etree.Element) {
	for _, ch := range el.ChildElements() {
		if ch.Space == "w" && ch.Tag == "sectPrChange" {
			// previous revision of properties, not a section of its own
			continue
		}
		if ch.Space == "w" && ch.Tag == "sectPr" {
			*sects = append(*sects, ch)
			continue
		}
		collectSections(ch, sects)
	}
}

func chooseSection(sects []*etree.Element, policy common.SectionPolicy) *etree.Element {
	switch policy {
	case common.SectionPolicyFirst:
		return sects[0]
	case common.SectionPolicyReferences:
		for i := len(sects) - 1; i >= 0; i-- {
			for _, ch := range sects[i].ChildElements() {
				if ch.Space == "w" && (ch.Tag == "headerReference" || ch.Tag == "footerReference") {
					return sects[i]
				}
			}
		}
	}
	return sects[len(sects)-1]
}
