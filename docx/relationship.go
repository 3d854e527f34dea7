package docx

import (
	"path"
	"strings"

	"github.com/beevik/etree"
)

const (
	documentPart  = "word/document.xml"
	manifestPart  = "word/_rels/document.xml.rels"
	typesPart     = "[Content_Types].xml"
	partsDir      = "word/"
	externalMode  = "External"
	relsNamespace = "http://schemas.openxmlformats.org/package/2006/relationships"
)

// systemRelIDs maps file names of parts every template carries to their
// stable relationship ids. Parts with these names are never renamed, their
// content is merged into the template part with the same name.
var systemRelIDs = map[string]string{
	"styles.xml":      "rId1",
	"settings.xml":    "rId2",
	"webSettings.xml": "rId3",
	"footnotes.xml":   "rId4",
	"endnotes.xml":    "rId5",
	"header1.xml":     "rId6",
	"footer1.xml":     "rId7",
	"fontTable.xml":   "rId8",
	"theme1.xml":      "rId9",
	"footer2.xml":     "rId10",
	"numbering.xml":   "rId11",
}

// Relationship is a single link from the source document manifest together
// with its resolution in the composite document.
type Relationship struct {
	ID          string // source local id
	NewID       string // id in the composite document
	Type        string
	Target      string // as found in source manifest
	NewTarget   string // target in the composite document
	TargetMode  string
	ZipPath     string // location of the part in source package
	ContentType string // as declared by the source package, may be empty
	Payload     []byte
}

// Private reports whether relationship points to an asset renamed for the
// composite document.
func (r *Relationship) Private() bool {
	return r.Target != r.NewTarget
}

// External reports whether relationship target is outside of the package
// (hyperlinks and such), there is no payload in this case.
func (r *Relationship) External() bool {
	return strings.EqualFold(r.TargetMode, externalMode)
}

// Filename returns final segment of the original target.
func (r *Relationship) Filename() string {
	return path.Base(r.Target)
}

// resolvePartPath returns package location for a target relative to the main
// document part.
func resolvePartPath(target string) string {
	switch {
	case strings.HasPrefix(target, "../"):
		return path.Clean(strings.TrimPrefix(target, "../"))
	case strings.HasPrefix(target, "/"):
		return path.Clean(strings.TrimPrefix(target, "/"))
	default:
		return path.Clean(partsDir + target)
	}
}

// isThemeTarget reports whether target lives under themes directory.
func isThemeTarget(target string) bool {
	p := resolvePartPath(target)
	return strings.HasPrefix(p, "word/theme/") || strings.Contains(p, "/theme/")
}

// parseManifest reads relationship records from manifest markup. Attribute
// order does not matter.
func parseManifest(data []byte) ([]Relationship, error) {
	doc, err := readXML(data)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil || root.Tag != "Relationships" {
		return nil, malformedSource("relationship manifest has no Relationships root")
	}

	rels := make([]Relationship, 0, len(root.ChildElements()))
	for _, el := range root.SelectElements("Relationship") {
		rel := Relationship{
			ID:         el.SelectAttrValue("Id", ""),
			Type:       el.SelectAttrValue("Type", ""),
			Target:     el.SelectAttrValue("Target", ""),
			TargetMode: el.SelectAttrValue("TargetMode", ""),
		}
		if rel.ID == "" || rel.Target == "" {
			return nil, malformedSource("relationship without Id or Target in manifest")
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

// manifest is editable view of the template relationship manifest.
type manifest struct {
	doc     *etree.Document
	targets map[string]string // id -> target
	changed bool
}

func parseTemplateManifest(data []byte) (*manifest, error) {
	doc, err := readXML(data)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil || root.Tag != "Relationships" {
		return nil, ErrMalformedTemplate
	}
	m := &manifest{doc: doc, targets: make(map[string]string)}
	for _, el := range root.SelectElements("Relationship") {
		m.targets[el.SelectAttrValue("Id", "")] = el.SelectAttrValue("Target", "")
	}
	return m, nil
}

// add appends relationship entry at the end of the manifest.
func (m *manifest) add(id, relType, target, mode string) {
	el := m.doc.Root().CreateElement("Relationship")
	el.CreateAttr("Id", id)
	el.CreateAttr("Type", relType)
	el.CreateAttr("Target", target)
	if mode != "" {
		el.CreateAttr("TargetMode", mode)
	}
	m.targets[id] = target
	m.changed = true
}

func (m *manifest) bytes() ([]byte, error) {
	return m.doc.WriteToBytes()
}
