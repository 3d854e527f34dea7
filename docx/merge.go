package docx

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"docxb/archive"
)

// identityAttrs are attributes which identify children of shared parts
// (styles, numbering, fonts, notes). Children with the same identity as an
// existing one are not merged again.
var identityAttrs = []string{"styleId", "abstractNumId", "numId", "numPicBulletId", "id", "name"}

// Content of these parts is a flow of paragraphs, nothing to deduplicate.
var flowRoots = map[string]bool{"hdr": true, "ftr": true}

// childRanks lists schema sequence of root children for parts where order
// matters, children missing from the table go last.
var childRanks = map[string]map[string]int{
	"numbering": {"numPicBullet": 0, "abstractNum": 1, "num": 2, "numIdMacAtCleanup": 3},
	"styles":    {"docDefaults": 0, "latentStyles": 1, "style": 2},
}

// partMerger recombines template package with relationships of merged
// sources. XML parts are merged in memory and written back once.
type partMerger struct {
	log      *zap.Logger
	pkg      *archive.Package
	pending  map[string]*etree.Document
	order    []string
	manifest *manifest
	types    *contentTypes
	warnings []Warning
}

func newPartMerger(pkg *archive.Package, log *zap.Logger) (*partMerger, error) {
	data, err := pkg.Get(manifestPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTemplate, err)
	}
	m, err := parseTemplateManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%w: relationship manifest: %w", ErrMalformedTemplate, err)
	}
	data, err = pkg.Get(typesPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTemplate, err)
	}
	types, err := parseContentTypes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: content types: %w", ErrMalformedTemplate, err)
	}
	return &partMerger{
		log:      log,
		pkg:      pkg,
		pending:  make(map[string]*etree.Document),
		manifest: m,
		types:    types,
	}, nil
}

func (pm *partMerger) warn(rel *Relationship, part, reason string) {
	w := Warning{Part: part, RelID: rel.NewID, Reason: reason}
	pm.warnings = append(pm.warnings, w)
	pm.log.Warn("Cannot merge part", zap.String("part", part), zap.String("id", rel.NewID), zap.String("reason", reason))
}

func (pm *partMerger) add(rel *Relationship) error {
	switch {
	case rel.External():
		pm.manifest.add(rel.NewID, rel.Type, rel.NewTarget, rel.TargetMode)
		return nil
	case rel.Private():
		return pm.addPrivate(rel)
	case partExt(rel.Target) == "xml":
		return pm.addShared(rel)
	default:
		pm.warn(rel, resolvePartPath(rel.NewTarget), "shared part is not XML")
		return nil
	}
}

// addPrivate copies renamed asset into the package and registers it.
func (pm *partMerger) addPrivate(rel *Relationship) error {
	dest := resolvePartPath(rel.NewTarget)
	pm.pkg.Put(dest, rel.Payload)
	pm.manifest.add(rel.NewID, rel.Type, rel.NewTarget, "")

	if partExt(dest) == "xml" {
		if rel.ContentType == "" {
			pm.warn(rel, dest, "no content type declared for XML part")
			return nil
		}
		pm.types.ensureOverride(dest, rel.ContentType)
		return nil
	}
	ct := rel.ContentType
	if ct == "" {
		ct = guessContentType(dest, rel.Payload)
	}
	pm.types.ensureDefault(partExt(dest), ct)
	return nil
}

// addShared merges system part content into template part with the same
// name. Theme is never merged, first one wins.
func (pm *partMerger) addShared(rel *Relationship) error {
	dest := resolvePartPath(rel.NewTarget)

	doc, err := pm.load(dest)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		pm.warn(rel, dest, fmt.Sprintf("template part is not usable: %v", err))
		return nil
	}
	if doc == nil {
		pm.introduce(rel, dest)
		return nil
	}
	if isThemeTarget(rel.NewTarget) {
		pm.log.Debug("Theme already present, skipping", zap.String("part", dest))
		return nil
	}

	src, err := readXML(rel.Payload)
	if err != nil {
		pm.warn(rel, dest, err.Error())
		return nil
	}
	added, err := mergeTrees(doc, src)
	if err != nil {
		pm.warn(rel, dest, err.Error())
		return nil
	}
	pm.log.Debug("Part merged", zap.String("part", dest), zap.Int("elements", added))
	return nil
}

// introduce adds system part template does not have.
func (pm *partMerger) introduce(rel *Relationship, dest string) {
	if target, ok := pm.manifest.targets[rel.NewID]; ok && resolvePartPath(target) != dest {
		pm.warn(rel, dest, fmt.Sprintf("template uses id for %s", target))
		return
	}
	doc, err := readXML(rel.Payload)
	if err != nil {
		pm.warn(rel, dest, err.Error())
		return
	}
	pm.pending[dest] = doc
	pm.order = append(pm.order, dest)
	if _, ok := pm.manifest.targets[rel.NewID]; !ok {
		pm.manifest.add(rel.NewID, rel.Type, rel.NewTarget, "")
	}
	if rel.ContentType != "" {
		pm.types.ensureOverride(dest, rel.ContentType)
	} else {
		pm.warn(rel, dest, "no content type declared for XML part")
	}
	pm.log.Debug("Part introduced", zap.String("part", dest))
}

// load returns in-memory tree of template part, parsing it on first access.
func (pm *partMerger) load(name string) (*etree.Document, error) {
	if doc, ok := pm.pending[name]; ok {
		return doc, nil
	}
	data, err := pm.pkg.Get(name)
	if err != nil {
		return nil, err
	}
	doc, err := readXML(data)
	if err != nil {
		return nil, err
	}
	pm.pending[name] = doc
	pm.order = append(pm.order, name)
	return doc, nil
}

// finish writes merged parts, manifest and content types back.
func (pm *partMerger) finish() error {
	for _, name := range pm.order {
		data, err := pm.pending[name].WriteToBytes()
		if err != nil {
			return fmt.Errorf("unable to serialize part %s: %w", name, err)
		}
		pm.pkg.Put(name, data)
	}
	if pm.manifest.changed {
		data, err := pm.manifest.bytes()
		if err != nil {
			return fmt.Errorf("unable to serialize relationship manifest: %w", err)
		}
		pm.pkg.Put(manifestPart, data)
	}
	if pm.types.changed {
		data, err := pm.types.bytes()
		if err != nil {
			return fmt.Errorf("unable to serialize content types: %w", err)
		}
		pm.pkg.Put(typesPart, data)
	}
	return nil
}

// mergeTrees appends children of src root to dst root, skipping children
// whose identity is already present. Namespace declarations dst lacks are
// carried over. Returns number of appended elements.
func mergeTrees(dst, src *etree.Document) (int, error) {
	dr, sr := dst.Root(), src.Root()
	if dr == nil || sr == nil {
		return 0, errors.New("part has no root element")
	}
	if dr.FullTag() != sr.FullTag() {
		return 0, fmt.Errorf("root element mismatch: %s vs %s", dr.FullTag(), sr.FullTag())
	}

	for _, a := range sr.Attr {
		if a.Space != "xmlns" && !(a.Space == "" && a.Key == "xmlns") {
			continue
		}
		if dr.SelectAttr(a.FullKey()) == nil {
			dr.CreateAttr(a.FullKey(), a.Value)
		}
	}
	mergeIgnorable(dr, sr)

	if flowRoots[dr.Tag] {
		for _, ch := range sr.ChildElements() {
			dr.AddChild(ch.Copy())
		}
		return len(sr.ChildElements()), nil
	}

	// NOTE: list definitions are deduplicated by their ids as everything
	// else, source reusing ids of earlier one renders with earlier lists.
	seen := make(map[string]struct{})
	for _, ch := range dr.ChildElements() {
		seen[identityKey(ch)] = struct{}{}
	}
	ranks := childRanks[dr.Tag]
	added := 0
	for _, ch := range sr.ChildElements() {
		key := identityKey(ch)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		insertOrdered(dr, ch.Copy(), ranks)
		added++
	}
	return added, nil
}

// insertOrdered appends el after the last child of the same or lower rank,
// so children of root stay in schema sequence.
func insertOrdered(root, el *etree.Element, ranks map[string]int) {
	rank, ok := ranks[el.Tag]
	if !ok {
		root.AddChild(el)
		return
	}
	for _, ch := range root.ChildElements() {
		if r, ok := ranks[ch.Tag]; !ok || r > rank {
			root.InsertChildAt(ch.Index(), el)
			return
		}
	}
	root.AddChild(el)
}

// mergeIgnorable extends list of ignorable namespace prefixes so consumers
// which do not understand extensions brought by merged children still open
// the part.
func mergeIgnorable(dr, sr *etree.Element) {
	src := sr.SelectAttrValue("mc:Ignorable", "")
	if src == "" {
		return
	}
	attr := dr.SelectAttr("mc:Ignorable")
	if attr == nil {
		if dr.SelectAttr("xmlns:mc") != nil {
			dr.CreateAttr("mc:Ignorable", src)
		}
		return
	}
	have := strings.Fields(attr.Value)
	for _, p := range strings.Fields(src) {
		if !slices.Contains(have, p) {
			have = append(have, p)
		}
	}
	attr.Value = strings.Join(have, " ")
}

func identityKey(el *etree.Element) string {
	for _, name := range identityAttrs {
		for _, a := range el.Attr {
			if a.Key == name && a.Space != "xmlns" {
				return el.FullTag() + "#" + a.FullKey() + "=" + a.Value
			}
		}
	}
	return el.FullTag()
}
