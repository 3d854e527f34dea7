package docx

import (
	"errors"
	"io/fs"
	"regexp"
	"strings"

	"docxb/archive"
)

var (
	bodyOpen  = regexp.MustCompile(`<w:body(?:\s[^>]*)?>`)
	bodyClose = "</w:body>"
)

// Source is a merged package broken into body markup and relationship records
// whose payloads are loaded from the package.
type Source struct {
	Body          string
	Relationships []Relationship
}

// Extract reads body markup and relationship manifest from an OOXML package.
// Payload of every internal relationship is loaded, missing part is an error.
func Extract(data []byte) (*Source, error) {
	pkg, err := archive.Open(data)
	if err != nil {
		return nil, malformedSource("%v", err)
	}

	main, err := pkg.Get(documentPart)
	if err != nil {
		return nil, malformedSource("%v", err)
	}
	if main, err = decodeXMLText(main); err != nil {
		return nil, malformedSource("%v", err)
	}
	body, err := bodyMarkup(string(main))
	if err != nil {
		return nil, err
	}

	manifestData, err := pkg.Get(manifestPart)
	if err != nil {
		return nil, malformedSource("%v", err)
	}
	rels, err := parseManifest(manifestData)
	if err != nil {
		return nil, err
	}

	var types *contentTypes
	if data, err := pkg.Get(typesPart); err == nil {
		// content types are only used as hints, damaged part is not fatal
		types, _ = parseContentTypes(data)
	}

	for i := range rels {
		rel := &rels[i]
		rel.NewID, rel.NewTarget = rel.ID, rel.Target
		if rel.External() {
			continue
		}
		rel.ZipPath = resolvePartPath(rel.Target)
		payload, err := pkg.Get(rel.ZipPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, malformedSource("relationship %s points to missing part %s", rel.ID, rel.ZipPath)
			}
			return nil, malformedSource("%v", err)
		}
		rel.Payload = payload
		rel.ContentType = types.lookup(rel.ZipPath, rel.Type)
	}
	return &Source{Body: body, Relationships: rels}, nil
}

// bodyMarkup returns inner markup of w:body element.
func bodyMarkup(main string) (string, error) {
	loc := bodyOpen.FindStringIndex(main)
	if loc == nil && strings.Contains(main, "<w:body/>") {
		return "", nil
	}
	if loc == nil {
		return "", malformedSource("main part has no body start")
	}
	end := strings.LastIndex(main, bodyClose)
	if end < loc[1] {
		return "", malformedSource("main part has no body end")
	}
	return main[loc[1]:end], nil
}
