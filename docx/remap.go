package docx

import (
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// quotedValue matches attribute values, relationship references are
// always attribute values in WordprocessingML.
var quotedValue = regexp.MustCompile(`=(?:"[^"<>]*"|'[^'<>]*')`)

// remapper assigns composite document ids and targets to source
// relationships. Tokens it issues are unique for the lifetime of the
// document, so private assets from different sources never collide.
type remapper struct {
	issued   map[string]struct{}
	newToken func() string
}

func newRemapper() *remapper {
	return &remapper{
		issued: make(map[string]struct{}),
		newToken: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
}

func (m *remapper) token() string {
	for {
		t := m.newToken()
		if _, ok := m.issued[t]; !ok {
			m.issued[t] = struct{}{}
			return t
		}
	}
}

// remap resolves every relationship in place and returns replacement table
// for ids which changed.
func (m *remapper) remap(rels []Relationship) map[string]string {
	replace := make(map[string]string)
	for i := range rels {
		rel := &rels[i]
		switch id, system := systemRelIDs[rel.Filename()]; {
		case system && !rel.External():
			rel.NewID, rel.NewTarget = id, rel.Target
		case rel.External():
			rel.NewID, rel.NewTarget = rel.ID+"_"+m.token(), rel.Target
		default:
			t := m.token()
			rel.NewID = rel.ID + "_" + t
			dir, file := path.Split(rel.Target)
			rel.NewTarget = dir + t + "_" + file
		}
		if rel.NewID != rel.ID {
			replace[rel.ID] = rel.NewID
		}
	}
	return replace
}

// rewriteReferences substitutes relationship references in markup in a single
// pass, so chains like rId1 -> rId5 -> rId1_x are not possible.
func rewriteReferences(markup string, replace map[string]string) string {
	if len(replace) == 0 {
		return markup
	}
	return quotedValue.ReplaceAllStringFunc(markup, func(q string) string {
		if n, ok := replace[q[2:len(q)-1]]; ok {
			return q[:2] + n + q[len(q)-1:]
		}
		return q
	})
}
