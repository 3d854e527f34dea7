package docx

import (
	"fmt"

	"docxb/utils/debug"
)

const dumpClip = 256

// String returns readable tree of accumulated state. It exists for debug
// reports and manual inspection.
func (d *Document) String() string {
	if d == nil {
		return "<nil Document>"
	}
	tw := debug.NewTreeWriter()
	tw.Line(0, "Document: policy %s, target %s", d.policy, d.current)
	for _, t := range []target{targetBody, targetHeader, targetFooter} {
		fragments := d.fragments[t]
		tw.Line(1, "%s: %d fragments", t, len(fragments))
		for i, f := range fragments {
			tw.ClippedBlock(2, fmt.Sprintf("#%d", i), f, dumpClip)
		}
	}
	tw.Line(1, "Relationships: %d", len(d.rels))
	for _, r := range d.rels {
		tw.Line(2, "%s -> %s", r.ID, r.NewID)
		tw.Line(3, "type: %s", r.Type)
		tw.Line(3, "target: %s -> %s", r.Target, r.NewTarget)
		if r.External() {
			tw.Line(3, "external")
			continue
		}
		tw.Line(3, "part: %s (%d bytes, %q)", r.ZipPath, len(r.Payload), r.ContentType)
	}
	return tw.String()
}
