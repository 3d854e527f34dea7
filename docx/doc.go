// Package docx builds OOXML word processing documents and merges externally
// authored packages into a single composite document.
//
// Document accumulates body, header and footer markup. Merged sources go
// through extraction (body markup and relationship manifest), identifier
// remapping (system parts keep their location, private assets are renamed)
// and are recombined with the template package by Render, which merges
// shared XML parts, copies private assets, rebuilds the relationship manifest,
// normalizes section properties and substitutes accumulated markup into the
// template.
//
// Document is not safe for concurrent use.
package docx
