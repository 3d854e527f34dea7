// Package common keeps enumerations shared by configuration, command line and
// the document engine. Keeping them here allows config to stay free of engine
// imports.
package common

// Encoding of the rendered package.
// ENUM(binary, base64)
type Encoding int

// Ext returns the file name extension matching the encoding.
func (e Encoding) Ext() string {
	switch e {
	case EncodingBase64:
		return ".docx.b64"
	default:
		return ".docx"
	}
}

// Section normalization policy - decides which section properties block
// survives when composite body ends up with more than one.
// ENUM(last, first, references)
type SectionPolicy int

// Page orientation for section breaks.
// ENUM(portrait, landscape)
type Orientation string

// Section break types as understood by word processors.
// ENUM(continuous, nextPage, nextColumn, evenPage, oddPage)
type SectionType string
