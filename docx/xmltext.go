package docx

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/beevik/etree"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}

	declEncoding = regexp.MustCompile(`^(<\?xml[^>]*?encoding=)("[^"]*"|'[^']*')`)
)

// decodeXMLText returns UTF-8 representation of an XML part. Parts saved by
// some producers carry byte order marks or are stored as UTF-16, everything
// downstream expects plain UTF-8 without BOM.
func decodeXMLText(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], nil
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return nil, fmt.Errorf("unable to decode UTF-16 part: %w", err)
		}
		out = bytes.TrimPrefix(out, bomUTF8)
		return declEncoding.ReplaceAll(out, []byte(`${1}"UTF-8"`)), nil
	default:
		return data, nil
	}
}

// readXML parses part markup into element tree.
func readXML(data []byte) (*etree.Document, error) {
	text, err := decodeXMLText(data)
	if err != nil {
		return nil, err
	}
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		ValidateInput: false,
	}
	if err := doc.ReadFromBytes(text); err != nil {
		return nil, fmt.Errorf("unable to parse XML: %w", err)
	}
	return doc, nil
}
