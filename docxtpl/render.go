package docxtpl

import (
	"encoding/xml"
	"regexp"
	"strings"
)

const paragraphEnd = "</w:p>"

var (
	paragraphStart = regexp.MustCompile(`<w:p[\s>/]`)
	textElement    = regexp.MustCompile(`(<w:t(?:\s[^>]*)?>)([^<]*)</w:t>`)
)

type span struct {
	start, end int
}

type tag struct {
	start, end int // in joined paragraph text, braces included
	name       string
	raw        bool
}

// renderPart replaces placeholders in part markup and returns number of
// replaced tags.
func renderPart(part, markup string, data map[string]string) (string, int, error) {
	var (
		b     strings.Builder
		last  int
		count int
	)
	for _, p := range leafParagraphs(markup) {
		out, n, err := renderParagraph(part, markup[p.start:p.end], data)
		if err != nil {
			return "", 0, err
		}
		if n == 0 {
			continue
		}
		b.WriteString(markup[last:p.start])
		b.WriteString(out)
		last = p.end
		count += n
	}
	if count == 0 {
		return markup, 0, nil
	}
	b.WriteString(markup[last:])
	return b.String(), count, nil
}

// leafParagraphs returns paragraphs without nested paragraphs (text boxes
// keep theirs inside runs) in document order.
func leafParagraphs(s string) []span {
	type frame struct {
		start  int
		nested bool
	}
	var (
		spans []span
		stack []frame
	)
	for i := 0; i < len(s); {
		open := paragraphStart.FindStringIndex(s[i:])
		closing := strings.Index(s[i:], paragraphEnd)
		if open == nil && closing < 0 {
			break
		}
		if open != nil && (closing < 0 || open[0] < closing) {
			start := i + open[0]
			gt := strings.IndexByte(s[start:], '>')
			if gt < 0 {
				break
			}
			i = start + gt + 1
			if s[i-2] == '/' {
				continue
			}
			if len(stack) > 0 {
				stack[len(stack)-1].nested = true
			}
			stack = append(stack, frame{start: start})
			continue
		}
		i += closing + len(paragraphEnd)
		if len(stack) == 0 {
			continue
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !f.nested {
			spans = append(spans, span{start: f.start, end: i})
		}
	}
	return spans
}

func renderParagraph(part, p string, data map[string]string) (string, int, error) {
	segs := textElement.FindAllStringSubmatchIndex(p, -1)
	if len(segs) == 0 {
		return p, 0, nil
	}
	texts := make([]string, len(segs))
	offs := make([]int, len(segs))
	var joined strings.Builder
	for k, s := range segs {
		offs[k] = joined.Len()
		texts[k] = p[s[4]:s[5]]
		joined.WriteString(texts[k])
	}
	text := joined.String()
	if !strings.ContainsAny(text, "{}") {
		return p, 0, nil
	}

	tags, err := parseTags(part, text)
	if err != nil {
		return "", 0, err
	}
	for _, t := range tags {
		if !t.raw {
			continue
		}
		if len(tags) > 1 || strings.TrimSpace(text) != text[t.start:t.end] {
			return "", 0, &TagError{Part: part, Tag: t.name, Reason: "raw tag must be the only text of its paragraph"}
		}
		return data[t.name], 1, nil
	}

	segAt := func(pos int) int {
		for k := range texts {
			if pos >= offs[k] && pos < offs[k]+len(p[segs[k][4]:segs[k][5]]) {
				return k
			}
		}
		return len(texts) - 1
	}
	for n := len(tags) - 1; n >= 0; n-- {
		t := tags[n]
		i, j := segAt(t.start), segAt(t.end-1)
		value := escape(data[t.name])
		left := texts[i][:t.start-offs[i]]
		if i == j {
			texts[i] = left + value + texts[i][t.end-offs[i]:]
			continue
		}
		texts[i] = left + value
		for k := i + 1; k < j; k++ {
			texts[k] = ""
		}
		texts[j] = texts[j][t.end-offs[j]:]
	}

	// rebuild from the end so earlier positions stay valid
	for k := len(segs) - 1; k >= 0; k-- {
		s := segs[k]
		p = p[:s[4]] + texts[k] + p[s[5]:]
		if p[s[2]:s[3]] == "<w:t>" && texts[k] != strings.TrimSpace(texts[k]) {
			p = p[:s[2]] + `<w:t xml:space="preserve">` + p[s[3]:]
		}
	}
	return p, len(tags), nil
}

func parseTags(part, text string) ([]tag, error) {
	var tags []tag
	open := -1
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			if open >= 0 {
				return nil, &TagError{Part: part, Tag: text[open:i], Reason: "unclosed tag"}
			}
			open = i
		case '}':
			if open < 0 {
				return nil, &TagError{Part: part, Tag: text[:i+1], Reason: "unopened tag"}
			}
			t := tag{start: open, end: i + 1, name: strings.TrimSpace(text[open+1 : i])}
			if strings.HasPrefix(t.name, "@") {
				t.raw, t.name = true, strings.TrimSpace(t.name[1:])
			}
			if t.name == "" {
				return nil, &TagError{Part: part, Tag: text[open : i+1], Reason: "empty tag"}
			}
			tags = append(tags, t)
			open = -1
		}
	}
	if open >= 0 {
		return nil, &TagError{Part: part, Tag: text[open:], Reason: "unclosed tag"}
	}
	return tags, nil
}

func escape(s string) string {
	var b strings.Builder
	// strings.Builder never fails
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
