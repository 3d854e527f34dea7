package compose

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"docxb/common"
	"docxb/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context string
	// Name is base name of the first source (or script) without extension.
	Name     string
	Sources  []string
	Count    int
	Command  string
	Encoding string
}

func newValues(command string, sources []string, enc common.Encoding) Values {
	v := Values{
		Context:  string(config.OutputNameTemplateFieldName),
		Sources:  make([]string, 0, len(sources)),
		Count:    len(sources),
		Command:  command,
		Encoding: enc.String(),
	}
	for _, s := range sources {
		v.Sources = append(v.Sources, stem(s))
	}
	if len(v.Sources) > 0 {
		v.Name = v.Sources[0]
	}
	return v
}

func stem(name string) string {
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}

func expandTemplate(name config.TemplateFieldName, field string, values Values) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
