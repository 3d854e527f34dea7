// Package script reads YAML build scripts and replays them against a
// document. Each step performs exactly one action:
//
//	steps:
//	  - format: {bold: true, align: center, size: 16}
//	  - text: "Title"
//	  - page_break: true
//	  - table:
//	      borders: {size: 8}
//	      rows: [["A", "B"], ["C", "D"]]
//	  - merge: chapters/one.docx
//	  - header:
//	      - text: "Running header"
//
// String values may use configuration template expansion ({{ ... }}).
package script

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rupor-github/gencfg"
	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v3"

	"docxb/common"
)

type (
	Format struct {
		Bold      bool    `yaml:"bold"`
		Italic    bool    `yaml:"italic"`
		Underline bool    `yaml:"underline"`
		Font      string  `yaml:"font"`
		Size      float64 `yaml:"size" validate:"gte=0,lte=1638"`
		Align     string  `yaml:"align" validate:"omitempty,oneof=left center right both"`
	}

	Borders struct {
		Style string `yaml:"style"`
		Size  int    `yaml:"size" validate:"gte=0"`
		Color string `yaml:"color"`
	}

	Table struct {
		Borders *Borders   `yaml:"borders"`
		Rows    [][]string `yaml:"rows" validate:"min=1,dive,min=1"`
	}

	Section struct {
		Orientation common.Orientation `yaml:"orientation"`
		Type        common.SectionType `yaml:"type"`
		Width       int                `yaml:"width" validate:"gte=0"`
		Height      int                `yaml:"height" validate:"gte=0"`
	}

	Step struct {
		Format    *Format  `yaml:"format"`
		Text      *string  `yaml:"text"` // inserted verbatim, may carry escaped entities and inline markup
		PageBreak bool     `yaml:"page_break"`
		Section   *Section `yaml:"section"`
		Table     *Table   `yaml:"table"`
		Raw       *string  `yaml:"raw"`
		Merge     *string  `yaml:"merge"`
		Header    []Step   `yaml:"header" validate:"dive"`
		Footer    []Step   `yaml:"footer" validate:"dive"`
	}

	Script struct {
		// Template overrides configured template, relative to script.
		Template string `yaml:"template"`
		// Output is default result name, relative to script.
		Output string `yaml:"output"`
		Steps  []Step `yaml:"steps" validate:"min=1,dive"`

		dir string
	}
)

// Load reads script from the file system, relative paths inside of it are
// resolved against script location.
func Load(fsys afero.Fs, path string) (*Script, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("unable to read script: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes and validates script, dir is used to resolve relative paths.
func Parse(data []byte, dir string) (*Script, error) {
	if bytes.Contains(data, []byte("{{")) {
		expanded, err := gencfg.Process(data)
		if err != nil {
			return nil, fmt.Errorf("unable to expand script: %w", err)
		}
		data = expanded
	}

	// only fields we know about
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	s := &Script{dir: dir}
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("unable to decode script: %w", err)
	}
	if err := gencfg.Validate(s); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	if err := checkSteps(s.Steps, false); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	return s, nil
}

func checkSteps(steps []Step, nested bool) error {
	for i, st := range steps {
		n := st.actions()
		switch {
		case n == 0:
			return fmt.Errorf("step %d: no action", i+1)
		case n > 1:
			return fmt.Errorf("step %d: %d actions, expected one", i+1, n)
		case nested && (st.Header != nil || st.Footer != nil):
			return fmt.Errorf("step %d: header and footer blocks cannot be nested", i+1)
		}
		for _, block := range [][]Step{st.Header, st.Footer} {
			if block == nil {
				continue
			}
			if len(block) == 0 {
				return errors.New("empty header or footer block")
			}
			if err := checkSteps(block, true); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		}
	}
	return nil
}

func (st *Step) actions() (n int) {
	for _, set := range []bool{
		st.Format != nil, st.Text != nil, st.PageBreak, st.Section != nil,
		st.Table != nil, st.Raw != nil, st.Merge != nil, st.Header != nil, st.Footer != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// Resolve returns path relative to script location, absolute paths are
// returned as is.
func (s *Script) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.dir, path)
}

// Merges returns resolved paths of all sources script merges in order.
func (s *Script) Merges() []string {
	var out []string
	var walk func([]Step)
	walk = func(steps []Step) {
		for _, st := range steps {
			if st.Merge != nil {
				out = append(out, s.Resolve(*st.Merge))
			}
			walk(st.Header)
			walk(st.Footer)
		}
	}
	walk(s.Steps)
	return out
}
