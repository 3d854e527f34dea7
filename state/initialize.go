package state

import (
	"fmt"
	"os"
	"time"

	"docxb/docx"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
	}
}

// LoadTemplate reads the configured template or generates the built-in one
// when no template path is set.
func (e *LocalEnv) LoadTemplate() error {
	if e.Cfg != nil && e.Cfg.Document.TemplatePath != "" {
		data, err := os.ReadFile(e.Cfg.Document.TemplatePath)
		if err != nil {
			return fmt.Errorf("unable to read template from %q: %w", e.Cfg.Document.TemplatePath, err)
		}
		e.Template = data
		return nil
	}
	data, err := docx.DefaultTemplate()
	if err != nil {
		return fmt.Errorf("unable to generate default template: %w", err)
	}
	e.Template = data
	return nil
}
