package docx

import (
	"context"

	"github.com/spf13/afero"

	"docxb/common"
)

// InsertDocxFile reads source package from the file system and merges it.
// I/O errors are returned as is.
func (d *Document) InsertDocxFile(fsys afero.Fs, name string) error {
	data, err := afero.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	return d.InsertDocx(data)
}

// InsertDocxAsync reads source package in the background and calls done
// exactly once with the result. Reading happens concurrently, merging does
// not: caller must not touch Document until done is called.
func (d *Document) InsertDocxAsync(ctx context.Context, fsys afero.Fs, name string, done func(error)) {
	go func() {
		data, err := afero.ReadFile(fsys, name)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			done(err)
			return
		}
		done(d.InsertDocx(data))
	}()
}

// Save renders document and writes result to the file system.
func (d *Document) Save(fsys afero.Fs, name string, template []byte, enc common.Encoding) ([]Warning, error) {
	data, warnings, err := d.Render(template, enc)
	if err != nil {
		return warnings, err
	}
	if err := afero.WriteFile(fsys, name, data, 0644); err != nil {
		return warnings, err
	}
	return warnings, nil
}
