package script

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"docxb/docx"
)

// Apply replays script steps against document. Sources are merged
// asynchronously one at a time, so cancellation is honored while reading.
func (s *Script) Apply(ctx context.Context, d *docx.Document, fsys afero.Fs, log *zap.Logger) error {
	return s.apply(ctx, d, fsys, log, s.Steps)
}

func (s *Script) apply(ctx context.Context, d *docx.Document, fsys afero.Fs, log *zap.Logger, steps []Step) error {
	for i, st := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.step(ctx, d, fsys, log, &st); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *Script) step(ctx context.Context, d *docx.Document, fsys afero.Fs, log *zap.Logger, st *Step) error {
	switch {
	case st.Format != nil:
		d.SetFormatting(st.Format.formatting())
	case st.Text != nil:
		d.InsertText(*st.Text)
	case st.PageBreak:
		d.InsertPageBreak()
	case st.Section != nil:
		d.InsertSection(docx.SectionOptions{
			Orientation: st.Section.Orientation,
			Type:        st.Section.Type,
			PageWidth:   st.Section.Width,
			PageHeight:  st.Section.Height,
		})
	case st.Table != nil:
		insertTable(d, st.Table)
	case st.Raw != nil:
		d.InsertRaw(*st.Raw)
	case st.Merge != nil:
		path := s.Resolve(*st.Merge)
		log.Debug("Merging source", zap.String("file", path))
		return mergeFile(ctx, d, fsys, path)
	case st.Header != nil:
		d.BeginHeader()
		defer d.EndHeader()
		return s.apply(ctx, d, fsys, log, st.Header)
	case st.Footer != nil:
		d.BeginFooter()
		defer d.EndFooter()
		return s.apply(ctx, d, fsys, log, st.Footer)
	}
	return nil
}

// mergeFile waits for asynchronous insertion or cancellation, whichever
// comes first. On cancellation document is left to the reader goroutine and
// must not be used any more.
func mergeFile(ctx context.Context, d *docx.Document, fsys afero.Fs, path string) error {
	done := make(chan error, 1)
	d.InsertDocxAsync(ctx, fsys, path, func(err error) { done <- err })
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("unable to merge %s: %w", path, err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *Format) formatting() docx.Formatting {
	align := docx.AlignLeft
	switch f.Align {
	case "center":
		align = docx.AlignCenter
	case "right":
		align = docx.AlignRight
	case "both":
		align = docx.AlignJustify
	}
	return docx.Formatting{
		Bold:      f.Bold,
		Italic:    f.Italic,
		Underline: f.Underline,
		Font:      f.Font,
		Size:      f.Size,
		Alignment: align,
	}
}

func insertTable(d *docx.Document, t *Table) {
	var opts *docx.TableOptions
	if t.Borders != nil {
		opts = &docx.TableOptions{
			BorderStyle: t.Borders.Style,
			BorderSize:  t.Borders.Size,
			BorderColor: t.Borders.Color,
		}
	}
	d.BeginTable(opts)
	for r, row := range t.Rows {
		if r == 0 {
			d.InsertRow()
		} else {
			d.NextRow()
		}
		for c, cell := range row {
			if c > 0 {
				d.NextColumn()
			}
			if cell != "" {
				d.InsertText(cell)
			}
		}
	}
	d.EndTable()
}
