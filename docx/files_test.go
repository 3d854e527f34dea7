package docx

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"docxb/common"
)

func TestInsertDocxFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "/in/a.docx", imageSource(t, "from file", "StyleA"), 0644); err != nil {
		t.Fatal(err)
	}
	d := newTestDocument(t)
	if err := d.InsertDocxFile(fsys, "/in/a.docx"); err != nil {
		t.Fatalf("InsertDocxFile() error: %v", err)
	}
	if body := d.Body(); len(body) != 1 || !strings.Contains(body[0], "from file") {
		t.Errorf("Body() = %q", body)
	}

	err := d.InsertDocxFile(fsys, "/in/missing.docx")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("InsertDocxFile() error = %v, want not exist", err)
	}
}

func TestInsertDocxAsync(t *testing.T) {
	fsys := afero.NewMemMapFs()
	if err := afero.WriteFile(fsys, "a.docx", imageSource(t, "async", "StyleA"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("success", func(t *testing.T) {
		d := newTestDocument(t)
		done := make(chan error, 2)
		d.InsertDocxAsync(context.Background(), fsys, "a.docx", func(err error) { done <- err })
		if err := <-done; err != nil {
			t.Fatalf("callback error: %v", err)
		}
		if body := d.Body(); len(body) != 1 || !strings.Contains(body[0], "async") {
			t.Errorf("Body() = %q", body)
		}
		if len(done) != 0 {
			t.Error("callback invoked more than once")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		d := newTestDocument(t)
		done := make(chan error, 1)
		d.InsertDocxAsync(context.Background(), fsys, "none.docx", func(err error) { done <- err })
		if err := <-done; !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("callback error = %v, want not exist", err)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		d := newTestDocument(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		done := make(chan error, 1)
		d.InsertDocxAsync(ctx, fsys, "a.docx", func(err error) { done <- err })
		if err := <-done; !errors.Is(err, context.Canceled) {
			t.Errorf("callback error = %v, want canceled", err)
		}
		if len(d.Body()) != 0 {
			t.Error("canceled insert modified document")
		}
	})

	t.Run("malformed", func(t *testing.T) {
		if err := afero.WriteFile(fsys, "bad.docx", []byte("junk"), 0644); err != nil {
			t.Fatal(err)
		}
		d := newTestDocument(t)
		done := make(chan error, 1)
		d.InsertDocxAsync(context.Background(), fsys, "bad.docx", func(err error) { done <- err })
		if err := <-done; !errors.Is(err, ErrMalformedSource) {
			t.Errorf("callback error = %v, want ErrMalformedSource", err)
		}
	})
}

func TestSave(t *testing.T) {
	fsys := afero.NewMemMapFs()
	d := newTestDocument(t)
	d.InsertText("saved")
	warnings, err := d.Save(fsys, "out/result.docx", defaultTemplate(t), common.EncodingBinary)
	if err != nil || len(warnings) != 0 {
		t.Fatalf("Save() = %v, %v", warnings, err)
	}
	data, err := afero.ReadFile(fsys, "out/result.docx")
	if err != nil {
		t.Fatalf("result not written: %v", err)
	}
	if !strings.Contains(readPackage(t, data)[documentPart], "saved") {
		t.Error("saved package lacks content")
	}

	ro := afero.NewReadOnlyFs(fsys)
	if _, err := d.Save(ro, "other.docx", defaultTemplate(t), common.EncodingBinary); err == nil {
		t.Error("Save() to read-only file system succeeded")
	}
}
