package state

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/charmap"

	"docxb/config"
)

func TestEnvFromContext(t *testing.T) {
	t.Run("fresh env", func(t *testing.T) {
		env := EnvFromContext(ContextWithEnv(context.Background()))
		if env.start.IsZero() {
			t.Error("start time not set")
		}
		if env.Template != nil || env.CodePage != nil {
			t.Error("fresh env must not carry template or code page")
		}
	})

	t.Run("same env on every lookup", func(t *testing.T) {
		ctx := ContextWithEnv(context.Background())
		EnvFromContext(ctx).Overwrite = true
		if !EnvFromContext(ctx).Overwrite {
			t.Error("changes to env are not visible through context")
		}
	})

	t.Run("panic on missing env", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic when env not in context")
			}
		}()
		EnvFromContext(context.Background())
	})
}

func TestLocalEnv_StdLog(t *testing.T) {
	env := &LocalEnv{Log: zaptest.NewLogger(t)}
	env.RedirectStdLog()
	if env.restoreStdLog == nil {
		t.Fatal("restoreStdLog not set")
	}
	env.RestoreStdLog()

	// nothing to redirect without logger
	bare := &LocalEnv{}
	bare.RedirectStdLog()
	if bare.restoreStdLog != nil {
		t.Error("restoreStdLog set without logger")
	}
	bare.RestoreStdLog()
}

func TestLocalEnv_LoadTemplate(t *testing.T) {
	t.Run("built-in", func(t *testing.T) {
		env := &LocalEnv{Cfg: &config.Config{Version: 1}}
		if err := env.LoadTemplate(); err != nil {
			t.Fatalf("LoadTemplate() error = %v", err)
		}
		if !bytes.HasPrefix(env.Template, []byte("PK")) {
			t.Error("built-in template is not a zip package")
		}
	})

	t.Run("built-in without config", func(t *testing.T) {
		env := &LocalEnv{}
		if err := env.LoadTemplate(); err != nil {
			t.Fatalf("LoadTemplate() error = %v", err)
		}
		if len(env.Template) == 0 {
			t.Error("template is empty")
		}
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "template.docx")
		if err := os.WriteFile(path, []byte("template"), 0644); err != nil {
			t.Fatal(err)
		}
		env := &LocalEnv{Cfg: &config.Config{Version: 1}}
		env.Cfg.Document.TemplatePath = path
		if err := env.LoadTemplate(); err != nil {
			t.Fatalf("LoadTemplate() error = %v", err)
		}
		if string(env.Template) != "template" {
			t.Errorf("Template = %q", env.Template)
		}
	})

	t.Run("missing file keeps previous template", func(t *testing.T) {
		env := &LocalEnv{Cfg: &config.Config{Version: 1}, Template: []byte("old")}
		env.Cfg.Document.TemplatePath = filepath.Join(t.TempDir(), "missing.docx")
		if err := env.LoadTemplate(); err == nil {
			t.Error("expected error for missing template")
		}
		if string(env.Template) != "old" {
			t.Errorf("Template = %q, want previous value", env.Template)
		}
	})
}

func TestLocalEnv_CodePage(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))
	env.CodePage = charmap.Windows1251

	// names in legacy archives are decoded with env code page
	raw, err := env.CodePage.NewEncoder().String("Отчет.docx")
	if err != nil {
		t.Fatal(err)
	}
	got, err := env.CodePage.NewDecoder().String(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Отчет.docx" {
		t.Errorf("decoded name = %q", got)
	}
}
