// Package compose implements program commands: merging existing packages into
// a template and building documents from scripts.
package compose

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"docxb/common"
	"docxb/docx"
	"docxb/script"
	"docxb/state"
)

// Merge is "merge" command action: every source is appended to the document
// body in order and result is rendered into template.
func Merge(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("merge")

	if cmd.Args().Len() == 0 {
		return errors.New("no input source has been specified")
	}
	if err := prepareEnv(env, cmd, log); err != nil {
		return err
	}

	fsys := afero.NewOsFs()
	c := &collector{fsys: fsys, conf: &env.Cfg.Document.Sources, cp: env.CodePage, log: log}
	sources, err := c.collect(ctx, cmd.Args().Slice())
	if err != nil {
		return fmt.Errorf("unable to collect sources: %w", err)
	}
	if len(sources) == 0 {
		return errors.New("no sources to merge")
	}

	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.name)
	}
	dst, err := outputName(cmd.String("output"), newValues("merge", names, env.Cfg.Document.Encoding), stem(names[0])+"-merged", env)
	if err != nil {
		return err
	}

	log.Info("Processing starting", zap.Int("sources", len(sources)), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return merge(ctx, sources, fsys, dst, env, log)
}

func merge(ctx context.Context, sources []source, fsys afero.Fs, dst string, env *state.LocalEnv, log *zap.Logger) error {
	d := newDocument(env, log)

	var errs error
	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 && env.Cfg.Document.PageBreakBetween {
			d.InsertPageBreak()
		}
		if err := d.InsertDocx(src.data); err != nil {
			log.Error("Unable to merge source", zap.String("source", src.path), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", src.name, err))
			continue
		}
		log.Debug("Source merged", zap.String("source", src.path))
		env.Rpt.StoreData(fmt.Sprintf("sources/%03d-%s", i+1, filepath.Base(src.name)), src.data)
	}
	if errs != nil {
		return fmt.Errorf("unable to merge sources: %w", errs)
	}
	return save(d, fsys, dst, env, log)
}

// Build is "build" command action: document is assembled from script steps.
func Build(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("build")

	path := cmd.Args().Get(0)
	if len(path) == 0 {
		return errors.New("no script has been specified")
	}
	if cmd.Args().Len() > 1 {
		log.Warn("Malformed command line, too many scripts", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	if err := prepareEnv(env, cmd, log); err != nil {
		return err
	}

	fsys := afero.NewOsFs()
	s, err := script.Load(fsys, path)
	if err != nil {
		return err
	}
	if env.Rpt != nil {
		if err := env.Rpt.StoreCopy("script/"+filepath.Base(path), path); err != nil {
			log.Warn("Unable to store script in report", zap.Error(err))
		}
	}

	if s.Template != "" {
		if env.Template, err = afero.ReadFile(fsys, s.Resolve(s.Template)); err != nil {
			return fmt.Errorf("unable to read script template: %w", err)
		}
	}

	out := cmd.String("output")
	if out == "" {
		out = s.Resolve(s.Output)
	}
	dst, err := outputName(out, newValues("build", s.Merges(), env.Cfg.Document.Encoding), stem(path), env)
	if err != nil {
		return err
	}

	log.Info("Processing starting", zap.String("script", path), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return build(ctx, s, fsys, dst, env, log)
}

func build(ctx context.Context, s *script.Script, fsys afero.Fs, dst string, env *state.LocalEnv, log *zap.Logger) error {
	d := newDocument(env, log)
	if err := s.Apply(ctx, d, fsys, log); err != nil {
		return fmt.Errorf("unable to build document: %w", err)
	}
	return save(d, fsys, dst, env, log)
}

// prepareEnv fills command specific parts of the environment.
func prepareEnv(env *state.LocalEnv, cmd *cli.Command, log *zap.Logger) error {
	env.Overwrite = cmd.Bool("overwrite")

	if name := cmd.String("encoding"); len(name) > 0 {
		enc, err := common.ParseEncoding(name)
		if err != nil {
			log.Warn("Unknown encoding requested, using configured one", zap.Stringer("encoding", env.Cfg.Document.Encoding), zap.Error(err))
		} else {
			env.Cfg.Document.Encoding = enc
		}
	}

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old bundles
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		enc, err := ianaindex.IANA.Encoding(cp)
		if err != nil || enc == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
		} else {
			env.CodePage = enc
		}
	}
	return env.LoadTemplate()
}

func newDocument(env *state.LocalEnv, log *zap.Logger) *docx.Document {
	return docx.New(log,
		docx.WithSectionPolicy(env.Cfg.Document.SectionPolicy),
		docx.WithoutDataDescriptors(env.Cfg.Document.FixZip))
}

// outputName returns explicitly requested name or derives one in current
// directory.
func outputName(requested string, values Values, base string, env *state.LocalEnv) (string, error) {
	if requested != "" {
		return filepath.Abs(requested)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("unable to get working directory: %w", err)
	}
	return buildOutputPath(values, base, wd, env), nil
}

// save renders document into template and writes result, unmerged parts are
// reported as warnings.
func save(d *docx.Document, fsys afero.Fs, dst string, env *state.LocalEnv, log *zap.Logger) error {
	if err := prepareDestination(fsys, dst, env.Overwrite, log); err != nil {
		return err
	}

	env.Rpt.StoreData("document.txt", []byte(d.String()))

	warnings, err := d.Save(fsys, dst, env.Template, env.Cfg.Document.Encoding)
	for _, w := range warnings {
		log.Warn("Part was not merged", zap.String("part", w.Part), zap.String("id", w.RelID), zap.String("reason", w.Reason))
	}
	if err != nil {
		return fmt.Errorf("unable to save document: %w", err)
	}

	// Store result for debugging
	env.Rpt.Store("result"+env.Cfg.Document.Encoding.Ext(), dst)
	return nil
}
