// Package emit drives the translator: it fans artifact generation out per
// root type, writes the declaration files and the optional index manifests.
package emit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/origadmin/tsdgen/internal/config"
	"github.com/origadmin/tsdgen/internal/dbenum"
	"github.com/origadmin/tsdgen/internal/ident"
	"github.com/origadmin/tsdgen/internal/metadata"
	"github.com/origadmin/tsdgen/internal/model"
	"github.com/origadmin/tsdgen/internal/render"
	"github.com/origadmin/tsdgen/internal/translator"
)

const fileExtension = ".d.ts"

// Summary reports what a run produced.
type Summary struct {
	Interfaces int
	Enums      int
}

// Emitter owns one generation run.
type Emitter struct {
	cfg      *config.Config
	provider *metadata.Provider
	logger   *zap.SugaredLogger
}

func New(cfg *config.Config, provider *metadata.Provider, logger *zap.SugaredLogger) *Emitter {
	return &Emitter{cfg: cfg, provider: provider, logger: logger}
}

// Run generates declaration files for every exported root type. One task per
// root; any failure aborts the whole generation phase. Already-written files
// are not rolled back.
func (e *Emitter) Run(ctx context.Context) (Summary, error) {
	var summary Summary
	if len(e.cfg.Packages) == 0 {
		return summary, nil
	}

	roots, err := e.provider.DiscoverExportRoots(ctx, e.cfg.Packages)
	if err != nil {
		return summary, err
	}
	available, err := e.provider.CollectAvailableTypes(ctx, e.cfg.Packages)
	if err != nil {
		return summary, err
	}
	if len(roots) == 0 {
		e.logger.Warnw("no export markers found", "packages", strings.Join(e.cfg.Packages, ", "))
		return summary, nil
	}

	if err := os.MkdirAll(e.cfg.OutputDir, 0o755); err != nil {
		return summary, errors.Wrapf(err, "failed to create output directory %q", e.cfg.OutputDir)
	}

	policy := e.cfg.Policy()
	tr := translator.New(policy, available, e.logger)

	// Translate is safe for concurrent use; each artifact goes to its own
	// file, so completion order is irrelevant.
	artifacts := make([]*model.Artifact, len(roots))
	g, ctx := errgroup.WithContext(ctx)
	for i, root := range roots {
		i, root := i, root
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			artifact := tr.Translate(root)
			if err := e.writeArtifact(artifact, policy); err != nil {
				return err
			}
			artifacts[i] = artifact
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary, err
	}

	var interfaceNames, enumNames []string
	for _, a := range artifacts {
		switch a.Root.Kind {
		case model.DeclEnum:
			summary.Enums++
			enumNames = append(enumNames, a.Root.TargetName)
		default:
			summary.Interfaces++
			interfaceNames = append(interfaceNames, a.Root.TargetName)
		}
	}

	if policy.EmitIndexManifests {
		if err := writeManifest(e.cfg.OutputDir, interfaceNames, enumNames); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (e *Emitter) writeArtifact(a *model.Artifact, policy translator.Policy) error {
	path := filepath.Join(e.cfg.OutputDir, ident.LowerFirst(a.Root.TargetName)+fileExtension)
	text := render.File(a, policy.EmitHeaderComment)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write declaration file %q", path)
	}
	e.logger.Infow("wrote declaration", "file", path, "nested", len(a.Nested))
	return nil
}

// RunDatabaseEnums synthesizes and writes database-backed enum declarations.
// Queries run sequentially on the shared connection.
func (e *Emitter) RunDatabaseEnums(ctx context.Context, db *sql.DB) (Summary, error) {
	var summary Summary
	sources := e.cfg.Sources()
	if len(sources) == 0 {
		return summary, nil
	}

	decls, err := dbenum.New(db, e.logger).Synthesize(ctx, sources)
	if err != nil {
		return summary, err
	}
	if len(decls) == 0 {
		return summary, nil
	}

	if err := os.MkdirAll(e.cfg.EnumOutputDir, 0o755); err != nil {
		return summary, errors.Wrapf(err, "failed to create enum output directory %q", e.cfg.EnumOutputDir)
	}

	policy := e.cfg.Policy()
	var names []string
	for _, decl := range decls {
		path := filepath.Join(e.cfg.EnumOutputDir, ident.LowerFirst(decl.TargetName)+fileExtension)
		text := render.File(&model.Artifact{Root: decl}, policy.EmitHeaderComment)
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return summary, errors.Wrapf(err, "failed to write enum file %q", path)
		}
		e.logger.Infow("wrote enum declaration", "file", path)
		names = append(names, decl.TargetName)
		summary.Enums++
	}

	if policy.EmitIndexManifests {
		if err := writeManifest(e.cfg.EnumOutputDir, nil, names); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// writeManifest writes the per-category barrel file re-exporting every
// generated name from its own file, sorted by name. Interfaces are type-only
// exports; enums are value exports.
func writeManifest(dir string, interfaceNames, enumNames []string) error {
	var sb strings.Builder
	sb.WriteString(render.Header(""))
	sb.WriteString("\n")

	writeExports(&sb, "export type", interfaceNames)
	writeExports(&sb, "export", enumNames)

	path := filepath.Join(dir, "index"+fileExtension)
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write index manifest %q", path)
	}
	return nil
}

func writeExports(sb *strings.Builder, keyword string, names []string) {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)
	for _, name := range sorted {
		fmt.Fprintf(sb, "%s { %s } from './%s';\n", keyword, name, ident.LowerFirst(name))
	}
}
