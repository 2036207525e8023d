// Package metadata loads Go packages and exposes their reflected shape as
// type descriptors. It is the only component that touches go/types; everything
// downstream works on the model package.
package metadata

import (
	"context"
	"go/ast"
	"go/token"
	"go/types"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"github.com/origadmin/tsdgen/internal/model"
)

// Export marker. A type declaration carrying this directive becomes a root:
//
//	//go:tsdgen:export
//	//go:tsdgen:export,name=CustomName
const exportDirectivePrefix = "//go:tsdgen:export"

var loadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
	packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports

// Provider loads package metadata for one generation run. The package cache
// and the available-types index are scoped to the provider instance; repeated
// or parallel runs each get their own provider.
type Provider struct {
	logger *zap.SugaredLogger

	mu    sync.Mutex
	cache map[string]*packages.Package // keyed by package path
	order []string                     // cache keys, sorted
}

// NewProvider creates a provider with an empty per-run cache.
func NewProvider(logger *zap.SugaredLogger) *Provider {
	return &Provider{
		logger: logger,
		cache:  make(map[string]*packages.Package),
	}
}

// load fetches the given package patterns, fanning the loads out concurrently.
// Each task collects into its own slot; the shared cache is only merged after
// all tasks have joined, so no plain map is ever written from concurrent
// goroutines. Patterns already in the cache are served from it.
func (p *Provider) load(ctx context.Context, patterns []string) ([]*packages.Package, error) {
	g, ctx := errgroup.WithContext(ctx)
	results := make([][]*packages.Package, len(patterns))

	for i, pattern := range patterns {
		i, pattern := i, pattern
		g.Go(func() error {
			cfg := &packages.Config{
				Mode:    loadMode,
				Context: ctx,
				Tests:   false,
			}
			pkgs, err := packages.Load(cfg, pattern)
			if err != nil {
				return errors.Wrapf(err, "failed to load package pattern %q", pattern)
			}
			if len(pkgs) == 0 {
				return errors.Newf("no packages found for pattern %q", pattern)
			}
			// A pattern that resolves to no Go files at all is a boundary
			// error (module not found); packages with files but type errors
			// are tolerated further down.
			for _, pkg := range pkgs {
				if len(pkg.GoFiles) == 0 && len(pkg.Errors) > 0 {
					return errors.Newf("failed to load package pattern %q: %v", pattern, pkg.Errors[0])
				}
			}
			results[i] = pkgs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pkgs := range results {
		for _, pkg := range pkgs {
			if _, ok := p.cache[pkg.PkgPath]; ok {
				continue
			}
			// Partial load tolerance: a package with type errors still
			// contributes the subset of types that resolved.
			if len(pkg.Errors) > 0 {
				p.logger.Warnw("package loaded with errors, continuing with partial type information",
					"package", pkg.PkgPath, "errors", len(pkg.Errors))
			}
			if pkg.Types == nil {
				p.logger.Warnw("package has no type information, skipping", "package", pkg.PkgPath)
				continue
			}
			p.cache[pkg.PkgPath] = pkg
			p.order = append(p.order, pkg.PkgPath)
		}
	}
	sort.Strings(p.order)

	loaded := make([]*packages.Package, 0, len(p.order))
	for _, path := range p.order {
		loaded = append(loaded, p.cache[path])
	}
	return loaded, nil
}

// DiscoverExportRoots returns every type in the given package patterns that
// carries the export marker directive, sorted by qualified name.
func (p *Provider) DiscoverExportRoots(ctx context.Context, patterns []string) ([]*model.TypeDescriptor, error) {
	pkgs, err := p.load(ctx, patterns)
	if err != nil {
		return nil, err
	}
	b := newBuilder(pkgs, p.logger)

	var roots []*model.TypeDescriptor
	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			for _, decl := range file.Decls {
				gd, ok := decl.(*ast.GenDecl)
				if !ok || gd.Tok != token.TYPE {
					continue
				}
				for _, spec := range gd.Specs {
					ts, ok := spec.(*ast.TypeSpec)
					if !ok {
						continue
					}
					directive, ok := exportDirective(gd.Doc, ts.Doc)
					if !ok {
						continue
					}
					root := p.describeRoot(b, pkg, ts.Name.Name, directive)
					if root != nil {
						roots = append(roots, root)
					}
				}
			}
		}
	}

	sort.Slice(roots, func(i, j int) bool {
		return roots[i].QualifiedName < roots[j].QualifiedName
	})
	return roots, nil
}

func (p *Provider) describeRoot(b *builder, pkg *packages.Package, name, directive string) *model.TypeDescriptor {
	obj := pkg.Types.Scope().Lookup(name)
	if obj == nil {
		p.logger.Warnw("exported type not found in package scope", "package", pkg.PkgPath, "type", name)
		return nil
	}
	tn, ok := obj.(*types.TypeName)
	if !ok {
		return nil
	}
	named, ok := unalias(tn.Type()).(*types.Named)
	if !ok {
		p.logger.Warnw("export marker on non-named type, skipping", "package", pkg.PkgPath, "type", name)
		return nil
	}
	if named.TypeParams().Len() > 0 {
		p.logger.Warnw("export marker on generic type definition, skipping", "package", pkg.PkgPath, "type", name)
		return nil
	}

	desc := b.describeNamed(named)
	if desc.Kind != model.KindClass && desc.Kind != model.KindEnum {
		p.logger.Warnw("export marker on unsupported kind, skipping",
			"package", pkg.PkgPath, "type", name, "kind", desc.Kind.String())
		return nil
	}
	if override := directiveName(directive); override != "" {
		desc.ExportName = override
	}
	return desc
}

// CollectAvailableTypes returns every exported, concrete, non-generic class
// or enum from the given patterns, keyed by both simple and qualified name.
// The translator consults this index to decide whether a referenced type
// belongs to the scanned universe.
func (p *Provider) CollectAvailableTypes(ctx context.Context, patterns []string) (map[string]*model.TypeDescriptor, error) {
	pkgs, err := p.load(ctx, patterns)
	if err != nil {
		return nil, err
	}
	b := newBuilder(pkgs, p.logger)

	available := make(map[string]*model.TypeDescriptor)
	for _, pkg := range pkgs {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || !tn.Exported() || tn.IsAlias() {
				continue
			}
			named, ok := unalias(tn.Type()).(*types.Named)
			if !ok || named.TypeParams().Len() > 0 {
				continue
			}
			desc := b.describeNamed(named)
			if desc.Kind != model.KindClass && desc.Kind != model.KindEnum {
				continue
			}
			available[desc.SimpleName] = desc
			available[desc.QualifiedName] = desc
		}
	}
	return available, nil
}

// exportDirective finds the export marker in the declaration's doc comments.
// The marker may sit on the type spec or on the enclosing type block.
func exportDirective(groups ...*ast.CommentGroup) (string, bool) {
	for _, group := range groups {
		if group == nil {
			continue
		}
		for _, comment := range group.List {
			if strings.HasPrefix(comment.Text, exportDirectivePrefix) {
				return comment.Text, true
			}
		}
	}
	return "", false
}

// directiveName extracts the name= override from an export directive.
func directiveName(directive string) string {
	rest := strings.TrimPrefix(directive, exportDirectivePrefix)
	for _, part := range strings.Split(rest, ",") {
		if value, ok := strings.CutPrefix(strings.TrimSpace(part), "name="); ok {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
