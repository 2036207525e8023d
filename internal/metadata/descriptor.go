package metadata

import (
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"reflect"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/origadmin/tsdgen/internal/ident"
	"github.com/origadmin/tsdgen/internal/model"
)

// wellKnown maps qualified names of external types that have a fixed target
// representation and must not be treated as classes.
var wellKnown = map[string]model.Kind{
	"time.Time":                   model.KindDate,
	"time.Duration":               model.KindDuration,
	"github.com/google/uuid.UUID": model.KindGUID,
}

// builder converts go/types objects into model descriptors. It caches by
// qualified name and registers a descriptor before filling its properties, so
// self-referential and mutually-referential types terminate.
type builder struct {
	logger  *zap.SugaredLogger
	scanned map[string]bool                  // package paths in this run's universe
	cache   map[string]*model.TypeDescriptor // keyed by qualified name
	enums   map[string][]model.EnumMember    // qualified type name -> members, declaration order
}

func newBuilder(pkgs []*packages.Package, logger *zap.SugaredLogger) *builder {
	b := &builder{
		logger:  logger,
		scanned: make(map[string]bool, len(pkgs)),
		cache:   make(map[string]*model.TypeDescriptor),
		enums:   make(map[string][]model.EnumMember),
	}
	for _, pkg := range pkgs {
		b.scanned[pkg.PkgPath] = true
	}
	for _, pkg := range pkgs {
		b.scanEnumMembers(pkg)
	}
	return b
}

// scanEnumMembers walks const blocks to collect enum members in declaration
// order with their exact integral values. Scope iteration cannot be used here:
// it is alphabetical, and member order must follow the source.
func (b *builder) scanEnumMembers(pkg *packages.Package) {
	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.CONST {
				continue
			}
			for _, spec := range gd.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				for _, name := range vs.Names {
					cst, ok := pkg.TypesInfo.Defs[name].(*types.Const)
					if !ok {
						continue
					}
					named, ok := unalias(cst.Type()).(*types.Named)
					if !ok || named.Obj().Pkg() == nil {
						continue
					}
					basic, ok := named.Underlying().(*types.Basic)
					if !ok || basic.Info()&types.IsInteger == 0 {
						continue
					}
					value, exact := constant.Int64Val(cst.Val())
					if !exact {
						continue
					}
					qualified := named.Obj().Pkg().Path() + "." + named.Obj().Name()
					b.enums[qualified] = append(b.enums[qualified], model.EnumMember{
						Name:  name.Name,
						Value: value,
					})
				}
			}
		}
	}
}

// describeNamed resolves a named type to its descriptor.
func (b *builder) describeNamed(named *types.Named) *model.TypeDescriptor {
	obj := named.Obj()
	qualified := obj.Name()
	if obj.Pkg() != nil {
		qualified = obj.Pkg().Path() + "." + obj.Name()
	}
	if cached, ok := b.cache[qualified]; ok {
		return cached
	}

	desc := &model.TypeDescriptor{
		QualifiedName: qualified,
		SimpleName:    obj.Name(),
	}
	if obj.Pkg() != nil && b.scanned[obj.Pkg().Path()] {
		desc.Origin = model.OriginScannedModule
	}
	b.cache[qualified] = desc

	if kind, ok := wellKnown[qualified]; ok {
		desc.Kind = kind
		desc.Origin = model.OriginExternal
		return desc
	}

	switch underlying := named.Underlying().(type) {
	case *types.Struct:
		desc.Kind = model.KindClass
		// External classes resolve to the untyped fallback; their property
		// graphs are never walked.
		if desc.Origin == model.OriginScannedModule {
			desc.Properties = b.buildProperties(underlying)
		}
	case *types.Basic:
		if members, ok := b.enums[qualified]; ok {
			desc.Kind = model.KindEnum
			desc.EnumMembers = members
		} else {
			desc.Kind = basicKind(underlying)
		}
	case *types.Interface:
		if underlying.Empty() {
			desc.Kind = model.KindUntyped
		} else {
			desc.Kind = model.KindInterface
		}
	default:
		desc.Kind = model.KindUnknown
	}
	return desc
}

// buildProperties converts exported struct fields in declaration order.
// Embedded fields are skipped.
func (b *builder) buildProperties(s *types.Struct) []*model.PropertyDescriptor {
	props := make([]*model.PropertyDescriptor, 0, s.NumFields())
	for i := 0; i < s.NumFields(); i++ {
		f := s.Field(i)
		if !f.Exported() || f.Embedded() {
			continue
		}

		tag := reflect.StructTag(s.Tag(i))
		shape := b.buildShape(f.Type())

		prop := &model.PropertyDescriptor{
			Name:  f.Name(),
			Shape: shape,
		}

		if jsonName, ignored := parseJSONTag(tag.Get("json")); ignored {
			prop.IsIgnoredBySerializer = true
		} else if jsonName != "" && ident.IsValid(jsonName) {
			prop.Name = jsonName
		}

		prop.IsNavigationCandidate = isNavigationCandidate(tag, shape)
		props = append(props, prop)
	}
	return props
}

// buildShape lowers a go/types type into the shape algebra: pointers become
// nullable wrappers, slices and arrays become array wrappers, maps become
// dictionaries, everything else is a direct reference.
func (b *builder) buildShape(t types.Type) *model.Shape {
	switch t := unalias(t).(type) {
	case *types.Pointer:
		return model.NullableOf(b.buildShape(t.Elem()))
	case *types.Slice:
		return model.ArrayOf(b.buildShape(t.Elem()))
	case *types.Array:
		return model.ArrayOf(b.buildShape(t.Elem()))
	case *types.Map:
		return model.DictOf(b.buildShape(t.Key()), b.buildShape(t.Elem()))
	case *types.Named:
		return b.namedShape(t)
	case *types.Basic:
		return model.DirectOf(b.basicDescriptor(t))
	case *types.Interface:
		if t.Empty() {
			return model.DirectOf(b.singleton("any", model.KindUntyped))
		}
		return model.DirectOf(b.singleton("interface", model.KindInterface))
	default:
		return model.DirectOf(b.singleton(t.String(), model.KindUnknown))
	}
}

// namedShape resolves a named type reference. Named wrappers around slices,
// maps and pointers keep their structural form; named structs, basics and
// interfaces resolve to the type's own descriptor.
func (b *builder) namedShape(named *types.Named) *model.Shape {
	if _, ok := wellKnown[qualifiedNameOf(named)]; ok {
		return model.DirectOf(b.describeNamed(named))
	}
	switch named.Underlying().(type) {
	case *types.Struct, *types.Basic, *types.Interface:
		return model.DirectOf(b.describeNamed(named))
	default:
		return b.buildShape(named.Underlying())
	}
}

func (b *builder) basicDescriptor(basic *types.Basic) *model.TypeDescriptor {
	return b.singleton(basic.Name(), basicKind(basic))
}

// singleton caches descriptors for builtins and other identity-free types
// under a reserved qualified-name prefix.
func (b *builder) singleton(name string, kind model.Kind) *model.TypeDescriptor {
	key := "builtin." + name
	if cached, ok := b.cache[key]; ok {
		return cached
	}
	desc := &model.TypeDescriptor{
		QualifiedName: key,
		SimpleName:    name,
		Kind:          kind,
	}
	b.cache[key] = desc
	return desc
}

func basicKind(basic *types.Basic) model.Kind {
	info := basic.Info()
	switch {
	case info&types.IsString != 0:
		return model.KindString
	case info&types.IsBoolean != 0:
		return model.KindBool
	case info&types.IsNumeric != 0:
		return model.KindNumber
	default:
		return model.KindUntyped
	}
}

func qualifiedNameOf(named *types.Named) string {
	obj := named.Obj()
	if obj.Pkg() == nil {
		return obj.Name()
	}
	return obj.Pkg().Path() + "." + obj.Name()
}

// parseJSONTag splits a json struct tag into its name part and the ignored
// marker. `json:"-"` means excluded; `json:"-,"` means the literal name "-".
func parseJSONTag(tag string) (name string, ignored bool) {
	if tag == "" {
		return "", false
	}
	parts := strings.Split(tag, ",")
	if parts[0] == "-" && len(parts) == 1 {
		return "", true
	}
	if parts[0] == "-" {
		return "", false
	}
	return parts[0], false
}

// isNavigationCandidate is the navigation-property heuristic: the field
// carries an ORM back-reference tag and is declared as a nullable or
// collection reference to a class. It is a pure predicate over the descriptor
// so the heuristic can be swapped without touching resolution.
func isNavigationCandidate(tag reflect.StructTag, shape *model.Shape) bool {
	gorm := tag.Get("gorm")
	if !strings.Contains(gorm, "foreignKey") && !strings.Contains(gorm, "references") {
		return false
	}
	switch shape.Form {
	case model.ShapeNullable, model.ShapeArray:
		elem := shape.Elem
		for elem != nil && elem.Form == model.ShapeNullable {
			elem = elem.Elem
		}
		return elem != nil && elem.Form == model.ShapeDirect &&
			elem.Type != nil && elem.Type.Kind == model.KindClass
	default:
		return false
	}
}
