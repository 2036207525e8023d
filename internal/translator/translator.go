// Package translator lowers reflected type descriptors into TypeScript
// declarations. Given a root type it produces the root declaration plus the
// closed, deduplicated set of nested declarations the root transitively
// references.
//
// Resolution is total: every shape resolves to some rendered text, degrading
// to "any" rather than failing, because code generation must stay total over
// arbitrary type graphs.
package translator

import (
	"sort"

	"go.uber.org/zap"

	"github.com/origadmin/tsdgen/internal/ident"
	"github.com/origadmin/tsdgen/internal/model"
	"github.com/origadmin/tsdgen/internal/render"
)

// Policy is the translation configuration. All options are explicit; the
// loader fills every field before the translator sees it.
type Policy struct {
	// UseCamelCaseNames lowercases the first character of emitted field names.
	UseCamelCaseNames bool

	// GenerateNestedDeclarations inlines referenced scanned classes into the
	// artifact. When false, such references fall back to "any".
	GenerateNestedDeclarations bool

	// ExcludeNavigationCandidates drops ORM back-reference properties.
	ExcludeNavigationCandidates bool

	// IncludeIgnoredProperties keeps serializer-ignored properties, forcing
	// them optional. When false they are dropped.
	IncludeIgnoredProperties bool

	// CustomTypeMappings maps a qualified or simple source-type name to
	// literal target-type text. Highest precedence, short-circuits all other
	// resolution rules.
	CustomTypeMappings map[string]string

	// EmitHeaderComment and EmitIndexManifests shape the output files only;
	// they have no effect on resolution.
	EmitHeaderComment  bool
	EmitIndexManifests bool
}

// primitiveText is the fixed mapping from value kinds to TypeScript text.
var primitiveText = map[model.Kind]string{
	model.KindString:   "string",
	model.KindBool:     "boolean",
	model.KindNumber:   "number",
	model.KindDate:     "Date",
	model.KindDuration: "string",
	model.KindGUID:     "string",
	model.KindUntyped:  "any",
}

// fallbackText covers unresolved kinds and disabled nesting.
const fallbackText = "any"

// dictFallbackText is used for dictionaries whose key is not string-like:
// non-string keys have no faithful structural target.
const dictFallbackText = "{ [key: string]: any }"

// Translator resolves root types against the scanned-type universe. It holds
// no per-run state of its own; Translate is safe for concurrent use because
// the seen set and nested collection live on the call stack.
type Translator struct {
	policy    Policy
	available map[string]*model.TypeDescriptor
	logger    *zap.SugaredLogger
}

// New builds a translator over the available-types index produced by the
// metadata provider, keyed by both simple and qualified name.
func New(policy Policy, available map[string]*model.TypeDescriptor, logger *zap.SugaredLogger) *Translator {
	if available == nil {
		available = map[string]*model.TypeDescriptor{}
	}
	return &Translator{policy: policy, available: available, logger: logger}
}

// Translate resolves one root type into its artifact.
func (t *Translator) Translate(root *model.TypeDescriptor) *model.Artifact {
	if root.Kind == model.KindEnum {
		return &model.Artifact{Root: &model.GeneratedDeclaration{
			TargetName: root.TargetName(),
			Kind:       model.DeclEnum,
			BodyText:   render.Enum(root.TargetName(), root.EnumMembers),
			SourceType: root,
		}}
	}

	// The root itself is seeded into the seen set so self-referential roots
	// never re-emit themselves as nested declarations.
	seen := map[string]bool{root.QualifiedName: true}
	var nested []*model.GeneratedDeclaration

	fields := t.resolveProperties(root, seen, &nested)

	sort.Slice(nested, func(i, j int) bool {
		return nested[i].TargetName < nested[j].TargetName
	})

	return &model.Artifact{
		Root: &model.GeneratedDeclaration{
			TargetName: root.TargetName(),
			Kind:       model.DeclInterface,
			BodyText:   render.Interface(root.TargetName(), true, fields),
			SourceType: root,
		},
		Nested: nested,
	}
}

// resolveProperties filters and resolves a type's properties in declaration
// order. Nested declarations discovered along the way accumulate into the
// shared per-artifact collection.
func (t *Translator) resolveProperties(td *model.TypeDescriptor, seen map[string]bool, nested *[]*model.GeneratedDeclaration) []render.Field {
	fields := make([]render.Field, 0, len(td.Properties))
	for _, p := range td.Properties {
		if t.policy.ExcludeNavigationCandidates && p.IsNavigationCandidate {
			continue
		}
		if p.IsIgnoredBySerializer && !t.policy.IncludeIgnoredProperties {
			continue
		}

		name := p.Name
		if t.policy.UseCamelCaseNames {
			name = ident.LowerFirst(name)
		}

		fields = append(fields, render.Field{
			Name:     name,
			Optional: t.isOptional(p),
			Type:     t.resolveShape(p.Shape, seen, nested),
		})
	}
	return fields
}

// isOptional applies the optionality rule: only a non-nullable value-kind
// shape is required. Nullable wrappers, reference shapes (classes, arrays,
// dictionaries, strings) and retained serializer-ignored properties are all
// optional.
func (t *Translator) isOptional(p *model.PropertyDescriptor) bool {
	if p.IsIgnoredBySerializer {
		return true
	}
	s := p.Shape
	if s == nil {
		return true
	}
	return !(s.Form == model.ShapeDirect && s.Type != nil && s.Type.Kind.IsValue())
}

// resolveShape produces the rendered type text for a property shape.
func (t *Translator) resolveShape(s *model.Shape, seen map[string]bool, nested *[]*model.GeneratedDeclaration) string {
	if s == nil {
		return fallbackText
	}
	switch s.Form {
	case model.ShapeNullable:
		// Nullability is consumed entirely by the optionality rule.
		return t.resolveShape(s.Elem, seen, nested)
	case model.ShapeArray:
		return t.resolveShape(s.Elem, seen, nested) + "[]"
	case model.ShapeDict:
		if t.isStringKey(s.Key) {
			return "Record<string, " + t.resolveShape(s.Elem, seen, nested) + ">"
		}
		return dictFallbackText
	default:
		return t.resolveType(s.Type, seen, nested)
	}
}

func (t *Translator) isStringKey(key *model.Shape) bool {
	return key != nil && key.Form == model.ShapeDirect && key.Type != nil && key.Type.Kind == model.KindString
}

// resolveType maps a direct type reference to target text and, for scanned
// classes, queues the nested declaration.
func (t *Translator) resolveType(td *model.TypeDescriptor, seen map[string]bool, nested *[]*model.GeneratedDeclaration) string {
	if td == nil {
		return fallbackText
	}

	if text, ok := t.policy.CustomTypeMappings[td.QualifiedName]; ok {
		return text
	}
	if text, ok := t.policy.CustomTypeMappings[td.SimpleName]; ok {
		return text
	}

	switch td.Kind {
	case model.KindEnum:
		return td.TargetName()
	case model.KindClass:
		if td.Origin != model.OriginScannedModule {
			// A reference built outside the scanned universe may still name a
			// scanned type; the available-types index decides.
			upgraded, ok := t.available[td.QualifiedName]
			if !ok || upgraded.Kind != model.KindClass || upgraded.Origin != model.OriginScannedModule {
				return fallbackText
			}
			td = upgraded
		}
		if !t.policy.GenerateNestedDeclarations {
			return fallbackText
		}
		t.collectNested(td, seen, nested)
		return td.TargetName()
	}

	if text, ok := primitiveText[td.Kind]; ok {
		return text
	}
	return fallbackText
}

// collectNested emits a nested declaration for a scanned class exactly once
// per artifact. The type is marked seen before its properties are resolved,
// which breaks cycles and diamond dependencies; the actual declaration is
// appended postorder, once its own property list is complete.
func (t *Translator) collectNested(td *model.TypeDescriptor, seen map[string]bool, nested *[]*model.GeneratedDeclaration) {
	if seen[td.QualifiedName] {
		return
	}
	seen[td.QualifiedName] = true

	fields := t.resolveProperties(td, seen, nested)
	*nested = append(*nested, &model.GeneratedDeclaration{
		TargetName: td.TargetName(),
		Kind:       model.DeclInterface,
		BodyText:   render.Interface(td.TargetName(), false, fields),
		SourceType: td,
	})

	if t.logger != nil {
		t.logger.Debugw("collected nested declaration", "type", td.QualifiedName)
	}
}
