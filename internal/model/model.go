// Package model defines the type descriptors exchanged between the metadata
// provider, the translator and the renderer. Descriptors are built fresh per
// run and are immutable once handed to the translator.
package model

// Kind classifies a source type.
type Kind int

const (
	KindUnknown Kind = iota
	KindClass
	KindInterface
	KindEnum
	KindString
	KindBool
	KindNumber
	KindDate
	KindDuration
	KindGUID
	KindUntyped
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "Class"
	case KindInterface:
		return "Interface"
	case KindEnum:
		return "Enum"
	case KindString:
		return "String"
	case KindBool:
		return "Bool"
	case KindNumber:
		return "Number"
	case KindDate:
		return "Date"
	case KindDuration:
		return "Duration"
	case KindGUID:
		return "GUID"
	case KindUntyped:
		return "Untyped"
	default:
		return "Unknown"
	}
}

// IsValue reports whether the kind is a value kind. Value kinds are the only
// kinds that can yield required fields; everything else is a reference shape
// and renders optional.
func (k Kind) IsValue() bool {
	switch k {
	case KindBool, KindNumber, KindDate, KindDuration, KindGUID, KindEnum:
		return true
	default:
		return false
	}
}

// Origin states where a type was found. Only scanned-module types may be
// emitted as nested declarations.
type Origin int

const (
	OriginExternal Origin = iota
	OriginScannedModule
)

// TypeDescriptor is the identity and shape of a reflected type.
type TypeDescriptor struct {
	// QualifiedName disambiguates types sharing a simple name,
	// e.g. "github.com/acme/app/models.User".
	QualifiedName string
	SimpleName    string
	Kind          Kind

	// Properties in declaration order. The order is preserved verbatim
	// because it determines emitted field order.
	Properties []*PropertyDescriptor

	// EnumMembers in declaration order, set only when Kind is KindEnum.
	EnumMembers []EnumMember

	// ExportName overrides SimpleName when the export marker supplied one.
	ExportName string

	Origin Origin
}

// TargetName returns the name the declaration is emitted under.
func (t *TypeDescriptor) TargetName() string {
	if t.ExportName != "" {
		return t.ExportName
	}
	return t.SimpleName
}

// EnumMember is one (name, integral value) pair of an enum type.
type EnumMember struct {
	Name  string
	Value int64
}

// PropertyDescriptor is a single property of a class type.
type PropertyDescriptor struct {
	Name  string
	Shape *Shape

	// IsNavigationCandidate marks ORM-style lazy back-references,
	// detected by the metadata provider's heuristic.
	IsNavigationCandidate bool

	// IsIgnoredBySerializer marks properties excluded from the runtime's
	// own serialization contract.
	IsIgnoredBySerializer bool
}

// ShapeForm discriminates the structural form of a declared type.
type ShapeForm int

const (
	ShapeDirect ShapeForm = iota
	ShapeNullable
	ShapeArray
	ShapeDict
)

// Shape is the declared type of a property: either a direct type reference or
// a nullable/array/dictionary wrapper around further shapes.
type Shape struct {
	Form ShapeForm

	// Type is set for ShapeDirect.
	Type *TypeDescriptor

	// Elem is the wrapped shape for ShapeNullable and ShapeArray, and the
	// value shape for ShapeDict.
	Elem *Shape

	// Key is the key shape for ShapeDict.
	Key *Shape
}

// DirectOf wraps a type descriptor in a direct shape.
func DirectOf(t *TypeDescriptor) *Shape {
	return &Shape{Form: ShapeDirect, Type: t}
}

// NullableOf marks a shape as nullable.
func NullableOf(s *Shape) *Shape {
	return &Shape{Form: ShapeNullable, Elem: s}
}

// ArrayOf wraps a shape in an array.
func ArrayOf(s *Shape) *Shape {
	return &Shape{Form: ShapeArray, Elem: s}
}

// DictOf builds a dictionary shape from key and value shapes.
func DictOf(key, value *Shape) *Shape {
	return &Shape{Form: ShapeDict, Key: key, Elem: value}
}

// DeclKind is the kind of an emitted declaration.
type DeclKind int

const (
	DeclInterface DeclKind = iota
	DeclEnum
)

func (k DeclKind) String() string {
	if k == DeclEnum {
		return "enum"
	}
	return "interface"
}

// GeneratedDeclaration is one rendered declaration.
type GeneratedDeclaration struct {
	TargetName string
	Kind       DeclKind
	BodyText   string

	// SourceType is nil for declarations synthesized from the database.
	SourceType *TypeDescriptor
}

// Artifact is the full output for one root type: the root declaration plus
// every nested declaration it transitively requires, already deduplicated and
// sorted lexicographically by target name.
type Artifact struct {
	Root   *GeneratedDeclaration
	Nested []*GeneratedDeclaration
}
