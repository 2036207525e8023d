// Package render formats resolved declarations as TypeScript declaration
// text. Rendering is pure and never fails: it only ever consumes
// already-resolved field lists.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/origadmin/tsdgen/internal/model"
)

// Field is one already-resolved interface field.
type Field struct {
	Name     string
	Optional bool
	Type     string
}

// Interface renders an interface declaration body. Nested declarations are
// emitted without the export keyword; only root declarations are exported.
func Interface(name string, exported bool, fields []Field) string {
	var sb strings.Builder
	if exported {
		sb.WriteString("export ")
	}
	sb.WriteString("interface ")
	sb.WriteString(name)
	sb.WriteString(" {\n")
	for _, f := range fields {
		mark := ""
		if f.Optional {
			mark = "?"
		}
		fmt.Fprintf(&sb, "  %s%s: %s;\n", f.Name, mark, f.Type)
	}
	sb.WriteString("}")
	return sb.String()
}

// Enum renders an enum declaration with explicit member values. No trailing
// comma after the last member.
func Enum(name string, members []model.EnumMember) string {
	var sb strings.Builder
	sb.WriteString("export enum ")
	sb.WriteString(name)
	sb.WriteString(" {\n")
	for i, m := range members {
		fmt.Fprintf(&sb, "  %s = %d", m.Name, m.Value)
		if i < len(members)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// Header returns the generated-file comment block.
func Header(source string) string {
	var sb strings.Builder
	sb.WriteString("// Code generated by tsdgen. DO NOT EDIT.\n")
	if source != "" {
		fmt.Fprintf(&sb, "// Source: %s\n", source)
	}
	return sb.String()
}

// File assembles the full artifact text: optional header, nested declarations
// sorted lexicographically by target name, then the root declaration.
func File(a *model.Artifact, withHeader bool) string {
	var sb strings.Builder
	if withHeader {
		source := ""
		if a.Root.SourceType != nil {
			source = a.Root.SourceType.QualifiedName
		}
		sb.WriteString(Header(source))
		sb.WriteString("\n")
	}

	nested := make([]*model.GeneratedDeclaration, len(a.Nested))
	copy(nested, a.Nested)
	sort.Slice(nested, func(i, j int) bool {
		return nested[i].TargetName < nested[j].TargetName
	})

	for _, d := range nested {
		sb.WriteString(d.BodyText)
		sb.WriteString("\n\n")
	}
	sb.WriteString(a.Root.BodyText)
	sb.WriteString("\n")
	return sb.String()
}
