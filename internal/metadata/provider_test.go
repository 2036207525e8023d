package metadata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/origadmin/tsdgen/internal/model"
)

const samplePattern = "./testdata/sample"

func loadRoots(t *testing.T, p *Provider) []*model.TypeDescriptor {
	t.Helper()
	roots, err := p.DiscoverExportRoots(context.Background(), []string{samplePattern})
	require.NoError(t, err)
	return roots
}

func propByName(t *testing.T, td *model.TypeDescriptor, name string) *model.PropertyDescriptor {
	t.Helper()
	for _, p := range td.Properties {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("property %q not found on %s", name, td.QualifiedName)
	return nil
}

func TestDiscoverExportRoots(t *testing.T) {
	p := NewProvider(zap.NewNop().Sugar())
	roots := loadRoots(t, p)

	require.Len(t, roots, 2)

	// Sorted by qualified name: Status before User.
	status, user := roots[0], roots[1]
	assert.Equal(t, "Status", status.SimpleName)
	assert.Equal(t, "User", user.SimpleName)

	assert.Equal(t, model.KindEnum, status.Kind)
	assert.Equal(t, "AccountStatus", status.ExportName)
	assert.Equal(t, "AccountStatus", status.TargetName())
	assert.Equal(t, []model.EnumMember{
		{Name: "StatusActive", Value: 1},
		{Name: "StatusInactive", Value: 2},
		{Name: "StatusBanned", Value: 10},
	}, status.EnumMembers)

	assert.Equal(t, model.KindClass, user.Kind)
	assert.Equal(t, model.OriginScannedModule, user.Origin)
	assert.Equal(t, "", user.ExportName)
}

func TestUserPropertyShapes(t *testing.T) {
	p := NewProvider(zap.NewNop().Sugar())
	roots := loadRoots(t, p)
	user := roots[1]

	// Declaration order is preserved, unexported fields are dropped.
	names := make([]string, 0, len(user.Properties))
	for _, prop := range user.Properties {
		names = append(names, prop.Name)
	}
	assert.Equal(t, []string{
		"ID", "Name", "Email", "CreatedAt", "Tags", "Ratings", "ByCode",
		"Internal", "nick_name", "RoleID", "Role",
	}, names)

	id := propByName(t, user, "ID")
	assert.Equal(t, model.ShapeDirect, id.Shape.Form)
	assert.Equal(t, model.KindNumber, id.Shape.Type.Kind)

	email := propByName(t, user, "Email")
	assert.Equal(t, model.ShapeNullable, email.Shape.Form)
	assert.Equal(t, model.KindString, email.Shape.Elem.Type.Kind)

	created := propByName(t, user, "CreatedAt")
	assert.Equal(t, model.ShapeDirect, created.Shape.Form)
	assert.Equal(t, model.KindDate, created.Shape.Type.Kind)

	tags := propByName(t, user, "Tags")
	assert.Equal(t, model.ShapeArray, tags.Shape.Form)

	ratings := propByName(t, user, "Ratings")
	assert.Equal(t, model.ShapeDict, ratings.Shape.Form)
	assert.Equal(t, model.KindString, ratings.Shape.Key.Type.Kind)
	assert.Equal(t, model.KindNumber, ratings.Shape.Elem.Type.Kind)

	byCode := propByName(t, user, "ByCode")
	assert.Equal(t, model.ShapeDict, byCode.Shape.Form)
	assert.Equal(t, model.KindNumber, byCode.Shape.Key.Type.Kind)
}

func TestSerializerFlags(t *testing.T) {
	p := NewProvider(zap.NewNop().Sugar())
	user := loadRoots(t, p)[1]

	internal := propByName(t, user, "Internal")
	assert.True(t, internal.IsIgnoredBySerializer)

	// json tag renames, but only to valid identifiers.
	nick := propByName(t, user, "nick_name")
	assert.False(t, nick.IsIgnoredBySerializer)
}

func TestNavigationCandidateHeuristic(t *testing.T) {
	p := NewProvider(zap.NewNop().Sugar())
	user := loadRoots(t, p)[1]

	role := propByName(t, user, "Role")
	assert.True(t, role.IsNavigationCandidate)
	assert.Equal(t, model.ShapeNullable, role.Shape.Form)

	// The scalar foreign key column is not a navigation candidate.
	roleID := propByName(t, user, "RoleID")
	assert.False(t, roleID.IsNavigationCandidate)
}

func TestCollectAvailableTypes(t *testing.T) {
	p := NewProvider(zap.NewNop().Sugar())
	available, err := p.CollectAvailableTypes(context.Background(), []string{samplePattern})
	require.NoError(t, err)

	role, ok := available["Role"]
	require.True(t, ok, "Role should be available by simple name")
	assert.Equal(t, model.KindClass, role.Kind)
	assert.Equal(t, model.OriginScannedModule, role.Origin)

	qualified, ok := available[role.QualifiedName]
	require.True(t, ok, "Role should be available by qualified name")
	assert.Same(t, role, qualified)

	_, ok = available["Status"]
	assert.True(t, ok, "enums belong to the available universe")

	_, ok = available["User"]
	assert.True(t, ok)
}

func TestLoadFailureIsBoundaryError(t *testing.T) {
	p := NewProvider(zap.NewNop().Sugar())
	_, err := p.DiscoverExportRoots(context.Background(), []string{"./testdata/does-not-exist"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestDirectiveName(t *testing.T) {
	assert.Equal(t, "", directiveName("//go:tsdgen:export"))
	assert.Equal(t, "AccountStatus", directiveName("//go:tsdgen:export,name=AccountStatus"))
	assert.Equal(t, "X", directiveName("//go:tsdgen:export, name=X"))
}
