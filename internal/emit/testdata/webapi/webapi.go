package webapi

//go:tsdgen:export
type Profile struct {
	ID    int64
	Name  string
	Roles []Role
}

type Role struct {
	RoleID   int64
	RoleName string
}

//go:tsdgen:export
type Visibility int

const (
	VisibilityPublic  Visibility = 1
	VisibilityPrivate Visibility = 2
)
