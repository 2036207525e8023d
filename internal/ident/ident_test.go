package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemberName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Active User", "ActiveUser"},
		{"Inactive-User", "InactiveUser"},
		{"active_user", "ActiveUser"},
		{"pending  approval", "PendingApproval"},
		{"mixed-case_and space", "MixedCaseAndSpace"},
		{"already", "Already"},
		{"", "Unknown"},
		{"   ", "Unknown"},
		{"---", "Unknown"},
		{"2nd Level", "Value2ndLevel"},
		{"3", "Value3"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MemberName(tt.in))
		})
	}
}

func TestLowerFirst(t *testing.T) {
	assert.Equal(t, "userProfile", LowerFirst("UserProfile"))
	assert.Equal(t, "iD", LowerFirst("ID"))
	assert.Equal(t, "already", LowerFirst("already"))
	assert.Equal(t, "", LowerFirst(""))
}

func TestUpperFirst(t *testing.T) {
	assert.Equal(t, "User", UpperFirst("user"))
	assert.Equal(t, "", UpperFirst(""))
}

func TestIsValid(t *testing.T) {
	valid := []string{"name", "_name", "$ref", "name2", "snake_case", "camelCase"}
	for _, s := range valid {
		assert.True(t, IsValid(s), s)
	}
	invalid := []string{"", "2name", "with space", "with-dash", "with.dot"}
	for _, s := range invalid {
		assert.False(t, IsValid(s), s)
	}
}
