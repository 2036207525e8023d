package dbenum

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMock(t *testing.T) (*Synthesizer, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, zap.NewNop().Sugar()), mock
}

func TestQuoteIdent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"status", "status"},
		{"user_status", "user_status"},
		{"Status2", "Status2"},
		{"order", `"order"`},
		{"SELECT", `"SELECT"`},
		{"user", `"user"`},
		{"2fast", `"2fast"`},
		{"_hidden", `"_hidden"`},
		{"has space", `"has space"`},
		{"has-dash", `"has-dash"`},
		{`has"quote`, `"has""quote"`},
		{"", `""`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, QuoteIdent(tt.in))
		})
	}
}

func TestBuildQuery(t *testing.T) {
	src := Source{Name: "UserStatus", Table: "user_status", KeyColumn: "id", ValueColumn: "label"}
	assert.Equal(t, "SELECT id, label FROM user_status ORDER BY id", BuildQuery(src))

	src.Schema = "lookup"
	assert.Equal(t, "SELECT id, label FROM lookup.user_status ORDER BY id", BuildQuery(src))

	quoted := Source{Name: "Orders", Schema: "2024", Table: "order", KeyColumn: "key", ValueColumn: "value"}
	assert.Equal(t, `SELECT "key", "value" FROM "2024"."order" ORDER BY "key"`, BuildQuery(quoted))
}

func TestSynthesizeSanitizesMemberNames(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery("SELECT id, label FROM user_status ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "label"}).
			AddRow(1, "Active User").
			AddRow(2, "Inactive-User"))

	decls, err := s.Synthesize(context.Background(), []Source{
		{Name: "UserStatus", Table: "user_status", KeyColumn: "id", ValueColumn: "label"},
	})
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "UserStatus", decls[0].TargetName)
	assert.Equal(t,
		"export enum UserStatus {\n  ActiveUser = 1,\n  InactiveUser = 2\n}",
		decls[0].BodyText)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSynthesizeEmptyTableSkipped(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery("SELECT id, label FROM empty_lookup ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "label"}))
	mock.ExpectQuery("SELECT id, label FROM user_status ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "label"}).AddRow(1, "Active"))

	decls, err := s.Synthesize(context.Background(), []Source{
		{Name: "Empty", Table: "empty_lookup", KeyColumn: "id", ValueColumn: "label"},
		{Name: "UserStatus", Table: "user_status", KeyColumn: "id", ValueColumn: "label"},
	})
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "UserStatus", decls[0].TargetName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSynthesizeNullAndNumericValues(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery("SELECT id, label FROM levels ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "label"}).
			AddRow(1, nil).
			AddRow(2, "2nd Level"))

	decls, err := s.Synthesize(context.Background(), []Source{
		{Name: "Level", Table: "levels", KeyColumn: "id", ValueColumn: "label"},
	})
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t,
		"export enum Level {\n  Unknown = 1,\n  Value2ndLevel = 2\n}",
		decls[0].BodyText)
}

func TestSynthesizeQueryFailureAborts(t *testing.T) {
	s, mock := newMock(t)

	mock.ExpectQuery("SELECT id, label FROM missing ORDER BY id").
		WillReturnError(assert.AnError)

	_, err := s.Synthesize(context.Background(), []Source{
		{Name: "Broken", Table: "missing", KeyColumn: "id", ValueColumn: "label"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}
