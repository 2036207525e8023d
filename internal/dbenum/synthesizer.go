// Package dbenum synthesizes enum declarations from (key, value) rows in a
// relational table. It shares the identifier sanitization and rendering
// contract with the translator but none of its graph resolution.
package dbenum

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cockroachdb/errors"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/origadmin/tsdgen/internal/ident"
	"github.com/origadmin/tsdgen/internal/model"
	"github.com/origadmin/tsdgen/internal/render"
)

// Source describes one enum-producing table.
type Source struct {
	// Name is the emitted enum name.
	Name string
	// Schema optionally qualifies the table.
	Schema string
	Table  string
	// KeyColumn holds the integral member value, ValueColumn the member text.
	KeyColumn   string
	ValueColumn string
}

// Open opens the SQLite database backing the enum sources. The connection is
// shared across all queries of a run and is not used concurrently.
func Open(path string, logger *zap.SugaredLogger) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database %q", path)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to set busy timeout on %q", path)
	}
	logger.Debugw("database opened", "path", path)
	return db, nil
}

// Synthesizer turns enum sources into rendered declarations.
type Synthesizer struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

func New(db *sql.DB, logger *zap.SugaredLogger) *Synthesizer {
	return &Synthesizer{db: db, logger: logger}
}

// Synthesize runs every source sequentially against the shared connection.
// Query latency dominates and the connection is not designed for concurrent
// use, so there is no fan-out here. A table yielding zero rows produces no
// declaration; that is logged, not an error.
func (s *Synthesizer) Synthesize(ctx context.Context, sources []Source) ([]*model.GeneratedDeclaration, error) {
	decls := make([]*model.GeneratedDeclaration, 0, len(sources))
	for _, src := range sources {
		members, err := s.queryMembers(ctx, src)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			s.logger.Warnw("enum source yielded no rows, skipping", "enum", src.Name, "table", src.Table)
			continue
		}
		decls = append(decls, &model.GeneratedDeclaration{
			TargetName: src.Name,
			Kind:       model.DeclEnum,
			BodyText:   render.Enum(src.Name, members),
		})
	}
	return decls, nil
}

func (s *Synthesizer) queryMembers(ctx context.Context, src Source) ([]model.EnumMember, error) {
	query := BuildQuery(src)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrapf(err, "enum query failed for table %q", src.Table)
	}
	defer rows.Close()

	var members []model.EnumMember
	for rows.Next() {
		var key int64
		var value sql.NullString
		if err := rows.Scan(&key, &value); err != nil {
			return nil, errors.Wrapf(err, "failed to scan enum row from table %q", src.Table)
		}
		members = append(members, model.EnumMember{
			Name:  ident.MemberName(value.String),
			Value: key,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read enum rows from table %q", src.Table)
	}
	return members, nil
}

// BuildQuery assembles the ordered (key, value) select for a source. Member
// order follows ascending key order.
func BuildQuery(src Source) string {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(QuoteIdent(src.KeyColumn))
	sb.WriteString(", ")
	sb.WriteString(QuoteIdent(src.ValueColumn))
	sb.WriteString(" FROM ")
	if src.Schema != "" {
		sb.WriteString(QuoteIdent(src.Schema))
		sb.WriteString(".")
	}
	sb.WriteString(QuoteIdent(src.Table))
	sb.WriteString(" ORDER BY ")
	sb.WriteString(QuoteIdent(src.KeyColumn))
	return sb.String()
}

// Reserved words that force identifier quoting. Deliberately a small fixed
// set covering the words that plausibly appear as table or column names.
var keywords = map[string]struct{}{
	"select": {}, "from": {}, "where": {}, "table": {}, "order": {},
	"group": {}, "by": {}, "key": {}, "value": {}, "values": {},
	"index": {}, "join": {}, "union": {}, "insert": {}, "update": {},
	"delete": {}, "create": {}, "drop": {}, "alter": {}, "default": {},
	"primary": {}, "references": {}, "user": {}, "to": {}, "in": {},
}

// QuoteIdent quotes an identifier when it is a reserved word, contains a
// character outside [A-Za-z0-9_], or starts with a non-letter.
func QuoteIdent(name string) string {
	if !needsQuote(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func needsQuote(name string) bool {
	if name == "" {
		return true
	}
	if _, ok := keywords[strings.ToLower(name)]; ok {
		return true
	}
	first := name[0]
	if !isLetter(first) {
		return true
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !isLetter(c) && !isDigit(c) && c != '_' {
			return true
		}
	}
	return false
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
