package store

import (
	"strings"

	"github.com/HendryAvila/foreman/internal/domain"
)

// Page is limit/offset pagination. A zero Limit means "no limit".
type Page struct {
	Limit  int
	Offset int
}

// where accumulates AND-ed clauses and their arguments.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

// eq adds col = v.
func (w *where) eq(col string, v any) {
	w.add(col+" = ?", v)
}

// contains adds a case-insensitive substring match on a *_key column.
func (w *where) contains(keyCol, text string) {
	w.add(keyCol+` LIKE ? ESCAPE '\'`, ContainsPattern(text))
}

// or adds the OR of the given group's clauses as a single clause.
func (w *where) or(group where) {
	if len(group.clauses) == 0 {
		return
	}
	w.add("("+strings.Join(group.clauses, " OR ")+")", group.args...)
}

func (w *where) sql() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func (w *where) paged(p Page) (string, []any) {
	if p.Limit <= 0 {
		return "", w.args
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	return " LIMIT ? OFFSET ?", append(append([]any{}, w.args...), p.Limit, offset)
}

// EscapeLike escapes the LIKE metacharacters %, _ and the escape character
// itself so user input always matches literally.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// ContainsPattern builds the LIKE pattern matching text anywhere in a
// lower-cased key column.
func ContainsPattern(text string) string {
	return "%" + EscapeLike(domain.NameKey(text)) + "%"
}
