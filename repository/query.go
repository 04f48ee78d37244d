package repository

import (
	"strconv"
	"strings"
	"time"
)

const queryTimeout = 3 * time.Second

// params collects positional arguments and hands out $n placeholders in
// the order they are bound. Both pgx and sqlite3 accept this form as long
// as placeholders first appear in ascending order.
type params struct {
	args []any
}

func (p *params) bind(v any) string {
	p.args = append(p.args, v)
	return "$" + strconv.Itoa(len(p.args))
}

// filter is a conjunction of predicates over one table.
type filter struct {
	params
	clauses []string
}

func (f *filter) eq(column string, v any) {
	f.clauses = append(f.clauses, column+" = "+f.bind(v))
}

// titleContains adds a case-insensitive substring match on title. An empty
// needle adds nothing.
func (f *filter) titleContains(needle string) {
	if needle == "" {
		return
	}
	pattern := "%" + escapeLike(strings.ToLower(needle)) + "%"
	f.clauses = append(f.clauses, `LOWER(title) LIKE `+f.bind(pattern)+` ESCAPE '\'`)
}

func (f *filter) where() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.clauses, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// assignments builds the SET list of an UPDATE.
type assignments struct {
	params
	cols []string
}

func (a *assignments) set(column string, v any) {
	a.cols = append(a.cols, column+" = "+a.bind(v))
}

func (a *assignments) String() string {
	return strings.Join(a.cols, ", ")
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
