package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Marga-Ghale/ora-project-tracker/internal/types"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Dialect selects the SQL flavour a query is rendered for.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectSQLite
)

// sortColumns maps API sort keys to table columns. Only these are sortable.
var sortColumns = map[string]string{
	"name":       "name",
	"clientName": "client_name",
	"status":     "status",
	"startDate":  "start_date",
	"endDate":    "end_date",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
}

// ProjectFilter carries list options. Call Normalize before use.
type ProjectFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
	SortBy string
	Order  string
}

// Normalize applies defaults and drops values that are not allowed.
// Unknown status values are ignored rather than rejected.
func (f ProjectFilter) Normalize() ProjectFilter {
	out := f
	if !types.IsValidProjectStatus(out.Status) {
		out.Status = ""
	}
	if out.Page < 1 {
		out.Page = DefaultPage
	}
	if out.Limit < 1 {
		out.Limit = DefaultLimit
	}
	if out.Limit > MaxLimit {
		out.Limit = MaxLimit
	}
	if _, ok := sortColumns[out.SortBy]; !ok {
		out.SortBy = "createdAt"
	}
	if strings.EqualFold(out.Order, "asc") {
		out.Order = "asc"
	} else {
		out.Order = "desc"
	}
	return out
}

// Offset is the number of rows skipped before the current page.
func (f ProjectFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// TotalPages returns ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

type listQuery struct {
	where   string
	args    []interface{}
	orderBy string
}

// buildListQuery renders the WHERE and ORDER BY clauses with '?' placeholders.
func buildListQuery(f ProjectFilter, d Dialect) listQuery {
	f = f.Normalize()

	conditions := []string{"deleted_at IS NULL"}
	var args []interface{}

	if f.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, f.Status)
	}

	if f.Search != "" {
		like := "LIKE"
		if d == DialectPostgres {
			like = "ILIKE"
		}
		conditions = append(conditions, fmt.Sprintf(`(name %[1]s ? ESCAPE '\' OR client_name %[1]s ? ESCAPE '\')`, like))
		term := "%" + escapeLike(f.Search) + "%"
		args = append(args, term, term)
	}

	direction := "DESC"
	if f.Order == "asc" {
		direction = "ASC"
	}

	return listQuery{
		where:   "WHERE " + strings.Join(conditions, " AND "),
		args:    args,
		orderBy: fmt.Sprintf("ORDER BY %s %s, id ASC", sortColumns[f.SortBy], direction),
	}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// rebind converts '?' placeholders to the dialect's bind style.
func rebind(d Dialect, query string) string {
	if d == DialectPostgres {
		return sqlx.Rebind(sqlx.DOLLAR, query)
	}
	return query
}

// changeSet renders the SET clause for a partial update. encodeDate converts
// date values into the driver's representation.
func changeSet(c ProjectChanges, encodeDate func(*time.Time) interface{}) ([]string, []interface{}) {
	var sets []string
	var args []interface{}

	if c.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *c.Name)
	}
	if c.ClientName != nil {
		sets = append(sets, "client_name = ?")
		args = append(args, *c.ClientName)
	}
	if c.StartDate.Set {
		sets = append(sets, "start_date = ?")
		args = append(args, encodeDate(c.StartDate.Value))
	}
	if c.EndDate.Set {
		sets = append(sets, "end_date = ?")
		args = append(args, encodeDate(c.EndDate.Value))
	}
	return sets, args
}
