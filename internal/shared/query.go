package shared

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// FilterOp names a supported comparison.
type FilterOp string

const (
	// OpEq matches the column exactly.
	OpEq FilterOp = "eq"
	// OpLike matches a case-insensitive substring.
	OpLike FilterOp = "like"
)

// Filter expresses a simple filter clause.
type Filter struct {
	Field string
	Op    FilterOp
	Value string
}

// Sort defines ordering by one field.
type Sort struct {
	Field string
	Desc  bool
}

// ListQuery carries filters, ordering and paging for list endpoints.
type ListQuery struct {
	Filters []Filter
	Sort    Sort
	Limit   int
	Offset  int
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

// ParseListQuery reads `field=value` (equality), `field__like=value` (substring),
// `sort=field` or `sort=-field`, `limit` and `offset` from a query string. Only keys
// present in columns are accepted.
func ParseListQuery(values url.Values, columns map[string]string) (ListQuery, error) {
	q := ListQuery{Limit: defaultLimit}
	for key, vals := range values {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		switch key {
		case "sort":
			field := vals[0]
			desc := strings.HasPrefix(field, "-")
			field = strings.TrimPrefix(field, "-")
			if _, ok := columns[field]; !ok {
				return ListQuery{}, ValidationError{Field: "sort", Msg: "unknown field " + field}
			}
			q.Sort = Sort{Field: field, Desc: desc}
			continue
		case "limit", "offset":
			n, err := strconv.Atoi(vals[0])
			if err != nil || n < 0 {
				return ListQuery{}, ValidationError{Field: key, Msg: "must be a non-negative integer"}
			}
			if key == "limit" {
				q.Limit = n
			} else {
				q.Offset = n
			}
			continue
		}
		field, op := key, OpEq
		if strings.HasSuffix(key, "__like") {
			field, op = strings.TrimSuffix(key, "__like"), OpLike
		}
		if _, ok := columns[field]; !ok {
			return ListQuery{}, ValidationError{Field: key, Msg: "unknown filter"}
		}
		q.Filters = append(q.Filters, Filter{Field: field, Op: op, Value: vals[0]})
	}
	if q.Limit == 0 || q.Limit > maxLimit {
		q.Limit = defaultLimit
	}
	return q, nil
}

// SQL renders the WHERE/ORDER BY/LIMIT tail of a SELECT. columns maps API field names
// to SQL columns; defaultSort is used when no sort was requested.
func (q ListQuery) SQL(columns map[string]string, defaultSort Sort) (string, []any, error) {
	var (
		clauses []string
		args    []any
	)
	for _, f := range q.Filters {
		col, ok := columns[f.Field]
		if !ok {
			return "", nil, ValidationError{Field: f.Field, Msg: "unknown filter"}
		}
		switch f.Op {
		case OpEq, "":
			args = append(args, f.Value)
			clauses = append(clauses, fmt.Sprintf("%s::text = $%d", col, len(args)))
		case OpLike:
			args = append(args, "%"+escapeLike(f.Value)+"%")
			clauses = append(clauses, fmt.Sprintf("%s::text ILIKE $%d", col, len(args)))
		default:
			return "", nil, ValidationError{Field: f.Field, Msg: "unsupported operator " + string(f.Op)}
		}
	}

	var b strings.Builder
	if len(clauses) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(clauses, " AND "))
	}

	sort := q.Sort
	if sort.Field == "" {
		sort = defaultSort
	}
	col, ok := columns[sort.Field]
	if !ok {
		return "", nil, ValidationError{Field: "sort", Msg: "unknown field " + sort.Field}
	}
	dir := "ASC"
	if sort.Desc {
		dir = "DESC"
	}
	fmt.Fprintf(&b, " ORDER BY %s %s", col, dir)

	limit := q.Limit
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}
	args = append(args, limit)
	fmt.Fprintf(&b, " LIMIT $%d", len(args))
	if q.Offset > 0 {
		args = append(args, q.Offset)
		fmt.Fprintf(&b, " OFFSET $%d", len(args))
	}
	return b.String(), args, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}
