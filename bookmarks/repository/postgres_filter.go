package repository

import (
	"fmt"
	"strings"

	"github.com/bookmarksdev/api/bookmarks/query"
	uuid "github.com/gofrs/uuid"
	"github.com/lib/pq"
)

var postgresColumns = map[string]string{
	query.FieldID:             "id",
	query.FieldUserID:         "user_id",
	query.FieldLocation:       "location",
	query.FieldShared:         "shared",
	query.FieldTags:           "tags",
	query.FieldCreatedAt:      "created_at",
	query.FieldLastAccessedAt: "last_accessed_at",
	query.FieldCount:          "count",
}

var postgresOperators = map[query.Operator]string{
	query.OpEq:  "=",
	query.OpNe:  "<>",
	query.OpGte: ">=",
	query.OpLte: "<=",
}

// whereBuilder collects positional arguments while rendering conditions.
type whereBuilder struct {
	args []interface{}
}

func (w *whereBuilder) bind(value interface{}) string {
	w.args = append(w.args, value)
	return fmt.Sprintf("$%d", len(w.args))
}

// PostgresWhere renders spec as a WHERE clause body with positional arguments starting after offset.
// An empty spec renders "TRUE". It returns errInvalidID when an equality on id can never match.
func PostgresWhere(spec query.Spec, offset int) (string, []interface{}, error) {
	w := &whereBuilder{args: make([]interface{}, offset)}

	clauses, err := w.conditions(spec.Conditions)
	if err != nil {
		return "", nil, err
	}

	if len(spec.Or) > 0 {
		var groups []string
		for _, group := range spec.Or {
			g, err := w.conditions(group)
			if err != nil {
				if err == errInvalidID {
					continue
				}
				return "", nil, err
			}
			if len(g) == 0 {
				g = []string{"TRUE"}
			}
			groups = append(groups, "("+strings.Join(g, " AND ")+")")
		}
		if len(groups) == 0 {
			return "", nil, errInvalidID
		}
		clauses = append(clauses, "("+strings.Join(groups, " OR ")+")")
	}

	if len(clauses) == 0 {
		return "TRUE", w.args[offset:], nil
	}
	return strings.Join(clauses, " AND "), w.args[offset:], nil
}

func (w *whereBuilder) conditions(conditions []query.Condition) ([]string, error) {
	clauses := make([]string, 0, len(conditions))
	for _, c := range conditions {
		column, ok := postgresColumns[c.Field]
		if !ok {
			return nil, fmt.Errorf("unsupported field %q", c.Field)
		}

		value := c.Value
		if c.Field == query.FieldID {
			converted, err := postgresIDValue(value)
			if err != nil {
				if c.Op == query.OpNe {
					continue
				}
				return nil, err
			}
			value = converted
		}

		switch {
		case c.Op == query.OpIn:
			clauses = append(clauses, fmt.Sprintf("%s = ANY(%s)", column, w.bind(pq.Array(value))))
		case c.Field == query.FieldTags && c.Op == query.OpEq:
			clauses = append(clauses, fmt.Sprintf("%s = ANY(%s)", w.bind(value), column))
		case c.Field == query.FieldTags && c.Op == query.OpNe:
			clauses = append(clauses, fmt.Sprintf("NOT (%s = ANY(%s))", w.bind(value), column))
		default:
			op, ok := postgresOperators[c.Op]
			if !ok {
				return nil, fmt.Errorf("unsupported operator %q", c.Op)
			}
			clauses = append(clauses, fmt.Sprintf("%s %s %s", column, op, w.bind(value)))
		}
	}
	return clauses, nil
}

func postgresIDValue(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		id, err := uuid.FromString(v)
		if err != nil {
			return nil, errInvalidID
		}
		return id, nil
	case []string:
		ids := make([]string, 0, len(v))
		for _, s := range v {
			if id, err := uuid.FromString(s); err == nil {
				ids = append(ids, id.String())
			}
		}
		return ids, nil
	default:
		return value, nil
	}
}

// PostgresOrderBy renders the ORDER BY and LIMIT suffix of spec.
func PostgresOrderBy(spec query.Spec) string {
	var b strings.Builder
	if len(spec.Sort) > 0 {
		keys := make([]string, 0, len(spec.Sort))
		for _, s := range spec.Sort {
			column, ok := postgresColumns[s.Field]
			if !ok {
				continue
			}
			if s.Desc {
				column += " DESC"
			}
			keys = append(keys, column)
		}
		if len(keys) > 0 {
			b.WriteString(" ORDER BY ")
			b.WriteString(strings.Join(keys, ", "))
		}
	}
	if spec.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", spec.Limit)
	}
	return b.String()
}
