// Package query translates inbound listing parameters into a typed,
// allow-listed query description. Comparison operators are mapped
// explicitly rather than by string substitution, so only the recognized
// set ever reaches the persistence layer.
package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Op is a typed comparison operator.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

// operators is the allow-list of range/set operators accepted in
// field[op]=value keys. Anything else is treated as a plain equality key.
var operators = map[string]Op{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
	"in":  OpIn,
}

// reserved parameters control projection, ordering and pagination and are
// excluded from the filter set.
var reserved = map[string]struct{}{
	"select": {},
	"sort":   {},
	"page":   {},
	"limit":  {},
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	DefaultSort  = "-createdAt"
)

// Condition is a single typed filter. For OpIn, Value is a []any of the
// comma-separated members; otherwise a single coerced scalar.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// SortField orders results by one field.
type SortField struct {
	Field string
	Desc  bool
}

// Query is the parsed form of a list request.
type Query struct {
	Conditions []Condition
	Select     []string
	Sort       []SortField
	Page       int
	Limit      int
}

// Parse builds a Query from raw URL parameters. Unknown keys become
// equality conditions; field[op] keys with a recognized operator become
// range/set conditions. Repeated keys keep the first value, matching the
// single-value semantics of the public API.
func Parse(values url.Values) Query {
	q := Query{
		Page:  DefaultPage,
		Limit: DefaultLimit,
	}

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		if _, ok := reserved[key]; ok {
			continue
		}
		q.Conditions = append(q.Conditions, parseCondition(key, vals[0]))
	}

	// Map iteration order is random; keep conditions deterministic.
	sort.Slice(q.Conditions, func(i, j int) bool {
		if q.Conditions[i].Field != q.Conditions[j].Field {
			return q.Conditions[i].Field < q.Conditions[j].Field
		}
		return q.Conditions[i].Op < q.Conditions[j].Op
	})

	q.Select = splitList(values.Get("select"))
	q.Sort = parseSort(values.Get("sort"))

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		q.Page = page
	}
	// limit is taken as requested; the page size is not capped server-side.
	if limit, err := strconv.Atoi(values.Get("limit")); err == nil && limit > 0 {
		q.Limit = limit
	}

	return q
}

// Skip returns the number of documents to skip for the requested page.
func (q Query) Skip() int {
	return (q.Page - 1) * q.Limit
}

func parseCondition(key, raw string) Condition {
	if open := strings.IndexByte(key, '['); open > 0 && strings.HasSuffix(key, "]") {
		name := key[:open]
		opName := key[open+1 : len(key)-1]
		if op, ok := operators[opName]; ok {
			if op == OpIn {
				members := splitList(raw)
				vals := make([]any, len(members))
				for i, m := range members {
					vals[i] = coerce(m)
				}
				return Condition{Field: name, Op: OpIn, Value: vals}
			}
			return Condition{Field: name, Op: op, Value: coerce(raw)}
		}
	}
	return Condition{Field: key, Op: OpEq, Value: coerce(raw)}
}

// coerce converts a raw query value into the most specific type it parses
// as: bool, integer, float, RFC3339 timestamp, else string. Stored numbers
// compare across numeric BSON types, so int64 vs float64 is not significant.
func coerce(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return raw
}

func parseSort(raw string) []SortField {
	if raw == "" {
		raw = DefaultSort
	}
	var fields []SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "-") {
			fields = append(fields, SortField{Field: part[1:], Desc: true})
			continue
		}
		fields = append(fields, SortField{Field: part})
	}
	return fields
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
