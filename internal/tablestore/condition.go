package tablestore

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Term is one `column <op> ?` comparison of a delete condition.
type Term struct {
	Column string
	Op     string
}

var (
	identRx = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	termRx  = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*(<=|>=|!=|=|<|>)\s*\?\s*$`)
	andRx   = regexp.MustCompile(`(?i)\s+AND\s+`)
)

// ValidIdentifier reports whether s can be used as a table or column name.
func ValidIdentifier(s string) bool { return identRx.MatchString(s) }

// ParseCondition parses terms of the form `col <op> ?` joined by AND.
// It is the only condition grammar the local backends accept.
func ParseCondition(cond string, params []string) ([]Term, error) {
	if strings.TrimSpace(cond) == "" {
		return nil, fmt.Errorf("empty condition")
	}
	parts := andRx.Split(strings.TrimSpace(cond), -1)
	terms := make([]Term, 0, len(parts))
	for _, p := range parts {
		m := termRx.FindStringSubmatch(p)
		if m == nil {
			return nil, fmt.Errorf("unsupported condition term %q", p)
		}
		terms = append(terms, Term{Column: m[1], Op: m[2]})
	}
	if len(terms) != len(params) {
		return nil, fmt.Errorf("condition has %d placeholders but %d params", len(terms), len(params))
	}
	return terms, nil
}

// Eval compares a cell against a parameter. Values that both parse as numbers
// compare numerically, anything else compares as text.
func (t Term) Eval(cell, param string) bool {
	c := strings.Compare(cell, param)
	if a, errA := strconv.ParseFloat(cell, 64); errA == nil {
		if b, errB := strconv.ParseFloat(param, 64); errB == nil {
			switch {
			case a < b:
				c = -1
			case a > b:
				c = 1
			default:
				c = 0
			}
		}
	}
	switch t.Op {
	case "=":
		return c == 0
	case "!=":
		return c != 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	}
	return false
}
