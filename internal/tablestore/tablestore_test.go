package tablestore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCondition(t *testing.T) {
	terms, err := ParseCondition("id = ?", []string{"f1"})
	require.NoError(t, err)
	assert.Equal(t, []Term{{Column: "id", Op: "="}}, terms)

	terms, err = ParseCondition("date >= ? and date <= ?", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []Term{{Column: "date", Op: ">="}, {Column: "date", Op: "<="}}, terms)

	_, err = ParseCondition("id = ? OR 1=1", []string{"x"})
	assert.Error(t, err)
	_, err = ParseCondition("id = ?", nil)
	assert.Error(t, err)
	_, err = ParseCondition("  ", nil)
	assert.Error(t, err)
}

func TestTermEval(t *testing.T) {
	assert.True(t, Term{Column: "id", Op: "="}.Eval("a", "a"))
	assert.False(t, Term{Column: "id", Op: "="}.Eval("a", "b"))
	// numeric comparison, not lexical
	assert.True(t, Term{Column: "n", Op: "<"}.Eval("9", "10"))
	assert.True(t, Term{Column: "s", Op: "<"}.Eval("10", "9a"))
	assert.True(t, Term{Column: "n", Op: "!="}.Eval("1", "2"))
}

func TestRowHelpers(t *testing.T) {
	r := Row{"id": "f1", "calories": "130", "empty": ""}

	f, err := r.Float("calories")
	require.NoError(t, err)
	assert.Equal(t, 130.0, f)

	f, err = r.Float("missing")
	require.NoError(t, err)
	assert.Zero(t, f)

	_, err = Row{"calories": "lots"}.Float("calories")
	assert.ErrorContains(t, err, "calories")

	assert.Equal(t, Row{"id": "f1"}, r.Project([]string{"id"}))
	assert.Equal(t, r, r.Project([]string{"*"}))
	assert.True(t, r.Matches(map[string]string{"id": "f1"}))
	assert.False(t, r.Matches(map[string]string{"id": "f2"}))
	assert.False(t, r.Matches(map[string]string{"nope": ""}))

	assert.Equal(t, "0.1", FormatFloat(0.1))
	assert.Equal(t, "130", FormatFloat(130))
}

func TestReadRequestNormalized(t *testing.T) {
	n := ReadRequest{Table: "foods"}.Normalized()
	assert.Equal(t, []string{"*"}, n.Columns)
	assert.NotNil(t, n.Filters)
}

func TestStoreError(t *testing.T) {
	err := NewStoreError("create", "foods", "duplicate key")
	assert.True(t, IsStoreError(err))
	assert.Contains(t, err.Error(), "duplicate key")
	assert.Contains(t, NewStoreError("delete", "meals", "").Error(), "store reported failure")
}
