package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectBuild(t *testing.T) {
	stmt, args, err := Select("pages", "id", "title").
		Where("published = ?", true).
		Where("slug = ?", "home").
		OrderBy("title ASC").
		Limit(5).
		Build()

	require.NoError(t, err)
	assert.Equal(t, "SELECT id, title FROM pages WHERE published = ? AND slug = ? ORDER BY title ASC LIMIT 5", stmt)
	assert.Equal(t, []any{true, "home"}, args)
}

func TestSelectWithoutColumnsSelectsEverything(t *testing.T) {
	stmt, args, err := Select("tags").Build()

	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM tags", stmt)
	assert.Empty(t, args)
}

func TestSelectJoin(t *testing.T) {
	stmt, _, err := Select("tags t", "t.id").
		Join("JOIN page_tags pt ON pt.tag_id = t.id").
		Where("pt.page_id = ?", "p1").
		Build()

	require.NoError(t, err)
	assert.Equal(t, "SELECT t.id FROM tags t JOIN page_tags pt ON pt.tag_id = t.id WHERE pt.page_id = ?", stmt)
}

func TestSelectArgumentMismatch(t *testing.T) {
	_, _, err := Select("pages").Where("id = ? OR slug = ?", 1).Build()

	var qe *Error
	require.ErrorAs(t, err, &qe)
	assert.True(t, errors.Is(err, ErrArgCount))
	assert.Equal(t, "SELECT * FROM pages WHERE id = ? OR slug = ?", qe.SQL)
	assert.Equal(t, []any{1}, qe.Args)
}

func TestInsertBuild(t *testing.T) {
	stmt, args, err := Insert("tags").Set("name", "go").Set("created_by", "ann").Build()

	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO tags (name, created_by) VALUES (?, ?)", stmt)
	assert.Equal(t, []any{"go", "ann"}, args)
}

func TestInsertWithoutColumns(t *testing.T) {
	_, _, err := Insert("tags").Build()
	assert.ErrorIs(t, err, ErrNoColumns)
}

func TestUpdateBuild(t *testing.T) {
	stmt, args, err := Update("pages").Set("title", "New").Where("id = ?", "p1").Build()

	require.NoError(t, err)
	assert.Equal(t, "UPDATE pages SET title = ? WHERE id = ?", stmt)
	assert.Equal(t, []any{"New", "p1"}, args)
}

func TestUnboundedWritesAreRejected(t *testing.T) {
	_, _, err := Update("pages").Set("title", "x").Build()
	var qe *Error
	require.ErrorAs(t, err, &qe)
	assert.ErrorIs(t, err, ErrUnboundedWrite)
	assert.Equal(t, "UPDATE pages SET title = ?", qe.SQL)

	_, _, err = Delete("pages").Build()
	assert.ErrorIs(t, err, ErrUnboundedWrite)
}

func TestMissingTable(t *testing.T) {
	for _, b := range []Builder{Select(""), Insert("").Set("a", 1), Update("").Set("a", 1), Delete("")} {
		_, _, err := b.Build()
		assert.ErrorIs(t, err, ErrNoTable)

		var qe *Error
		require.ErrorAs(t, err, &qe)
		assert.Empty(t, qe.SQL)
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{SQL: "SELECT 1", Err: errors.New("boom")}
	assert.Equal(t, `query "SELECT 1": boom`, err.Error())

	err = &Error{Err: ErrNoTable}
	assert.Equal(t, "query: no table given", err.Error())
}
