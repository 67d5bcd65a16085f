package csv

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housing-etl/internal/table"
)

func TestRead_TypesFromSchemaAndInference(t *testing.T) {
	t.Parallel()

	in := "\uFEFFProperty_ID,Unit_Size_Sqft,Score,Note\n" +
		"P1,1200,7,hello\n" +
		"P2,,8,\n" +
		"P3,big,9,x\n"

	schema := table.Schema{
		{Name: "Property_ID", Type: table.TypeText},
		{Name: "Unit_Size_Sqft", Type: table.TypeFloat},
	}
	tb, stats, err := Read(strings.NewReader(in), Options{Schema: schema})
	require.NoError(t, err)

	assert.Equal(t, []string{"Property_ID", "Unit_Size_Sqft", "Score", "Note"}, tb.Names(), "BOM must be stripped")
	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 0, stats.Skipped)

	assert.Equal(t, table.TypeFloat, tb.Column(1).Type)
	assert.Equal(t, table.TypeInt, tb.Column(2).Type, "undeclared numeric column is inferred")
	assert.Equal(t, table.TypeText, tb.Column(3).Type)

	assert.Equal(t, 1200.0, tb.Get(0, 1))
	assert.Nil(t, tb.Get(1, 1), "empty cell is null")
	assert.Nil(t, tb.Get(2, 1), "unparseable cell degrades to null")
	assert.Equal(t, 1, stats.ParseFailures["Unit_Size_Sqft"])
	assert.Equal(t, int64(8), tb.Get(1, 2))
	assert.Nil(t, tb.Get(1, 3))
}

func TestRead_ShortRowsPaddedLongRowsSkipped(t *testing.T) {
	t.Parallel()

	in := "a,b,c\n1,2,3\n4,5\n6,7,8,9\n"
	tb, stats, err := Read(strings.NewReader(in), Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, tb.Len())
	assert.Equal(t, 1, stats.Padded)
	assert.Equal(t, 1, stats.Skipped)
	assert.Nil(t, tb.Get(1, 2))
}

func TestRead_EmptyInput(t *testing.T) {
	t.Parallel()

	_, _, err := Read(strings.NewReader(""), Options{})
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestRead_CustomDelimiter(t *testing.T) {
	t.Parallel()

	tb, _, err := Read(strings.NewReader("a;b\nx;1.5\n"), Options{Comma: ';'})
	require.NoError(t, err)
	assert.Equal(t, "x", tb.Get(0, 0))
	assert.Equal(t, 1.5, tb.Get(0, 1))
}

func TestWrite_RoundTrip(t *testing.T) {
	t.Parallel()

	tb := table.New([]table.Column{
		{Name: "id", Type: table.TypeText},
		{Name: "price", Type: table.TypeFloat},
		{Name: "beds", Type: table.TypeInt},
		{Name: "nri", Type: table.TypeBool},
	})
	require.NoError(t, tb.AppendRow([]any{"P1", 1.5, int64(3), true}))
	require.NoError(t, tb.AppendRow([]any{"P, 2", 2.0, nil, false}))

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tb))
	assert.Equal(t, "id,price,beds,nri\nP1,1.5,3,True\n\"P, 2\",2.0,,False\n", buf.String())

	back, _, err := Read(&buf, Options{Schema: table.Schema(tb.Columns())})
	require.NoError(t, err)
	assert.Equal(t, tb.Row(0), back.Row(0))
	assert.Equal(t, tb.Row(1), back.Row(1))
}

func TestStripHeaderBOM(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b"}, StripHeaderBOM([]string{"\uFEFFa", "b"}))
	assert.Empty(t, StripHeaderBOM(nil))
}
