package probe

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	csvparser "housing-etl/internal/parser/csv"
	"housing-etl/internal/table"
)

func load(t *testing.T, s string) *table.Table {
	t.Helper()
	tb, _, err := csvparser.Read(strings.NewReader(s), csvparser.Options{})
	require.NoError(t, err)
	return tb
}

const sample = "Property_ID,Unit_Size_Sqft,Bedrooms,NRI_Buyer,Micro_Market\n" +
	"P1,1000.0,1,True,Worli\n" +
	"P2,2000.0,2,False,\n" +
	"P3,,3,True,Bandra\n" +
	"P4,4000.5,4,,Juhu\n"

func TestDescribe(t *testing.T) {
	t.Parallel()

	p := Describe(load(t, sample), 2)
	assert.Equal(t, 4, p.Rows)
	require.Len(t, p.Columns, 5)
	require.Len(t, p.Head, 2)
	assert.Equal(t, "P2", p.Head[1][0])

	byName := map[string]Column{}
	for _, c := range p.Columns {
		byName[c.Name] = c
	}
	assert.Equal(t, table.TypeText, byName["Property_ID"].Type)
	assert.Equal(t, table.TypeFloat, byName["Unit_Size_Sqft"].Type, "inferred from a column with a blank")
	assert.Equal(t, table.TypeInt, byName["Bedrooms"].Type)
	assert.Equal(t, table.TypeBool, byName["NRI_Buyer"].Type)
	assert.Equal(t, 1, byName["Unit_Size_Sqft"].Nulls)
	assert.Equal(t, 1, byName["Micro_Market"].Nulls)
	assert.Nil(t, byName["NRI_Buyer"].Summary, "bools are not summarized")

	beds := byName["Bedrooms"].Summary
	require.NotNil(t, beds)
	assert.Equal(t, 4, beds.Count)
	assert.Equal(t, 2.5, beds.Mean)
	assert.InDelta(t, 1.2910, beds.Std, 1e-4)
	assert.Equal(t, 1.0, beds.Min)
	assert.Equal(t, 1.75, beds.P25)
	assert.Equal(t, 2.5, beds.P50)
	assert.Equal(t, 3.25, beds.P75)
	assert.Equal(t, 4.0, beds.Max)

	size := byName["Unit_Size_Sqft"].Summary
	assert.Equal(t, 3, size.Count, "nulls excluded")
	assert.Equal(t, 2000.0, size.P50)
}

func TestSummarize_Degenerate(t *testing.T) {
	t.Parallel()

	s := Summarize(nil)
	assert.Zero(t, s.Count)
	assert.True(t, math.IsNaN(s.Mean))
	assert.True(t, math.IsNaN(s.Max))

	s = Summarize([]float64{5})
	assert.Equal(t, 5.0, s.Mean)
	assert.True(t, math.IsNaN(s.Std), "sample std needs two values")
	assert.Equal(t, 5.0, s.P25)
}

func TestSummarize_DoesNotReorderInput(t *testing.T) {
	t.Parallel()

	in := []float64{3, 1, 2}
	Summarize(in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestQuantile(t *testing.T) {
	t.Parallel()

	sorted := []float64{10, 20, 30, 40, 50}
	assert.Equal(t, 10.0, Quantile(sorted, 0))
	assert.Equal(t, 20.0, Quantile(sorted, 0.25))
	assert.Equal(t, 50.0, Quantile(sorted, 1))
	assert.Equal(t, 45.0, Quantile(sorted, 0.875))
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestRender(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Describe(load(t, sample), 10)))
	out := buf.String()

	assert.Contains(t, out, "Shape: (4, 5)")
	assert.Contains(t, out, "Unit_Size_Sqft")
	assert.Contains(t, out, "float")
	assert.Contains(t, out, "(4 rows)")
	assert.Contains(t, out, "2.5000")
	assert.Contains(t, out, "NaN", "blank cells print as NaN")
	assert.Contains(t, out, "┌", "light box style")
}

func TestRenderHead_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, RenderHead(&buf, load(t, "a,b\n"), 5))
	assert.Equal(t, "(0 rows)\n", buf.String())
}
