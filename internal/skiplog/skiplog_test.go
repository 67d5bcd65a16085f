package skiplog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housing-etl/internal/housing"
	"housing-etl/internal/transformer"
)

var _ transformer.Rejecter = (*Log)(nil)

func TestLog_HeaderAndRows(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := New(&buf)
	require.NoError(t, err)

	cols := []string{housing.PropertyID, housing.Bedrooms, housing.TicketPriceCr}
	l.Reject("bedrooms_out_of_range", cols, []any{"P9", int64(10), 2.0})
	l.Reject("duplicate_property_id", cols, []any{"P1", int64(3), nil})
	l.Reject("duplicate_property_id", cols, []any{"P2", int64(2), 1.5})
	require.NoError(t, l.Flush())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{"bedrooms_out_of_range", "P9", "Property_ID=P9; Bedrooms=10; Ticket_Price_Cr=2.0"}, rows[1])
	assert.Equal(t, []string{"duplicate_property_id", "P1", "Property_ID=P1; Bedrooms=3; Ticket_Price_Cr="}, rows[2])

	assert.Equal(t, map[string]int{"bedrooms_out_of_range": 1, "duplicate_property_id": 2}, l.Counts())
	assert.Equal(t, "bedrooms_out_of_range=1 duplicate_property_id=2", l.Summary())
}

func TestLog_NoKeyColumn(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l, err := New(&buf)
	require.NoError(t, err)
	l.Reject("x", []string{"a"}, []any{"1", "extra"})
	require.NoError(t, l.Flush())
	assert.Equal(t, "reason,property_id,row\nx,,a=1; extra\n", buf.String())
}

type failWriter struct{ n int }

func (f *failWriter) Write(p []byte) (int, error) {
	if f.n == 0 {
		return 0, errors.New("disk full")
	}
	f.n--
	return len(p), nil
}

func TestLog_FlushReportsWriteError(t *testing.T) {
	t.Parallel()

	l, err := New(&failWriter{})
	require.NoError(t, err, "header is buffered")
	l.Reject("x", nil, nil)
	assert.Error(t, l.Flush())
}
