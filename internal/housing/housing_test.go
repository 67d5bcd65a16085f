package housing

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housing-etl/internal/table"
)

func TestCleanSchema_AppendsDerivedColumns(t *testing.T) {
	names := CleanSchema().Names()
	require.Len(t, names, 23)
	assert.Equal(t, RawSchema().Names(), names[:18])
	assert.Equal(t, []string{Bedrooms, PurchaseYear, Quarter, PricePerSqft, BookingFlag}, names[18:])

	typ, ok := CleanSchema().Lookup(TicketPriceCr)
	require.True(t, ok)
	assert.Equal(t, table.TypeFloat, typ)

	// RawSchema must not be mutated by CleanSchema.
	raw, _ := RawSchema().Lookup(TicketPriceCr)
	assert.Equal(t, table.TypeText, raw)
}

// TestListing_ValuesMatchSchema keeps the struct tags, Values order and
// CleanSchema in lockstep.
func TestListing_ValuesMatchSchema(t *testing.T) {
	names := CleanSchema().Names()
	typ := reflect.TypeOf(Listing{})
	require.Equal(t, len(names), typ.NumField())
	for i, name := range names {
		assert.Equal(t, name, typ.Field(i).Tag.Get("csv"), "field %d", i)
		assert.Equal(t, name, typ.Field(i).Tag.Get("db"), "field %d", i)
	}

	price := 2.5
	l := Listing{PropertyID: "P1", TicketPriceCr: &price, BookingFlag: 1}
	vals := l.Values()
	require.Len(t, vals, len(names))
	assert.Equal(t, "P1", vals[0])
	assert.Equal(t, 2.5, vals[6])
	assert.Nil(t, vals[1])
	assert.Equal(t, int64(1), vals[22])
}

func TestFlag_Text(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in   string
		want Flag
		db   any
	}{
		{"True", Flag{Value: true, Known: true}, true},
		{"false", Flag{Known: true}, false},
		{UnknownFlag, Flag{}, UnknownFlag},
	} {
		var f Flag
		require.NoError(t, f.UnmarshalText([]byte(tc.in)), tc.in)
		assert.Equal(t, tc.want, f)
		assert.Equal(t, tc.db, f.DBValue())
	}

	var f Flag
	assert.Error(t, f.UnmarshalText([]byte("maybe")))

	b, err := Flag{}.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, UnknownFlag, string(b))

	l := Listing{NRIBuyer: &Flag{}}
	assert.Equal(t, UnknownFlag, l.Values()[14])
	assert.Nil(t, Listing{}.Values()[14])
}
