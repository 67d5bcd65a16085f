package cleaning

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housing-etl/internal/config"
	"housing-etl/internal/datasource/file"
	"housing-etl/internal/housing"
	csvparser "housing-etl/internal/parser/csv"
	"housing-etl/internal/table"
	"housing-etl/internal/transformer/builtin"
)

var quietLog = slog.New(slog.NewTextHandler(io.Discard, nil))

// listing is the subset of raw columns the fixtures vary; the rest get fixed
// values.
type listing struct {
	id, size, config, price, quarter, status, nri, market string
}

func writeRaw(t *testing.T, dir string, rows []listing) string {
	t.Helper()
	p := filepath.Join(dir, "raw.csv")
	f, err := os.Create(p)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.Write(housing.RawSchema().Names()))
	for _, r := range rows {
		require.NoError(t, w.Write([]string{
			r.id, r.market, "Sky Towers", "Lodha", r.size, r.config, r.price,
			"Primary", "HNI", r.quarter, "7.5", "8.1", r.status, "Broker", r.nri,
			"6.3", "42", "",
		}))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return p
}

func tenRows() []listing {
	return []listing{
		{"P01", "2000", "3 BHK", "₹1.5 Cr", "2023-05-14", "Ready to Move", "Yes", "Worli"},
		{"P02", "1500", "2bhk", "85 Lakh", "2023-01-20", "Under Construction", "no", "Bandra"},
		{"P03", "", "4-BHK", "1,20,00,000", "2022-11-02", "Launch", "", "Worli"},
		{"P04", "3500", "10 BHK", "12 Cr", "2024-02-29", "Ready to Move", "Yes", ""},
		{"P05", "1800", "3BHK", "2.25", "2023-07-01", "ready to move", "No", "Juhu"},
		{"P06", "2400", "4 bhk", "3 Crore", "2023Q3", "Resale", "YES", "Worli"},
		{"P07", "900", "1 BHK", "40 Lac", "2021-12-31", "", "no", "Powai"},
		{"P08", "2600", "5 BHK", "5.5 Cr", "2022-06-15", "Under Construction", "yes", "Bandra"},
		{"P01", "2000", "3 BHK", "₹1.6 Cr", "2023-05-15", "Ready to Move", "Yes", "Worli"},
		{"P02", "1500", "2 BHK", "90 Lakh", "2023-01-21", "Launch", "no", "Bandra"},
	}
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	raw := writeRaw(t, dir, tenRows())
	clean := filepath.Join(dir, "out", "clean.csv")
	rejects := filepath.Join(dir, "out", "rejects.csv")

	res, err := Run(context.Background(), Options{
		RawPath:     raw,
		CleanPath:   clean,
		RejectsPath: rejects,
		RunID:       "test-run",
		Logger:      quietLog,
	})
	require.NoError(t, err)

	rep := res.Report
	assert.Equal(t, "test-run", rep.RunID)
	assert.Equal(t, 10, rep.RowsIn)
	assert.Equal(t, 7, rep.RowsOut)
	assert.Equal(t, 1, rep.DroppedBy(builtin.ReasonBedrooms))
	assert.Equal(t, 0, rep.DroppedBy(builtin.ReasonPrice))
	assert.Equal(t, 2, rep.DroppedBy(builtin.ReasonDuplicate))

	f, err := os.Open(clean)
	require.NoError(t, err)
	defer f.Close()
	out, _, err := csvparser.Read(f, csvparser.Options{Schema: housing.CleanSchema()})
	require.NoError(t, err)

	assert.Equal(t, housing.CleanSchema().Names(), out.Names())
	require.Equal(t, 7, out.Len())

	id, _ := out.Index(housing.PropertyID)
	beds, _ := out.Index(housing.Bedrooms)
	price, _ := out.Index(housing.TicketPriceCr)
	seen := map[any]bool{}
	for r := 0; r < out.Len(); r++ {
		assert.False(t, seen[out.Get(r, id)], "duplicate %v", out.Get(r, id))
		seen[out.Get(r, id)] = true
		assert.True(t, builtin.InRange(out.Get(r, beds), 1, 6))
		assert.True(t, builtin.InRange(out.Get(r, price), 0.2, 30))
	}
	for c := 0; c < out.Width(); c++ {
		assert.Zero(t, out.Nulls(c), "column %s has nulls", out.Column(c).Name)
	}

	// First occurrence of each duplicate survives.
	assert.Equal(t, []any{"P01", "P02", "P03", "P05", "P06", "P07", "P08"}, column(out, id))
	assert.Equal(t, 1.5, out.Get(0, price))
	assert.Equal(t, out.Row(3), res.Table.Row(3), "returned table matches the file")

	// P03 had no unit size: filled with the median of all ten rows.
	size, _ := out.Index(housing.UnitSizeSqft)
	assert.Equal(t, 2000.0, out.Get(2, size))

	b, err := os.ReadFile(rejects)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "bedrooms_out_of_range,P04,"))
	assert.True(t, strings.HasPrefix(lines[2], "duplicate_property_id,P01,"))
	assert.True(t, strings.HasPrefix(lines[3], "duplicate_property_id,P02,"))
}

func column(tb *table.Table, c int) []any {
	out := make([]any, 0, tb.Len())
	for r := 0; r < tb.Len(); r++ {
		out = append(out, tb.Get(r, c))
	}
	return out
}

func TestRun_DerivedColumns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	raw := writeRaw(t, dir, tenRows()[:1])
	res, err := Run(context.Background(), Options{RawPath: raw, CleanPath: filepath.Join(dir, "c.csv"), Logger: quietLog})
	require.NoError(t, err)
	require.Equal(t, 1, res.Table.Len())
	assert.NotEmpty(t, res.Report.RunID, "run id is generated")

	get := func(name string) any {
		i, ok := res.Table.Index(name)
		require.True(t, ok, name)
		return res.Table.Get(0, i)
	}
	assert.Equal(t, "3BHK", get(housing.Configuration))
	assert.Equal(t, int64(3), get(housing.Bedrooms))
	assert.Equal(t, true, get(housing.NRIBuyer))
	assert.Equal(t, "2023Q2", get(housing.PurchaseQuarter))
	assert.Equal(t, "2023", get(housing.PurchaseYear))
	assert.Equal(t, "Q2", get(housing.Quarter))
	assert.Equal(t, 7500.0, get(housing.PricePerSqft))
	assert.Equal(t, int64(1), get(housing.BookingFlag))
}

func TestRun_MissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	clean := filepath.Join(dir, "clean.csv")
	_, err := Run(context.Background(), Options{RawPath: filepath.Join(dir, "nope.csv"), CleanPath: clean, Logger: quietLog})
	require.Error(t, err)
	assert.True(t, errors.Is(err, file.ErrSourceUnavailable))
	assert.NoFileExists(t, clean)
}

func TestRun_EmptyInputIsUnavailable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	raw := filepath.Join(dir, "raw.csv")
	require.NoError(t, os.WriteFile(raw, nil, 0o644))
	_, err := Run(context.Background(), Options{RawPath: raw, CleanPath: filepath.Join(dir, "c.csv"), Logger: quietLog})
	assert.ErrorIs(t, err, file.ErrSourceUnavailable)
	assert.ErrorIs(t, err, csvparser.ErrNoHeader)
}

func TestRun_MissingRequiredColumn(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	raw := filepath.Join(dir, "raw.csv")
	require.NoError(t, os.WriteFile(raw, []byte("Property_ID,Configuration,Ticket_Price_Cr\nP1,3BHK,1.5\n"), 0o644))
	clean := filepath.Join(dir, "clean.csv")

	_, err := Run(context.Background(), Options{RawPath: raw, CleanPath: clean, Logger: quietLog})
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), housing.NRIBuyer)
	assert.NoFileExists(t, clean)
}

func TestRun_Configuration(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), Options{CleanPath: "x.csv"})
	assert.ErrorIs(t, err, config.ErrConfiguration)
	_, err = Run(context.Background(), Options{RawPath: "x.csv"})
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestRun_CanceledContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	raw := writeRaw(t, dir, tenRows())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	clean := filepath.Join(dir, "c.csv")
	_, err := Run(ctx, Options{RawPath: raw, CleanPath: clean, Logger: quietLog})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, clean)
}

func TestStages_Order(t *testing.T) {
	t.Parallel()

	var names []string
	for _, s := range Stages(nil) {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"normalize", "impute", "outliers", "dedup", "derive"}, names)
}

func TestRun_UnusableNRIBuyerBecomesUnknown(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rows := tenRows()[:2]
	rows[0].nri, rows[1].nri = "maybe", ""
	raw := writeRaw(t, dir, rows)
	clean := filepath.Join(dir, "clean.csv")

	res, err := Run(context.Background(), Options{RawPath: raw, CleanPath: clean, Logger: quietLog})
	require.NoError(t, err)
	nri, ok := res.Table.Index(housing.NRIBuyer)
	require.True(t, ok)
	assert.Zero(t, res.Table.Nulls(nri))

	f, err := os.Open(clean)
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	col := -1
	for i, h := range recs[0] {
		if h == housing.NRIBuyer {
			col = i
		}
	}
	require.NotEqual(t, -1, col)
	assert.Equal(t, builtin.UnknownValue, recs[1][col])
	assert.Equal(t, builtin.UnknownValue, recs[2][col])
}
