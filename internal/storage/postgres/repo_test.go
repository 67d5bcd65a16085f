package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housing-etl/internal/storage"
)

func TestSplitFQN(t *testing.T) {
	t.Parallel()

	assert.Equal(t, pgx.Identifier{"public", "luxury_housing"}, splitFQN("public.luxury_housing"))
	assert.Equal(t, pgx.Identifier{"luxury_housing"}, splitFQN("luxury_housing"))
	assert.Equal(t, pgx.Identifier{"t"}, splitFQN(".t."))
}

func TestFormatDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"explicit", Config{DSN: "host=db dbname=x", Host: "ignored"}, "host=db dbname=x"},
		{"defaults", Config{Name: "housing"}, "postgres://localhost:5432/housing"},
		{"user only", Config{Host: "db", User: "etl", Name: "housing"}, "postgres://etl@db:5432/housing"},
		{"password escaped", Config{Host: "db", Port: "6543", User: "etl", Password: "p@ss", Name: "housing"}, "postgres://etl:p%40ss@db:6543/housing"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatDSN(tc.cfg))
		})
	}
}

func TestFormatDSN_ParsesWithPgx(t *testing.T) {
	t.Parallel()

	pcfg, err := pgxpool.ParseConfig(FormatDSN(Config{Host: "db", User: "etl", Password: "p@ss", Name: "housing"}))
	require.NoError(t, err)
	assert.Equal(t, "db", pcfg.ConnConfig.Host)
	assert.Equal(t, uint16(5432), pcfg.ConnConfig.Port)
	assert.Equal(t, "etl", pcfg.ConnConfig.User)
	assert.Equal(t, "p@ss", pcfg.ConnConfig.Password)
	assert.Equal(t, "housing", pcfg.ConnConfig.Database)
}

// Not parallel: swaps the package-level constructor.
func TestFactoryRegistration(t *testing.T) {
	var got Config
	orig := newRepository
	newRepository = func(_ context.Context, cfg Config) (*Repository, func(), error) {
		got = cfg
		return &Repository{cfg: cfg}, func() {}, nil
	}
	t.Cleanup(func() { newRepository = orig })

	repo, err := storage.New(context.Background(), storage.Config{Kind: "postgres", DSN: "postgres://x/y", Table: "public.luxury_housing"})
	require.NoError(t, err)
	defer repo.Close()
	assert.Equal(t, "postgres://x/y", got.DSN)
	assert.Equal(t, "public.luxury_housing", got.Table)

	n, err := repo.CopyFrom(context.Background(), []string{"a"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
