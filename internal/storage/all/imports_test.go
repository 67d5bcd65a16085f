package all

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"housing-etl/internal/storage"
)

func TestAllKindsRegistered(t *testing.T) {
	t.Parallel()

	kinds := storage.ListKinds()
	for _, k := range []string{"mssql", "mysql", "postgres", "sqlite"} {
		assert.Contains(t, kinds, k)
	}
}
