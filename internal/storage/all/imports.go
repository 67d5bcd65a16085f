// Package all registers every built-in storage backend with the storage
// factory. Import it for side effects from a binary:
//
//	import _ "housing-etl/internal/storage/all"
//
// after which storage.New accepts the kinds "mysql", "postgres", "sqlite"
// and "mssql". A binary that needs fewer backends can import the individual
// packages instead.
package all

import (
	_ "housing-etl/internal/storage/mssql"
	_ "housing-etl/internal/storage/mysql"
	_ "housing-etl/internal/storage/postgres"
	_ "housing-etl/internal/storage/sqlite"
)
