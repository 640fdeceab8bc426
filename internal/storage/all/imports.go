// Package all registers every built-in storage backend. Import it for side
// effects:
//
//	import _ "github.com/mfonekpo/springer-capital/internal/storage/all"
//
// after which storage.New accepts "postgres", "mssql" and "sqlite".
package all

import (
	_ "github.com/mfonekpo/springer-capital/internal/storage/mssql"
	_ "github.com/mfonekpo/springer-capital/internal/storage/postgres"
	_ "github.com/mfonekpo/springer-capital/internal/storage/sqlite"
)
