package mssql

import (
	"fmt"
	"strings"

	"github.com/mfonekpo/springer-capital/internal/storage"
)

// msIdent quotes a SQL Server identifier with [brackets], escaping ].
func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// msFQN quotes "dbo.table" as "[dbo].[table]".
func msFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = msIdent(p)
	}
	return strings.Join(parts, ".")
}

func sqlType(t storage.ColumnType) string {
	switch t {
	case storage.TypeBigInt:
		return "BIGINT"
	case storage.TypeBool:
		return "BIT"
	case storage.TypeTimestamp:
		return "DATETIMEOFFSET"
	case storage.TypeDateTime:
		return "DATETIME2"
	default:
		return "NVARCHAR(255)"
	}
}

// BuildCreateTableSQL renders a guarded CREATE TABLE for def; SQL Server has
// no IF NOT EXISTS for tables.
func BuildCreateTableSQL(def storage.TableDef) (string, error) {
	cols, err := storage.RenderColumns(def, msIdent, sqlType)
	if err != nil {
		return "", fmt.Errorf("mssql: %w", err)
	}
	name := strings.ReplaceAll(def.FQN, "'", "''")
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nCREATE TABLE %s (\n  %s\n);",
		name, msFQN(def.FQN), strings.Join(cols, ",\n  ")), nil
}
