package sqlite

import (
	"fmt"
	"strings"

	"github.com/mfonekpo/springer-capital/internal/storage"
)

func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// quoteFQN accepts "main.table" style names as well as bare table names.
func quoteFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quoteIdent(p)
	}
	return strings.Join(parts, ".")
}

func sqlType(t storage.ColumnType) string {
	switch t {
	case storage.TypeBigInt, storage.TypeBool:
		return "INTEGER"
	case storage.TypeTimestamp, storage.TypeDateTime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// BuildCreateTableSQL renders CREATE TABLE IF NOT EXISTS for def.
func BuildCreateTableSQL(def storage.TableDef) (string, error) {
	cols, err := storage.RenderColumns(def, quoteIdent, sqlType)
	if err != nil {
		return "", fmt.Errorf("sqlite: %w", err)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", quoteFQN(def.FQN), strings.Join(cols, ",\n  ")), nil
}
