package postgres

import (
	"fmt"
	"strings"

	"github.com/mfonekpo/springer-capital/internal/storage"
)

// quoteIdent double-quotes one identifier segment.
func quoteIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// quoteFQN quotes each dotted segment of a possibly schema-qualified name.
func quoteFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = quoteIdent(p)
	}
	return strings.Join(parts, ".")
}

func sqlType(t storage.ColumnType) string {
	switch t {
	case storage.TypeBigInt:
		return "BIGINT"
	case storage.TypeBool:
		return "BOOLEAN"
	case storage.TypeTimestamp:
		return "TIMESTAMPTZ"
	case storage.TypeDateTime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// BuildCreateTableSQL renders CREATE TABLE IF NOT EXISTS for def.
func BuildCreateTableSQL(def storage.TableDef) (string, error) {
	cols, err := storage.RenderColumns(def, quoteIdent, sqlType)
	if err != nil {
		return "", fmt.Errorf("postgres: %w", err)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);", quoteFQN(def.FQN), strings.Join(cols, ",\n  ")), nil
}
