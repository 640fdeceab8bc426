package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// ColumnType is a dialect-neutral column type. Backends map it to SQL.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeBigInt
	TypeBool
	TypeTimestamp // an instant, stored with zone where the dialect allows
	TypeDateTime  // a naive wall-clock value
)

// ColumnDef is one column of a TableDef.
type ColumnDef struct {
	Name     string
	Type     ColumnType
	Nullable bool
}

// TableDef is a table name (optionally schema-qualified) and ordered columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// Names returns the column names in order.
func (t TableDef) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// ReportTable describes the reconciliation report table called fqn. Column
// order matches domain.ReportColumns.
func ReportTable(fqn string) TableDef {
	return TableDef{
		FQN: fqn,
		Columns: []ColumnDef{
			{Name: "referral_id", Type: TypeText},
			{Name: "referrer_id", Type: TypeText},
			{Name: "referee_id", Type: TypeText},
			{Name: "referral_at", Type: TypeTimestamp, Nullable: true},
			{Name: "referral_status", Type: TypeText, Nullable: true},
			{Name: "transaction_id", Type: TypeText, Nullable: true},
			{Name: "transaction_status", Type: TypeText, Nullable: true},
			{Name: "transaction_type", Type: TypeText, Nullable: true},
			{Name: "reward_value", Type: TypeBigInt},
			{Name: "referee_reward_granted", Type: TypeBool},
			{Name: "referrer_membership_expired", Type: TypeDateTime},
			{Name: "referrer_is_deleted", Type: TypeBool},
			{Name: "referral_source_category", Type: TypeText, Nullable: true},
			{Name: "is_business_logic_valid", Type: TypeBool},
		},
	}
}

// DDLBuilder renders an idempotent CREATE TABLE statement for one dialect.
type DDLBuilder func(TableDef) (string, error)

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBuilder{}
)

// RegisterDDL registers the DDL builder for a storage kind.
func RegisterDDL(kind string, fn DDLBuilder) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureTable creates def through repo using the builder registered for kind.
func EnsureTable(ctx context.Context, kind string, repo Repository, def TableDef) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("storage: no DDL builder registered for kind %q", kind)
	}
	stmt, err := fn(def)
	if err != nil {
		return fmt.Errorf("storage: build DDL: %w", err)
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("storage: apply DDL: %w", err)
	}
	return nil
}

// RenderColumns renders "<ident> <type> [NOT NULL]" for every column using
// the dialect's quoting and type mapping. Backends share it to build their
// CREATE TABLE bodies.
func RenderColumns(def TableDef, quote func(string) string, sqlType func(ColumnType) string) ([]string, error) {
	if strings.TrimSpace(def.FQN) == "" {
		return nil, fmt.Errorf("table name must not be empty")
	}
	if len(def.Columns) == 0 {
		return nil, fmt.Errorf("table %s has no columns", def.FQN)
	}
	out := make([]string, 0, len(def.Columns))
	for _, c := range def.Columns {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("table %s has a column with an empty name", def.FQN)
		}
		col := quote(c.Name) + " " + sqlType(c.Type)
		if !c.Nullable {
			col += " NOT NULL"
		}
		out = append(out, col)
	}
	return out, nil
}
