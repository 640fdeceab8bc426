package mssql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfonekpo/springer-capital/internal/storage"
)

func TestQuoting(t *testing.T) {
	assert.Equal(t, "[col]", msIdent("col"))
	assert.Equal(t, "[we]]ird]", msIdent("we]ird"))
	assert.Equal(t, "[dbo].[referral_report]", msFQN("dbo.referral_report"))
}

func TestBuildCreateTableSQL(t *testing.T) {
	sql, err := BuildCreateTableSQL(storage.ReportTable("dbo.referral_report"))
	require.NoError(t, err)
	assert.Contains(t, sql, "IF OBJECT_ID(N'dbo.referral_report', N'U') IS NULL")
	assert.Contains(t, sql, "CREATE TABLE [dbo].[referral_report] (")
	assert.Contains(t, sql, "[referral_at] DATETIMEOFFSET,")
	assert.Contains(t, sql, "[referrer_is_deleted] BIT NOT NULL")
	assert.Contains(t, sql, "[referral_id] NVARCHAR(255) NOT NULL")
}

func TestNewRepository_BadDSN(t *testing.T) {
	_, err := storage.New(context.Background(), storage.Config{Kind: "mssql", DSN: "sqlserver://%zz"})
	assert.Error(t, err)
}
