package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mfonekpo/springer-capital/internal/domain"
)

func sampleReport() domain.Report {
	at := time.Date(2024, 5, 10, 3, 0, 0, 0, time.UTC)
	status := "Berhasil"
	cat := "Online"
	return domain.Report{
		Rows: []domain.ReportRow{
			{
				ReferralID:                "r1",
				ReferrerID:                "u1",
				RefereeID:                 "u2",
				ReferralAt:                &at,
				ReferralStatus:            &status,
				RewardValue:               50000,
				RefereeRewardGranted:      true,
				ReferrerMembershipExpired: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
				ReferralSourceCategory:    &cat,
				IsBusinessLogicValid:      true,
			},
			{ReferralID: "r2", ReferrerIsDeleted: true},
		},
		Valid:   1,
		Invalid: 1,
	}
}

func TestCell(t *testing.T) {
	assert.Equal(t, "", Cell(nil))
	assert.Equal(t, "x", Cell("x"))
	assert.Equal(t, "42", Cell(int64(42)))
	assert.Equal(t, "true", Cell(true))
	assert.Equal(t, "2024-05-10T03:00:00Z", Cell(time.Date(2024, 5, 10, 3, 0, 0, 0, time.UTC)))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleReport()))

	recs, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, domain.ReportColumns, recs[0])
	assert.Equal(t, []string{
		"r1", "u1", "u2", "2024-05-10T03:00:00Z", "Berhasil", "", "", "",
		"50000", "true", "2030-01-01T00:00:00Z", "false", "Online", "true",
	}, recs[1])
	assert.Equal(t, "", recs[2][3])
	assert.Equal(t, "0001-01-01T00:00:00Z", recs[2][10])
	assert.Equal(t, "true", recs[2][11])
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.csv")
	require.NoError(t, WriteCSVFile(path, sampleReport()))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "referral_id,referrer_id")
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteXLSX(path, sampleReport()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ReportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.ReportColumns, rows[0])
	assert.Equal(t, "r1", rows[1][0])
	assert.Equal(t, "2024-05-10T03:00:00Z", rows[1][3])
	assert.Equal(t, "50000", rows[1][8])
	assert.NotEmpty(t, rows[1][13])
	assert.Equal(t, "", rows[2][3], "null cells stay empty")

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"metric", "count"}, {"referrals", "2"}, {"valid", "1"}, {"invalid", "1"}}, summary)
}
