package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mfonekpo/springer-capital/internal/config"
	"github.com/mfonekpo/springer-capital/internal/metrics"
	"github.com/mfonekpo/springer-capital/internal/recon"
	"github.com/mfonekpo/springer-capital/internal/storage"
)

var fixtures = map[string]string{
	"user_referrals.csv": `referral_id,referrer_id,referee_id,referee_name,referee_phone,referral_at,referral_source,referral_reward_id,user_referral_status_id,transaction_id
r1,u1,u2,jane doe,0812,2024-05-10T03:00:00Z,User Sign Up,1,1,t1
r2,u1,u3,bob,0813,2024-05-12T03:00:00Z,Draft Transaction,,2,
r3,u1,u4,cat,0814,2024-05-13T03:00:00Z,User Sign Up,1,2,
`,
	"user_referral_statuses.csv": `id,description
1,Berhasil
2,Menunggu
3,Tidak Berhasil
`,
	"referral_rewards.csv": `id,reward_value
1,50000
`,
	"paid_transactions.csv": `transaction_id,transaction_status,transaction_at,transaction_type,timezone_transaction
t1,PAID,2024-05-11T03:00:00Z,NEW,Asia/Jakarta
`,
	"user_logs.csv": `user_id,name,membership_expired_date,is_deleted,timezone_homeclub
u1,Ann,2030-01-01,False,Asia/Jakarta
`,
	"user_referral_logs.csv": `id,user_referral_id,source_transaction_id,is_reward_granted
1,r1,t1,True
`,
}

type fakeBackend struct {
	mu      sync.Mutex
	records map[string]float64
	steps   map[string]string
}

func (b *fakeBackend) IncCounter(name string, delta float64, l metrics.Labels) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch name {
	case metrics.RecordsTotal:
		b.records[l["kind"]] += delta
	case metrics.StepTotal:
		b.steps[l["step"]] = l["status"]
	}
}
func (b *fakeBackend) ObserveHistogram(string, float64, metrics.Labels) {}
func (b *fakeBackend) Flush() error                                     { return nil }

func installMetrics(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{records: map[string]float64{}, steps: map[string]string{}}
	metrics.SetBackend(b)
	t.Cleanup(func() { metrics.SetBackend(&fakeBackend{records: map[string]float64{}, steps: map[string]string{}}) })
	return b
}

func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range fixtures {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	return dir
}

func testJob(t *testing.T, dataDir string) config.Job {
	t.Helper()
	out := t.TempDir()
	return config.Job{
		Job:    "recon-test",
		Source: config.Source{Kind: "file", Dir: dataDir, Workers: 2},
		Parser: config.Parser{Comma: ",", TrimSpace: true},
		Rules:  config.Rules{EvaluationDate: "2025-12-09", DefaultTimezone: recon.DefaultTimezone},
		Output: config.Output{
			CSV:       filepath.Join(out, "report.csv"),
			XLSX:      filepath.Join(out, "report.xlsx"),
			PrintRows: 10,
		},
		Storage: config.Storage{
			Kind:            "sqlite",
			DSN:             filepath.Join(out, "recon.db"),
			Table:           "referral_report",
			AutoCreateTable: true,
			BatchSize:       2,
		},
	}
}

func TestRunOnce_EndToEnd(t *testing.T) {
	m := installMetrics(t)
	job := testJob(t, writeFixtures(t))

	var out bytes.Buffer
	rep, err := runOnce(context.Background(), job, &out, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, rep.Rows, 3)
	assert.Equal(t, 2, rep.Valid)
	assert.Equal(t, 1, rep.Invalid)

	r1, r2, r3 := rep.Rows[0], rep.Rows[1], rep.Rows[2]
	assert.Equal(t, "r1", r1.ReferralID)
	assert.True(t, r1.IsBusinessLogicValid, "paid new same-month transaction with granted reward")
	assert.Equal(t, int64(50000), r1.RewardValue)
	assert.True(t, r1.RefereeRewardGranted)
	assert.Equal(t, "t1", *r1.TransactionID)
	assert.True(t, r2.IsBusinessLogicValid, "pending without reward")
	assert.Equal(t, "Offline", *r2.ReferralSourceCategory)
	assert.False(t, r3.IsBusinessLogicValid, "reward on a pending referral")

	assert.Contains(t, out.String(), "rows=3 valid=2 invalid=1")

	csvData, err := os.ReadFile(job.Output.CSV)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(csvData)), "\n"), 4)
	assert.FileExists(t, job.Output.XLSX)

	db, err := sql.Open("sqlite", job.Storage.DSN)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM referral_report`).Scan(&n))
	assert.Equal(t, 3, n)

	assert.Equal(t, 3.0, m.records["referrals"])
	assert.Equal(t, 2.0, m.records["valid"])
	assert.Equal(t, 1.0, m.records["invalid"])
	assert.Equal(t, 3.0, m.records["stored"])
	for _, s := range []string{"load", "clean", "reconcile", "export", "store"} {
		assert.Equal(t, "success", m.steps[s], s)
	}
}

func TestRunOnce_NoReferrals(t *testing.T) {
	m := installMetrics(t)
	job := testJob(t, t.TempDir())
	job.Storage.Kind = ""

	_, err := runOnce(context.Background(), job, &bytes.Buffer{}, zap.NewNop())
	require.ErrorIs(t, err, recon.ErrNoReferrals)
	assert.Equal(t, "failure", m.steps["reconcile"])
	assert.NoFileExists(t, job.Output.CSV)
}

func TestRunOnce_MissingSourceDir(t *testing.T) {
	installMetrics(t)
	job := testJob(t, filepath.Join(t.TempDir(), "nope"))

	_, err := runOnce(context.Background(), job, &bytes.Buffer{}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load:")
}

func TestRunOnce_StorageError(t *testing.T) {
	m := installMetrics(t)
	job := testJob(t, writeFixtures(t))

	orig := newRepositoryFn
	newRepositoryFn = func(context.Context, storage.Config) (storage.Repository, error) {
		return nil, errors.New("db down")
	}
	t.Cleanup(func() { newRepositoryFn = orig })

	rep, err := runOnce(context.Background(), job, &bytes.Buffer{}, zap.NewNop())
	require.ErrorContains(t, err, "db down")
	assert.Len(t, rep.Rows, 3, "the report is still returned")
	assert.Equal(t, "failure", m.steps["store"])
	assert.FileExists(t, job.Output.CSV, "exports run before the sink")
}

func TestRunOnce_HTTPSource(t *testing.T) {
	installMetrics(t)
	mux := http.NewServeMux()
	var urls []string
	for name, body := range fixtures {
		mux.HandleFunc("/exports/"+name, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, body)
		})
	}
	srv := httptest.NewServer(mux)
	defer srv.Close()
	for name := range fixtures {
		urls = append(urls, srv.URL+"/exports/"+name)
	}

	job := testJob(t, "")
	job.Source = config.Source{Kind: "http", URLs: urls}
	job.Storage.Kind = ""

	rep, err := runOnce(context.Background(), job, &bytes.Buffer{}, zap.NewNop())
	require.NoError(t, err)
	assert.Len(t, rep.Rows, 3)
	assert.Equal(t, 2, rep.Valid)
}

func TestOpenCatalog_UnknownKind(t *testing.T) {
	_, err := openCatalog(context.Background(), config.Source{Kind: "ftp"})
	assert.ErrorContains(t, err, "unsupported source kind")
}
