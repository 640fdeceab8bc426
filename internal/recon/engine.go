// Package recon reconciles referral rewards. It joins every referral with its
// status, reward, transaction, referrer and log rows, resolves the timezone
// the referral happened in, and decides whether the payout is business-logic
// valid.
//
// The engine does no I/O. Given the same inputs and options it produces the
// same report.
package recon

import (
	"context"
	"errors"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mfonekpo/springer-capital/internal/domain"
)

// ErrNoReferrals is returned when there are no referrals to reconcile.
var ErrNoReferrals = errors.New("recon: user_referrals table is missing or empty")

// DefaultTimezone is used when no transaction, lead or referrer zone applies.
const DefaultTimezone = "Asia/Jakarta"

// DefaultEvaluationDate is the date membership expiry is checked against.
var DefaultEvaluationDate = time.Date(2025, time.December, 9, 0, 0, 0, 0, time.UTC)

// minChunk keeps small inputs on a single goroutine.
const minChunk = 1024

// Options configures an Engine. Zero values take the package defaults.
type Options struct {
	EvaluationDate  time.Time
	DefaultTimezone string
	// Workers bounds the goroutines used for per-referral classification;
	// zero means GOMAXPROCS.
	Workers int
}

func (o Options) withDefaults() Options {
	if o.EvaluationDate.IsZero() {
		o.EvaluationDate = DefaultEvaluationDate
	}
	if o.DefaultTimezone == "" {
		o.DefaultTimezone = DefaultTimezone
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Engine runs reconciliations. It holds no per-run state and is safe for
// concurrent use.
type Engine struct {
	opt Options
	log *zap.Logger
}

// New returns an Engine. A nil logger discards output.
func New(opt Options, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{opt: opt.withDefaults(), log: log}
}

// Run reconciles in and returns the report: one row per referral, in input
// order, plus the valid/invalid counts.
func (e *Engine) Run(ctx context.Context, in domain.Inputs) (domain.Report, error) {
	rows, err := e.Evaluate(ctx, in)
	if err != nil {
		return domain.Report{}, err
	}
	rep := Project(rows)
	granted := 0
	for _, r := range rep.Rows {
		if r.RefereeRewardGranted {
			granted++
		}
	}
	e.log.Info("recon: reconciliation complete",
		zap.Int("referrals", len(rep.Rows)),
		zap.Int("valid", rep.Valid),
		zap.Int("invalid", rep.Invalid),
		zap.Int("reward_granted", granted),
		zap.Int("reward_not_granted", len(rep.Rows)-granted),
	)
	return rep, nil
}

// Evaluate returns the fully derived rows behind the report. Enrichment runs
// to completion first; classification is then split across workers by
// contiguous chunks, each row written by exactly one goroutine.
func (e *Engine) Evaluate(ctx context.Context, in domain.Inputs) ([]Row, error) {
	if len(in.Referrals) == 0 {
		return nil, ErrNoReferrals
	}
	e.log.Info("recon: starting", zap.Int("referrals", len(in.Referrals)))

	rows := enrich(in, e.log)
	leads := firstByKey(in.Leads, func(l domain.Lead) string { return l.LeadID })

	chunk := max(minChunk, (len(rows)+e.opt.Workers-1)/e.opt.Workers)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opt.Workers)
	for lo := 0; lo < len(rows); lo += chunk {
		hi := min(lo+chunk, len(rows))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			z := zones{}
			for i := lo; i < hi; i++ {
				e.derive(&rows[i], leads, z)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func (e *Engine) derive(r *Row, leads map[string]domain.Lead, z zones) {
	r.EffectiveTimezone = effectiveTimezone(r, leads, e.opt.DefaultTimezone)
	localTimes(r, z)
	r.ReferralMonth = month(r.LocalReferralAt)
	r.TransactionMonth = month(r.LocalTransactionAt)
	r.SourceCategory = category(r, leads)
	r.Valid = classify(r, e.opt.EvaluationDate)
}

// Project selects the report columns from rows and counts outcomes.
func Project(rows []Row) domain.Report {
	rep := domain.Report{Rows: make([]domain.ReportRow, len(rows))}
	for i := range rows {
		r := &rows[i]
		out := domain.ReportRow{
			ReferralID:                r.ReferralID,
			ReferrerID:                r.ReferrerID,
			RefereeID:                 r.RefereeID,
			ReferralAt:                r.ReferralAt,
			ReferralStatus:            r.ReferralStatus,
			TransactionID:             r.TransactionID,
			RewardValue:               r.RewardValue,
			RefereeRewardGranted:      r.RefereeRewardGranted,
			ReferrerMembershipExpired: r.ReferrerMembershipExpired,
			ReferrerIsDeleted:         r.ReferrerIsDeleted,
			ReferralSourceCategory:    r.SourceCategory,
			IsBusinessLogicValid:      r.Valid,
		}
		if r.Transaction != nil {
			out.TransactionStatus = r.Transaction.TransactionStatus
			out.TransactionType = r.Transaction.TransactionType
		}
		rep.Rows[i] = out
		if r.Valid {
			rep.Valid++
		} else {
			rep.Invalid++
		}
	}
	return rep
}
