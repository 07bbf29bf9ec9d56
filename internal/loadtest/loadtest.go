// internal/loadtest/loadtest.go

// 本檔提供併發壓力測試：建立 N 個帳戶後以固定大小的 worker pool 執行隨機轉帳，
// 統計成功與失敗筆數、耗時、TPS 與平均延遲，並驗證總額未減少（獎勵只會增加總額）。
package loadtest

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"digitalwallet/internal/wallet"
)

// ErrConservation 表示壓測後總額少於壓測前，或有帳戶餘額為負。
var ErrConservation = errors.New("ledger total shrank during load test")

// Options 為壓測參數；零值欄位使用預設值。
type Options struct {
	Accounts            int
	TransfersPerAccount int
	Workers             int
	MaxAmount           int64
	OpeningBalance      decimal.Decimal
}

func (o Options) withDefaults() Options {
	if o.Accounts < 2 {
		o.Accounts = 100
	}
	if o.TransfersPerAccount <= 0 {
		o.TransfersPerAccount = 100
	}
	if o.Workers <= 0 {
		o.Workers = 32
	}
	if o.MaxAmount <= 0 {
		o.MaxAmount = 50
	}
	if !o.OpeningBalance.IsPositive() {
		o.OpeningBalance = decimal.NewFromInt(1000)
	}
	return o
}

// Result 為一次壓測的統計結果。
type Result struct {
	Total       int
	Succeeded   int64
	Failed      int64
	Duration    time.Duration
	TPS         float64
	AvgLatency  time.Duration
	TotalBefore decimal.Decimal
	TotalAfter  decimal.Decimal
}

func (r Result) String() string {
	return fmt.Sprintf("transfers=%d ok=%d failed=%d duration=%s tps=%.0f avg_latency=%s total_before=%s total_after=%s",
		r.Total, r.Succeeded, r.Failed, r.Duration.Round(time.Millisecond), r.TPS, r.AvgLatency,
		r.TotalBefore.String(), r.TotalAfter.String())
}

// Run 在 ledger 上建立壓測帳戶並執行隨機轉帳。個別轉帳失敗（餘額不足、取鎖逾時）
// 只計入 Failed；建立帳戶失敗或總額檢查不通過時回傳錯誤。
func Run(ctx context.Context, ledger *wallet.Ledger, opts Options, logger logrus.FieldLogger) (Result, error) {
	opts = opts.withDefaults()

	ids := make([]string, opts.Accounts)
	for i := range ids {
		ids[i] = fmt.Sprintf("perf-%05d", i)
		if _, err := ledger.CreateAccount(ids[i], opts.OpeningBalance); err != nil {
			return Result{}, fmt.Errorf("load test setup: %w", err)
		}
	}

	before, err := ledger.TotalBalance(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load test setup: %w", err)
	}
	res := Result{Total: opts.Accounts * opts.TransfersPerAccount, TotalBefore: before}
	logger.WithFields(logrus.Fields{
		"accounts":  opts.Accounts,
		"transfers": res.Total,
		"workers":   opts.Workers,
	}).Info("load test started")

	var ok, failed, latency atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	start := time.Now()
	for i := 0; i < res.Total; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			from := rand.IntN(len(ids))
			to := rand.IntN(len(ids) - 1)
			if to >= from {
				to++
			}
			amount := decimal.NewFromInt(rand.Int64N(opts.MaxAmount) + 1)

			began := time.Now()
			_, err := ledger.Transfer(gctx, ids[from], ids[to], amount)
			latency.Add(int64(time.Since(began)))
			if err != nil {
				failed.Add(1)
				return nil
			}
			ok.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	res.Duration = time.Since(start)

	res.Succeeded, res.Failed = ok.Load(), failed.Load()
	if done := res.Succeeded + res.Failed; done > 0 {
		res.AvgLatency = time.Duration(latency.Load() / done)
	}
	if res.Duration > 0 {
		res.TPS = float64(res.Succeeded+res.Failed) / res.Duration.Seconds()
	}
	// 壓測已結束，結算不受 ctx 取消影響
	after, err := ledger.TotalBalance(context.Background())
	if err != nil {
		return res, err
	}
	res.TotalAfter = after

	logger.WithField("result", res.String()).Info("load test finished")

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if res.TotalAfter.LessThan(res.TotalBefore) {
		return res, fmt.Errorf("%w: before %s after %s", ErrConservation, res.TotalBefore, res.TotalAfter)
	}
	views, err := ledger.Overview(context.Background())
	if err != nil {
		return res, err
	}
	for _, v := range views {
		if v.Balance.IsNegative() {
			return res, fmt.Errorf("%w: wallet %s balance %s", ErrConservation, v.ID, v.Balance)
		}
	}
	return res, nil
}
