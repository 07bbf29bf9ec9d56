// cmd/wallet/main.go

// 本程式讀取指令檔並依序於 in-memory 錢包帳本上執行，結果輸出至 stdout，日誌輸出至 stderr。
// 以 -perf 啟動時改為執行併發壓力測試；設定 OFFER2_SCHEDULE 時於執行期間定期觸發 Offer2。

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"digitalwallet/internal/command"
	"digitalwallet/internal/config"
	"digitalwallet/internal/loadtest"
	"digitalwallet/internal/scheduler"
	"digitalwallet/internal/wallet"
)

var (
	perf       = flag.Bool("perf", false, "run the concurrent load test instead of the command file")
	accounts   = flag.Int("perf-accounts", 100, "number of wallets created by the load test")
	perAccount = flag.Int("perf-transfers", 100, "random transfers per wallet in the load test")
	workers    = flag.Int("perf-workers", 32, "concurrent transfer workers in the load test")
)

func main() {
	os.Exit(run())
}

// run 回傳程序結束碼；所有 defer 在 main 呼叫 os.Exit 前完成。
func run() int {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Error("failed to load config")
		return 1
	}
	logger := cfg.NewLogger()

	ledger := wallet.New(logger, wallet.Options{
		LockTimeout: cfg.LockTimeout,
		MinTransfer: cfg.MinTransfer,
	})

	// SIGINT/SIGTERM 取消 ctx，讓指令迴圈與壓測在下一筆前停止
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *perf {
		res, err := loadtest.Run(ctx, ledger, loadtest.Options{
			Accounts:            *accounts,
			TransfersPerAccount: *perAccount,
			Workers:             *workers,
		}, logger)
		if err != nil {
			logger.WithError(err).Error("load test failed")
			return 1
		}
		logger.Info(res.String())
		return 0
	}

	if cfg.Offer2Schedule != "" {
		s, err := scheduler.New(cfg.Offer2Schedule, ledger, logger)
		if err != nil {
			logger.WithError(err).Error("invalid offer2 schedule")
			return 1
		}
		s.Start()
		defer func() {
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.Stop(shutdown)
		}()
	}

	path := cfg.InputFile
	if flag.NArg() > 0 {
		path = flag.Arg(0)
	}
	f, err := os.Open(path)
	if err != nil {
		logger.WithError(err).WithField("file", path).Error("failed to open input")
		return 1
	}
	defer f.Close()

	logger.WithField("file", path).Debug("processing commands")
	if err := command.NewDispatcher(ledger, logger).Run(ctx, f, os.Stdout); err != nil {
		logger.WithError(err).Error("command run aborted")
		return 1
	}
	return 0
}
