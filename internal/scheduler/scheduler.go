// internal/scheduler/scheduler.go

// Package scheduler 以 cron 排程定期觸發 Offer2 獎勵。
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"digitalwallet/internal/wallet"
)

// Rewarder 為排程觸發的對象；*wallet.Ledger 即滿足此介面。
type Rewarder interface {
	TriggerBalancedReward(ctx context.Context) ([]wallet.Reward, error)
}

// Scheduler 依 cron 規格呼叫 Rewarder。
type Scheduler struct {
	cron   *cron.Cron
	target Rewarder
	logger logrus.FieldLogger
}

// New 以標準 cron 規格（含 @every 等描述子）建立排程；規格錯誤時回傳錯誤。
func New(spec string, target Rewarder, logger *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(cron.WithLogger(cron.PrintfLogger(logger))),
		target: target,
		logger: logger.WithField("job", "offer2"),
	}
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("offer2 schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start 於背景開始排程。
func (s *Scheduler) Start() { s.cron.Start() }

// Stop 停止排程並等待執行中的工作結束，或 ctx 結束為止。
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

func (s *Scheduler) runOnce() {
	granted, err := s.target.TriggerBalancedReward(context.Background())
	if err != nil {
		s.logger.WithError(err).Error("scheduled reward failed")
		return
	}
	s.logger.WithField("winners", len(granted)).Info("scheduled reward applied")
}
