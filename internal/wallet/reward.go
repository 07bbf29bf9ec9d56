// internal/wallet/reward.go

package wallet

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// BalancedRewards 為 Offer2 依名次發放的獎勵表。
var BalancedRewards = []decimal.Decimal{
	decimal.NewFromInt(10),
	decimal.NewFromInt(5),
	decimal.NewFromInt(2),
}

// Reward 為一筆已發放的獎勵。
type Reward struct {
	AccountID string          `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// Ranker 依活躍度、餘額與建立順序排名，對前幾名發放 Offer2 獎勵。
type Ranker struct {
	store  *Store
	logger logrus.FieldLogger
}

// NewRanker 建立排名器，帳戶來源為 store。
func NewRanker(store *Store, logger logrus.FieldLogger) *Ranker {
	return &Ranker{store: store, logger: logger}
}

type rankEntry struct {
	account    *Account
	qualifying int
	balance    decimal.Decimal
}

// rank 以所有帳戶同一時點的狀態排序：
// (a) 使用者交易筆數多者優先 (b) 餘額高者優先 (c) 較早建立者優先。
func (r *Ranker) rank(ctx context.Context) ([]rankEntry, error) {
	accounts := r.store.Snapshot()
	states, err := readConsistent(ctx, r.store.lockTimeout, accounts)
	if err != nil {
		return nil, err
	}
	entries := make([]rankEntry, len(accounts))
	for i, a := range accounts {
		entries[i] = rankEntry{account: a, qualifying: states[i].qualifying, balance: states[i].balance}
	}
	slices.SortFunc(entries, func(x, y rankEntry) int {
		if c := cmp.Compare(y.qualifying, x.qualifying); c != 0 {
			return c
		}
		if c := y.balance.Cmp(x.balance); c != 0 {
			return c
		}
		return cmp.Compare(x.account.seq, y.account.seq)
	})
	return entries, nil
}

// TriggerBalancedReward 對排名前幾名各自入帳 BalancedRewards 對應金額。
// 每筆入帳為獨立的 Account.Credit，排名與發放之間的併發變更不影響結果的有效性。
// 入帳失敗時停止並回傳已發放的部分與錯誤。
func (r *Ranker) TriggerBalancedReward(ctx context.Context) ([]Reward, error) {
	entries, err := r.rank(ctx)
	if err != nil {
		return nil, fmt.Errorf("balanced reward ranking: %w", err)
	}
	n := min(len(entries), len(BalancedRewards))
	granted := make([]Reward, 0, n)
	for i := 0; i < n; i++ {
		a, amount := entries[i].account, BalancedRewards[i]
		if err := a.Credit(ctx, amount, TagBalancedReward); err != nil {
			return granted, fmt.Errorf("balanced reward rank %d: %w", i+1, err)
		}
		granted = append(granted, Reward{AccountID: a.id, Amount: amount})
		r.logger.WithFields(logrus.Fields{
			"wallet": a.id,
			"rank":   i + 1,
			"amount": amount.String(),
		}).Debug("balanced reward granted")
	}
	return granted, nil
}
