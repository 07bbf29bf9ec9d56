// internal/wallet/transfer.go

package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	// DefaultMinTransfer 為預設最小轉帳單位。
	DefaultMinTransfer = decimal.RequireFromString("0.0001")

	// EqualBalanceBonus 為轉帳後雙方餘額相等時各自獲得的獎勵。
	EqualBalanceBonus = decimal.NewFromInt(10)
)

// TransferResult 為轉帳完成時雙方的狀態；Bonus 表示是否觸發餘額相等獎勵。
type TransferResult struct {
	From  AccountView `json:"from"`
	To    AccountView `json:"to"`
	Bonus bool        `json:"bonus"`
}

// Coordinator 負責雙帳戶轉帳：檢核、依全序取鎖、扣款入帳、評估餘額相等獎勵。
type Coordinator struct {
	store       *Store
	minTransfer decimal.Decimal
	lockTimeout time.Duration
	logger      logrus.FieldLogger
}

// NewCoordinator 建立轉帳協調器；minTransfer 非正數時使用 DefaultMinTransfer。
func NewCoordinator(store *Store, minTransfer decimal.Decimal, lockTimeout time.Duration, logger logrus.FieldLogger) *Coordinator {
	if !minTransfer.IsPositive() {
		minTransfer = DefaultMinTransfer
	}
	return &Coordinator{store: store, minTransfer: minTransfer, lockTimeout: lockTimeout, logger: logger}
}

// Transfer 自 fromID 轉 amount 至 toID，整體為單一原子單位：
//  1. 檢核參數（同帳戶、最小金額）→ 2. 取得雙方帳戶 → 3. 依 ID 全序取鎖
//  4. 扣款、入帳 → 5. 餘額相等時雙方各入帳獎勵 → 6. 一次發佈雙方新狀態並釋放鎖。
//
// 任一步驟失敗時兩個帳戶皆不變；讀取端只會看到轉帳前或含獎勵的轉帳後狀態。
func (c *Coordinator) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) (TransferResult, error) {
	if fromID == toID {
		return TransferResult{}, fmt.Errorf("transfer %s -> %s: %w", fromID, toID, ErrSameAccountTransfer)
	}
	if amount.LessThan(c.minTransfer) {
		return TransferResult{}, fmt.Errorf("transfer %s below %s: %w", amount.String(), c.minTransfer.String(), ErrBelowMinimumTransfer)
	}

	from, err := c.store.Get(fromID)
	if err != nil {
		return TransferResult{}, fmt.Errorf("transfer sender: %w", err)
	}
	to, err := c.store.Get(toID)
	if err != nil {
		return TransferResult{}, fmt.Errorf("transfer receiver: %w", err)
	}

	unlock, err := lockInOrder(ctx, c.lockTimeout, from, to)
	if err != nil {
		return TransferResult{}, fmt.Errorf("transfer %s -> %s: %w", fromID, toID, err)
	}
	defer unlock()

	// 扣款、入帳與獎勵都先在暫存狀態上計算，最後一次發佈
	src, dst := stage(from), stage(to)
	if err := src.debit(amount, toID); err != nil {
		return TransferResult{}, err
	}
	dst.apply(newTransaction(fromID, KindCredit, amount), amount)

	res := TransferResult{}
	if src.next.balance.Equal(dst.next.balance) {
		src.apply(newTransaction(TagEqualBalance, KindCredit, EqualBalanceBonus), EqualBalanceBonus)
		dst.apply(newTransaction(TagEqualBalance, KindCredit, EqualBalanceBonus), EqualBalanceBonus)
		res.Bonus = true
	}
	commit(src, dst)
	res.From, res.To = from.viewOf(src.next), to.viewOf(dst.next)

	c.logger.WithFields(logrus.Fields{
		"from":   fromID,
		"to":     toID,
		"amount": amount.String(),
		"bonus":  res.Bonus,
	}).Debug("transfer completed")
	return res, nil
}
