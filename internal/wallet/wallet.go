// internal/wallet/wallet.go

// Ledger 為錢包核心對外的唯一入口：開戶、轉帳、對帳單、總覽、Offer2 與定存。
// 帳戶表於程序啟動時建立一次，並明確傳入轉帳協調器與排名器，不使用全域單例。
package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DefaultLockTimeout 為未指定時的取鎖上限。
const DefaultLockTimeout = 2 * time.Second

// Options 為 Ledger 的可調參數；零值欄位使用預設值。
type Options struct {
	LockTimeout time.Duration
	MinTransfer decimal.Decimal
}

// Ledger 聚合帳戶表、轉帳協調器與獎勵排名器。
type Ledger struct {
	store     *Store
	transfers *Coordinator
	rewards   *Ranker
	logger    logrus.FieldLogger
}

// New 建立空白的 in-memory 帳本；logger 為 nil 時使用 logrus 標準 logger。
func New(logger logrus.FieldLogger, opts Options) *Ledger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if opts.LockTimeout <= 0 {
		opts.LockTimeout = DefaultLockTimeout
	}
	store := NewStore(logger, opts.LockTimeout)
	return &Ledger{
		store:     store,
		transfers: NewCoordinator(store, opts.MinTransfer, opts.LockTimeout, logger),
		rewards:   NewRanker(store, logger),
		logger:    logger,
	}
}

// Statement 為單一帳戶的對帳單；Deposit 僅在定存有效時不為 nil。
type Statement struct {
	ID           string          `json:"id"`
	Transactions []Transaction   `json:"transactions"`
	Deposit      *DepositSummary `json:"deposit,omitempty"`
}

// CreateAccount 開立新帳戶。
func (l *Ledger) CreateAccount(id string, opening decimal.Decimal) (AccountView, error) {
	a, err := l.store.Create(id, opening)
	if err != nil {
		return AccountView{}, err
	}
	l.logger.WithFields(logrus.Fields{"wallet": id, "balance": opening.String()}).Info("wallet created")
	return a.View(), nil
}

// Account 取得帳戶控制代碼。
func (l *Ledger) Account(id string) (*Account, error) {
	return l.store.Get(id)
}

// Transfer 執行原子轉帳，詳見 Coordinator.Transfer。
func (l *Ledger) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) (TransferResult, error) {
	return l.transfers.Transfer(ctx, fromID, toID, amount)
}

// Statement 回傳帳戶的交易紀錄與有效定存摘要，兩者來自同一快照。
func (l *Ledger) Statement(id string) (Statement, error) {
	a, err := l.store.Get(id)
	if err != nil {
		return Statement{}, err
	}
	s := a.snapshot()
	st := Statement{ID: id, Transactions: append([]Transaction(nil), s.log...)}
	if s.deposit != nil && s.deposit.Active {
		st.Deposit = &DepositSummary{Amount: s.deposit.Amount, Remaining: s.deposit.Remaining}
	}
	return st, nil
}

// Overview 依建立順序回傳所有帳戶同一時點的餘額與定存摘要。
func (l *Ledger) Overview(ctx context.Context) ([]AccountView, error) {
	accounts := l.store.Snapshot()
	states, err := readConsistent(ctx, l.store.lockTimeout, accounts)
	if err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}
	out := make([]AccountView, len(accounts))
	for i, a := range accounts {
		out[i] = a.viewOf(states[i])
	}
	return out, nil
}

// TriggerBalancedReward 執行 Offer2，詳見 Ranker.TriggerBalancedReward。
func (l *Ledger) TriggerBalancedReward(ctx context.Context) ([]Reward, error) {
	granted, err := l.rewards.TriggerBalancedReward(ctx)
	if err != nil {
		return granted, err
	}
	l.logger.WithField("winners", len(granted)).Info("balanced reward applied")
	return granted, nil
}

// OpenFixedDeposit 為帳戶開立定存。
func (l *Ledger) OpenFixedDeposit(ctx context.Context, id string, amount decimal.Decimal) error {
	a, err := l.store.Get(id)
	if err != nil {
		return fmt.Errorf("fixed deposit: %w", err)
	}
	return a.OpenFixedDeposit(ctx, amount)
}

// TotalBalance 回傳所有帳戶同一時點的餘額總和。
func (l *Ledger) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	accounts := l.store.Snapshot()
	states, err := readConsistent(ctx, l.store.lockTimeout, accounts)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("total balance: %w", err)
	}
	total := decimal.Zero
	for _, s := range states {
		total = total.Add(s.balance)
	}
	return total, nil
}
