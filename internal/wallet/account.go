// internal/wallet/account.go

// Package wallet 定義錢包核心：帳戶、交易紀錄、定存、轉帳協調與獎勵排名。
// 本檔定義 Account 與 Transaction，不含任何指令解析或輸出細節。

package wallet

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// Kind 為交易方向。
type Kind string

const (
	KindCredit Kind = "CREDIT"
	KindDebit  Kind = "DEBIT"
)

// 系統保留的交易對象標籤；帶有這些標籤的交易不計入活躍度排名。
const (
	TagEqualBalance   = "Offer1"
	TagBalancedReward = "Offer2"
	TagInterest       = "FD_Interest"
)

// Transaction 為一筆不可變的交易紀錄。
type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	Counterparty string          `json:"counterparty"`
	Kind         Kind            `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	Time         time.Time       `json:"time"`
}

func newTransaction(counterparty string, kind Kind, amount decimal.Decimal) Transaction {
	return Transaction{
		ID:           uuid.New(),
		Counterparty: counterparty,
		Kind:         kind,
		Amount:       amount,
		Time:         time.Now(),
	}
}

// String 以「對象 方向 金額」輸出，例如 "bob debit 25"。
func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %s", t.Counterparty, strings.ToLower(string(t.Kind)), t.Amount.String())
}

// Qualifying 回報此交易是否為使用者之間的交易（非獎勵、非利息）。
func (t Transaction) Qualifying() bool {
	switch t.Counterparty {
	case TagEqualBalance, TagBalancedReward, TagInterest:
		return false
	}
	return true
}

// accountState 為帳戶在某一時點的不可變狀態。
// 寫入端在臨界區內產生新狀態後整體發佈，讀取端一次取得三者（餘額、紀錄、定存）的一致快照。
type accountState struct {
	balance    decimal.Decimal
	log        []Transaction
	deposit    *FixedDeposit
	qualifying int
}

// apply 追加一筆交易並調整餘額，隨後執行定存到期檢查。
// log 可能與前一個狀態共用底層陣列：讀取端只看得到自己快照長度內的元素。
func (s *accountState) apply(tx Transaction, delta decimal.Decimal) (*accountState, depositEvent) {
	next := &accountState{
		balance:    s.balance.Add(delta),
		log:        append(s.log, tx),
		deposit:    s.deposit,
		qualifying: s.qualifying,
	}
	if tx.Qualifying() {
		next.qualifying++
	}
	return next, next.checkDeposit()
}

// Account 為單一持有人的帳本：餘額、交易紀錄與定存。
// sem 是帳戶專屬的互斥鎖（容量 1 的 semaphore，取得時可受 context 時限約束）；
// 所有變更都在持有 sem 時計算，並於臨界區結束前經由 commit 一次替換 state。
// version 為寫入序號，奇數表示發佈進行中，供多帳戶讀取驗證。
type Account struct {
	id          string
	seq         uint64
	createdAt   time.Time
	lockTimeout time.Duration
	logger      logrus.FieldLogger

	sem     *semaphore.Weighted
	version atomic.Uint64
	state   atomic.Pointer[accountState]
}

func newAccount(id string, seq uint64, opening decimal.Decimal, lockTimeout time.Duration, logger logrus.FieldLogger) *Account {
	a := &Account{
		id:          id,
		seq:         seq,
		createdAt:   time.Now(),
		lockTimeout: lockTimeout,
		logger:      logger.WithField("wallet", id),
		sem:         semaphore.NewWeighted(1),
	}
	a.state.Store(&accountState{balance: opening})
	return a
}

// ID 回傳帳戶持有人識別碼。
func (a *Account) ID() string { return a.id }

// CreatedAt 回傳建立時間。
func (a *Account) CreatedAt() time.Time { return a.createdAt }

// snapshot 是唯一的一致性讀取入口：不需取鎖，回傳最近一次發佈的完整狀態。
func (a *Account) snapshot() *accountState { return a.state.Load() }

// Balance 回傳目前餘額。
func (a *Account) Balance() decimal.Decimal { return a.snapshot().balance }

// Transactions 回傳交易紀錄的拷貝，順序即變更的因果順序。
func (a *Account) Transactions() []Transaction { return slices.Clone(a.snapshot().log) }

// FixedDeposit 回傳定存快照；從未開立時 ok 為 false。
func (a *Account) FixedDeposit() (fd FixedDeposit, ok bool) {
	if d := a.snapshot().deposit; d != nil {
		return *d, true
	}
	return FixedDeposit{}, false
}

// QualifyingCount 回傳不含獎勵與利息的交易筆數。
func (a *Account) QualifyingCount() int { return a.snapshot().qualifying }

// View 回傳帳戶的唯讀快照，餘額與定存來自同一個狀態。
func (a *Account) View() AccountView { return a.viewOf(a.snapshot()) }

func (a *Account) viewOf(s *accountState) AccountView {
	v := AccountView{ID: a.id, Balance: s.balance, CreatedAt: a.createdAt}
	if s.deposit != nil && s.deposit.Active {
		v.Deposit = &DepositSummary{Amount: s.deposit.Amount, Remaining: s.deposit.Remaining}
	}
	return v
}

// Credit 入帳 amount，並在同一臨界區內執行定存到期檢查。
func (a *Account) Credit(ctx context.Context, amount decimal.Decimal, counterparty string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("credit %s: %w", a.id, ErrInvalidAmount)
	}
	return a.withLock(ctx, func() error {
		a.credit(amount, counterparty)
		return nil
	})
}

// Debit 扣款 amount；餘額不足時回傳 ErrInsufficientBalance 且帳戶完全不變。
func (a *Account) Debit(ctx context.Context, amount decimal.Decimal, counterparty string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("debit %s: %w", a.id, ErrInvalidAmount)
	}
	return a.withLock(ctx, func() error {
		return a.debit(amount, counterparty)
	})
}

// OpenFixedDeposit 開立定存；已有定存時直接覆蓋。
func (a *Account) OpenFixedDeposit(ctx context.Context, amount decimal.Decimal) error {
	return a.withLock(ctx, func() error {
		return a.openFixedDeposit(amount)
	})
}

// withLock 在帳戶鎖內執行 fn；取得鎖逾時回傳 ErrLockTimeout。
func (a *Account) withLock(ctx context.Context, fn func() error) error {
	unlock, err := lockInOrder(ctx, a.lockTimeout, a)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

func (a *Account) acquire(ctx context.Context) error {
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("wallet %s: %w: %w", a.id, ErrLockTimeout, err)
	}
	return nil
}

func (a *Account) release() { a.sem.Release(1) }

// 以下小寫方法與 pendingState 皆假設呼叫端已持有相關帳戶的鎖。

func (a *Account) credit(amount decimal.Decimal, counterparty string) {
	p := stage(a)
	p.apply(newTransaction(counterparty, KindCredit, amount), amount)
	commit(p)
}

func (a *Account) debit(amount decimal.Decimal, counterparty string) error {
	p := stage(a)
	if err := p.debit(amount, counterparty); err != nil {
		return err
	}
	commit(p)
	return nil
}

func (a *Account) openFixedDeposit(amount decimal.Decimal) error {
	p := stage(a)
	if !amount.IsPositive() || amount.GreaterThan(p.next.balance) {
		return fmt.Errorf("fixed deposit %s for %s: %w", amount.String(), a.id, ErrInvalidAmount)
	}
	next := *p.next
	next.deposit = newFixedDeposit(amount)
	p.next = &next
	commit(p)
	a.logger.WithField("amount", amount.String()).Debug("fixed deposit opened")
	return nil
}

// pendingState 為臨界區內已計算、尚未發佈的帳戶狀態。
// 同一操作內的多筆變更（轉帳扣款、入帳、獎勵）先累積於此，再由 commit 一次發佈。
type pendingState struct {
	account *Account
	next    *accountState
	events  []depositEvent
}

func stage(a *Account) *pendingState {
	return &pendingState{account: a, next: a.snapshot()}
}

func (p *pendingState) apply(tx Transaction, delta decimal.Decimal) {
	next, ev := p.next.apply(tx, delta)
	p.next = next
	p.events = append(p.events, ev)
}

func (p *pendingState) debit(amount decimal.Decimal, counterparty string) error {
	if p.next.balance.LessThan(amount) {
		return fmt.Errorf("debit %s of %s: %w", p.account.id, amount.String(), ErrInsufficientBalance)
	}
	p.apply(newTransaction(counterparty, KindDebit, amount), amount.Neg())
	return nil
}

// commit 發佈一或多個帳戶的新狀態。發佈期間所有相關帳戶的 version 皆為奇數，
// 多帳戶讀取看到奇數或前後不一致的 version 時會重試，因此只會觀察到整體之前或之後。
func commit(pending ...*pendingState) {
	for _, p := range pending {
		p.account.version.Add(1)
	}
	for _, p := range pending {
		p.account.state.Store(p.next)
	}
	for _, p := range pending {
		p.account.version.Add(1)
	}
	for _, p := range pending {
		p.account.logEvents(p.next, p.events)
	}
}

func (a *Account) logEvents(next *accountState, events []depositEvent) {
	for _, ev := range events {
		switch ev {
		case depositMatured:
			a.logger.WithField("interest", FixedDepositInterest.String()).Debug("fixed deposit matured")
		case depositDissolved:
			a.logger.WithField("balance", next.balance.String()).Debug("fixed deposit dissolved early")
		}
	}
}

// AccountView 為帳戶的唯讀快照。
type AccountView struct {
	ID        string          `json:"id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
	Deposit   *DepositSummary `json:"deposit,omitempty"`
}
