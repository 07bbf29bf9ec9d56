// internal/wallet/deposit.go
//
// 定存（fixed deposit）：開立後需經過固定次數的帳戶變更，
// 期間餘額不得低於定存金額，到期時一次性入帳利息。

package wallet

import "github.com/shopspring/decimal"

const fixedDepositTerm = 5

// FixedDepositInterest 為定存到期時入帳的固定利息。
var FixedDepositInterest = decimal.NewFromInt(10)

// FixedDeposit 為定存狀態；發佈後不可變，每次變更都會產生新值。
type FixedDeposit struct {
	Amount    decimal.Decimal `json:"amount"`
	Remaining int             `json:"remaining"`
	Active    bool            `json:"active"`
}

// DepositSummary 為有效定存的摘要，供對帳單與總覽使用。
type DepositSummary struct {
	Amount    decimal.Decimal `json:"amount"`
	Remaining int             `json:"remaining"`
}

func newFixedDeposit(amount decimal.Decimal) *FixedDeposit {
	return &FixedDeposit{Amount: amount, Remaining: fixedDepositTerm, Active: true}
}

type depositEvent int

const (
	depositUnchanged depositEvent = iota
	depositCounted
	depositMatured
	depositDissolved
)

// checkDeposit 為定存到期檢查，於入帳或扣款後、同一臨界區內呼叫：
//   - 無有效定存：不處理。
//   - 餘額低於定存金額：提前解約，不給利息。
//   - 否則倒數減一；歸零時入帳利息並結束定存。
func (s *accountState) checkDeposit() depositEvent {
	d := s.deposit
	if d == nil || !d.Active {
		return depositUnchanged
	}
	if s.balance.LessThan(d.Amount) {
		s.deposit = &FixedDeposit{Amount: d.Amount, Remaining: d.Remaining}
		return depositDissolved
	}
	remaining := d.Remaining - 1
	if remaining > 0 {
		s.deposit = &FixedDeposit{Amount: d.Amount, Remaining: remaining, Active: true}
		return depositCounted
	}
	s.balance = s.balance.Add(FixedDepositInterest)
	s.log = append(s.log, newTransaction(TagInterest, KindCredit, FixedDepositInterest))
	s.deposit = &FixedDeposit{Amount: d.Amount}
	return depositMatured
}
