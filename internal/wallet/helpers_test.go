// internal/wallet/helpers_test.go
//
// 測試共用的小工具。所有測試皆為 in-memory 執行，logger 輸出丟棄。

package wallet

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestLedger(t *testing.T, opts Options) *Ledger {
	t.Helper()
	return New(quietLogger(), opts)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// open 建立帳戶並回傳控制代碼，失敗即結束測試。
func open(t *testing.T, l *Ledger, id, balance string) *Account {
	t.Helper()
	if _, err := l.CreateAccount(id, dec(balance)); err != nil {
		t.Fatalf("CreateAccount(%s) err=%v", id, err)
	}
	a, err := l.Account(id)
	if err != nil {
		t.Fatalf("Account(%s) err=%v", id, err)
	}
	return a
}

func wantBalance(t *testing.T, a *Account, want string) {
	t.Helper()
	if got := a.Balance(); !got.Equal(dec(want)) {
		t.Fatalf("%s balance=%s want=%s", a.ID(), got, want)
	}
}

func overview(t *testing.T, l *Ledger) []AccountView {
	t.Helper()
	ov, err := l.Overview(context.Background())
	if err != nil {
		t.Fatalf("Overview err=%v", err)
	}
	return ov
}

func total(t *testing.T, l *Ledger) decimal.Decimal {
	t.Helper()
	sum, err := l.TotalBalance(context.Background())
	if err != nil {
		t.Fatalf("TotalBalance err=%v", err)
	}
	return sum
}
