// internal/command/command_test.go
//
// 本檔為 command 層的整合測試：以 strings.Reader 模擬輸入檔、bytes.Buffer 收集輸出，
// 驗證指令分派、輸出格式、錯誤處理與中止條件，不依賴任何外部檔案。
package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"digitalwallet/internal/wallet"
)

func newDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewDispatcher(wallet.New(logger, wallet.Options{}), logger)
}

// run 為測試輔助函式：執行腳本並回傳輸出與錯誤。
func run(t *testing.T, d *Dispatcher, script string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := d.Run(context.Background(), strings.NewReader(script), &out)
	return out.String(), err
}

func TestRunScript(t *testing.T) {
	d := newDispatcher(t)
	script := `CreateWallet A 100
CreateWallet B 50.00

TransferMoney A B 25
Overview
FixedDeposit A 20
Statement A
Offer2
Overview
Statement A
`
	want := `> CreateWallet A 100
> CreateWallet B 50.00
> TransferMoney A B 25
> Overview
A 85
B 85
> FixedDeposit A 20
> Statement A
B debit 25
Offer1 credit 10
Active FD: 20 | Transactions remaining: 5
> Offer2
> Overview
A 95 [FD Active: 20]
B 90
> Statement A
B debit 25
Offer1 credit 10
Offer2 credit 10
Active FD: 20 | Transactions remaining: 4
`
	got, err := run(t, d, script)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("output mismatch\n--- got ---\n%s--- want ---\n%s", got, want)
	}
}

func TestRunContinuesAfterDomainErrors(t *testing.T) {
	d := newDispatcher(t)
	script := `CreateWallet C 30
CreateWallet C 10
CreateWallet D -1
TransferMoney C C 1
TransferMoney C D 0.00001
TransferMoney C X 1
TransferMoney C D
FixedDeposit C 31
Overview
`
	got, err := run(t, d, script)
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{
		"Error processing 'CreateWallet C 10'",
		"Error processing 'CreateWallet D -1'",
		"Error processing 'TransferMoney C C 1'",
		"Error processing 'TransferMoney C D 0.00001'",
		"Error processing 'TransferMoney C X 1'",
		"Error processing 'TransferMoney C D'",
		"Error processing 'FixedDeposit C 31'",
	} {
		if !strings.Contains(got, line) {
			t.Fatalf("missing %q in output:\n%s", line, got)
		}
	}
	if !strings.HasSuffix(got, "> Overview\nC 30\n") {
		t.Fatalf("C must be unchanged and the run must reach Overview:\n%s", got)
	}
}

func TestRunStopsOnUnknownCommand(t *testing.T) {
	d := newDispatcher(t)
	got, err := run(t, d, "CreateWallet A 1\nWithdraw A 1\nOverview\n")
	if !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("want ErrUnknownCommand, got %v", err)
	}
	if strings.Contains(got, "> Overview") {
		t.Fatalf("run should stop at unknown command:\n%s", got)
	}
	if !strings.Contains(got, "Error processing 'Withdraw A 1'") {
		t.Fatalf("unknown command should be reported:\n%s", got)
	}
}

func TestRunStopsOnInvalidNumber(t *testing.T) {
	d := newDispatcher(t)
	got, err := run(t, d, "CreateWallet A 1\nCreateWallet E abc\nOverview\n")
	if !errors.Is(err, ErrInvalidNumber) || !errors.Is(err, ErrMalformedCommand) {
		t.Fatalf("want ErrInvalidNumber, got %v", err)
	}
	if !strings.Contains(got, "Error processing 'CreateWallet E abc'") {
		t.Fatalf("bad amount should be reported:\n%s", got)
	}
	if strings.Contains(got, "> Overview") {
		t.Fatalf("run should stop at the bad amount:\n%s", got)
	}
}

func TestRunExit(t *testing.T) {
	d := newDispatcher(t)
	got, err := run(t, d, "CreateWallet A 1\nExit\nCreateWallet B 1\n")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "CreateWallet B") {
		t.Fatalf("lines after Exit must not run:\n%s", got)
	}
	if _, err := d.ledger.Account("B"); err == nil {
		t.Fatal("B should not exist")
	}
}

func TestExecuteMalformed(t *testing.T) {
	d := newDispatcher(t)
	var out bytes.Buffer
	for _, line := range []string{"Statement", "FixedDeposit A", "TransferMoney A B 1e"} {
		if err := d.Execute(context.Background(), &out, line); !errors.Is(err, ErrMalformedCommand) {
			t.Fatalf("%q: want ErrMalformedCommand, got %v", line, err)
		}
	}
}

func TestExecuteMapsDomainErrors(t *testing.T) {
	d := newDispatcher(t)
	var out bytes.Buffer
	ctx := context.Background()

	_ = d.Execute(ctx, &out, "CreateWallet A 10")
	_ = d.Execute(ctx, &out, "CreateWallet B 0")
	if err := d.Execute(ctx, &out, "TransferMoney A B 11"); !errors.Is(err, wallet.ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}
	if err := d.Execute(ctx, &out, "Statement Z"); !errors.Is(err, wallet.ErrAccountNotFound) {
		t.Fatalf("want ErrAccountNotFound, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("failed commands must not write output: %q", out.String())
	}
}

func TestRunHonoursContext(t *testing.T) {
	d := newDispatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	if err := d.Run(ctx, strings.NewReader("CreateWallet A 1\n"), &out); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}
