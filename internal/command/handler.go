// internal/command/handler.go
//
// Package command
// ─────────────────────────────────────────────
// 提供逐行指令介面，作為 wallet 核心的外部呼叫端。
// 每個 handler 僅負責：
//  1. 檢查參數個數並解析金額
//  2. 呼叫 wallet.Ledger 執行商業邏輯
//  3. 將查詢結果以純文字輸出
//
// 錯誤一律回傳給 Run，由 Run 統一輸出；wallet 不依賴本套件。
package command

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"digitalwallet/internal/wallet"
)

var (
	// ErrUnknownCommand 代表指令名稱無法辨識；Run 遇到時中止。
	ErrUnknownCommand = errors.New("invalid command")

	// ErrMalformedCommand 代表參數個數錯誤或金額格式錯誤。
	ErrMalformedCommand = errors.New("malformed command")

	// ErrInvalidNumber 代表金額無法解析為十進位數；一併包裝 ErrMalformedCommand，Run 遇到時中止。
	ErrInvalidNumber = errors.New("invalid number")

	errExit = errors.New("exit")
)

// Dispatcher 將指令分派到 wallet.Ledger。
type Dispatcher struct {
	ledger *wallet.Ledger
	logger logrus.FieldLogger
	routes map[string]route
}

// NewDispatcher 建立指令分派器；logger 為 nil 時使用 logrus 標準 logger。
func NewDispatcher(l *wallet.Ledger, logger logrus.FieldLogger) *Dispatcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	d := &Dispatcher{ledger: l, logger: logger}
	d.routes = d.register()
	return d
}

// createWallet: CreateWallet <id> <opening>
func (d *Dispatcher) createWallet(_ context.Context, _ io.Writer, args []string) error {
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	_, err = d.ledger.CreateAccount(args[0], amount)
	return err
}

// transferMoney: TransferMoney <from> <to> <amount>
func (d *Dispatcher) transferMoney(ctx context.Context, _ io.Writer, args []string) error {
	amount, err := parseAmount(args[2])
	if err != nil {
		return err
	}
	_, err = d.ledger.Transfer(ctx, args[0], args[1], amount)
	return err
}

// statement: Statement <id>
func (d *Dispatcher) statement(_ context.Context, w io.Writer, args []string) error {
	st, err := d.ledger.Statement(args[0])
	if err != nil {
		return err
	}
	writeStatement(w, st)
	return nil
}

// overview: Overview
func (d *Dispatcher) overview(ctx context.Context, w io.Writer, _ []string) error {
	views, err := d.ledger.Overview(ctx)
	if err != nil {
		return err
	}
	writeOverview(w, views)
	return nil
}

// offer2: Offer2
func (d *Dispatcher) offer2(ctx context.Context, _ io.Writer, _ []string) error {
	_, err := d.ledger.TriggerBalancedReward(ctx)
	return err
}

// fixedDeposit: FixedDeposit <id> <amount>
func (d *Dispatcher) fixedDeposit(ctx context.Context, _ io.Writer, args []string) error {
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	return d.ledger.OpenFixedDeposit(ctx, args[0], amount)
}

func (d *Dispatcher) exit(context.Context, io.Writer, []string) error {
	return errExit
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %w: amount %q", ErrMalformedCommand, ErrInvalidNumber, s)
	}
	return amount, nil
}
