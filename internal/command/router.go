// internal/command/router.go
//
// 本檔負責指令名稱與 handler 的對應，以及逐行讀取的主迴圈。
//   - handler.go 定義「如何處理指令」
//   - router.go 定義「指令如何被導向」
//   - cmd/wallet/main.go 組裝整體應用（注入 Ledger、logger）
package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

type route struct {
	args    int
	handler func(ctx context.Context, w io.Writer, args []string) error
}

// register 採明確註冊，名稱即輸入檔中的指令字串。
func (d *Dispatcher) register() map[string]route {
	return map[string]route{
		"CreateWallet":  {args: 2, handler: d.createWallet},
		"TransferMoney": {args: 3, handler: d.transferMoney},
		"Statement":     {args: 1, handler: d.statement},
		"Overview":      {args: 0, handler: d.overview},
		"Offer2":        {args: 0, handler: d.offer2},
		"FixedDeposit":  {args: 2, handler: d.fixedDeposit},
		"Exit":          {args: 0, handler: d.exit},
	}
}

// Execute 解析並執行單行指令，查詢結果寫入 w。
func (d *Dispatcher) Execute(ctx context.Context, w io.Writer, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := fields[0], fields[1:]
	rt, ok := d.routes[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	if len(args) < rt.args {
		return fmt.Errorf("%w: %s expects %d arguments, got %d", ErrMalformedCommand, name, rt.args, len(args))
	}
	d.logger.WithField("command", name).Debug("dispatch")
	return rt.handler(ctx, w, args[:rt.args])
}

// Run 逐行讀取 r 並執行，每行先回顯為 "> <line>"：
//   - 空行略過。
//   - 一般錯誤輸出 "Error processing '<line>': <msg>" 後繼續。
//   - 無法辨識的指令或無法解析的金額輸出錯誤後中止，回傳該錯誤。
//   - Exit 停止讀取並回傳 nil。
func (d *Dispatcher) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		writeLine(w, "> %s", line)

		err := d.Execute(ctx, w, line)
		switch {
		case err == nil:
		case errors.Is(err, errExit):
			return nil
		case errors.Is(err, ErrUnknownCommand), errors.Is(err, ErrInvalidNumber):
			writeErr(w, line, err)
			return err
		default:
			writeErr(w, line, err)
			d.logger.WithError(err).WithField("line", line).Warn("command failed")
		}
	}
	return sc.Err()
}
