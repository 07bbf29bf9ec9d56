// internal/command/response.go
//
// 本檔負責統一文字輸出格式。金額一律以去除尾端 0 的十進位字串輸出。
package command

import (
	"fmt"
	"io"

	"digitalwallet/internal/wallet"
)

func writeLine(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}

// writeErr 輸出單行錯誤訊息，格式為 "Error processing '<line>': <msg>"。
func writeErr(w io.Writer, line string, err error) {
	writeLine(w, "Error processing '%s': %s", line, err.Error())
}

// writeStatement 逐筆輸出交易紀錄；定存有效時最後附上定存摘要。
func writeStatement(w io.Writer, st wallet.Statement) {
	for _, tx := range st.Transactions {
		writeLine(w, "%s", tx.String())
	}
	if st.Deposit != nil {
		writeLine(w, "Active FD: %s | Transactions remaining: %d", st.Deposit.Amount.String(), st.Deposit.Remaining)
	}
}

// writeOverview 每個帳戶一行：ID、餘額，以及有效定存標記。
func writeOverview(w io.Writer, views []wallet.AccountView) {
	for _, v := range views {
		if v.Deposit != nil {
			writeLine(w, "%s %s [FD Active: %s]", v.ID, v.Balance.String(), v.Deposit.Amount.String())
			continue
		}
		writeLine(w, "%s %s", v.ID, v.Balance.String())
	}
}
