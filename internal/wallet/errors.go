// internal/wallet/errors.go
//
// 本檔集中定義錢包核心的「領域錯誤（domain errors）」。
// 所有錯誤皆為同步、可由呼叫端處理的失敗；核心不會自行重試。
// 上層（command 分派器）以 errors.Is 判斷類別並輸出訊息。

package wallet

import "errors"

var (
	// ErrDuplicateAccount 代表帳戶 ID 已存在。
	ErrDuplicateAccount = errors.New("wallet already exists")

	// ErrAccountNotFound 代表帳戶不存在。
	ErrAccountNotFound = errors.New("wallet not found")

	// ErrInvalidAmount 代表金額非法：需要正數時 <= 0、開戶餘額為負，或定存金額超過餘額。
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInsufficientBalance 代表餘額不足以扣款；帳戶狀態不變。
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrSameAccountTransfer 代表轉帳來源與目標相同。
	ErrSameAccountTransfer = errors.New("cannot transfer to the same wallet")

	// ErrBelowMinimumTransfer 代表轉帳金額低於最小轉帳單位。
	ErrBelowMinimumTransfer = errors.New("amount below minimum transfer")

	// ErrLockTimeout 代表在時限內無法取得帳戶鎖；不會有任何部分變更。
	ErrLockTimeout = errors.New("timed out acquiring wallet lock")
)
