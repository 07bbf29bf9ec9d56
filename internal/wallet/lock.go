// internal/wallet/lock.go

package wallet

import (
	"context"
	"runtime"
	"slices"
	"strings"
	"time"
)

// lockInOrder 依帳戶 ID 的字典序取得多個帳戶的鎖，重複帳戶只鎖一次。
// 所有跨帳戶操作都必須經由此函式取鎖，全域一致的順序保證不會形成循環等待。
// timeout > 0 時整組取鎖共用同一個期限；任一帳戶失敗則釋放已取得的鎖並回傳 ErrLockTimeout。
// 回傳的 unlock 釋放全部的鎖，釋放順序不影響正確性。
func lockInOrder(ctx context.Context, timeout time.Duration, accounts ...*Account) (unlock func(), err error) {
	ordered := slices.Clone(accounts)
	slices.SortFunc(ordered, func(a, b *Account) int { return strings.Compare(a.id, b.id) })
	ordered = slices.CompactFunc(ordered, func(a, b *Account) bool { return a.id == b.id })

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	held := make([]*Account, 0, len(ordered))
	unlock = func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].release()
		}
	}
	for _, a := range ordered {
		if err := a.acquire(ctx); err != nil {
			unlock()
			return nil, err
		}
		held = append(held, a)
	}
	return unlock, nil
}

const optimisticReads = 4

// readConsistent 回傳多個帳戶在同一時點的狀態，順序與 accounts 相同。
// 先以 version 無鎖讀取並驗證期間沒有發佈；連續失敗後改以 lockInOrder 取鎖讀取。
func readConsistent(ctx context.Context, timeout time.Duration, accounts []*Account) ([]*accountState, error) {
	states := make([]*accountState, len(accounts))
	versions := make([]uint64, len(accounts))
	for range optimisticReads {
		if readOptimistic(accounts, states, versions) {
			return states, nil
		}
		runtime.Gosched()
	}

	unlock, err := lockInOrder(ctx, timeout, accounts...)
	if err != nil {
		return nil, err
	}
	defer unlock()
	for i, a := range accounts {
		states[i] = a.snapshot()
	}
	return states, nil
}

func readOptimistic(accounts []*Account, states []*accountState, versions []uint64) bool {
	for i, a := range accounts {
		v := a.version.Load()
		if v%2 == 1 {
			return false
		}
		versions[i] = v
	}
	for i, a := range accounts {
		states[i] = a.snapshot()
	}
	for i, a := range accounts {
		if a.version.Load() != versions[i] {
			return false
		}
	}
	return true
}
